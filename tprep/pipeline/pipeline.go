package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/ZanzyTHEbar/tensorprep/tprep/common"
	"github.com/ZanzyTHEbar/tensorprep/tprep/tensor"
	"github.com/ZanzyTHEbar/tensorprep/tprep/textvec"
	"github.com/ZanzyTHEbar/tensorprep/tprep/tokenizer"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/sourcegraph/conc/pool"
)

// Layout selects the target tensor shape for image preparation.
type Layout string

const (
	// LayoutFlat produces [count][H*W] rows for densely-connected models.
	LayoutFlat Layout = "flat"
	// LayoutChannel produces [count][H][W][1] tensors for convolutional models.
	LayoutChannel Layout = "channel"
)

// TextMode selects the fixed-width text representation.
type TextMode string

const (
	// TextMultiHot produces [count][bound] presence matrices.
	TextMultiHot TextMode = "multihot"
	// TextPadded produces [count][maxLen] id matrices.
	TextPadded TextMode = "padded"
)

// Preparer runs the one-shot preparation pipelines. Each call is a pure
// batch transform; the preparer itself only carries worker bounds and the
// assert handler shared across invariant checks.
type Preparer struct {
	maxWorkers    int
	assertHandler *assert.AssertHandler
	validation    *common.ValidationUtils
}

// NewPreparer creates a Preparer with a bounded worker pool size.
func NewPreparer(maxWorkers int) *Preparer {
	if maxWorkers <= 0 {
		maxWorkers = min(max(runtime.NumCPU()*2, 4), 32)
	}
	return &Preparer{
		maxWorkers:    maxWorkers,
		assertHandler: assert.NewAssertHandler(),
		validation:    common.NewValidationUtils(),
	}
}

// ImageOptions configures image preparation.
type ImageOptions struct {
	Layout     Layout
	NumClasses int
}

// ImageResult is the prepared image dataset. Exactly one of Flat or Channel
// is populated, matching the requested layout; SampleShape is the per-sample
// shape the training framework will see.
type ImageResult struct {
	Flat        [][]float64
	Channel     [][][][]float64
	Labels      [][]float64
	SampleShape []int
}

// PrepareImages normalizes and reshapes an image batch and one-hot encodes
// its labels. Row order in every output equals input order. Normalization is
// partitioned across samples on a bounded pool; correctness never depends on
// scheduling because each partition writes only its own rows.
func (p *Preparer) PrepareImages(ctx context.Context, batch tensor.ImageBatch, labels []int, opts ImageOptions) (*ImageResult, error) {
	if err := p.validation.ValidateSampleCount(batch.Count()); err != nil {
		return nil, err
	}
	height, width, err := batch.Dims()
	if err != nil {
		return nil, err
	}
	if len(labels) != batch.Count() {
		return nil, fmt.Errorf("%d labels for %d samples: %w", len(labels), batch.Count(), common.ErrShapeMismatch)
	}
	if opts.NumClasses <= 0 {
		return nil, fmt.Errorf("NumClasses must be positive: %w", common.ErrShapeMismatch)
	}

	norm := make([][][]float64, batch.Count())
	workers := pool.New().WithMaxGoroutines(p.maxWorkers).WithContext(ctx).WithCancelOnError()
	for start, end := range partitions(batch.Count(), p.maxWorkers) {
		workers.Go(func(ctx context.Context) error {
			if err := p.validation.ValidateContextCancellation(ctx); err != nil {
				return err
			}
			sub, err := tensor.Normalize(batch[start:end])
			if err != nil {
				return err
			}
			copy(norm[start:end], sub)
			return nil
		})
	}
	if err := workers.Wait(); err != nil {
		return nil, common.WrapError(err, "normalize %d samples", batch.Count())
	}

	encoded, err := tensor.OneHot(labels, opts.NumClasses)
	if err != nil {
		return nil, err
	}

	result := &ImageResult{Labels: encoded}
	switch opts.Layout {
	case LayoutFlat, "":
		result.Flat, err = tensor.ReshapeFlat(norm)
		result.SampleShape = []int{height * width}
	case LayoutChannel:
		result.Channel, err = tensor.ReshapeChannel(norm)
		result.SampleShape = []int{height, width, 1}
	default:
		return nil, fmt.Errorf("unknown layout %q: %w", opts.Layout, common.ErrShapeMismatch)
	}
	if err != nil {
		return nil, err
	}

	p.assertHandler.Assert(ctx, len(result.Labels) == batch.Count(), "prepared label rows must equal input sample count")

	slog.Info("Image batch prepared",
		"samples", batch.Count(),
		"layout", opts.Layout,
		"sample_shape", result.SampleShape)

	return result, nil
}

// TextOptions configures text preparation.
type TextOptions struct {
	Mode            TextMode
	VocabularyBound int
	MaxLen          int
}

// TextResult is the prepared text dataset. Exactly one of MultiHot or Padded
// is populated, matching the requested mode. Labels stay a binary vector:
// sentiment is two-class, so the framework consumes {0, 1} directly.
type TextResult struct {
	MultiHot    [][]float64
	Padded      [][]int
	Labels      []float64
	Vocab       *textvec.Vocabulary
	SampleShape []int
}

// PrepareText builds a bounded vocabulary over the corpus, encodes every
// text, and produces the requested fixed-width representation. Tokenization
// runs row-parallel; vocabulary construction and the final matrix build are
// single-pass.
func (p *Preparer) PrepareText(ctx context.Context, texts []string, labels []int, opts TextOptions) (*TextResult, error) {
	if err := p.validation.ValidateSampleCount(len(texts)); err != nil {
		return nil, err
	}
	if len(labels) != len(texts) {
		return nil, fmt.Errorf("%d labels for %d texts: %w", len(labels), len(texts), common.ErrShapeMismatch)
	}
	for i, l := range labels {
		if l != 0 && l != 1 {
			return nil, fmt.Errorf("label %d at row %d must be binary: %w", l, i, common.ErrLabelOutOfRange)
		}
	}

	words := make([][]string, len(texts))
	workers := pool.New().WithMaxGoroutines(p.maxWorkers).WithContext(ctx).WithCancelOnError()
	for start, end := range partitions(len(texts), p.maxWorkers) {
		workers.Go(func(ctx context.Context) error {
			if err := p.validation.ValidateContextCancellation(ctx); err != nil {
				return err
			}
			for i := start; i < end; i++ {
				words[i] = tokenizer.SplitWords(texts[i])
			}
			return nil
		})
	}
	if err := workers.Wait(); err != nil {
		return nil, common.WrapError(err, "tokenize %d texts", len(texts))
	}

	builder, err := textvec.NewVocabularyBuilder(opts.VocabularyBound)
	if err != nil {
		return nil, err
	}
	for _, doc := range words {
		builder.AddDocument(doc)
	}
	vocab, err := builder.Build()
	if err != nil {
		return nil, err
	}
	seqs := vocab.EncodeAll(words)

	result := &TextResult{
		Vocab:  vocab,
		Labels: make([]float64, len(labels)),
	}
	for i, l := range labels {
		result.Labels[i] = float64(l)
	}

	switch opts.Mode {
	case TextMultiHot, "":
		result.MultiHot, err = textvec.MultiHot(seqs, vocab.Bound())
		result.SampleShape = []int{vocab.Bound()}
	case TextPadded:
		result.Padded, err = textvec.PadSequences(seqs, opts.MaxLen)
		result.SampleShape = []int{opts.MaxLen}
	default:
		return nil, fmt.Errorf("unknown text mode %q: %w", opts.Mode, common.ErrShapeMismatch)
	}
	if err != nil {
		return nil, err
	}

	p.assertHandler.Assert(ctx, len(result.Labels) == len(texts), "prepared label rows must equal input sample count")

	slog.Info("Text corpus prepared",
		"samples", len(texts),
		"mode", opts.Mode,
		"vocabulary_bound", vocab.Bound(),
		"sample_shape", result.SampleShape)

	return result, nil
}

// PrepareTokenized encodes texts with a pre-trained tokenizer instead of a
// corpus-built vocabulary, then pads to maxLen. Used when a subword vocab
// artifact ships with the model instead of being fit on the corpus.
func (p *Preparer) PrepareTokenized(ctx context.Context, texts []string, labels []int, tok tokenizer.Tokenizer, maxLen int) (*TextResult, error) {
	if err := p.validation.ValidateSampleCount(len(texts)); err != nil {
		return nil, err
	}
	if len(labels) != len(texts) {
		return nil, fmt.Errorf("%d labels for %d texts: %w", len(labels), len(texts), common.ErrShapeMismatch)
	}

	seqs, err := tok.Tokenize(texts)
	if err != nil {
		return nil, err
	}

	padded, err := textvec.PadSequences(seqs, maxLen)
	if err != nil {
		return nil, err
	}

	result := &TextResult{
		Padded:      padded,
		Labels:      make([]float64, len(labels)),
		SampleShape: []int{maxLen},
	}
	for i, l := range labels {
		result.Labels[i] = float64(l)
	}

	p.assertHandler.Assert(ctx, len(result.Padded) == len(texts), "prepared rows must equal input sample count")

	slog.Info("Tokenized corpus prepared",
		"samples", len(texts),
		"sample_shape", result.SampleShape)

	return result, nil
}

// partitions splits n rows into at most parts contiguous [start, end)
// ranges. Returned as a map for range-over convenience; ranges never
// overlap, so concurrent writers touch disjoint rows.
func partitions(n, parts int) map[int]int {
	if parts < 1 {
		parts = 1
	}
	out := make(map[int]int, parts)
	size := (n + parts - 1) / parts
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		out[start] = end
	}
	return out
}

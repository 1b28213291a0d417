package textvec

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/ZanzyTHEbar/tensorprep/tprep/common"

	roaring "github.com/RoaringBitmap/roaring"
	radix "github.com/armon/go-radix"
)

// OOVID is the single id every token outside the retained vocabulary
// collapses to. Ids 0 (padding) and 1 (out-of-vocabulary) are reserved, so
// real tokens start at id 2.
const (
	OOVID        = 1
	firstTokenID = 2
)

// VocabularyBuilder accumulates token statistics over a corpus, one document
// at a time, before freezing a frequency-ranked Vocabulary. Document
// membership is tracked with roaring bitmaps keyed per token, so document
// frequency stays cheap even over large corpora.
type VocabularyBuilder struct {
	mu      sync.Mutex
	counts  map[string]int
	docFreq map[string]*roaring.Bitmap
	docs    uint32
	bound   int
}

// NewVocabularyBuilder creates a builder whose frozen vocabulary will emit
// ids strictly below bound.
func NewVocabularyBuilder(bound int) (*VocabularyBuilder, error) {
	if bound <= firstTokenID {
		return nil, fmt.Errorf("vocabulary bound %d leaves no room for real tokens: %w", bound, common.ErrVocabularyBound)
	}
	return &VocabularyBuilder{
		counts:  make(map[string]int),
		docFreq: make(map[string]*roaring.Bitmap),
		bound:   bound,
	}, nil
}

// AddDocument records one tokenized document. Safe for concurrent use.
func (b *VocabularyBuilder) AddDocument(tokens []string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	docID := b.docs
	b.docs++
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		b.counts[tok]++
		bm, ok := b.docFreq[tok]
		if !ok {
			bm = roaring.New()
			b.docFreq[tok] = bm
		}
		bm.Add(docID)
	}
}

// Build freezes the accumulated statistics into a Vocabulary. Tokens are
// ranked by total occurrence count (ties broken lexicographically) and the
// top bound-2 receive ids 2..bound-1; everything else collapses to OOVID.
func (b *VocabularyBuilder) Build() (*Vocabulary, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.docs == 0 {
		return nil, common.ErrEmptyInput
	}

	ranked := make([]string, 0, len(b.counts))
	for tok := range b.counts {
		ranked = append(ranked, tok)
	}
	sort.Slice(ranked, func(i, j int) bool {
		ci, cj := b.counts[ranked[i]], b.counts[ranked[j]]
		if ci != cj {
			return ci > cj
		}
		return ranked[i] < ranked[j]
	})

	keep := b.bound - firstTokenID
	if len(ranked) < keep {
		keep = len(ranked)
	}
	ranked = ranked[:keep]

	tree := radix.New()
	tokens := make([]string, keep)
	docFreq := make([]*roaring.Bitmap, keep)
	for i, tok := range ranked {
		tree.Insert(tok, firstTokenID+i)
		tokens[i] = tok
		docFreq[i] = b.docFreq[tok]
	}

	slog.Debug("Vocabulary frozen",
		"distinct_tokens", len(b.counts),
		"retained", keep,
		"bound", b.bound,
		"documents", b.docs)

	return &Vocabulary{
		tree:    tree,
		tokens:  tokens,
		docFreq: docFreq,
		bound:   b.bound,
	}, nil
}

// Vocabulary is an immutable frequency-ranked token table. All lookups are
// safe for concurrent use once built.
type Vocabulary struct {
	tree    *radix.Tree // token -> id, also serves prefix diagnostics
	tokens  []string    // id-firstTokenID -> token
	docFreq []*roaring.Bitmap
	bound   int
}

// Bound returns the exclusive upper limit for emitted token ids.
func (v *Vocabulary) Bound() int { return v.bound }

// Len returns the number of assigned ids, reserved ids included.
func (v *Vocabulary) Len() int { return len(v.tokens) + firstTokenID }

// ID returns the id assigned to token, or (OOVID, false) when the token fell
// outside the retained vocabulary.
func (v *Vocabulary) ID(token string) (int, bool) {
	if val, ok := v.tree.Get(token); ok {
		return val.(int), true
	}
	return OOVID, false
}

// Token returns the token assigned to id.
func (v *Vocabulary) Token(id int) (string, bool) {
	idx := id - firstTokenID
	if idx < 0 || idx >= len(v.tokens) {
		return "", false
	}
	return v.tokens[idx], true
}

// Encode maps a tokenized document to ids, collapsing unknown tokens to
// OOVID. Every emitted id is strictly below Bound().
func (v *Vocabulary) Encode(tokens []string) []int {
	ids := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		id, _ := v.ID(tok)
		ids = append(ids, id)
	}
	return ids
}

// EncodeAll maps a corpus of tokenized documents to id sequences, preserving
// document order.
func (v *Vocabulary) EncodeAll(docs [][]string) [][]int {
	out := make([][]int, len(docs))
	for i, doc := range docs {
		out[i] = v.Encode(doc)
	}
	return out
}

// DocumentFrequency returns the number of corpus documents that contained
// token at build time.
func (v *Vocabulary) DocumentFrequency(token string) int {
	id, ok := v.ID(token)
	if !ok {
		return 0
	}
	bm := v.docFreq[id-firstTokenID]
	if bm == nil {
		return 0
	}
	return int(bm.GetCardinality())
}

// TokensWithPrefix returns retained tokens sharing the given prefix, in
// lexicographic order. Useful when inspecting what a bound kept or dropped.
func (v *Vocabulary) TokensWithPrefix(prefix string) []string {
	var out []string
	v.tree.WalkPrefix(prefix, func(tok string, _ interface{}) bool {
		out = append(out, tok)
		return false
	})
	return out
}

package model

import (
	"fmt"

	"github.com/ZanzyTHEbar/tensorprep/tprep/common"
)

// LayerKind names the layer families the case studies declare.
type LayerKind string

const (
	LayerDense     LayerKind = "dense"
	LayerConv2D    LayerKind = "conv2d"
	LayerMaxPool2D LayerKind = "maxpool2d"
	LayerFlatten   LayerKind = "flatten"
	LayerEmbedding LayerKind = "embedding"
	LayerLSTM      LayerKind = "lstm"
	LayerDropout   LayerKind = "dropout"
)

// LayerSpec is one entry in an architecture's explicit layer list. Only the
// fields relevant to the Kind are set; execution belongs to the external
// training framework, never to this package.
type LayerSpec struct {
	Kind       LayerKind
	Units      int // dense output width, lstm state size
	Filters    int // conv2d output channels
	Kernel     int // conv2d kernel side
	Pool       int // maxpool2d window side
	VocabSize  int // embedding input cardinality
	EmbedDim   int // embedding output width
	Rate       float64
	Activation string
}

// Architecture is an ordered layer list with a declared per-sample input
// shape. It exists so prepared tensors can be checked against what a model
// expects before any training call crosses the framework boundary.
type Architecture struct {
	Name   string
	Input  []int // per-sample dims, e.g. [784] or [28, 28, 1]
	Layers []LayerSpec
}

// Validate checks the architecture's internal consistency.
func (a *Architecture) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("architecture needs a name")
	}
	if len(a.Input) == 0 {
		return fmt.Errorf("architecture %s declares no input shape: %w", a.Name, common.ErrShapeMismatch)
	}
	for _, d := range a.Input {
		if d <= 0 {
			return fmt.Errorf("architecture %s input dim %d must be positive: %w", a.Name, d, common.ErrShapeMismatch)
		}
	}
	if len(a.Layers) == 0 {
		return fmt.Errorf("architecture %s declares no layers", a.Name)
	}
	for i, l := range a.Layers {
		switch l.Kind {
		case LayerDense:
			if l.Units <= 0 {
				return fmt.Errorf("layer %d (%s): units must be positive", i, l.Kind)
			}
		case LayerConv2D:
			if l.Filters <= 0 || l.Kernel <= 0 {
				return fmt.Errorf("layer %d (%s): filters and kernel must be positive", i, l.Kind)
			}
		case LayerMaxPool2D:
			if l.Pool <= 0 {
				return fmt.Errorf("layer %d (%s): pool must be positive", i, l.Kind)
			}
		case LayerEmbedding:
			if l.VocabSize <= 0 || l.EmbedDim <= 0 {
				return fmt.Errorf("layer %d (%s): vocab size and embed dim must be positive", i, l.Kind)
			}
		case LayerLSTM:
			if l.Units <= 0 {
				return fmt.Errorf("layer %d (%s): units must be positive", i, l.Kind)
			}
		case LayerDropout:
			if l.Rate <= 0 || l.Rate >= 1 {
				return fmt.Errorf("layer %d (%s): rate must be in (0, 1)", i, l.Kind)
			}
		case LayerFlatten:
			// no parameters
		default:
			return fmt.Errorf("layer %d: unknown kind %q", i, l.Kind)
		}
	}
	return nil
}

// CheckBatch verifies a prepared tensor's per-sample shape against the
// architecture's declared input. The contract with the training framework is
// purely shape-based, so this is the whole boundary check.
func (a *Architecture) CheckBatch(sampleShape []int) error {
	if len(sampleShape) != len(a.Input) {
		return fmt.Errorf("architecture %s wants rank %d input, prepared tensor has rank %d: %w",
			a.Name, len(a.Input), len(sampleShape), common.ErrShapeMismatch)
	}
	for i := range a.Input {
		if sampleShape[i] != a.Input[i] {
			return fmt.Errorf("architecture %s wants dim %d = %d, prepared tensor has %d: %w",
				a.Name, i, a.Input[i], sampleShape[i], common.ErrShapeMismatch)
		}
	}
	return nil
}

// DenseDigits is the feed-forward digit classifier: flat 784-wide input,
// one hidden layer, softmax over 10 classes.
func DenseDigits() *Architecture {
	return &Architecture{
		Name:  "dense-digits",
		Input: []int{784},
		Layers: []LayerSpec{
			{Kind: LayerDense, Units: 512, Activation: "relu"},
			{Kind: LayerDropout, Rate: 0.2},
			{Kind: LayerDense, Units: 10, Activation: "softmax"},
		},
	}
}

// ConvDigits is the convolutional digit classifier over channel-preserving
// 28x28x1 input.
func ConvDigits() *Architecture {
	return &Architecture{
		Name:  "conv-digits",
		Input: []int{28, 28, 1},
		Layers: []LayerSpec{
			{Kind: LayerConv2D, Filters: 32, Kernel: 3, Activation: "relu"},
			{Kind: LayerMaxPool2D, Pool: 2},
			{Kind: LayerConv2D, Filters: 64, Kernel: 3, Activation: "relu"},
			{Kind: LayerMaxPool2D, Pool: 2},
			{Kind: LayerFlatten},
			{Kind: LayerDense, Units: 64, Activation: "relu"},
			{Kind: LayerDense, Units: 10, Activation: "softmax"},
		},
	}
}

// DenseSentiment is the bag-of-words sentiment classifier: multi-hot input
// as wide as the vocabulary bound, sigmoid output.
func DenseSentiment(vocabBound int) *Architecture {
	return &Architecture{
		Name:  "dense-sentiment",
		Input: []int{vocabBound},
		Layers: []LayerSpec{
			{Kind: LayerDense, Units: 16, Activation: "relu"},
			{Kind: LayerDense, Units: 16, Activation: "relu"},
			{Kind: LayerDense, Units: 1, Activation: "sigmoid"},
		},
	}
}

// RecurrentSentiment is the embedding + LSTM sentiment classifier over
// padded id sequences of fixed length maxLen.
func RecurrentSentiment(vocabBound, maxLen int) *Architecture {
	return &Architecture{
		Name:  "recurrent-sentiment",
		Input: []int{maxLen},
		Layers: []LayerSpec{
			{Kind: LayerEmbedding, VocabSize: vocabBound, EmbedDim: 32},
			{Kind: LayerLSTM, Units: 32},
			{Kind: LayerDense, Units: 1, Activation: "sigmoid"},
		},
	}
}

package model

import (
	"context"
	"strings"
)

// Scorer produces per-class scores for prepared sample rows. Scoring is
// inference against an already-trained artifact; training stays on the other
// side of the framework boundary.
type Scorer interface {
	Classes() int
	Score(ctx context.Context, rows [][]float64) ([][]float64, error)
}

// NewScorer selects a scorer by name (e.g., "hash", "onnx").
// modelPath is only consulted by the onnx scorer. Unknown names fall back to
// the deterministic hash-based scorer, which is what tests and dry runs use.
// seed is threaded explicitly so reproducibility never depends on ambient
// process-wide RNG state.
func NewScorer(scorerName string, classes int, seed int64, modelPath string) Scorer {
	if classes <= 0 {
		classes = 2
	}
	name := strings.ToLower(strings.TrimSpace(scorerName))
	switch name {
	case "hash", "", "dev":
		return NewHashScorer(classes, seed)
	default:
		if strings.HasPrefix(name, "onnx") {
			return newONNXScorer(classes, modelPath)
		}
		return NewHashScorer(classes, seed)
	}
}

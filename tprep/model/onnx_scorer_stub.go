//go:build !onnx
// +build !onnx

package model

import (
	"context"
	"fmt"
)

// onnxScorer is a stub used when built without the "onnx" build tag.
type onnxScorer struct{ classes int }

func newONNXScorer(classes int, modelPath string) Scorer { return &onnxScorer{classes: classes} }

func (p *onnxScorer) Classes() int { return p.classes }

func (p *onnxScorer) Score(ctx context.Context, rows [][]float64) ([][]float64, error) {
	return nil, fmt.Errorf("onnx scorer not available: build with -tags onnx and provide a model artifact")
}

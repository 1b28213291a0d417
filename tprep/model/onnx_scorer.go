//go:build onnx
// +build onnx

package model

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNX-backed scorer under the onnx build tag. Initializes ORT lazily and
// opens a dynamic session against the exported model artifact.
type onnxScorer struct {
	classes    int
	modelPath  string
	mu         sync.Mutex
	session    *ort.DynamicAdvancedSession
	inputName  string
	outputName string
}

func newONNXScorer(classes int, modelPath string) Scorer {
	return &onnxScorer{classes: classes, modelPath: modelPath}
}

func (p *onnxScorer) Classes() int { return p.classes }

func (p *onnxScorer) ensureSession() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session != nil {
		return nil
	}
	if p.modelPath == "" {
		return fmt.Errorf("onnx model path is required")
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("initialize onnx runtime: %w", err)
		}
	}
	ins, outs, err := ort.GetInputOutputInfo(p.modelPath)
	if err != nil {
		return fmt.Errorf("get IO info: %w", err)
	}
	if len(ins) == 0 || len(outs) == 0 {
		return fmt.Errorf("model %s declares no IO", p.modelPath)
	}
	p.inputName = ins[0].Name
	p.outputName = outs[0].Name

	sess, err := ort.NewDynamicAdvancedSession(p.modelPath,
		[]string{p.inputName}, []string{p.outputName}, nil)
	if err != nil {
		return fmt.Errorf("open onnx session: %w", err)
	}
	p.session = sess
	return nil
}

func (p *onnxScorer) Score(ctx context.Context, rows [][]float64) ([][]float64, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows to score")
	}
	if err := p.ensureSession(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	width := len(rows[0])
	flat := make([]float32, 0, len(rows)*width)
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has width %d, want %d", i, len(row), width)
		}
		for _, v := range row {
			flat = append(flat, float32(v))
		}
	}

	input, err := ort.NewTensor(ort.NewShape(int64(len(rows)), int64(width)), flat)
	if err != nil {
		return nil, fmt.Errorf("build input tensor: %w", err)
	}
	defer input.Destroy()

	outputs := []ort.Value{nil}
	if err := p.session.Run([]ort.Value{input}, outputs); err != nil {
		return nil, fmt.Errorf("run onnx session: %w", err)
	}
	defer outputs[0].Destroy()

	scored, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output tensor type")
	}
	data := scored.GetData()
	if len(data) != len(rows)*p.classes {
		return nil, fmt.Errorf("output has %d values, want %d", len(data), len(rows)*p.classes)
	}

	out := make([][]float64, len(rows))
	for i := range rows {
		row := make([]float64, p.classes)
		for j := 0; j < p.classes; j++ {
			row[j] = float64(data[i*p.classes+j])
		}
		out[i] = row
	}
	return out, nil
}

package tensor

import (
	"fmt"

	"github.com/ZanzyTHEbar/tensorprep/tprep/common"

	"gonum.org/v1/gonum/floats"
)

// ImageBatch is a batch of grayscale images with shape [count][height][width]
// and raw uint8 intensities in [0, 255].
type ImageBatch [][][]uint8

// Count returns the number of samples in the batch.
func (b ImageBatch) Count() int { return len(b) }

// Dims returns the (height, width) of the batch, validated to be rectangular
// across every sample. Returns common.ErrShapeMismatch when rows are ragged.
func (b ImageBatch) Dims() (height, width int, err error) {
	if len(b) == 0 {
		return 0, 0, common.ErrEmptyInput
	}
	height = len(b[0])
	if height == 0 {
		return 0, 0, fmt.Errorf("sample 0 has zero height: %w", common.ErrShapeMismatch)
	}
	width = len(b[0][0])
	if width == 0 {
		return 0, 0, fmt.Errorf("sample 0 has zero width: %w", common.ErrShapeMismatch)
	}
	for i, sample := range b {
		if len(sample) != height {
			return 0, 0, fmt.Errorf("sample %d has height %d, want %d: %w", i, len(sample), height, common.ErrShapeMismatch)
		}
		for r, row := range sample {
			if len(row) != width {
				return 0, 0, fmt.Errorf("sample %d row %d has width %d, want %d: %w", i, r, len(row), width, common.ErrShapeMismatch)
			}
		}
	}
	return height, width, nil
}

// Normalize rescales raw intensities from [0, 255] into [0.0, 1.0].
// The transform is total and deterministic; the input batch is never mutated.
func Normalize(batch ImageBatch) ([][][]float64, error) {
	if _, _, err := batch.Dims(); err != nil {
		return nil, err
	}
	out := make([][][]float64, len(batch))
	for i, sample := range batch {
		rows := make([][]float64, len(sample))
		for r, row := range sample {
			vals := make([]float64, len(row))
			for c, v := range row {
				vals[c] = float64(v)
			}
			floats.Scale(1.0/255.0, vals)
			rows[r] = vals
		}
		out[i] = rows
	}
	return out, nil
}

// ReshapeFlat flattens a normalized [count][H][W] batch into [count][H*W],
// the input shape densely-connected models declare. Sample order and element
// count per sample are preserved.
func ReshapeFlat(norm [][][]float64) ([][]float64, error) {
	h, w, err := normalizedDims(norm)
	if err != nil {
		return nil, err
	}
	out := make([][]float64, len(norm))
	for i, sample := range norm {
		flat := make([]float64, 0, h*w)
		for _, row := range sample {
			flat = append(flat, row...)
		}
		out[i] = flat
	}
	return out, nil
}

// ReshapeChannel reshapes a normalized [count][H][W] batch into
// [count][H][W][1], the channel-preserving shape convolutional models
// declare for grayscale input.
func ReshapeChannel(norm [][][]float64) ([][][][]float64, error) {
	if _, _, err := normalizedDims(norm); err != nil {
		return nil, err
	}
	out := make([][][][]float64, len(norm))
	for i, sample := range norm {
		rows := make([][][]float64, len(sample))
		for r, row := range sample {
			cells := make([][]float64, len(row))
			for c, v := range row {
				cells[c] = []float64{v}
			}
			rows[r] = cells
		}
		out[i] = rows
	}
	return out, nil
}

// Unflatten restores a [count][H*W] matrix into [count][H][W]. It is the
// inverse of ReshapeFlat for matching dimensions and fails with
// common.ErrShapeMismatch when H*W does not equal the flattened width.
func Unflatten(flat [][]float64, height, width int) ([][][]float64, error) {
	if len(flat) == 0 {
		return nil, common.ErrEmptyInput
	}
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("target dims %dx%d must be positive: %w", height, width, common.ErrShapeMismatch)
	}
	for i, row := range flat {
		if len(row) != height*width {
			return nil, fmt.Errorf("sample %d has %d elements, want %d: %w", i, len(row), height*width, common.ErrShapeMismatch)
		}
	}
	out := make([][][]float64, len(flat))
	for i, row := range flat {
		sample := make([][]float64, height)
		for r := 0; r < height; r++ {
			sample[r] = append([]float64(nil), row[r*width:(r+1)*width]...)
		}
		out[i] = sample
	}
	return out, nil
}

func normalizedDims(norm [][][]float64) (height, width int, err error) {
	if len(norm) == 0 {
		return 0, 0, common.ErrEmptyInput
	}
	height = len(norm[0])
	if height == 0 {
		return 0, 0, fmt.Errorf("sample 0 has zero height: %w", common.ErrShapeMismatch)
	}
	width = len(norm[0][0])
	if width == 0 {
		return 0, 0, fmt.Errorf("sample 0 has zero width: %w", common.ErrShapeMismatch)
	}
	for i, sample := range norm {
		if len(sample) != height {
			return 0, 0, fmt.Errorf("sample %d has height %d, want %d: %w", i, len(sample), height, common.ErrShapeMismatch)
		}
		for r, row := range sample {
			if len(row) != width {
				return 0, 0, fmt.Errorf("sample %d row %d has width %d, want %d: %w", i, r, len(row), width, common.ErrShapeMismatch)
			}
		}
	}
	return height, width, nil
}

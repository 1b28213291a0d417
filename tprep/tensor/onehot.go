package tensor

import (
	"fmt"

	"github.com/ZanzyTHEbar/tensorprep/tprep/common"
)

// OneHot encodes integer class labels as an N x numClasses binary matrix.
// Row i carries a single 1 at column labels[i]; column ordering is the
// natural integer order 0..numClasses-1.
func OneHot(labels []int, numClasses int) ([][]float64, error) {
	if len(labels) == 0 {
		return nil, common.ErrEmptyInput
	}
	if numClasses <= 0 {
		return nil, fmt.Errorf("numClasses must be positive, got %d: %w", numClasses, common.ErrShapeMismatch)
	}
	out := make([][]float64, len(labels))
	for i, label := range labels {
		if label < 0 || label >= numClasses {
			return nil, fmt.Errorf("label %d at row %d with %d classes: %w", label, i, numClasses, common.ErrLabelOutOfRange)
		}
		row := make([]float64, numClasses)
		row[label] = 1.0
		out[i] = row
	}
	return out, nil
}

// Argmax returns the index of the largest value in row. Ties resolve to the
// lowest index, which makes it an exact inverse of OneHot.
func Argmax(row []float64) int {
	best := 0
	for i, v := range row {
		if v > row[best] {
			best = i
		}
	}
	return best
}

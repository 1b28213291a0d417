package results

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Summary describes one metric series across runs.
type Summary struct {
	Name   string
	Count  int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Summarize computes distribution statistics for a metric series. The
// standard deviation is NaN for a single observation, mirroring gonum.
func Summarize(name string, values []float64) (*Summary, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("no observations for metric %s", name)
	}

	s := &Summary{
		Name:   name,
		Count:  len(values),
		Mean:   stat.Mean(values, nil),
		StdDev: stat.StdDev(values, nil),
		Min:    math.Inf(1),
		Max:    math.Inf(-1),
	}
	for _, v := range values {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	return s, nil
}

// ClassBalance computes per-class sample fractions from a one-hot label
// matrix. Useful as a recorded metric to catch skewed splits.
func ClassBalance(labels [][]float64) []float64 {
	if len(labels) == 0 {
		return nil
	}
	fractions := make([]float64, len(labels[0]))
	for _, row := range labels {
		for j, v := range row {
			if j < len(fractions) {
				fractions[j] += v
			}
		}
	}
	for j := range fractions {
		fractions[j] /= float64(len(labels))
	}
	return fractions
}

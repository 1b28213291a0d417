package textvec

import (
	"fmt"

	"github.com/ZanzyTHEbar/tensorprep/tprep/common"

	roaring "github.com/RoaringBitmap/roaring"
)

// MultiHot converts N variable-length token-id sequences into an N x vocabSize
// binary presence matrix. Entry [row][t] is 1 iff token id t appears anywhere
// in the row's sequence; multiplicity and position are discarded.
//
// Token ids >= vocabSize are silently ignored. That policy is inherited from
// upstream vocabulary truncation, which already collapsed rare ids, so they
// are not re-validated here. Negative ids are always an error. Callers that
// want strict bound checking should use MultiHotStrict.
func MultiHot(seqs [][]int, vocabSize int) ([][]float64, error) {
	return multiHot(seqs, vocabSize, false)
}

// MultiHotStrict behaves like MultiHot but fails with ErrVocabularyBound when
// any token id falls outside [0, vocabSize).
func MultiHotStrict(seqs [][]int, vocabSize int) ([][]float64, error) {
	return multiHot(seqs, vocabSize, true)
}

func multiHot(seqs [][]int, vocabSize int, strict bool) ([][]float64, error) {
	if len(seqs) == 0 {
		return nil, common.ErrEmptyInput
	}
	if vocabSize <= 0 {
		return nil, fmt.Errorf("vocabSize must be positive, got %d: %w", vocabSize, common.ErrShapeMismatch)
	}
	out := make([][]float64, len(seqs))
	for i, seq := range seqs {
		present := roaring.New()
		for _, t := range seq {
			if t < 0 {
				return nil, fmt.Errorf("negative token id %d at row %d: %w", t, i, common.ErrVocabularyBound)
			}
			if t >= vocabSize {
				if strict {
					return nil, fmt.Errorf("token id %d at row %d with bound %d: %w", t, i, vocabSize, common.ErrVocabularyBound)
				}
				continue
			}
			present.Add(uint32(t))
		}
		row := make([]float64, vocabSize)
		it := present.Iterator()
		for it.HasNext() {
			row[it.Next()] = 1.0
		}
		out[i] = row
	}
	return out, nil
}

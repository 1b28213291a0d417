package textvec

import (
	"fmt"

	"github.com/ZanzyTHEbar/tensorprep/tprep/common"
)

// PadID is the filler token id appended to short sequences. Id 0 is reserved
// for padding across the whole pipeline; vocabularies never assign it to a
// real token.
const PadID = 0

// PadSequences converts N variable-length sequences into an N x maxLen
// integer matrix.
//
// Truncation policy: sequences longer than maxLen keep their TRAILING maxLen
// tokens (truncation from the front). Shorter sequences are right-padded with
// PadID. Sequences of exactly maxLen pass through unchanged. Input sequences
// are never mutated; output rows are fresh slices.
func PadSequences(seqs [][]int, maxLen int) ([][]int, error) {
	if len(seqs) == 0 {
		return nil, common.ErrEmptyInput
	}
	if maxLen <= 0 {
		return nil, fmt.Errorf("maxLen must be positive, got %d: %w", maxLen, common.ErrShapeMismatch)
	}
	out := make([][]int, len(seqs))
	for i, seq := range seqs {
		row := make([]int, maxLen)
		if len(seq) >= maxLen {
			copy(row, seq[len(seq)-maxLen:])
		} else {
			copy(row, seq)
			for j := len(seq); j < maxLen; j++ {
				row[j] = PadID
			}
		}
		out[i] = row
	}
	return out, nil
}

package textvec

import (
	"testing"

	"github.com/ZanzyTHEbar/tensorprep/tprep/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequencePadding(t *testing.T) {
	tests := []struct {
		name string
		test func(t *testing.T)
	}{
		{"FrontTruncation", testPadFrontTruncation},
		{"RightPadding", testPadRightPadding},
		{"ExactLengthPassThrough", testPadExactLengthPassThrough},
		{"LengthInvariant", testPadLengthInvariant},
		{"InputNotMutated", testPadInputNotMutated},
		{"Validation", testPadValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.test)
	}
}

func testPadFrontTruncation(t *testing.T) {
	// [1,2,3,4,5] truncated to length 3 keeps the trailing tokens
	rows, err := PadSequences([][]int{{1, 2, 3, 4, 5}}, 3)
	require.NoError(t, err)

	assert.Equal(t, []int{3, 4, 5}, rows[0])
}

func testPadRightPadding(t *testing.T) {
	// [1,2,3,4,5] padded to length 7 gains trailing zeros
	rows, err := PadSequences([][]int{{1, 2, 3, 4, 5}}, 7)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3, 4, 5, 0, 0}, rows[0])

	// Prefix equals the source, suffix is all PadID
	seq := []int{8, 9}
	rows, err = PadSequences([][]int{seq}, 6)
	require.NoError(t, err)
	assert.Equal(t, seq, rows[0][:len(seq)])
	for _, v := range rows[0][len(seq):] {
		assert.Equal(t, PadID, v)
	}
}

func testPadExactLengthPassThrough(t *testing.T) {
	rows, err := PadSequences([][]int{{4, 5, 6}}, 3)
	require.NoError(t, err)

	assert.Equal(t, []int{4, 5, 6}, rows[0])
}

func testPadLengthInvariant(t *testing.T) {
	seqs := [][]int{
		{},
		{1},
		{1, 2, 3, 4},
		{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
	}

	for _, maxLen := range []int{1, 4, 9} {
		rows, err := PadSequences(seqs, maxLen)
		require.NoError(t, err)
		for i, row := range rows {
			assert.Len(t, row, maxLen, "row %d must have length exactly %d", i, maxLen)
		}
	}
}

func testPadInputNotMutated(t *testing.T) {
	seq := []int{1, 2, 3, 4, 5}
	rows, err := PadSequences([][]int{seq}, 3)
	require.NoError(t, err)

	rows[0][0] = 42
	assert.Equal(t, []int{1, 2, 3, 4, 5}, seq, "source sequences must remain untouched")
}

func testPadValidation(t *testing.T) {
	_, err := PadSequences(nil, 3)
	assert.ErrorIs(t, err, common.ErrEmptyInput)

	_, err = PadSequences([][]int{{1}}, 0)
	assert.ErrorIs(t, err, common.ErrShapeMismatch)
}

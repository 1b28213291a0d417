package textvec

import (
	"testing"

	"github.com/ZanzyTHEbar/tensorprep/tprep/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiHotVectorization(t *testing.T) {
	tests := []struct {
		name string
		test func(t *testing.T)
	}{
		{"PresenceOnly", testMultiHotPresenceOnly},
		{"DuplicateIdempotence", testMultiHotDuplicateIdempotence},
		{"OutOfBoundIgnored", testMultiHotOutOfBoundIgnored},
		{"StrictMode", testMultiHotStrictMode},
		{"NegativeIDs", testMultiHotNegativeIDs},
		{"Validation", testMultiHotValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.test)
	}
}

func testMultiHotPresenceOnly(t *testing.T) {
	// [3, 7, 3, 9] with bound 10: 1s at columns {3, 7, 9}, column 3 is 1 not 2
	rows, err := MultiHot([][]int{{3, 7, 3, 9}}, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Len(t, rows[0], 10)

	want := []float64{0, 0, 0, 1, 0, 0, 0, 1, 0, 1}
	assert.Equal(t, want, rows[0])
}

func testMultiHotDuplicateIdempotence(t *testing.T) {
	seq := []int{2, 4, 6, 8}
	doubled := append(append([]int{}, seq...), seq...)

	once, err := MultiHot([][]int{seq}, 10)
	require.NoError(t, err)
	twice, err := MultiHot([][]int{doubled}, 10)
	require.NoError(t, err)

	assert.Equal(t, once, twice, "vectorize(seq ++ seq) must equal vectorize(seq)")
}

func testMultiHotOutOfBoundIgnored(t *testing.T) {
	rows, err := MultiHot([][]int{{1, 99, 2}}, 5)
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 1, 1, 0, 0}, rows[0], "id 99 must be a silent no-op")
}

func testMultiHotStrictMode(t *testing.T) {
	_, err := MultiHotStrict([][]int{{1, 99, 2}}, 5)
	assert.ErrorIs(t, err, common.ErrVocabularyBound)

	rows, err := MultiHotStrict([][]int{{1, 2}}, 5)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 1, 0, 0}, rows[0])
}

func testMultiHotNegativeIDs(t *testing.T) {
	_, err := MultiHot([][]int{{-1}}, 5)
	assert.ErrorIs(t, err, common.ErrVocabularyBound)
}

func testMultiHotValidation(t *testing.T) {
	_, err := MultiHot(nil, 5)
	assert.ErrorIs(t, err, common.ErrEmptyInput)

	_, err = MultiHot([][]int{{1}}, 0)
	assert.ErrorIs(t, err, common.ErrShapeMismatch)
}

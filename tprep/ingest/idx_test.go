package ingest

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDXReading(t *testing.T) {
	tests := []struct {
		name string
		test func(t *testing.T)
	}{
		{"ReadImages", testIDXReadImages},
		{"ReadLabels", testIDXReadLabels},
		{"BadMagic", testIDXBadMagic},
		{"WrongRank", testIDXWrongRank},
		{"TruncatedPayload", testIDXTruncatedPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.test)
	}
}

func writeIDX(t *testing.T, name string, dtype byte, dims []int, payload []byte) string {
	t.Helper()
	buf := []byte{0, 0, dtype, byte(len(dims))}
	for _, d := range dims {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], uint32(d))
		buf = append(buf, b[:]...)
	}
	buf = append(buf, payload...)

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func testIDXReadImages(t *testing.T) {
	// 2 images of 2x3 pixels
	payload := []byte{
		1, 2, 3, 4, 5, 6,
		10, 20, 30, 40, 50, 60,
	}
	path := writeIDX(t, "images.idx3-ubyte", 0x08, []int{2, 2, 3}, payload)

	batch, err := ReadIDXImages(path)
	require.NoError(t, err)

	require.Len(t, batch, 2)
	assert.Equal(t, [][]uint8{{1, 2, 3}, {4, 5, 6}}, batch[0])
	assert.Equal(t, [][]uint8{{10, 20, 30}, {40, 50, 60}}, batch[1])
}

func testIDXReadLabels(t *testing.T) {
	path := writeIDX(t, "labels.idx1-ubyte", 0x08, []int{4}, []byte{7, 0, 9, 3})

	labels, err := ReadIDXLabels(path)
	require.NoError(t, err)

	assert.Equal(t, []int{7, 0, 9, 3}, labels)
}

func testIDXBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage")
	require.NoError(t, os.WriteFile(path, []byte{9, 9, 9, 9, 0, 0}, 0o644))

	_, err := ReadIDXImages(path)
	assert.ErrorIs(t, err, ErrNotIDX)

	// Unsupported element type
	path = writeIDX(t, "float.idx", 0x0D, []int{1}, []byte{0})
	_, err = ReadIDXLabels(path)
	assert.ErrorIs(t, err, ErrNotIDX)
}

func testIDXWrongRank(t *testing.T) {
	// A label file handed to the image reader
	path := writeIDX(t, "labels.idx1-ubyte", 0x08, []int{2}, []byte{1, 2})

	_, err := ReadIDXImages(path)
	assert.ErrorIs(t, err, ErrNotIDX)
}

func testIDXTruncatedPayload(t *testing.T) {
	// Header promises 2x2x2 elements, payload carries 5 of 8
	path := writeIDX(t, "short.idx3-ubyte", 0x08, []int{2, 2, 2}, []byte{1, 2, 3, 4, 5})

	_, err := ReadIDXImages(path)
	assert.ErrorIs(t, err, ErrIDXTruncated)
}

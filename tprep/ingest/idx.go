package ingest

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ZanzyTHEbar/tensorprep/tprep/tensor"
)

// IDX container errors
var (
	ErrNotIDX       = errors.New("not an idx file")
	ErrIDXTruncated = errors.New("idx payload shorter than header dimensions")
)

// idxDType is the only element type the digit dataset uses.
const idxDTypeUint8 = 0x08

// ReadIDXImages reads a 3-dimensional uint8 IDX file (the digit image
// container format: big-endian magic, count, height, width, then raw
// intensities) into an ImageBatch.
func ReadIDXImages(path string) (tensor.ImageBatch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open idx images: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	dims, err := readIDXHeader(r, 3)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	count, height, width := dims[0], dims[1], dims[2]

	batch := make(tensor.ImageBatch, count)
	for i := 0; i < count; i++ {
		sample := make([][]uint8, height)
		for r2 := 0; r2 < height; r2++ {
			row := make([]uint8, width)
			if _, err := io.ReadFull(r, row); err != nil {
				return nil, fmt.Errorf("%s sample %d: %w", path, i, ErrIDXTruncated)
			}
			sample[r2] = row
		}
		batch[i] = sample
	}
	return batch, nil
}

// ReadIDXLabels reads a 1-dimensional uint8 IDX file into an int label
// vector, positionally aligned with the matching image file.
func ReadIDXLabels(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open idx labels: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	dims, err := readIDXHeader(r, 1)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	raw := make([]uint8, dims[0])
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("%s: %w", path, ErrIDXTruncated)
	}
	labels := make([]int, len(raw))
	for i, v := range raw {
		labels[i] = int(v)
	}
	return labels, nil
}

// readIDXHeader validates the magic number and returns the dimension sizes.
func readIDXHeader(r io.Reader, wantDims int) ([]int, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("read magic: %w", ErrNotIDX)
	}
	if magic[0] != 0 || magic[1] != 0 {
		return nil, fmt.Errorf("bad magic prefix %v: %w", magic[:2], ErrNotIDX)
	}
	if magic[2] != idxDTypeUint8 {
		return nil, fmt.Errorf("unsupported element type 0x%02x: %w", magic[2], ErrNotIDX)
	}
	ndims := int(magic[3])
	if ndims != wantDims {
		return nil, fmt.Errorf("rank %d, want %d: %w", ndims, wantDims, ErrNotIDX)
	}

	dims := make([]int, ndims)
	for i := range dims {
		var d uint32
		if err := binary.Read(r, binary.BigEndian, &d); err != nil {
			return nil, fmt.Errorf("read dimension %d: %w", i, ErrNotIDX)
		}
		dims[i] = int(d)
	}
	return dims, nil
}

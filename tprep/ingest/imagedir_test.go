package ingest

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	internal "github.com/ZanzyTHEbar/tensorprep/tprep"
	"github.com/ZanzyTHEbar/tensorprep/tprep/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageDirectoryScan(t *testing.T) {
	tests := []struct {
		name string
		test func(t *testing.T)
	}{
		{"ClassOrderAndLabels", testScanClassOrderAndLabels},
		{"PixelValues", testScanPixelValues},
		{"IgnoreFile", testScanIgnoreFile},
		{"EmptyRoot", testScanEmptyRoot},
		{"Rotations", testRotations},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.test)
	}
}

func writeGrayPNG(t *testing.T, path string, pixels [][]uint8) {
	t.Helper()
	h, w := len(pixels), len(pixels[0])
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: pixels[y][x]})
		}
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func testScanClassOrderAndLabels(t *testing.T) {
	root := t.TempDir()
	px := [][]uint8{{0, 128}, {255, 64}}

	writeGrayPNG(t, filepath.Join(root, "three", "a.png"), px)
	writeGrayPNG(t, filepath.Join(root, "three", "b.png"), px)
	writeGrayPNG(t, filepath.Join(root, "seven", "a.png"), px)

	set, err := ScanClassDirs(context.Background(), root, 4)
	require.NoError(t, err)

	// Classes sort lexicographically: seven < three
	assert.Equal(t, []string{"seven", "three"}, set.Classes)
	assert.Equal(t, []int{0, 1, 1}, set.Labels)
	assert.Equal(t, 3, set.Images.Count())
}

func testScanPixelValues(t *testing.T) {
	root := t.TempDir()
	px := [][]uint8{{10, 20, 30}, {40, 50, 60}}
	writeGrayPNG(t, filepath.Join(root, "digit", "x.png"), px)

	set, err := ScanClassDirs(context.Background(), root, 1)
	require.NoError(t, err)

	require.Equal(t, 1, set.Images.Count())
	assert.Equal(t, px, set.Images[0], "gray PNG round trip must be lossless")
}

func testScanIgnoreFile(t *testing.T) {
	root := t.TempDir()
	px := [][]uint8{{1}}

	writeGrayPNG(t, filepath.Join(root, "digit", "keep.png"), px)
	writeGrayPNG(t, filepath.Join(root, "digit", "draft_skip.png"), px)
	require.NoError(t, os.WriteFile(
		filepath.Join(root, internal.DefaultIgnoreFile),
		[]byte("draft_*\n"),
		0o644,
	))

	set, err := ScanClassDirs(context.Background(), root, 2)
	require.NoError(t, err)

	assert.Equal(t, 1, set.Images.Count(), "ignored files must not be decoded")
}

func testScanEmptyRoot(t *testing.T) {
	_, err := ScanClassDirs(context.Background(), t.TempDir(), 2)
	assert.ErrorIs(t, err, common.ErrEmptyInput)

	_, err = ScanClassDirs(context.Background(), "", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dataset root")
}

func testRotations(t *testing.T) {
	px := [][]uint8{
		{1, 2, 3},
		{4, 5, 6},
	}

	assert.Equal(t, [][]uint8{{4, 1}, {5, 2}, {6, 3}}, rotate90(px))
	assert.Equal(t, [][]uint8{{6, 5, 4}, {3, 2, 1}}, rotate180(px))
	assert.Equal(t, [][]uint8{{3, 6}, {2, 5}, {1, 4}}, rotate270(px))
}

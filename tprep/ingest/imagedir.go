package ingest

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	internal "github.com/ZanzyTHEbar/tensorprep/tprep"
	"github.com/ZanzyTHEbar/tensorprep/tprep/common"
	"github.com/ZanzyTHEbar/tensorprep/tprep/tensor"

	exiflib "github.com/rwcarlsen/goexif/exif"
	ignore "github.com/sabhiram/go-gitignore"
	"github.com/sourcegraph/conc/pool"
)

// ClassImageSet is a labeled grayscale image corpus read from per-class
// subdirectories. Labels index into Classes, which is sorted so class ids are
// stable across runs.
type ClassImageSet struct {
	Images  tensor.ImageBatch
	Labels  []int
	Classes []string
}

// ScanClassDirs reads every image under root/<class>/ into a ClassImageSet.
// Subdirectory names become class names in sorted order. Decoding runs on a
// bounded worker pool; output ordering is independent of scheduling because
// each sample writes to its own preallocated slot.
func ScanClassDirs(ctx context.Context, root string, maxWorkers int) (*ClassImageSet, error) {
	if err := validation.ValidateRequiredString(root, "dataset root"); err != nil {
		return nil, err
	}
	if maxWorkers <= 0 {
		maxWorkers = min(max(runtime.NumCPU()*2, 4), 32)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read dataset root %s: %w", root, err)
	}

	var classes []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			classes = append(classes, e.Name())
		}
	}
	sort.Strings(classes)
	if len(classes) == 0 {
		return nil, common.ErrEmptyInput
	}

	ignored := loadIgnoreMatcher(root)

	type job struct {
		path  string
		label int
	}
	var jobs []job
	for label, class := range classes {
		dir := filepath.Join(root, class)
		files, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("read class directory %s: %w", dir, err)
		}
		names := make([]string, 0, len(files))
		for _, f := range files {
			if f.IsDir() || !isImageFile(f.Name()) {
				continue
			}
			path := filepath.Join(dir, f.Name())
			if ignored != nil && ignored.MatchesPath(path) {
				slog.Debug("Ignoring image file", "path", path)
				continue
			}
			names = append(names, f.Name())
		}
		sort.Strings(names)
		for _, name := range names {
			jobs = append(jobs, job{path: filepath.Join(dir, name), label: label})
		}
	}
	if len(jobs) == 0 {
		return nil, common.ErrEmptyInput
	}

	set := &ClassImageSet{
		Images:  make(tensor.ImageBatch, len(jobs)),
		Labels:  make([]int, len(jobs)),
		Classes: classes,
	}

	p := pool.New().WithMaxGoroutines(maxWorkers).WithContext(ctx).WithCancelOnError()
	for i, j := range jobs {
		p.Go(func(ctx context.Context) error {
			img, err := decodeGrayscale(j.path)
			if err != nil {
				return fmt.Errorf("decode %s: %w", j.path, err)
			}
			set.Images[i] = img
			set.Labels[i] = j.label
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	slog.Info("Image corpus loaded",
		"root", root,
		"samples", len(jobs),
		"classes", len(classes))

	return set, nil
}

func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg":
		return true
	default:
		return false
	}
}

// loadIgnoreMatcher compiles the dataset ignore file at root, if present.
func loadIgnoreMatcher(root string) *ignore.GitIgnore {
	path := filepath.Join(root, internal.DefaultIgnoreFile)
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	matcher, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		slog.Warn("Failed to compile ignore file",
			"path", path,
			"error", err)
		return nil
	}
	return matcher
}

// decodeGrayscale decodes one image file into raw grayscale intensities,
// honoring the EXIF orientation tag when the container carries one.
func decodeGrayscale(path string) ([][]uint8, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	pixels := toGray(img)
	switch exifOrientation(data) {
	case 3:
		pixels = rotate180(pixels)
	case 6:
		pixels = rotate90(pixels)
	case 8:
		pixels = rotate270(pixels)
	}
	return pixels, nil
}

// exifOrientation returns the EXIF orientation value, or 1 (upright) when
// the image carries no usable EXIF block.
func exifOrientation(data []byte) int {
	x, err := exiflib.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exiflib.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return v
}

func toGray(img image.Image) [][]uint8 {
	bounds := img.Bounds()
	h, w := bounds.Dy(), bounds.Dx()
	out := make([][]uint8, h)
	for y := 0; y < h; y++ {
		row := make([]uint8, w)
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// ITU-R BT.601 luma, matching image/color.GrayModel
			row[x] = uint8((19595*r + 38470*g + 7471*b + 1<<15) >> 24)
		}
		out[y] = row
	}
	return out
}

func rotate90(px [][]uint8) [][]uint8 {
	h := len(px)
	if h == 0 {
		return px
	}
	w := len(px[0])
	out := make([][]uint8, w)
	for y := 0; y < w; y++ {
		row := make([]uint8, h)
		for x := 0; x < h; x++ {
			row[x] = px[h-1-x][y]
		}
		out[y] = row
	}
	return out
}

func rotate180(px [][]uint8) [][]uint8 {
	return rotate90(rotate90(px))
}

func rotate270(px [][]uint8) [][]uint8 {
	return rotate90(rotate180(px))
}

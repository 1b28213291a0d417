package ingest

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/tensorprep/tprep/common"
)

var validation = common.NewValidationUtils()

// ReviewSet is a labeled sentiment corpus: texts positionally aligned with
// binary labels (1 = positive, 0 = negative).
type ReviewSet struct {
	Texts  []string
	Labels []int
}

// LoadReviewDirs reads a pos/ and neg/ directory pair under root into a
// ReviewSet. Files are read in sorted name order so repeated runs produce
// identical row ordering. Entries matched by the ignore file are skipped.
func LoadReviewDirs(root string) (*ReviewSet, error) {
	if err := validation.ValidateRequiredString(root, "review root"); err != nil {
		return nil, err
	}
	ignored := loadIgnoreMatcher(root)

	set := &ReviewSet{}
	for _, class := range []struct {
		dir   string
		label int
	}{
		{"neg", 0},
		{"pos", 1},
	} {
		dir := filepath.Join(root, class.dir)
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("read review directory %s: %w", dir, err)
		}

		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
				continue
			}
			path := filepath.Join(dir, e.Name())
			if ignored != nil && ignored.MatchesPath(path) {
				slog.Debug("Ignoring review file", "path", path)
				continue
			}
			names = append(names, e.Name())
		}
		sort.Strings(names)

		for _, name := range names {
			data, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				return nil, fmt.Errorf("read review %s: %w", name, err)
			}
			set.Texts = append(set.Texts, string(data))
			set.Labels = append(set.Labels, class.label)
		}
	}

	if len(set.Texts) == 0 {
		return nil, common.ErrEmptyInput
	}

	slog.Info("Review corpus loaded",
		"root", root,
		"samples", len(set.Texts))

	return set, nil
}

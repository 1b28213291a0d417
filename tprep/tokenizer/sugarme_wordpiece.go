package tokenizer

import (
	"fmt"
	"os"
	"path/filepath"

	tk "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/model/wordpiece"
	"github.com/sugarme/tokenizer/normalizer"
	"github.com/sugarme/tokenizer/pretokenizer"
)

// SugarWordPiece wraps sugarme/tokenizer WordPiece (BERT-style) for subword
// case studies. Output ids come from the WordPiece vocab file, not from a
// frequency-ranked Vocabulary, so callers own the bound they pass downstream.
type SugarWordPiece struct {
	t *tk.Tokenizer
}

// NewSugarWordPiece loads vocab.txt and builds a BERT WordPiece tokenizer.
// vocabPath may point at the vocab file itself or at its directory.
func NewSugarWordPiece(vocabPath string) (*SugarWordPiece, error) {
	if fi, err := os.Stat(vocabPath); err == nil && fi.IsDir() {
		vocabPath = filepath.Join(vocabPath, "vocab.txt")
	}
	if _, err := os.Stat(vocabPath); err != nil {
		return nil, fmt.Errorf("wordpiece vocab %s: %w", vocabPath, ErrUnsupported)
	}

	wp, err := wordpiece.NewWordPieceFromFile(vocabPath, "[UNK]")
	if err != nil {
		return nil, fmt.Errorf("load wordpiece vocab: %w", err)
	}

	t := tk.NewTokenizer(wp)

	// Basic normalizer and pre-tokenizer similar to BERT
	t.WithNormalizer(normalizer.NewBertNormalizer(true, true, true, true))
	t.WithPreTokenizer(pretokenizer.NewBertPreTokenizer())

	return &SugarWordPiece{t: t}, nil
}

// Tokenize converts each text into a variable-length subword-id sequence.
func (s *SugarWordPiece) Tokenize(texts []string) ([][]int, error) {
	out := make([][]int, len(texts))
	for i, txt := range texts {
		enc, err := s.t.Encode(tk.NewSingleEncodeInput(tk.NewInputSequence(txt)), false)
		if err != nil {
			return nil, fmt.Errorf("encode text %d: %w", i, err)
		}
		ids := enc.GetIds()
		row := make([]int, len(ids))
		copy(row, ids)
		out[i] = row
	}
	return out, nil
}

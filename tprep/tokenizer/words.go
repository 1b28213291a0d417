package tokenizer

import (
	"strings"
	"unicode"

	"github.com/ZanzyTHEbar/tensorprep/tprep/textvec"
)

// SplitWords lowercases text and splits it on anything that is not a letter,
// digit, or apostrophe. This mirrors the word-level filtering the review
// corpus was tokenized with upstream, so vocabularies built here line up with
// the ids the dataset source would have produced.
func SplitWords(text string) []string {
	return splitWords(text, true)
}

func splitWords(text string, lowercase bool) []string {
	if lowercase {
		text = strings.ToLower(text)
	}
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})
}

// WordTokenizer maps raw text to vocabulary-bounded word ids. Unknown and
// beyond-bound words collapse to the vocabulary's OOV id, so every emitted id
// is strictly below the configured bound.
type WordTokenizer struct {
	vocab     *textvec.Vocabulary
	lowercase bool
}

// NewWordTokenizer wraps a frozen vocabulary as a Tokenizer. Text is
// lowercased before splitting, matching SplitWords.
func NewWordTokenizer(vocab *textvec.Vocabulary) *WordTokenizer {
	return &WordTokenizer{vocab: vocab, lowercase: true}
}

// FitWordTokenizer builds a bounded vocabulary over the corpus and wraps it
// as a Tokenizer. Splitting honors cfg.Lowercase both while fitting and when
// tokenizing, so case handling stays consistent across the two passes.
func FitWordTokenizer(texts []string, cfg Config) (*WordTokenizer, error) {
	builder, err := textvec.NewVocabularyBuilder(cfg.VocabularyBound)
	if err != nil {
		return nil, err
	}
	for _, t := range texts {
		builder.AddDocument(splitWords(t, cfg.Lowercase))
	}
	vocab, err := builder.Build()
	if err != nil {
		return nil, err
	}
	return &WordTokenizer{vocab: vocab, lowercase: cfg.Lowercase}, nil
}

// Bound returns the exclusive upper limit for emitted ids.
func (w *WordTokenizer) Bound() int { return w.vocab.Bound() }

// Vocab returns the tokenizer's frozen vocabulary.
func (w *WordTokenizer) Vocab() *textvec.Vocabulary { return w.vocab }

// Tokenize converts each text into a word-id sequence.
func (w *WordTokenizer) Tokenize(texts []string) ([][]int, error) {
	out := make([][]int, len(texts))
	for i, t := range texts {
		out[i] = w.vocab.Encode(splitWords(t, w.lowercase))
	}
	return out, nil
}

package tokenizer

import (
	"errors"
)

// Tokenizer converts raw text into integer token-id sequences. Fixed-length
// shaping (padding, truncation) is deliberately not part of this contract;
// that belongs to the sequence padder downstream.
type Tokenizer interface {
	Tokenize(texts []string) ([][]int, error)
}

// Config holds basic tokenizer settings
type Config struct {
	VocabularyBound int
	Lowercase       bool
}

// ErrUnsupported indicates the tokenizer could not be initialized
var ErrUnsupported = errors.New("unsupported tokenizer configuration")

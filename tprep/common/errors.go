package common

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Common error types used across preparation packages
var (
	ErrShapeMismatch   = errors.New("input shape incompatible with requested target shape")
	ErrLabelOutOfRange = errors.New("label value outside [0, numClasses)")
	ErrVocabularyBound = errors.New("token id outside configured vocabulary bound")
	ErrEmptyInput      = errors.New("input must contain at least one sample")
)

// ValidationUtils provides common validation utilities used across packages
type ValidationUtils struct{}

// NewValidationUtils creates a new ValidationUtils instance
func NewValidationUtils() *ValidationUtils {
	return &ValidationUtils{}
}

// ValidateContextCancellation checks if context is cancelled and returns appropriate error
func (vu *ValidationUtils) ValidateContextCancellation(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// ValidateRequiredString validates that a string is not empty
func (vu *ValidationUtils) ValidateRequiredString(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	return nil
}

// ValidateSampleCount validates that a batch carries at least one sample
func (vu *ValidationUtils) ValidateSampleCount(count int) error {
	if count == 0 {
		return ErrEmptyInput
	}
	return nil
}

// WrapError wraps an error with additional context
func WrapError(err error, message string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	context := fmt.Sprintf(message, args...)
	return fmt.Errorf("%s: %w", context, err)
}

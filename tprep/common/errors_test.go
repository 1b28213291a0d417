package common

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationUtils(t *testing.T) {
	tests := []struct {
		name string
		test func(t *testing.T)
	}{
		{"ContextCancellation", testContextCancellation},
		{"RequiredString", testRequiredString},
		{"SampleCount", testSampleCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.test)
	}
}

func testContextCancellation(t *testing.T) {
	vu := NewValidationUtils()

	assert.NoError(t, vu.ValidateContextCancellation(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, vu.ValidateContextCancellation(ctx), context.Canceled)
}

func testRequiredString(t *testing.T) {
	vu := NewValidationUtils()

	assert.NoError(t, vu.ValidateRequiredString("/data/reviews", "review root"))

	err := vu.ValidateRequiredString("   ", "review root")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "review root")
}

func testSampleCount(t *testing.T) {
	vu := NewValidationUtils()

	assert.NoError(t, vu.ValidateSampleCount(1))
	assert.ErrorIs(t, vu.ValidateSampleCount(0), ErrEmptyInput)
}

func TestWrapError(t *testing.T) {
	assert.NoError(t, WrapError(nil, "ignored"))

	wrapped := WrapError(ErrShapeMismatch, "normalize %d samples", 3)
	require.Error(t, wrapped)
	assert.ErrorIs(t, wrapped, ErrShapeMismatch, "wrapping must preserve the sentinel")
	assert.Contains(t, wrapped.Error(), "normalize 3 samples")
}

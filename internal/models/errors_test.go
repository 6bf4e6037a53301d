package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationError_Is(t *testing.T) {
	err := NewGenerationError(CodeNoVoicingsFound, "nothing fits", []string{"relax the span"})

	assert.True(t, errors.Is(err, ErrNoVoicingsFound))
	assert.False(t, errors.Is(err, ErrChordParseFailed))
	assert.Equal(t, "NO_VOICINGS_FOUND: nothing fits", err.Error())
}

func TestAsGenerationError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("pipeline: %w", NewGenerationError(CodeChordParseFailed, "bad chord", nil))

	genErr, ok := AsGenerationError(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeChordParseFailed, genErr.Code)
	assert.NotNil(t, genErr.Suggestions, "suggestions should never be nil")

	_, ok = AsGenerationError(errors.New("boom"))
	assert.False(t, ok)
}

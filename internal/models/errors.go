package models

import (
	"errors"
	"strings"
)

// ErrorCode is the machine-readable code of a voicing pipeline failure
type ErrorCode string

const (
	CodeChordParseFailed   ErrorCode = "CHORD_PARSE_FAILED"
	CodeConstraintConflict ErrorCode = "CONSTRAINT_CONFLICT"
	CodeNoVoicingsFound    ErrorCode = "NO_VOICINGS_FOUND"
)

// Sentinels for errors.Is matching against a GenerationError
var (
	ErrChordParseFailed   = errors.New("chord parse failed")
	ErrConstraintConflict = errors.New("constraint conflict")
	ErrNoVoicingsFound    = errors.New("no voicings found")
)

// GenerationError is the terminal, caller-recoverable failure of the voicing pipeline.
// Anything that is not a GenerationError is an internal fault.
type GenerationError struct {
	Code        ErrorCode `json:"code"`
	Message     string    `json:"message"`
	Suggestions []string  `json:"suggestions"`
}

// NewGenerationError builds a GenerationError, never leaving Suggestions nil
func NewGenerationError(code ErrorCode, message string, suggestions []string) *GenerationError {
	if suggestions == nil {
		suggestions = []string{}
	}
	return &GenerationError{
		Code:        code,
		Message:     message,
		Suggestions: suggestions,
	}
}

func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

// Is lets errors.Is match the sentinel for the error's code
func (e *GenerationError) Is(target error) bool {
	switch e.Code {
	case CodeChordParseFailed:
		return target == ErrChordParseFailed
	case CodeConstraintConflict:
		return target == ErrConstraintConflict
	case CodeNoVoicingsFound:
		return target == ErrNoVoicingsFound
	}
	return false
}

// AsGenerationError unwraps err into a GenerationError if it is one
func AsGenerationError(err error) (*GenerationError, bool) {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr, true
	}
	return nil, false
}

package coverletters

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a cover letter id has no corresponding record.
	ErrNotFound = errors.New("cover letter not found")
	// ErrInvalidInput is returned for malformed caller input.
	ErrInvalidInput = errors.New("invalid input")
)

// FieldError names one offending field and why it was rejected.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError lists every offending field of a rejected document.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

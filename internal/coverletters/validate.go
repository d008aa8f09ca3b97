package coverletters

import (
	"fmt"
	"strings"
)

const (
	maxTitleLen   = 200
	maxContentLen = 50_000
)

// Validate checks a cover letter against the schema and returns a
// *ValidationError listing every offending field, or nil.
func Validate(d CoverLetter) error {
	var fields []FieldError

	if strings.TrimSpace(d.Title) == "" {
		fields = append(fields, FieldError{Field: "title", Reason: "required"})
	} else if len(d.Title) > maxTitleLen {
		fields = append(fields, FieldError{Field: "title", Reason: fmt.Sprintf("longer than %d characters", maxTitleLen)})
	}

	if len(d.Content) > maxContentLen {
		fields = append(fields, FieldError{Field: "content", Reason: fmt.Sprintf("longer than %d characters", maxContentLen)})
	}

	if !d.Template.Valid() {
		fields = append(fields, FieldError{Field: "template", Reason: fmt.Sprintf("unknown template %q", d.Template)})
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

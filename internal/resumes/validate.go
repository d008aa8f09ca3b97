package resumes

import (
	"fmt"
	"strings"
)

const (
	maxTitleLen        = 200
	maxSectionTitleLen = 120
	maxSections        = 50
	maxItemsPerSection = 100
)

// Validate checks a resume against the schema and returns a *ValidationError
// listing every offending field, or nil. Callers merging partial updates must
// validate the merged document, not the partial payload.
func Validate(r Resume) error {
	var fields []FieldError

	if strings.TrimSpace(r.Title) == "" {
		fields = append(fields, FieldError{Field: "title", Reason: "required"})
	} else if len(r.Title) > maxTitleLen {
		fields = append(fields, FieldError{Field: "title", Reason: fmt.Sprintf("longer than %d characters", maxTitleLen)})
	}

	if len(r.Sections) > maxSections {
		fields = append(fields, FieldError{Field: "sections", Reason: fmt.Sprintf("more than %d sections", maxSections)})
	}

	seen := make(map[string]struct{}, len(r.Sections))
	for i, sec := range r.Sections {
		prefix := fmt.Sprintf("sections[%d]", i)
		if sec.ID == "" {
			fields = append(fields, FieldError{Field: prefix + ".id", Reason: "required"})
		} else if _, dup := seen[sec.ID]; dup {
			fields = append(fields, FieldError{Field: prefix + ".id", Reason: "duplicate section id"})
		} else {
			seen[sec.ID] = struct{}{}
		}
		if !sec.Type.Valid() {
			fields = append(fields, FieldError{Field: prefix + ".type", Reason: fmt.Sprintf("unknown type %q", sec.Type)})
		}
		if len(sec.Title) > maxSectionTitleLen {
			fields = append(fields, FieldError{Field: prefix + ".title", Reason: fmt.Sprintf("longer than %d characters", maxSectionTitleLen)})
		}
		if len(sec.Items) > maxItemsPerSection {
			fields = append(fields, FieldError{Field: prefix + ".items", Reason: fmt.Sprintf("more than %d items", maxItemsPerSection)})
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

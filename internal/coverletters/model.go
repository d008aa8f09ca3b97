package coverletters

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// TemplateKind enumerates the supported cover letter layouts.
type TemplateKind string

const (
	TemplateClassic  TemplateKind = "classic"
	TemplateModern   TemplateKind = "modern"
	TemplateMinimal  TemplateKind = "minimal"
	TemplateCreative TemplateKind = "creative"
)

// Valid reports whether t is a known template.
func (t TemplateKind) Valid() bool {
	switch t {
	case TemplateClassic, TemplateModern, TemplateMinimal, TemplateCreative:
		return true
	}
	return false
}

// Metadata carries bookkeeping stamped on every persisted mutation.
// Word and character counts are derived from the content on each save.
type Metadata struct {
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	LastEdited time.Time `json:"lastEdited"`
	Version    int       `json:"version"`
	WordCount  int       `json:"wordCount"`
	CharCount  int       `json:"charCount"`
}

// CoverLetter is the durable unit of storage for cover letter documents.
type CoverLetter struct {
	ID       string       `json:"id"`
	UserID   string       `json:"userId,omitempty"`
	Title    string       `json:"title"`
	Content  string       `json:"content"`
	Template TemplateKind `json:"template"`
	Meta     Metadata     `json:"metadata"`
}

// New constructs a cover letter with a fresh id and initial metadata.
func New(userID, title, content string, template TemplateKind, now time.Time) CoverLetter {
	if template == "" {
		template = TemplateClassic
	}
	doc := CoverLetter{
		ID:       uuid.NewString(),
		UserID:   userID,
		Title:    title,
		Content:  content,
		Template: template,
		Meta: Metadata{
			CreatedAt:  now,
			UpdatedAt:  now,
			LastEdited: now,
			Version:    1,
		},
	}
	doc.Meta.WordCount, doc.Meta.CharCount = countContent(content)
	return doc
}

// Stamped returns a copy with bumped version, refreshed timestamps, and
// recomputed word/character counts.
func (d CoverLetter) Stamped(now time.Time) CoverLetter {
	out := d
	out.Meta.Version = d.Meta.Version + 1
	out.Meta.UpdatedAt = now
	out.Meta.LastEdited = now
	out.Meta.WordCount, out.Meta.CharCount = countContent(d.Content)
	return out
}

func countContent(content string) (words, chars int) {
	return len(strings.Fields(content)), utf8.RuneCountInString(content)
}

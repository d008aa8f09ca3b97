package resumes

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SectionType enumerates the supported resume section kinds.
type SectionType string

const (
	SectionExperience     SectionType = "experience"
	SectionEducation      SectionType = "education"
	SectionSkills         SectionType = "skills"
	SectionProjects       SectionType = "projects"
	SectionSummary        SectionType = "summary"
	SectionCertifications SectionType = "certifications"
	SectionLanguages      SectionType = "languages"
	SectionCustom         SectionType = "custom"
)

// Valid reports whether t is a known section type.
func (t SectionType) Valid() bool {
	switch t {
	case SectionExperience, SectionEducation, SectionSkills, SectionProjects,
		SectionSummary, SectionCertifications, SectionLanguages, SectionCustom:
		return true
	}
	return false
}

// Section is an ordered, typed group of opaque items within a resume.
type Section struct {
	ID    string            `json:"id"`
	Type  SectionType       `json:"type"`
	Title string            `json:"title"`
	Items []json.RawMessage `json:"items"`
	Order int               `json:"order"`
}

// Metadata carries bookkeeping stamped on every persisted mutation.
type Metadata struct {
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	LastEdited   time.Time `json:"lastEdited"`
	Version      int       `json:"version"`
	SectionCount int       `json:"sectionCount"`
}

// Resume is the durable unit of storage for resume documents.
type Resume struct {
	ID       string    `json:"id"`
	UserID   string    `json:"userId,omitempty"`
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
	Meta     Metadata  `json:"metadata"`
}

// New constructs a resume with a fresh id and initial metadata (version 1).
func New(userID, title string, sections []Section, now time.Time) Resume {
	r := Resume{
		ID:       uuid.NewString(),
		UserID:   userID,
		Title:    title,
		Sections: NormalizeSections(sections),
		Meta: Metadata{
			CreatedAt:  now,
			UpdatedAt:  now,
			LastEdited: now,
			Version:    1,
		},
	}
	r.Meta.SectionCount = len(r.Sections)
	return r
}

// Stamped returns a copy with bumped version and refreshed mutation timestamps.
// Section orders are re-normalized so stored documents always carry dense orders.
func (r Resume) Stamped(now time.Time) Resume {
	out := r
	out.Sections = NormalizeSections(r.Sections)
	out.Meta.Version = r.Meta.Version + 1
	out.Meta.UpdatedAt = now
	out.Meta.LastEdited = now
	out.Meta.SectionCount = len(out.Sections)
	return out
}

// Clone returns a deep copy safe to mutate independently.
func (r Resume) Clone() Resume {
	out := r
	out.Sections = make([]Section, len(r.Sections))
	for i, sec := range r.Sections {
		cp := sec
		cp.Items = make([]json.RawMessage, len(sec.Items))
		for j, item := range sec.Items {
			cp.Items[j] = append(json.RawMessage(nil), item...)
		}
		out.Sections[i] = cp
	}
	return out
}

// NormalizeSections assigns missing section ids and makes order values dense,
// reflecting array position. Existing ids are preserved.
func NormalizeSections(sections []Section) []Section {
	out := make([]Section, len(sections))
	for i, sec := range sections {
		if sec.ID == "" {
			sec.ID = uuid.NewString()
		}
		if sec.Items == nil {
			sec.Items = []json.RawMessage{}
		}
		sec.Order = i
		out[i] = sec
	}
	return out
}

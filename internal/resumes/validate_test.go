package resumes

import (
	"strings"
	"testing"
	"time"
)

func TestValidateAcceptsNormalizedDocument(t *testing.T) {
	doc := New("user-1", "Engineer", []Section{
		{Type: SectionSummary, Title: "Summary"},
		{Type: SectionExperience, Title: "Experience"},
	}, time.Now().UTC())

	if err := Validate(doc); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateCollectsEveryFieldError(t *testing.T) {
	doc := Resume{
		Title: strings.Repeat("x", 201),
		Sections: []Section{
			{ID: "dup", Type: SectionSkills, Title: "Skills"},
			{ID: "dup", Type: "bogus", Title: "Bad"},
			{Type: SectionCustom, Title: "No id"},
		},
	}

	err := Validate(doc)
	ve, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected *ValidationError, got %v", err)
	}

	want := map[string]bool{
		"title":            false,
		"sections[1].id":   false,
		"sections[1].type": false,
		"sections[2].id":   false,
	}
	for _, fe := range ve.Fields {
		if _, tracked := want[fe.Field]; tracked {
			want[fe.Field] = true
		}
	}
	for field, seen := range want {
		if !seen {
			t.Fatalf("expected a field error for %s, got %+v", field, ve.Fields)
		}
	}
}

func TestValidateRejectsTooManySections(t *testing.T) {
	sections := make([]Section, maxSections+1)
	for i := range sections {
		sections[i] = Section{Type: SectionCustom, Title: "S"}
	}
	doc := New("user-1", "Engineer", sections, time.Now().UTC())

	err := Validate(doc)
	ve, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	found := false
	for _, fe := range ve.Fields {
		if fe.Field == "sections" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected sections field error, got %+v", ve.Fields)
	}
}

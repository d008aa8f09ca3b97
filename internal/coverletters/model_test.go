package coverletters

import (
	"testing"
	"time"
)

func TestNewDefaultsTemplateAndCounts(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := New("user-1", "Application", "Dear hiring manager, hello.", "", now)

	if doc.ID == "" {
		t.Fatalf("expected generated id")
	}
	if doc.Template != TemplateClassic {
		t.Fatalf("expected classic template default, got %q", doc.Template)
	}
	if doc.Meta.Version != 1 {
		t.Fatalf("expected version 1, got %d", doc.Meta.Version)
	}
	if doc.Meta.WordCount != 4 {
		t.Fatalf("expected word count 4, got %d", doc.Meta.WordCount)
	}
	if doc.Meta.CharCount != len("Dear hiring manager, hello.") {
		t.Fatalf("unexpected char count %d", doc.Meta.CharCount)
	}
}

func TestStampedRecountsContent(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := New("user-1", "Application", "one two", TemplateModern, created)

	doc.Content = "one two three four five"
	stamped := doc.Stamped(created.Add(time.Minute))

	if stamped.Meta.Version != 2 {
		t.Fatalf("expected version 2, got %d", stamped.Meta.Version)
	}
	if stamped.Meta.WordCount != 5 {
		t.Fatalf("expected word count 5, got %d", stamped.Meta.WordCount)
	}
	if stamped.Meta.CreatedAt != created {
		t.Fatalf("created-at must not move")
	}
}

func TestCountContentCountsRunes(t *testing.T) {
	doc := New("user-1", "Application", "héllo wörld", TemplateMinimal, time.Now().UTC())
	if doc.Meta.WordCount != 2 {
		t.Fatalf("expected word count 2, got %d", doc.Meta.WordCount)
	}
	if doc.Meta.CharCount != 11 {
		t.Fatalf("expected rune count 11, got %d", doc.Meta.CharCount)
	}
}

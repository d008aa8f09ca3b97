package coverletters

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"resume-studio-backend/internal/archive"
	localstore "resume-studio-backend/internal/shared/storage/object/local"
	"resume-studio-backend/internal/updates"
)

func newTestService(t *testing.T) (*Service, *updates.Broker) {
	t.Helper()
	broker := updates.NewBroker()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := &Service{
		Repo:      NewMemoryRepo(),
		Snapshots: archive.New(localstore.New(t.TempDir())),
		Updates:   broker,
		Now:       func() time.Time { return fixed },
	}
	return svc, broker
}

func TestServiceCreateRejectsUnknownTemplate(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), "user-1", CreateInput{
		Title:    "Application",
		Template: "fancy",
	})
	if _, ok := AsValidationError(err); !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceUpdatePublishesStampedLetter(t *testing.T) {
	svc, broker := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", CreateInput{Title: "Application", Content: "Dear team,"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	ch, cancel := broker.Subscribe(created.ID)
	defer cancel()

	content := "Dear team, I am writing to apply."
	updated, err := svc.Update(ctx, "user-1", created.ID, UpdatePatch{Content: &content})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Meta.Version != 2 {
		t.Fatalf("expected version 2, got %d", updated.Meta.Version)
	}
	if updated.Meta.WordCount != 7 {
		t.Fatalf("expected word count 7, got %d", updated.Meta.WordCount)
	}

	select {
	case u := <-ch:
		if u.Kind != updates.KindCoverLetter {
			t.Fatalf("expected cover letter update, got %q", u.Kind)
		}
		var published CoverLetter
		if err := json.Unmarshal(u.Doc, &published); err != nil {
			t.Fatalf("decode published doc: %v", err)
		}
		if published.Content != content {
			t.Fatalf("published content mismatch: %q", published.Content)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected an update on the broker")
	}
}

func TestServiceDuplicateResetsMetadata(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", CreateInput{Title: "Application", Template: TemplateModern})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	dup, err := svc.Duplicate(ctx, "user-1", created.ID)
	if err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	if dup.ID == created.ID {
		t.Fatalf("duplicate must get a new id")
	}
	if dup.Title != "Application (copy)" {
		t.Fatalf("unexpected duplicate title %q", dup.Title)
	}
	if dup.Template != TemplateModern {
		t.Fatalf("duplicate must keep the template, got %q", dup.Template)
	}
	if dup.Meta.Version != 1 {
		t.Fatalf("duplicate version must reset to 1, got %d", dup.Meta.Version)
	}
}

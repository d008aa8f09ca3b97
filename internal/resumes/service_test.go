package resumes

import (
	"context"
	"encoding/json"
	"io"
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

func TestServiceCreateGetRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", CreateInput{
		Title:    "Engineer",
		Sections: []Section{{Type: SectionSummary, Title: "Summary"}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := svc.Get(ctx, "user-1", created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Engineer" || got.Meta.Version != 1 {
		t.Fatalf("unexpected document: %+v", got)
	}

	if _, err := svc.Get(ctx, "user-2", created.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound across users, got %v", err)
	}
}

func TestServiceUpdateBumpsVersionAndPublishes(t *testing.T) {
	svc, broker := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", CreateInput{Title: "Engineer"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	ch, cancel := broker.Subscribe(created.ID)
	defer cancel()

	title := "Senior Engineer"
	updated, err := svc.Update(ctx, "user-1", created.ID, UpdatePatch{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Meta.Version != 2 {
		t.Fatalf("expected version 2, got %d", updated.Meta.Version)
	}

	select {
	case u := <-ch:
		if u.Kind != updates.KindResume || u.DocID != created.ID {
			t.Fatalf("unexpected update: %+v", u)
		}
		var published Resume
		if err := json.Unmarshal(u.Doc, &published); err != nil {
			t.Fatalf("decode published doc: %v", err)
		}
		if published.Title != title {
			t.Fatalf("expected published title %q, got %q", title, published.Title)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected an update on the broker")
	}
}

func TestServiceUpdateRejectsInvalidMerge(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", CreateInput{Title: "Engineer"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	empty := ""
	_, err = svc.Update(ctx, "user-1", created.ID, UpdatePatch{Title: &empty})
	if _, ok := AsValidationError(err); !ok {
		t.Fatalf("expected validation error, got %v", err)
	}

	// Stored document is untouched.
	got, err := svc.Get(ctx, "user-1", created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Engineer" || got.Meta.Version != 1 {
		t.Fatalf("rejected update must not persist: %+v", got)
	}
}

func TestServiceDuplicateResetsMetadata(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", CreateInput{
		Title:    "Engineer",
		Sections: []Section{{Type: SectionSkills, Title: "Skills"}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	title := "Engineer v2"
	if _, err := svc.Update(ctx, "user-1", created.ID, UpdatePatch{Title: &title}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	dup, err := svc.Duplicate(ctx, "user-1", created.ID)
	if err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	if dup.ID == created.ID {
		t.Fatalf("duplicate must get a new id")
	}
	if dup.Title != "Engineer v2 (copy)" {
		t.Fatalf("unexpected duplicate title %q", dup.Title)
	}
	if dup.Meta.Version != 1 {
		t.Fatalf("duplicate version must reset to 1, got %d", dup.Meta.Version)
	}
	if len(dup.Sections) != 1 || dup.Sections[0].Title != "Skills" {
		t.Fatalf("duplicate must carry sections: %+v", dup.Sections)
	}
}

func TestServiceApplyAgentUpdatePersistsWithoutPublishing(t *testing.T) {
	svc, broker := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", CreateInput{Title: "Engineer"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	ch, cancel := broker.Subscribe(created.ID)
	defer cancel()

	edited := created.Clone()
	edited.Title = "Edited by agent"
	edited.Meta.Version = 2
	raw, err := json.Marshal(edited)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if err := svc.ApplyAgentUpdate(ctx, raw); err != nil {
		t.Fatalf("ApplyAgentUpdate: %v", err)
	}

	got, err := svc.Get(ctx, "user-1", created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Edited by agent" || got.Meta.Version != 2 {
		t.Fatalf("agent update not persisted: %+v", got)
	}

	select {
	case u := <-ch:
		t.Fatalf("agent updates must not re-publish, got %+v", u)
	default:
	}
}

func TestServiceSnapshotRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", CreateInput{Title: "Engineer"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	rc, err := svc.OpenSnapshot(ctx, "user-1", created.ID, 1)
	if err != nil {
		t.Fatalf("OpenSnapshot: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	var snap Resume
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.ID != created.ID || snap.Meta.Version != 1 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestServiceSnapshotSurvivesDelete(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", CreateInput{Title: "Engineer"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(ctx, "user-1", created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	// Version history stays readable after deletion.
	rc, err := svc.OpenSnapshot(ctx, "user-1", created.ID, 1)
	if err != nil {
		t.Fatalf("OpenSnapshot after delete: %v", err)
	}
	rc.Close()
}

package updates

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestApplierDedupesStructurallyIdenticalUpdates(t *testing.T) {
	a := NewApplier()
	applied := 0
	a.Register(KindResume, func(ctx context.Context, docID string, doc json.RawMessage) error {
		applied++
		return nil
	})

	u := Update{Kind: KindResume, DocID: "doc-1", Doc: json.RawMessage(`{"title":"A","v":1}`)}

	mutated, err := a.Apply(context.Background(), u)
	if err != nil || !mutated {
		t.Fatalf("first apply: mutated=%v err=%v", mutated, err)
	}

	// Same content, different key order and whitespace.
	u.Doc = json.RawMessage(`{ "v":1, "title":"A" }`)
	mutated, err = a.Apply(context.Background(), u)
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if mutated {
		t.Fatalf("expected structurally identical update to be deduped")
	}
	if applied != 1 {
		t.Fatalf("expected exactly one mutation, got %d", applied)
	}

	// A real change goes through.
	u.Doc = json.RawMessage(`{"title":"B","v":2}`)
	mutated, err = a.Apply(context.Background(), u)
	if err != nil || !mutated {
		t.Fatalf("third apply: mutated=%v err=%v", mutated, err)
	}
	if applied != 2 {
		t.Fatalf("expected two mutations, got %d", applied)
	}
}

func TestApplierTracksDocumentsIndependently(t *testing.T) {
	a := NewApplier()
	applied := 0
	a.Register(KindResume, func(ctx context.Context, docID string, doc json.RawMessage) error {
		applied++
		return nil
	})

	doc := json.RawMessage(`{"title":"same"}`)
	if _, err := a.Apply(context.Background(), Update{Kind: KindResume, DocID: "doc-1", Doc: doc}); err != nil {
		t.Fatalf("apply doc-1: %v", err)
	}
	if _, err := a.Apply(context.Background(), Update{Kind: KindResume, DocID: "doc-2", Doc: doc}); err != nil {
		t.Fatalf("apply doc-2: %v", err)
	}
	if applied != 2 {
		t.Fatalf("identical payloads for different documents must both apply, got %d", applied)
	}
}

func TestApplierFailedApplyDoesNotPoisonDedupe(t *testing.T) {
	a := NewApplier()
	fail := true
	applied := 0
	a.Register(KindResume, func(ctx context.Context, docID string, doc json.RawMessage) error {
		if fail {
			return errors.New("storage down")
		}
		applied++
		return nil
	})

	u := Update{Kind: KindResume, DocID: "doc-1", Doc: json.RawMessage(`{"v":1}`)}
	if _, err := a.Apply(context.Background(), u); err == nil {
		t.Fatalf("expected apply failure")
	}

	// Retry of the same payload must still be applied.
	fail = false
	mutated, err := a.Apply(context.Background(), u)
	if err != nil || !mutated {
		t.Fatalf("retry: mutated=%v err=%v", mutated, err)
	}
	if applied != 1 {
		t.Fatalf("expected one mutation after retry, got %d", applied)
	}
}

func TestApplierRejectsUnregisteredKind(t *testing.T) {
	a := NewApplier()
	_, err := a.Apply(context.Background(), Update{
		Kind: KindCoverLetter, DocID: "doc-1", Doc: json.RawMessage(`{}`),
	})
	if err == nil {
		t.Fatalf("expected error for unregistered kind")
	}
}

func TestApplierRunConsumesChannel(t *testing.T) {
	a := NewApplier()
	seen := make(chan string, 4)
	a.Register(KindResume, func(ctx context.Context, docID string, doc json.RawMessage) error {
		seen <- docID
		return nil
	})

	b := NewBroker()
	ch, cancel := b.SubscribeAll()

	ctx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.Run(ctx, ch)
		close(done)
	}()

	publishDoc(b, "doc-1", `{"v":1}`)

	select {
	case id := <-seen:
		if id != "doc-1" {
			t.Fatalf("expected doc-1, got %q", id)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for apply")
	}

	cancel()
	stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not exit")
	}
}

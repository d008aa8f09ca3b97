package updates

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"resume-studio-backend/internal/shared/metrics"
	"resume-studio-backend/internal/shared/telemetry"
)

// ApplyFunc persists one document snapshot.
type ApplyFunc func(ctx context.Context, docID string, doc json.RawMessage) error

// Applier applies updates to durable storage in delivery order, discarding
// updates that are structurally identical to the last one applied for the
// same document (idempotent redelivery guard).
type Applier struct {
	mu    sync.Mutex
	last  map[string]any
	apply map[Kind]ApplyFunc
}

// NewApplier constructs an Applier with no registered apply funcs.
func NewApplier() *Applier {
	return &Applier{
		last:  make(map[string]any),
		apply: make(map[Kind]ApplyFunc),
	}
}

// Register binds the persistence func for one document kind.
func (a *Applier) Register(kind Kind, fn ApplyFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.apply[kind] = fn
}

// Apply persists u unless it is structurally identical to the last applied
// snapshot for the same document. Returns whether a mutation happened.
func (a *Applier) Apply(ctx context.Context, u Update) (bool, error) {
	var decoded any
	if err := json.Unmarshal(u.Doc, &decoded); err != nil {
		return false, fmt.Errorf("decode update for %s: %w", u.DocID, err)
	}

	a.mu.Lock()
	prev, seen := a.last[u.DocID]
	fn := a.apply[u.Kind]
	a.mu.Unlock()

	if fn == nil {
		return false, fmt.Errorf("no apply func for kind %q", u.Kind)
	}
	if seen && reflect.DeepEqual(prev, decoded) {
		metrics.IncUpdatesDeduped()
		return false, nil
	}

	if err := fn(ctx, u.DocID, u.Doc); err != nil {
		return false, err
	}

	a.mu.Lock()
	a.last[u.DocID] = decoded
	a.mu.Unlock()

	metrics.IncDocumentMutations()
	return true, nil
}

// Run consumes updates until the channel closes or ctx is done.
// Apply failures are logged and do not stop the loop.
func (a *Applier) Run(ctx context.Context, in <-chan Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-in:
			if !ok {
				return
			}
			if _, err := a.Apply(ctx, u); err != nil {
				telemetry.Error("updates.apply_failed", map[string]any{
					"doc_id": u.DocID,
					"kind":   string(u.Kind),
					"seq":    u.Seq,
					"error":  err.Error(),
				})
			}
		}
	}
}

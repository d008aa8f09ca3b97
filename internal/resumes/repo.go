package resumes

import "context"

// Repo defines persistence operations for resumes.
type Repo interface {
	// List returns a user's resumes ordered most-recently-updated first.
	List(ctx context.Context, userID string) ([]Resume, error)
	Get(ctx context.Context, userID, id string) (Resume, error)
	Create(ctx context.Context, r Resume) error
	// Update replaces an existing record; ErrNotFound if missing.
	Update(ctx context.Context, r Resume) error
	// Put inserts or replaces the record as-is. Used when applying
	// already-stamped agent updates.
	Put(ctx context.Context, r Resume) error
	Delete(ctx context.Context, userID, id string) error
}

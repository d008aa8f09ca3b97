package coverletters

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]map[string]CoverLetter // userID -> id -> letter
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]map[string]CoverLetter),
	}
}

// List returns a user's cover letters, most recently updated first.
func (r *MemoryRepo) List(ctx context.Context, userID string) ([]CoverLetter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	byID := r.data[userID]
	out := make([]CoverLetter, 0, len(byID))
	for _, doc := range byID {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Meta.UpdatedAt.Equal(out[j].Meta.UpdatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].Meta.UpdatedAt.After(out[j].Meta.UpdatedAt)
	})
	return out, nil
}

// Get returns one cover letter or ErrNotFound.
func (r *MemoryRepo) Get(ctx context.Context, userID, id string) (CoverLetter, error) {
	if err := ctx.Err(); err != nil {
		return CoverLetter{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.data[userID][id]
	if !ok {
		return CoverLetter{}, ErrNotFound
	}
	return doc, nil
}

// Create stores a new cover letter.
func (r *MemoryRepo) Create(ctx context.Context, doc CoverLetter) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.data[doc.UserID] == nil {
		r.data[doc.UserID] = make(map[string]CoverLetter)
	}
	r.data[doc.UserID][doc.ID] = doc
	return nil
}

// Update replaces an existing cover letter or returns ErrNotFound.
func (r *MemoryRepo) Update(ctx context.Context, doc CoverLetter) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[doc.UserID][doc.ID]; !ok {
		return ErrNotFound
	}
	r.data[doc.UserID][doc.ID] = doc
	return nil
}

// Put inserts or replaces a cover letter as-is.
func (r *MemoryRepo) Put(ctx context.Context, doc CoverLetter) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.data[doc.UserID] == nil {
		r.data[doc.UserID] = make(map[string]CoverLetter)
	}
	r.data[doc.UserID][doc.ID] = doc
	return nil
}

// Delete removes a cover letter or returns ErrNotFound.
func (r *MemoryRepo) Delete(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[userID][id]; !ok {
		return ErrNotFound
	}
	delete(r.data[userID], id)
	return nil
}

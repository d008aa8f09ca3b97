package coverletters

import "context"

// Repo defines persistence operations for cover letters.
type Repo interface {
	List(ctx context.Context, userID string) ([]CoverLetter, error)
	Get(ctx context.Context, userID, id string) (CoverLetter, error)
	Create(ctx context.Context, d CoverLetter) error
	Update(ctx context.Context, d CoverLetter) error
	Put(ctx context.Context, d CoverLetter) error
	Delete(ctx context.Context, userID, id string) error
}

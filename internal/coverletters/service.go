package coverletters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"resume-studio-backend/internal/archive"
	"resume-studio-backend/internal/shared/telemetry"
	"resume-studio-backend/internal/updates"
)

// Service contains business logic for cover letters.
type Service struct {
	Repo      Repo
	Snapshots *archive.Archive
	Updates   *updates.Broker
	Now       func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// CreateInput carries the fields accepted when creating a cover letter.
type CreateInput struct {
	Title    string       `json:"title"`
	Content  string       `json:"content"`
	Template TemplateKind `json:"template"`
}

// UpdatePatch carries the fields accepted on a partial update.
type UpdatePatch struct {
	Title    *string       `json:"title"`
	Content  *string       `json:"content"`
	Template *TemplateKind `json:"template"`
}

// List returns a user's cover letters, most recently updated first.
func (s *Service) List(ctx context.Context, userID string) ([]CoverLetter, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.List(ctx, userID)
}

// Get returns one cover letter or ErrNotFound.
func (s *Service) Get(ctx context.Context, userID, id string) (CoverLetter, error) {
	if userID == "" || id == "" {
		return CoverLetter{}, ErrInvalidInput
	}
	return s.Repo.Get(ctx, userID, id)
}

// Create validates the input, assigns id and initial metadata, and persists.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (CoverLetter, error) {
	if userID == "" {
		return CoverLetter{}, ErrInvalidInput
	}

	doc := New(userID, in.Title, in.Content, in.Template, s.now())
	if err := Validate(doc); err != nil {
		return CoverLetter{}, err
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		return CoverLetter{}, err
	}
	s.archiveAndPublish(ctx, doc)
	return doc, nil
}

// Update merges the patch into the stored document, validates the merged
// result, bumps version and counts, and persists.
func (s *Service) Update(ctx context.Context, userID, id string, patch UpdatePatch) (CoverLetter, error) {
	current, err := s.Get(ctx, userID, id)
	if err != nil {
		return CoverLetter{}, err
	}

	merged := current
	if patch.Title != nil {
		merged.Title = *patch.Title
	}
	if patch.Content != nil {
		merged.Content = *patch.Content
	}
	if patch.Template != nil {
		merged.Template = *patch.Template
	}
	if err := Validate(merged); err != nil {
		return CoverLetter{}, err
	}

	stamped := merged.Stamped(s.now())
	if err := s.Repo.Update(ctx, stamped); err != nil {
		return CoverLetter{}, err
	}
	s.archiveAndPublish(ctx, stamped)
	return stamped, nil
}

// Delete removes a cover letter or returns ErrNotFound.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if userID == "" || id == "" {
		return ErrInvalidInput
	}
	return s.Repo.Delete(ctx, userID, id)
}

// Duplicate clones a cover letter under a new id with reset metadata and a
// " (copy)" title marker.
func (s *Service) Duplicate(ctx context.Context, userID, id string) (CoverLetter, error) {
	source, err := s.Get(ctx, userID, id)
	if err != nil {
		return CoverLetter{}, err
	}

	copyDoc := New(userID, source.Title+" (copy)", source.Content, source.Template, s.now())
	if err := Validate(copyDoc); err != nil {
		return CoverLetter{}, err
	}
	if err := s.Repo.Create(ctx, copyDoc); err != nil {
		return CoverLetter{}, err
	}
	s.archiveAndPublish(ctx, copyDoc)
	return copyDoc, nil
}

// ApplyAgentUpdate persists an already-stamped document from the agent
// pipeline. It does not re-publish, the originating stream already did.
func (s *Service) ApplyAgentUpdate(ctx context.Context, raw json.RawMessage) error {
	var doc CoverLetter
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decode agent update: %w", err)
	}
	if doc.ID == "" {
		return ErrInvalidInput
	}
	if err := Validate(doc); err != nil {
		return err
	}
	if err := s.Repo.Put(ctx, doc); err != nil {
		return err
	}
	s.archiveSnapshot(ctx, doc)
	return nil
}

// OpenSnapshot reads back an archived version of a cover letter.
func (s *Service) OpenSnapshot(ctx context.Context, userID, id string, version int) (io.ReadCloser, error) {
	if userID == "" || id == "" || version <= 0 {
		return nil, ErrInvalidInput
	}
	// ErrNotFound passes through: deleted letters keep retrievable version
	// history, and the archive key is scoped to userID.
	if _, err := s.Repo.Get(ctx, userID, id); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return s.Snapshots.OpenVersion(ctx, userID, id, version)
}

func (s *Service) archiveAndPublish(ctx context.Context, doc CoverLetter) {
	s.archiveSnapshot(ctx, doc)
	if s.Updates == nil {
		return
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		telemetry.Error("coverletters.publish_marshal_failed", map[string]any{"cover_letter_id": doc.ID, "error": err.Error()})
		return
	}
	s.Updates.Publish(updates.Update{
		Kind:  updates.KindCoverLetter,
		DocID: doc.ID,
		Doc:   raw,
		At:    s.now(),
	})
}

func (s *Service) archiveSnapshot(ctx context.Context, doc CoverLetter) {
	if err := s.Snapshots.SaveVersion(ctx, doc.UserID, doc.ID, doc.Meta.Version, doc); err != nil {
		telemetry.Warn("coverletters.snapshot_failed", map[string]any{
			"cover_letter_id": doc.ID,
			"version":         doc.Meta.Version,
			"error":           err.Error(),
		})
	}
}

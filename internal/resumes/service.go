package resumes

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

// Service contains business logic for resumes.
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

// CreateInput carries the fields accepted when creating a resume.
type CreateInput struct {
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

// UpdatePatch carries the fields accepted on a partial update.
// Nil fields are left untouched; the merged document is validated.
type UpdatePatch struct {
	Title    *string    `json:"title"`
	Sections *[]Section `json:"sections"`
}

// List returns a user's resumes, most recently updated first.
func (s *Service) List(ctx context.Context, userID string) ([]Resume, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.List(ctx, userID)
}

// Get returns one resume or ErrNotFound.
func (s *Service) Get(ctx context.Context, userID, id string) (Resume, error) {
	if userID == "" || id == "" {
		return Resume{}, ErrInvalidInput
	}
	return s.Repo.Get(ctx, userID, id)
}

// Create validates the input, assigns id and initial metadata, and persists.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Resume, error) {
	if userID == "" {
		return Resume{}, ErrInvalidInput
	}

	doc := New(userID, in.Title, in.Sections, s.now())
	if err := Validate(doc); err != nil {
		return Resume{}, err
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		return Resume{}, err
	}
	s.archiveAndPublish(ctx, doc)
	return doc, nil
}

// Update merges the patch into the stored document, validates the merged
// result, bumps the version, and persists.
func (s *Service) Update(ctx context.Context, userID, id string, patch UpdatePatch) (Resume, error) {
	current, err := s.Get(ctx, userID, id)
	if err != nil {
		return Resume{}, err
	}

	merged := current
	if patch.Title != nil {
		merged.Title = *patch.Title
	}
	if patch.Sections != nil {
		merged.Sections = NormalizeSections(*patch.Sections)
	}
	if err := Validate(merged); err != nil {
		return Resume{}, err
	}

	stamped := merged.Stamped(s.now())
	if err := s.Repo.Update(ctx, stamped); err != nil {
		return Resume{}, err
	}
	s.archiveAndPublish(ctx, stamped)
	return stamped, nil
}

// Delete removes a resume or returns ErrNotFound.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if userID == "" || id == "" {
		return ErrInvalidInput
	}
	return s.Repo.Delete(ctx, userID, id)
}

// Duplicate clones a resume under a new id with reset metadata and a
// " (copy)" title marker.
func (s *Service) Duplicate(ctx context.Context, userID, id string) (Resume, error) {
	source, err := s.Get(ctx, userID, id)
	if err != nil {
		return Resume{}, err
	}

	copyDoc := New(userID, source.Title+" (copy)", source.Clone().Sections, s.now())
	if err := Validate(copyDoc); err != nil {
		return Resume{}, err
	}
	if err := s.Repo.Create(ctx, copyDoc); err != nil {
		return Resume{}, err
	}
	s.archiveAndPublish(ctx, copyDoc)
	return copyDoc, nil
}

// ApplyAgentUpdate persists an already-stamped document from the agent
// pipeline. It does not re-publish, the originating stream already did.
func (s *Service) ApplyAgentUpdate(ctx context.Context, raw json.RawMessage) error {
	var doc Resume
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

// OpenSnapshot reads back an archived version of a resume.
func (s *Service) OpenSnapshot(ctx context.Context, userID, id string, version int) (io.ReadCloser, error) {
	if userID == "" || id == "" || version <= 0 {
		return nil, ErrInvalidInput
	}
	// ErrNotFound passes through: deleted resumes keep retrievable version
	// history. The archive key is scoped to userID, so reads stay within
	// the caller's partition either way.
	if _, err := s.Repo.Get(ctx, userID, id); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return s.Snapshots.OpenVersion(ctx, userID, id, version)
}

func (s *Service) archiveAndPublish(ctx context.Context, doc Resume) {
	s.archiveSnapshot(ctx, doc)
	if s.Updates == nil {
		return
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		telemetry.Error("resumes.publish_marshal_failed", map[string]any{"resume_id": doc.ID, "error": err.Error()})
		return
	}
	s.Updates.Publish(updates.Update{
		Kind:  updates.KindResume,
		DocID: doc.ID,
		Doc:   raw,
		At:    s.now(),
	})
}

func (s *Service) archiveSnapshot(ctx context.Context, doc Resume) {
	if err := s.Snapshots.SaveVersion(ctx, doc.UserID, doc.ID, doc.Meta.Version, doc); err != nil {
		telemetry.Warn("resumes.snapshot_failed", map[string]any{
			"resume_id": doc.ID,
			"version":   doc.Meta.Version,
			"error":     err.Error(),
		})
	}
}

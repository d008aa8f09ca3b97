package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const resumeColumns = `id, user_id, title, sections, version, created_at, updated_at, last_edited`

// List returns a user's resumes, most recently updated first.
func (r *PGRepo) List(ctx context.Context, userID string) ([]Resume, error) {
	const query = `
SELECT ` + resumeColumns + `
FROM resumes
WHERE user_id = $1
ORDER BY updated_at DESC, id`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Resume
	for rows.Next() {
		doc, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	if out == nil {
		out = []Resume{}
	}
	return out, rows.Err()
}

// Get returns one resume or ErrNotFound.
func (r *PGRepo) Get(ctx context.Context, userID, id string) (Resume, error) {
	const query = `
SELECT ` + resumeColumns + `
FROM resumes
WHERE user_id = $1 AND id = $2`

	doc, err := scanResume(r.DB.QueryRowContext(ctx, query, userID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	return doc, nil
}

// Create inserts a new resume.
func (r *PGRepo) Create(ctx context.Context, doc Resume) error {
	const query = `
INSERT INTO resumes (id, user_id, title, sections, version, created_at, updated_at, last_edited)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	sections, err := json.Marshal(NormalizeSections(doc.Sections))
	if err != nil {
		return fmt.Errorf("marshal sections: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, query,
		doc.ID, doc.UserID, doc.Title, sections,
		doc.Meta.Version, doc.Meta.CreatedAt, doc.Meta.UpdatedAt, doc.Meta.LastEdited,
	)
	return err
}

// Update replaces an existing resume or returns ErrNotFound.
func (r *PGRepo) Update(ctx context.Context, doc Resume) error {
	const query = `
UPDATE resumes
SET title = $3, sections = $4, version = $5, updated_at = $6, last_edited = $7
WHERE user_id = $1 AND id = $2`

	sections, err := json.Marshal(NormalizeSections(doc.Sections))
	if err != nil {
		return fmt.Errorf("marshal sections: %w", err)
	}
	res, err := r.DB.ExecContext(ctx, query,
		doc.UserID, doc.ID, doc.Title, sections,
		doc.Meta.Version, doc.Meta.UpdatedAt, doc.Meta.LastEdited,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Put inserts or replaces a resume as-is.
func (r *PGRepo) Put(ctx context.Context, doc Resume) error {
	const query = `
INSERT INTO resumes (id, user_id, title, sections, version, created_at, updated_at, last_edited)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE
SET title = EXCLUDED.title,
    sections = EXCLUDED.sections,
    version = EXCLUDED.version,
    updated_at = EXCLUDED.updated_at,
    last_edited = EXCLUDED.last_edited`

	sections, err := json.Marshal(NormalizeSections(doc.Sections))
	if err != nil {
		return fmt.Errorf("marshal sections: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, query,
		doc.ID, doc.UserID, doc.Title, sections,
		doc.Meta.Version, doc.Meta.CreatedAt, doc.Meta.UpdatedAt, doc.Meta.LastEdited,
	)
	return err
}

// Delete removes a resume or returns ErrNotFound.
func (r *PGRepo) Delete(ctx context.Context, userID, id string) error {
	const query = `DELETE FROM resumes WHERE user_id = $1 AND id = $2`

	res, err := r.DB.ExecContext(ctx, query, userID, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner) (Resume, error) {
	var doc Resume
	var sections []byte
	err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.Title,
		&sections,
		&doc.Meta.Version,
		&doc.Meta.CreatedAt,
		&doc.Meta.UpdatedAt,
		&doc.Meta.LastEdited,
	)
	if err != nil {
		return Resume{}, err
	}
	if len(sections) > 0 {
		if err := json.Unmarshal(sections, &doc.Sections); err != nil {
			return Resume{}, fmt.Errorf("unmarshal sections: %w", err)
		}
	}
	if doc.Sections == nil {
		doc.Sections = []Section{}
	}
	doc.Meta.SectionCount = len(doc.Sections)
	return doc, nil
}

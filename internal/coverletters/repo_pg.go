package coverletters

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const letterColumns = `id, user_id, title, content, template, word_count, char_count, version, created_at, updated_at, last_edited`

// List returns a user's cover letters, most recently updated first.
func (r *PGRepo) List(ctx context.Context, userID string) ([]CoverLetter, error) {
	const query = `
SELECT ` + letterColumns + `
FROM cover_letters
WHERE user_id = $1
ORDER BY updated_at DESC, id`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CoverLetter
	for rows.Next() {
		doc, err := scanLetter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	if out == nil {
		out = []CoverLetter{}
	}
	return out, rows.Err()
}

// Get returns one cover letter or ErrNotFound.
func (r *PGRepo) Get(ctx context.Context, userID, id string) (CoverLetter, error) {
	const query = `
SELECT ` + letterColumns + `
FROM cover_letters
WHERE user_id = $1 AND id = $2`

	doc, err := scanLetter(r.DB.QueryRowContext(ctx, query, userID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CoverLetter{}, ErrNotFound
		}
		return CoverLetter{}, err
	}
	return doc, nil
}

// Create inserts a new cover letter.
func (r *PGRepo) Create(ctx context.Context, doc CoverLetter) error {
	const query = `
INSERT INTO cover_letters (id, user_id, title, content, template, word_count, char_count, version, created_at, updated_at, last_edited)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.DB.ExecContext(ctx, query,
		doc.ID, doc.UserID, doc.Title, doc.Content, string(doc.Template),
		doc.Meta.WordCount, doc.Meta.CharCount, doc.Meta.Version,
		doc.Meta.CreatedAt, doc.Meta.UpdatedAt, doc.Meta.LastEdited,
	)
	return err
}

// Update replaces an existing cover letter or returns ErrNotFound.
func (r *PGRepo) Update(ctx context.Context, doc CoverLetter) error {
	const query = `
UPDATE cover_letters
SET title = $3, content = $4, template = $5, word_count = $6, char_count = $7, version = $8, updated_at = $9, last_edited = $10
WHERE user_id = $1 AND id = $2`

	res, err := r.DB.ExecContext(ctx, query,
		doc.UserID, doc.ID, doc.Title, doc.Content, string(doc.Template),
		doc.Meta.WordCount, doc.Meta.CharCount, doc.Meta.Version,
		doc.Meta.UpdatedAt, doc.Meta.LastEdited,
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

// Put inserts or replaces a cover letter as-is.
func (r *PGRepo) Put(ctx context.Context, doc CoverLetter) error {
	const query = `
INSERT INTO cover_letters (id, user_id, title, content, template, word_count, char_count, version, created_at, updated_at, last_edited)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (id) DO UPDATE
SET title = EXCLUDED.title,
    content = EXCLUDED.content,
    template = EXCLUDED.template,
    word_count = EXCLUDED.word_count,
    char_count = EXCLUDED.char_count,
    version = EXCLUDED.version,
    updated_at = EXCLUDED.updated_at,
    last_edited = EXCLUDED.last_edited`

	_, err := r.DB.ExecContext(ctx, query,
		doc.ID, doc.UserID, doc.Title, doc.Content, string(doc.Template),
		doc.Meta.WordCount, doc.Meta.CharCount, doc.Meta.Version,
		doc.Meta.CreatedAt, doc.Meta.UpdatedAt, doc.Meta.LastEdited,
	)
	return err
}

// Delete removes a cover letter or returns ErrNotFound.
func (r *PGRepo) Delete(ctx context.Context, userID, id string) error {
	const query = `DELETE FROM cover_letters WHERE user_id = $1 AND id = $2`

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

func scanLetter(row rowScanner) (CoverLetter, error) {
	var doc CoverLetter
	var template string
	err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.Title,
		&doc.Content,
		&template,
		&doc.Meta.WordCount,
		&doc.Meta.CharCount,
		&doc.Meta.Version,
		&doc.Meta.CreatedAt,
		&doc.Meta.UpdatedAt,
		&doc.Meta.LastEdited,
	)
	if err != nil {
		return CoverLetter{}, err
	}
	doc.Template = TemplateKind(template)
	return doc, nil
}

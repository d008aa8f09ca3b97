package resumes

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoGetScansSections(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sections := `[{"id":"s1","type":"skills","title":"Skills","items":[],"order":0}]`

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "title", "sections", "version", "created_at", "updated_at", "last_edited",
	}).AddRow("res-1", "user-1", "Engineer", []byte(sections), 3, now, now, now)

	mock.ExpectQuery("SELECT (.+) FROM resumes").
		WithArgs("user-1", "res-1").
		WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	doc, err := repo.Get(context.Background(), "user-1", "res-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc.Meta.Version != 3 {
		t.Fatalf("expected version 3, got %d", doc.Meta.Version)
	}
	if len(doc.Sections) != 1 || doc.Sections[0].ID != "s1" {
		t.Fatalf("unexpected sections: %+v", doc.Sections)
	}
	if doc.Meta.SectionCount != 1 {
		t.Fatalf("expected section count 1, got %d", doc.Meta.SectionCount)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT (.+) FROM resumes").
		WithArgs("user-1", "missing").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "title", "sections", "version", "created_at", "updated_at", "last_edited",
		}))

	repo := &PGRepo{DB: db}
	if _, err := repo.Get(context.Background(), "user-1", "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateMarshalsSections(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := New("user-1", "Engineer", []Section{
		{Type: SectionSummary, Title: "Summary", Items: []json.RawMessage{json.RawMessage(`{"text":"hi"}`)}},
	}, now)

	mock.ExpectExec("INSERT INTO resumes").
		WithArgs(
			doc.ID,
			"user-1",
			"Engineer",
			sqlmock.AnyArg(), // sections JSON
			1,
			now, now, now,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := &PGRepo{DB: db}
	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdateNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := New("user-1", "Engineer", nil, now)

	mock.ExpectExec("UPDATE resumes").
		WithArgs("user-1", doc.ID, "Engineer", sqlmock.AnyArg(), 1, now, now).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := &PGRepo{DB: db}
	if err := repo.Update(context.Background(), doc); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoDeleteNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("DELETE FROM resumes").
		WithArgs("user-1", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := &PGRepo{DB: db}
	if err := repo.Delete(context.Background(), "user-1", "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

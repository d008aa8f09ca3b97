// Package archive persists one JSON snapshot per document version to object storage.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"

	"resume-studio-backend/internal/shared/storage/object"
	"resume-studio-backend/internal/shared/util"
)

// Archive writes versioned document snapshots. A nil Archive is a no-op.
type Archive struct {
	Store object.ObjectStore
}

// New constructs an Archive over the given store.
func New(store object.ObjectStore) *Archive {
	return &Archive{Store: store}
}

// SaveVersion stores the document JSON under snapshots/<user>/<doc>/v<N>.json.
func (a *Archive) SaveVersion(ctx context.Context, userID, docID string, version int, doc any) error {
	if a == nil || a.Store == nil {
		return nil
	}
	if docID == "" || version <= 0 {
		return fmt.Errorf("archive: docID and positive version required")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("archive marshal: %w", err)
	}
	_, err = a.Store.Put(ctx, versionKey(userID, docID, version), "application/json", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("archive put: %w", err)
	}
	return nil
}

// OpenVersion reads back a stored snapshot.
func (a *Archive) OpenVersion(ctx context.Context, userID, docID string, version int) (io.ReadCloser, error) {
	if a == nil || a.Store == nil {
		return nil, fmt.Errorf("archive not configured")
	}
	return a.Store.Open(ctx, versionKey(userID, docID, version))
}

func versionKey(userID, docID string, version int) string {
	return path.Join("snapshots", util.HashUserKey(userID), docID, fmt.Sprintf("v%d.json", version))
}

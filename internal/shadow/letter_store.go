package shadow

import (
	"sync"
	"time"

	"resume-studio-backend/internal/coverletters"
)

// LetterStore maps cover letter id to the latest snapshot seen during one request.
type LetterStore struct {
	mu   sync.RWMutex
	now  func() time.Time
	docs map[string]coverletters.CoverLetter
}

// NewLetterStore constructs a store; now may be nil for wall-clock time.
func NewLetterStore(now func() time.Time) *LetterStore {
	if now == nil {
		now = time.Now
	}
	return &LetterStore{
		now:  now,
		docs: make(map[string]coverletters.CoverLetter),
	}
}

// Load inserts or overwrites the entry for doc.ID without restamping.
func (s *LetterStore) Load(doc coverletters.CoverLetter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
}

// Get returns the entry for id, if present.
func (s *LetterStore) Get(id string) (coverletters.CoverLetter, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	return doc, ok
}

// Save validates the document, stamps its metadata (incremented version,
// refreshed mutation times, recomputed word and character counts), stores
// it, and returns the stamped copy. Last save wins.
func (s *LetterStore) Save(doc coverletters.CoverLetter) (coverletters.CoverLetter, error) {
	if doc.ID == "" {
		return coverletters.CoverLetter{}, coverletters.ErrInvalidInput
	}
	if doc.Template == "" {
		doc.Template = coverletters.TemplateClassic
	}
	if err := coverletters.Validate(doc); err != nil {
		return coverletters.CoverLetter{}, err
	}

	stamped := doc.Stamped(s.now().UTC())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[stamped.ID] = stamped
	return stamped, nil
}

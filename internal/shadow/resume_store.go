// Package shadow holds request-scoped mirrors of documents being edited by
// the agent. A store is created per chat request, threaded into the tool
// set, and discarded when the stream ends; it is never authoritative once
// the response completes.
package shadow

import (
	"sync"
	"time"

	"resume-studio-backend/internal/resumes"
)

// ResumeStore maps resume id to the latest snapshot seen during one request.
type ResumeStore struct {
	mu   sync.RWMutex
	now  func() time.Time
	docs map[string]resumes.Resume
}

// NewResumeStore constructs a store; now may be nil for wall-clock time.
func NewResumeStore(now func() time.Time) *ResumeStore {
	if now == nil {
		now = time.Now
	}
	return &ResumeStore{
		now:  now,
		docs: make(map[string]resumes.Resume),
	}
}

// Load inserts or overwrites the entry for doc.ID without restamping.
func (s *ResumeStore) Load(doc resumes.Resume) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc.Clone()
}

// Get returns the entry for id, if present.
func (s *ResumeStore) Get(id string) (resumes.Resume, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return resumes.Resume{}, false
	}
	return doc.Clone(), true
}

// Save validates the document, stamps its metadata (incremented version,
// refreshed mutation times), stores it, and returns the stamped copy.
// Get/Save pairs are not transactional; the last save wins.
func (s *ResumeStore) Save(doc resumes.Resume) (resumes.Resume, error) {
	if doc.ID == "" {
		return resumes.Resume{}, resumes.ErrInvalidInput
	}
	doc.Sections = resumes.NormalizeSections(doc.Sections)
	if err := resumes.Validate(doc); err != nil {
		return resumes.Resume{}, err
	}

	stamped := doc.Stamped(s.now().UTC())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[stamped.ID] = stamped.Clone()
	return stamped, nil
}

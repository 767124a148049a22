package subject

import (
	"context"
	"sync"

	"vaxcert/internal/domain"
	id "vaxcert/pkg/domain"
	"vaxcert/pkg/platform/sentinel"
)

// InMemoryStore is the store used in tests and single-node demo deployments.
type InMemoryStore struct {
	mu       sync.RWMutex
	subjects map[id.SubjectID]domain.Subject
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{subjects: make(map[id.SubjectID]domain.Subject)}
}

// Seed inserts or replaces a subject record.
func (s *InMemoryStore) Seed(subject domain.Subject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subjects[subject.ID] = subject
}

func (s *InMemoryStore) FindByID(_ context.Context, subjectID id.SubjectID) (domain.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if subject, ok := s.subjects[subjectID]; ok {
		return subject, nil
	}
	return domain.Subject{}, sentinel.ErrNotFound
}

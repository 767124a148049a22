package immunization

import (
	"context"
	"sync"

	"vaxcert/internal/domain"
	id "vaxcert/pkg/domain"
)

// InMemoryStore keeps dose events in insertion order per subject.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.SubjectID][]domain.DoseEvent
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.SubjectID][]domain.DoseEvent)}
}

// Seed appends dose events for their subjects, preserving call order.
func (s *InMemoryStore) Seed(events ...domain.DoseEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range events {
		s.events[e.SubjectID] = append(s.events[e.SubjectID], e)
	}
}

func (s *InMemoryStore) ListBySubject(_ context.Context, subjectID id.SubjectID) ([]domain.DoseEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.events[subjectID]
	// Copy so callers can't mutate the store through the returned slice.
	out := make([]domain.DoseEvent, len(stored))
	copy(out, stored)
	return out, nil
}

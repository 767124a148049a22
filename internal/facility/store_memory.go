package facility

import (
	"context"
	"sync"

	"vaxcert/internal/domain"
	id "vaxcert/pkg/domain"
	"vaxcert/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu         sync.RWMutex
	facilities map[id.FacilityID]domain.IssuingFacility
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{facilities: make(map[id.FacilityID]domain.IssuingFacility)}
}

// Seed inserts or replaces a facility record.
func (s *InMemoryStore) Seed(f domain.IssuingFacility) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.facilities[f.ID] = f
}

func (s *InMemoryStore) FindByID(_ context.Context, facilityID id.FacilityID) (domain.IssuingFacility, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if f, ok := s.facilities[facilityID]; ok {
		return f, nil
	}
	return domain.IssuingFacility{}, sentinel.ErrNotFound
}

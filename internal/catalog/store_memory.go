package catalog

import (
	"context"
	"sync"

	"vaxcert/internal/domain"
	id "vaxcert/pkg/domain"
	"vaxcert/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[id.ProductID]domain.ProductCatalogEntry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[id.ProductID]domain.ProductCatalogEntry)}
}

// Seed inserts or replaces a catalog entry.
func (s *InMemoryStore) Seed(entry domain.ProductCatalogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.ID] = entry
}

func (s *InMemoryStore) FindByID(_ context.Context, productID id.ProductID) (domain.ProductCatalogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if entry, ok := s.entries[productID]; ok {
		return entry, nil
	}
	return domain.ProductCatalogEntry{}, sentinel.ErrNotFound
}

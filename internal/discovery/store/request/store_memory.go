package request

import (
	"context"
	"sync"

	"hipservice/internal/discovery/models"
)

// InMemoryStore records discovery requests in a map. The existence check and
// the insert happen under one lock, so concurrent callers with the same
// transaction id see exactly one winner.
type InMemoryStore struct {
	mu       sync.Mutex
	requests map[string]models.DiscoveryRequest
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{requests: make(map[string]models.DiscoveryRequest)}
}

func (s *InMemoryStore) TryRecord(_ context.Context, req models.DiscoveryRequest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.requests[req.TransactionID]; exists {
		return false, nil
	}
	s.requests[req.TransactionID] = req
	return true, nil
}

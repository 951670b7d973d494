package store

import (
	"context"
	"fmt"
	"sync"

	"hipservice/internal/discovery/models"
	"hipservice/pkg/platform/sentinel"
	"hipservice/pkg/requestcontext"
)

// InMemoryStore keeps links in insertion order.
type InMemoryStore struct {
	mu    sync.RWMutex
	links []models.LinkedAccount
	refs  map[string]struct{}
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{refs: make(map[string]struct{})}
}

// Save records a new link. A link reference number already present yields
// sentinel.ErrConflict.
func (s *InMemoryStore) Save(ctx context.Context, link models.LinkedAccount) error {
	if err := validate(link); err != nil {
		return err
	}
	if link.DateCreated.IsZero() {
		link.DateCreated = requestcontext.Now(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.refs[link.LinkReferenceNumber]; ok {
		return fmt.Errorf("link %s: %w", link.LinkReferenceNumber, sentinel.ErrConflict)
	}
	s.refs[link.LinkReferenceNumber] = struct{}{}
	s.links = append(s.links, clone(link))
	return nil
}

func (s *InMemoryStore) GetLinkedAccounts(_ context.Context, requesterID string) ([]models.LinkedAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.LinkedAccount, 0)
	for _, link := range s.links {
		if link.RequesterID == requesterID {
			out = append(out, clone(link))
		}
	}
	return out, nil
}

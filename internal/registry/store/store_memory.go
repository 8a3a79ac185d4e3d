package store

import (
	"context"
	"sync"

	"foodshare/internal/registry/models"
	id "foodshare/pkg/domain"
	"foodshare/pkg/platform/sentinel"
)

// InMemory holds one role's profiles keyed by identity. The donor and
// recipient registries are independent, so the service owns two instances.
type InMemory struct {
	mu       sync.RWMutex
	profiles map[id.Identity]models.Profile
}

func NewInMemory() *InMemory {
	return &InMemory{profiles: make(map[id.Identity]models.Profile)}
}

// Upsert stores the profile, overwriting any prior record for the identity.
func (s *InMemory) Upsert(_ context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.Identity] = *profile
	return nil
}

// Delete removes the profile. Returns sentinel.ErrNotFound when absent.
func (s *InMemory) Delete(_ context.Context, identity id.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[identity]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.profiles, identity)
	return nil
}

// Find returns a copy of the profile or sentinel.ErrNotFound.
func (s *InMemory) Find(_ context.Context, identity id.Identity) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[identity]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &profile, nil
}

// Exists reports whether a profile is registered for the identity.
func (s *InMemory) Exists(_ context.Context, identity id.Identity) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.profiles[identity]
	return ok, nil
}

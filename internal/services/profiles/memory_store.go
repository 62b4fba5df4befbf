package profiles

import (
	"context"
	"sync"

	"vehicle-match-engine/internal/models"
)

// MemoryStore is a process-local PreferenceStore.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]models.UserProfile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]models.UserProfile)}
}

func (s *MemoryStore) Load(_ context.Context, userID string) (*models.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, nil
	}
	out := clone(p)
	return &out, nil
}

func (s *MemoryStore) Save(_ context.Context, profile *models.UserProfile) error {
	if profile == nil {
		return ErrNilProfile
	}
	if profile.UserID == "" {
		return models.ErrEmptyUserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.UserID] = clone(*profile)
	return nil
}

func clone(p models.UserProfile) models.UserProfile {
	p.SelectedFeatures = append([]string(nil), p.SelectedFeatures...)
	p.MustHaveFeatures = append([]string(nil), p.MustHaveFeatures...)
	return p
}

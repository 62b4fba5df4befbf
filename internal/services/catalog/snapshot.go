package catalog

import (
	"sync"
	"time"

	"vehicle-match-engine/internal/models"
	"vehicle-match-engine/internal/services/metrics"
)

// Snapshot holds the active catalog. Readers get a copy, so a reload never
// changes a slice that is being ranked.
type Snapshot struct {
	mu       sync.RWMutex
	vehicles []models.Vehicle
	loadedAt time.Time
}

// NewSnapshot returns a snapshot holding vehicles.
func NewSnapshot(vehicles []models.Vehicle) *Snapshot {
	s := &Snapshot{}
	s.Replace(vehicles)
	return s
}

// Vehicles returns a copy of the current catalog.
func (s *Snapshot) Vehicles() []models.Vehicle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Vehicle, len(s.vehicles))
	copy(out, s.vehicles)
	return out
}

// Replace swaps in a new catalog.
func (s *Snapshot) Replace(vehicles []models.Vehicle) {
	s.mu.Lock()
	s.vehicles = append([]models.Vehicle(nil), vehicles...)
	s.loadedAt = time.Now()
	n := len(s.vehicles)
	s.mu.Unlock()

	metrics.CatalogSize.Set(float64(n))
}

// Find returns the vehicle with id.
func (s *Snapshot) Find(id int) (models.Vehicle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, v := range s.vehicles {
		if v.ID == id {
			return v, true
		}
	}
	return models.Vehicle{}, false
}

// Len returns the number of vehicles in the catalog.
func (s *Snapshot) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vehicles)
}

// LoadedAt returns when the catalog was last replaced.
func (s *Snapshot) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

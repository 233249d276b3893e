// Package memory provides an in-process ChargeSiteRepository for development
// and tests. Region lookups are a linear scan.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/chargemap/internal/core/domain"
	"github.com/samirrijal/chargemap/internal/pkg/geospatial"
)

// ChargeSiteStore implements ports.ChargeSiteRepository.
type ChargeSiteStore struct {
	mu    sync.RWMutex
	sites map[string]domain.ChargeSite
	now   func() time.Time
}

// NewChargeSiteStore creates an empty store.
func NewChargeSiteStore() *ChargeSiteStore {
	return &ChargeSiteStore{
		sites: make(map[string]domain.ChargeSite),
		now:   time.Now,
	}
}

func (s *ChargeSiteStore) Create(ctx context.Context, site *domain.ChargeSite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if site.ID == "" {
		site.ID = uuid.NewString()
	}
	now := s.now().UTC()
	site.CreatedAt = now
	site.UpdatedAt = now
	s.sites[site.ID] = *site
	return nil
}

func (s *ChargeSiteStore) Update(ctx context.Context, site *domain.ChargeSite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.sites[site.ID]
	if !ok {
		return domain.ErrNotFound
	}
	site.CreatedAt = existing.CreatedAt
	site.UpdatedAt = s.now().UTC()
	s.sites[site.ID] = *site
	return nil
}

func (s *ChargeSiteStore) GetByID(ctx context.Context, id string) (*domain.ChargeSite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	site, ok := s.sites[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &site, nil
}

func (s *ChargeSiteStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sites[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.sites, id)
	return nil
}

// FindWithin returns sites whose published location lies within radius of
// center. True coordinates are stripped from the results.
func (s *ChargeSiteStore) FindWithin(ctx context.Context, center domain.GeoPoint, radius float64) ([]domain.ChargeSite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ChargeSite, 0)
	for _, site := range s.sites {
		if geospatial.PlanarDistance(center.Lat, center.Lon, site.Location.Lat, site.Location.Lon) <= radius {
			site.TrueLocation = domain.GeoPoint{}
			out = append(out, site)
		}
	}
	return out, nil
}

// ListIDs returns up to limit IDs greater than afterID, in ascending order.
func (s *ChargeSiteStore) ListIDs(ctx context.Context, afterID string, limit int) ([]string, error) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sites))
	for id := range s.sites {
		if id > afterID {
			ids = append(ids, id)
		}
	}
	s.mu.RUnlock()

	sort.Strings(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// Len reports the number of stored sites.
func (s *ChargeSiteStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sites)
}

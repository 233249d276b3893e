package ports

import (
	"context"

	"github.com/samirrijal/chargemap/internal/core/domain"
)

// ChargeSiteRepository persists charge sites.
//
// FindWithin compares the planar distance between center and each site's
// obfuscated coordinate against radius (degrees). Results are unordered and
// unbounded, and carry no true coordinate.
type ChargeSiteRepository interface {
	Create(ctx context.Context, site *domain.ChargeSite) error
	Update(ctx context.Context, site *domain.ChargeSite) error
	GetByID(ctx context.Context, id string) (*domain.ChargeSite, error)
	Delete(ctx context.Context, id string) error
	FindWithin(ctx context.Context, center domain.GeoPoint, radius float64) ([]domain.ChargeSite, error)
	// ListIDs pages through site IDs in ascending order, starting after afterID.
	ListIDs(ctx context.Context, afterID string, limit int) ([]string, error)
}

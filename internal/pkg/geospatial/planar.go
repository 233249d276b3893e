package geospatial

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidCoordinate is returned for a latitude outside [-90, 90], a
	// longitude outside [-180, 180], or a non-finite value.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrInvalidViewport is returned for missing, negative, zero or non-finite
	// viewport half-extents.
	ErrInvalidViewport = errors.New("invalid viewport")
)

// ValidateCoordinate checks that lat/lon is a usable WGS 84 coordinate.
func ValidateCoordinate(lat, lon float64) error {
	if !finite(lat) || !finite(lon) {
		return fmt.Errorf("%w: non-finite value (%v, %v)", ErrInvalidCoordinate, lat, lon)
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range [-90, 90]", ErrInvalidCoordinate, lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("%w: longitude %v out of range [-180, 180]", ErrInvalidCoordinate, lon)
	}
	return nil
}

// PlanarDistance treats (lat, lon) as Cartesian coordinates and returns the
// Euclidean distance in degrees. Adequate for map-viewport sized regions only.
//
// The perturber, the region planner and every store implementation must agree
// on this metric; swapping it for a geodesic one requires re-deriving the
// radius inflation in RegionPlanner.
func PlanarDistance(lat1, lon1, lat2, lon2 float64) float64 {
	return math.Hypot(lat2-lat1, lon2-lon1)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

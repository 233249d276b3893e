package geospatial

import "fmt"

// RegionPlanner turns a viewport into a search radius over obfuscated
// coordinates that never drops a site whose true position is in the viewport.
type RegionPlanner struct {
	maxRadius float64
}

// NewRegionPlanner creates a planner. maxRadius must be the same value the
// Perturber was built with.
func NewRegionPlanner(maxRadius float64) (*RegionPlanner, error) {
	if !finite(maxRadius) || maxRadius <= 0 {
		return nil, fmt.Errorf("max obfuscated radius must be positive, got %v", maxRadius)
	}
	return &RegionPlanner{maxRadius: maxRadius}, nil
}

// PlanRadius returns 2·max(latDelta, lonDelta) + maxRadius.
//
// Doubling the larger half-extent over-covers the viewport diagonal (√2 would
// suffice); adding maxRadius absorbs the worst-case obfuscation displacement.
// Sites outside the viewport may be returned and are trimmed by the client.
func (p *RegionPlanner) PlanRadius(latDelta, lonDelta float64) (float64, error) {
	if !finite(latDelta) || !finite(lonDelta) {
		return 0, fmt.Errorf("%w: non-finite delta (%v, %v)", ErrInvalidViewport, latDelta, lonDelta)
	}
	if latDelta <= 0 || lonDelta <= 0 {
		return 0, fmt.Errorf("%w: deltas must be positive, got latd=%v lond=%v", ErrInvalidViewport, latDelta, lonDelta)
	}
	return 2*max(latDelta, lonDelta) + p.maxRadius, nil
}

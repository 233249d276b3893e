package usecases

import (
	"fmt"

	"github.com/samirrijal/chargemap/internal/core/domain"
	"github.com/samirrijal/chargemap/internal/pkg/geospatial"
	"github.com/samirrijal/chargemap/internal/pkg/metrics"
)

// ObfuscationPolicy decides whether a site publishes its true coordinate or a
// perturbed one, and stamps IsObfuscated accordingly.
type ObfuscationPolicy struct {
	perturber *geospatial.Perturber
}

// NewObfuscationPolicy creates a policy backed by perturber.
func NewObfuscationPolicy(perturber *geospatial.Perturber) *ObfuscationPolicy {
	return &ObfuscationPolicy{perturber: perturber}
}

// Apply populates Location and IsObfuscated from TrueLocation.
// Every call with obfuscation enabled draws a fresh offset.
func (p *ObfuscationPolicy) Apply(site *domain.ChargeSite) error {
	lat, lon := site.TrueLocation.Lat, site.TrueLocation.Lon
	if err := geospatial.ValidateCoordinate(lat, lon); err != nil {
		return err
	}

	if site.ObfuscationDisabled {
		site.Location = site.TrueLocation
		site.IsObfuscated = false
		metrics.SitesObfuscated.WithLabelValues("exact").Inc()
		return nil
	}

	oLat, oLon, err := p.perturber.Perturb(lat, lon)
	if err != nil {
		return fmt.Errorf("perturb: %w", err)
	}
	site.Location = domain.GeoPoint{Lat: oLat, Lon: oLon}
	site.IsObfuscated = true

	metrics.SitesObfuscated.WithLabelValues("perturbed").Inc()
	metrics.ObfuscationDisplacement.Observe(geospatial.Haversine(lat, lon, oLat, oLon))
	return nil
}

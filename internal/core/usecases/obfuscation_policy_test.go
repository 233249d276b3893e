package usecases_test

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/samirrijal/chargemap/internal/core/domain"
	"github.com/samirrijal/chargemap/internal/core/usecases"
	"github.com/samirrijal/chargemap/internal/pkg/geospatial"
)

func newPolicy(t *testing.T, radius float64) *usecases.ObfuscationPolicy {
	t.Helper()
	p, err := geospatial.NewPerturber(radius, rand.New(rand.NewPCG(3, 4)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return usecases.NewObfuscationPolicy(p)
}

func TestObfuscationPolicy_DisabledPublishesTrueLocation(t *testing.T) {
	policy := newPolicy(t, 0.01)
	site := &domain.ChargeSite{
		TrueLocation:        domain.GeoPoint{Lat: 51.5074, Lon: -0.1278},
		ObfuscationDisabled: true,
	}

	// Applying twice must not drift.
	for i := 0; i < 2; i++ {
		if err := policy.Apply(site); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if site.Location != site.TrueLocation {
			t.Errorf("expected %v, got %v", site.TrueLocation, site.Location)
		}
		if site.IsObfuscated {
			t.Error("expected IsObfuscated=false")
		}
	}
}

func TestObfuscationPolicy_EnabledStaysWithinRadius(t *testing.T) {
	policy := newPolicy(t, 0.01)
	site := &domain.ChargeSite{TrueLocation: domain.GeoPoint{Lat: 37.7749, Lon: -122.4194}}

	for i := 0; i < 1000; i++ {
		if err := policy.Apply(site); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !site.IsObfuscated {
			t.Fatal("expected IsObfuscated=true")
		}
		d := geospatial.PlanarDistance(site.TrueLocation.Lat, site.TrueLocation.Lon, site.Location.Lat, site.Location.Lon)
		if d > 0.01+1e-12 {
			t.Fatalf("displacement %v exceeds radius", d)
		}
	}
}

func TestObfuscationPolicy_ReenableRedraws(t *testing.T) {
	policy := newPolicy(t, 0.01)
	site := &domain.ChargeSite{
		TrueLocation:        domain.GeoPoint{Lat: 43.263, Lon: -2.935},
		ObfuscationDisabled: true,
	}
	if err := policy.Apply(site); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	site.ObfuscationDisabled = false
	if err := policy.Apply(site); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !site.IsObfuscated {
		t.Error("expected IsObfuscated=true after re-enabling")
	}
}

func TestObfuscationPolicy_InvalidCoordinate(t *testing.T) {
	policy := newPolicy(t, 0.01)
	site := &domain.ChargeSite{TrueLocation: domain.GeoPoint{Lat: 95, Lon: 0}, ObfuscationDisabled: true}

	err := policy.Apply(site)
	if !errors.Is(err, geospatial.ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
	}
}

package http

import (
	"testing"

	"github.com/samirrijal/chargemap/internal/core/domain"
)

func TestMatchPattern(t *testing.T) {
	cases := []struct {
		path, pattern string
		want          bool
	}{
		{"/api/chargesites", "/api/chargesites", true},
		{"/api/chargesites/", "/api/chargesites", true},
		{"/api/chargesites/abc", "/api/chargesites/:id", true},
		{"/api/chargesites", "/api/chargesites/:id", false},
		{"/api/chargesites/abc/extra", "/api/chargesites/:id", false},
		{"/v1/chargesites/abc", "/api/chargesites/:id", false},
	}
	for _, tc := range cases {
		if got := matchPattern(tc.path, tc.pattern); got != tc.want {
			t.Errorf("matchPattern(%q, %q) = %v, want %v", tc.path, tc.pattern, got, tc.want)
		}
	}
}

func TestRegionFilter(t *testing.T) {
	f := &regionFilter{center: domain.GeoPoint{Lat: 10, Lon: 20}, radius: 0.11}

	near := &domain.SiteEvent{Type: domain.SiteUpdated, Site: &domain.PublicChargeSite{Latitude: 10.05, Longitude: 20.05}}
	far := &domain.SiteEvent{Type: domain.SiteCreated, Site: &domain.PublicChargeSite{Latitude: 11, Longitude: 20}}
	deleted := &domain.SiteEvent{Type: domain.SiteDeleted, SiteID: "x"}

	if !f.allows(near) {
		t.Error("expected nearby site to pass")
	}
	if f.allows(far) {
		t.Error("expected distant site to be filtered")
	}
	if !f.allows(deleted) {
		t.Error("expected deletions to pass")
	}

	var none *regionFilter
	if !none.allows(far) {
		t.Error("expected nil filter to pass everything")
	}
}

package telemetry

import "go.opentelemetry.io/otel/attribute"

// Span attribute keys shared across packages.
const (
	AttrSiteID        = attribute.Key("chargemap.site.id")
	AttrSiteEvent     = attribute.Key("chargemap.site.event")
	AttrRegionRadius  = attribute.Key("chargemap.region.radius")
	AttrRegionResults = attribute.Key("chargemap.region.results")
	AttrCacheHit      = attribute.Key("cache.hit")
)

package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/chargemap/internal/core/domain"
	"github.com/samirrijal/chargemap/internal/core/ports"
	"github.com/samirrijal/chargemap/internal/pkg/geospatial"
	"github.com/samirrijal/chargemap/internal/pkg/metrics"
	"github.com/samirrijal/chargemap/internal/pkg/telemetry"
)

const (
	regionGenerationKey = "chargesites:region:gen"
	generationTTL       = 24 * 60 * 60
	defaultRegionTTL    = 60
)

var tracer = otel.Tracer("github.com/samirrijal/chargemap/internal/core/usecases")

// ChargeSiteConfig configures obfuscation and caching for ChargeSiteService.
type ChargeSiteConfig struct {
	// MaxObfuscatedRadius bounds both the perturbation and the search-radius
	// inflation, in degrees.
	MaxObfuscatedRadius float64
	// RedrawOnUpdate draws a new offset on every update, even when the true
	// coordinate and opt-out flag are unchanged.
	RedrawOnUpdate bool
	// RegionCacheTTL is the lifetime of cached region results, in seconds.
	RegionCacheTTL int
	// Rand overrides the random source; nil uses the process-wide generator.
	Rand geospatial.RandSource
}

// ChargeSiteService handles charge-site business logic.
type ChargeSiteService struct {
	sites  ports.ChargeSiteRepository
	cache  ports.CacheService
	events ports.EventPublisher

	policy         *ObfuscationPolicy
	planner        *geospatial.RegionPlanner
	redrawOnUpdate bool
	regionTTL      int
}

// NewChargeSiteService creates a new ChargeSiteService. cache and events may be nil.
func NewChargeSiteService(
	sites ports.ChargeSiteRepository,
	cache ports.CacheService,
	events ports.EventPublisher,
	cfg ChargeSiteConfig,
) (*ChargeSiteService, error) {
	perturber, err := geospatial.NewPerturber(cfg.MaxObfuscatedRadius, cfg.Rand)
	if err != nil {
		return nil, err
	}
	planner, err := geospatial.NewRegionPlanner(cfg.MaxObfuscatedRadius)
	if err != nil {
		return nil, err
	}

	ttl := cfg.RegionCacheTTL
	if ttl <= 0 {
		ttl = defaultRegionTTL
	}

	return &ChargeSiteService{
		sites:          sites,
		cache:          cache,
		events:         events,
		policy:         NewObfuscationPolicy(perturber),
		planner:        planner,
		redrawOnUpdate: cfg.RedrawOnUpdate,
		regionTTL:      ttl,
	}, nil
}

// Create obfuscates and persists a new site.
func (s *ChargeSiteService) Create(ctx context.Context, in domain.ChargeSiteInput) (*domain.ChargeSite, error) {
	ctx, span := tracer.Start(ctx, "ChargeSiteService.Create")
	defer span.End()

	site := siteFromInput(in)
	if err := s.policy.Apply(site); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.sites.Create(ctx, site); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(telemetry.AttrSiteID.String(site.ID))

	s.invalidateRegions(ctx)
	s.publish(ctx, domain.SiteCreated, site)
	return site, nil
}

// Update replaces the state of an existing site and re-runs obfuscation.
func (s *ChargeSiteService) Update(ctx context.Context, id string, in domain.ChargeSiteInput) (*domain.ChargeSite, error) {
	ctx, span := tracer.Start(ctx, "ChargeSiteService.Update", tracerAttrs(id))
	defer span.End()

	existing, err := s.sites.GetByID(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	site := siteFromInput(in)
	site.ID = existing.ID
	site.CreatedAt = existing.CreatedAt

	if !s.redrawOnUpdate && sameObfuscationInputs(existing, site) {
		site.Location = existing.Location
		site.IsObfuscated = existing.IsObfuscated
		metrics.SitesObfuscated.WithLabelValues("kept").Inc()
	} else if err := s.policy.Apply(site); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.sites.Update(ctx, site); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.invalidateRegions(ctx)
	s.publish(ctx, domain.SiteUpdated, site)
	return site, nil
}

// Reobfuscate draws a fresh offset for a stored site without changing
// anything else. Used after MaxObfuscatedRadius changes.
func (s *ChargeSiteService) Reobfuscate(ctx context.Context, id string) (*domain.ChargeSite, error) {
	ctx, span := tracer.Start(ctx, "ChargeSiteService.Reobfuscate", tracerAttrs(id))
	defer span.End()

	site, err := s.sites.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Apply(site); err != nil {
		return nil, fmt.Errorf("reobfuscate %s: %w", id, err)
	}
	if err := s.sites.Update(ctx, site); err != nil {
		return nil, err
	}

	metrics.SitesReobfuscated.Inc()
	s.invalidateRegions(ctx)
	s.publish(ctx, domain.SiteUpdated, site)
	return site, nil
}

// Delete removes a site.
func (s *ChargeSiteService) Delete(ctx context.Context, id string) error {
	if err := s.sites.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateRegions(ctx)
	s.publish(ctx, domain.SiteDeleted, &domain.ChargeSite{ID: id})
	return nil
}

// GetByID returns a single site.
func (s *ChargeSiteService) GetByID(ctx context.Context, id string) (*domain.ChargeSite, error) {
	return s.sites.GetByID(ctx, id)
}

// ListIDs pages through site IDs for batch jobs.
func (s *ChargeSiteService) ListIDs(ctx context.Context, afterID string, limit int) ([]string, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	return s.sites.ListIDs(ctx, afterID, limit)
}

// QueryRegion returns every site whose true position could lie inside the
// viewport. Sites outside it may be included; no ordering is guaranteed.
func (s *ChargeSiteService) QueryRegion(ctx context.Context, vp domain.Viewport) ([]domain.ChargeSite, error) {
	ctx, span := tracer.Start(ctx, "ChargeSiteService.QueryRegion")
	defer span.End()

	radius, err := s.SearchRadius(vp)
	if err != nil {
		metrics.RegionQueries.WithLabelValues("invalid").Inc()
		return nil, err
	}
	metrics.RegionSearchRadius.Observe(radius)
	span.SetAttributes(telemetry.AttrRegionRadius.Float64(radius))

	// Try cache
	var cacheKey string
	if s.cache != nil {
		cacheKey = fmt.Sprintf("chargesites:region:%s:%v:%v:%v",
			s.regionGeneration(ctx), vp.Center.Lat, vp.Center.Lon, radius)
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var sites []domain.ChargeSite
			if err := json.Unmarshal(data, &sites); err == nil {
				span.SetAttributes(telemetry.AttrCacheHit.Bool(true))
				metrics.CacheHits.WithLabelValues("region").Inc()
				metrics.RegionQueries.WithLabelValues("cached").Inc()
				return sites, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("region").Inc()
	}

	sites, err := s.sites.FindWithin(ctx, vp.Center, radius)
	if err != nil {
		metrics.RegionQueries.WithLabelValues("error").Inc()
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	metrics.RegionQueries.WithLabelValues("ok").Inc()
	metrics.RegionResultSize.Observe(float64(len(sites)))
	span.SetAttributes(telemetry.AttrRegionResults.Int(len(sites)))

	if s.cache != nil {
		if data, err := json.Marshal(sites); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.regionTTL)
		}
	}

	return sites, nil
}

// SearchRadius validates vp and returns the radius, around its center, that
// covers every published location a site inside vp can have.
func (s *ChargeSiteService) SearchRadius(vp domain.Viewport) (float64, error) {
	if err := geospatial.ValidateCoordinate(vp.Center.Lat, vp.Center.Lon); err != nil {
		return 0, err
	}
	return s.planner.PlanRadius(vp.LatitudeDelta, vp.LongitudeDelta)
}

// HandleSiteEvent reacts to writes made by other instances.
func (s *ChargeSiteService) HandleSiteEvent(ctx context.Context, event *domain.SiteEvent) error {
	slog.DebugContext(ctx, "site event received", "type", event.Type, "site_id", event.SiteID)
	s.invalidateRegions(ctx)
	return nil
}

// regionGeneration returns the current cache generation, "" when unset.
func (s *ChargeSiteService) regionGeneration(ctx context.Context) string {
	data, err := s.cache.Get(ctx, regionGenerationKey)
	if err != nil {
		return ""
	}
	return string(data)
}

// invalidateRegions moves region lookups to a fresh key space so a writer
// sees its own change on the next query.
func (s *ChargeSiteService) invalidateRegions(ctx context.Context) {
	if s.cache == nil {
		return
	}
	gen := strconv.FormatInt(time.Now().UnixNano(), 36)
	if err := s.cache.Set(ctx, regionGenerationKey, []byte(gen), generationTTL); err != nil {
		slog.WarnContext(ctx, "region cache invalidation failed", "error", err)
	}
}

func (s *ChargeSiteService) publish(ctx context.Context, typ domain.SiteEventType, site *domain.ChargeSite) {
	if s.events == nil {
		return
	}

	event := &domain.SiteEvent{Type: typ, SiteID: site.ID, Time: time.Now().UTC()}
	if typ != domain.SiteDeleted {
		pub := site.Public()
		event.Site = &pub
	}

	// Best-effort; the write already succeeded
	if err := s.events.PublishSiteEvent(ctx, event); err != nil {
		metrics.SiteEventsPublished.WithLabelValues(string(typ), "error").Inc()
		slog.WarnContext(ctx, "publish site event failed", "type", typ, "site_id", site.ID, "error", err)
		return
	}
	metrics.SiteEventsPublished.WithLabelValues(string(typ), "ok").Inc()
}

func tracerAttrs(id string) trace.SpanStartOption {
	return trace.WithAttributes(telemetry.AttrSiteID.String(id))
}

func siteFromInput(in domain.ChargeSiteInput) *domain.ChargeSite {
	return &domain.ChargeSite{
		UserID:              in.UserID,
		TrueLocation:        domain.GeoPoint{Lat: in.Latitude, Lon: in.Longitude},
		ObfuscationDisabled: in.ObfuscationDisabled,
		IsPrivate:           in.Private,
		IsReserved:          in.Reserved,
		RateOfCharge:        in.RateOfCharge,
	}
}

func sameObfuscationInputs(a, b *domain.ChargeSite) bool {
	return a.TrueLocation == b.TrueLocation && a.ObfuscationDisabled == b.ObfuscationDisabled
}

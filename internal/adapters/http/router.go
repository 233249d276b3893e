package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/chargemap/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// legacySunset is when the unversioned /api/chargesites routes go away.
var legacySunset = time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	registerSiteRoutes(app.Group("/v1/chargesites"), deps)

	// Unversioned paths served by the first mobile client
	legacy := app.Group("/api/chargesites", DeprecationMiddleware([]DeprecatedRoute{
		{Path: "/api/chargesites", SunsetDate: legacySunset, Alternative: "/v1/chargesites"},
		{Path: "/api/chargesites/:id", SunsetDate: legacySunset, Alternative: "/v1/chargesites/{id}"},
	}))
	registerSiteRoutes(legacy, deps)

	app.Post("/graphql", timeout.NewWithContext(GraphQLHandler(deps), requestTimeout))

	SetupDocs(app)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if deps.NATS == nil {
			return errServiceUnavailable(c, "live updates are not configured")
		}
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps)))
}

func registerSiteRoutes(r fiber.Router, deps *Dependencies) {
	r.Get("/", timeout.NewWithContext(RegionSitesHandler(deps), requestTimeout))
	r.Post("/", timeout.NewWithContext(CreateSiteHandler(deps), requestTimeout))
	r.Get("/:id", timeout.NewWithContext(GetSiteHandler(deps), requestTimeout))
	r.Put("/:id", timeout.NewWithContext(UpdateSiteHandler(deps), requestTimeout))
	r.Delete("/:id", timeout.NewWithContext(DeleteSiteHandler(deps), requestTimeout))
}

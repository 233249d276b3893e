package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control on GET responses the handler left
// unset. Write responses are never cached.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			c.Set("Cache-Control", "no-store")
			return err
		}
		if c.Response().StatusCode() != fiber.StatusOK || c.GetRespHeader("Cache-Control") != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "no-cache"

		case path == "/metrics":
			ttl = "no-cache"

		case strings.HasPrefix(path, "/docs"):
			ttl = "public, max-age=3600"

		case strings.HasPrefix(path, "/v1/chargesites/"), strings.HasPrefix(path, "/api/chargesites/"):
			ttl = "public, max-age=60"

		case strings.HasPrefix(path, "/v1/"), strings.HasPrefix(path, "/api/"):
			ttl = "public, max-age=30"
		}

		if ttl != "" {
			c.Set("Cache-Control", ttl)
		}

		return err
	}
}

package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control on GET responses that did not set
// their own. Error responses are left alone. A finished run is immutable.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet || c.Response().StatusCode() >= fiber.StatusBadRequest ||
			c.GetRespHeader(fiber.HeaderCacheControl) != "" {
			return err
		}
		if ttl := cacheControl(c.Path()); ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}
		return err
	}
}

func cacheControl(path string) string {
	switch {
	case path == "/v1/health" || path == "/v1/ready":
		return "public, max-age=10"
	case path == "/metrics":
		return "no-cache"
	case path == "/v1/runs" || path == "/v1/runs/latest":
		return "no-cache"
	case strings.HasPrefix(path, "/v1/runs/"):
		return "public, max-age=3600, immutable"
	case strings.HasPrefix(path, "/v1/individuals/") && strings.HasSuffix(path, "/popup"):
		return "private, max-age=600"
	case strings.HasPrefix(path, "/v1/groups"):
		return "public, max-age=60"
	case strings.HasPrefix(path, "/docs"):
		return "public, max-age=3600"
	case strings.HasPrefix(path, "/v1/"):
		return "no-cache"
	}
	return ""
}

package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/seacorridor/internal/pkg/metrics"
)

// RouteOptions tunes the router.
type RouteOptions struct {
	RequestTimeout time.Duration // plain API requests
	RunTimeout     time.Duration // synchronous runs and rendering
	RateLimit      int           // requests per minute per IP, 0 disables
}

// DefaultRouteOptions returns the production defaults.
func DefaultRouteOptions() RouteOptions {
	return RouteOptions{
		RequestTimeout: 15 * time.Second,
		RunTimeout:     5 * time.Minute,
		RateLimit:      120,
	}
}

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies, opts RouteOptions) {
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	if opts.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        opts.RateLimit,
			Expiration: 1 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
			},
		}))
	}

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

	short := func(h fiber.Handler) fiber.Handler { return withTimeout(h, opts.RequestTimeout) }
	long := func(h fiber.Handler) fiber.Handler { return withTimeout(h, opts.RunTimeout) }

	v1 := app.Group("/v1")
	v1.Get("/groups", short(ListGroupsHandler(deps)))
	v1.Get("/groups/:id/observations", short(GroupObservationsHandler(deps)))
	v1.Post("/observations", short(CreateObservationHandler(deps)))

	v1.Put("/individuals/:id", short(PutIndividualHandler(deps)))
	v1.Patch("/individuals/:id", short(PatchIndividualHandler(deps)))
	v1.Delete("/individuals/:id", short(DeleteIndividualHandler(deps)))
	v1.Get("/individuals/:id/popup", short(PopupHandler(deps)))

	v1.Post("/runs", long(StartRunHandler(deps)))
	v1.Get("/runs", short(ListRunsHandler(deps)))
	v1.Get("/runs/latest", short(LatestRunHandler(deps)))
	v1.Get("/runs/:id", short(GetRunHandler(deps)))
	v1.Get("/runs/:id/geojson", long(RenderRunHandler(deps, geoJSONSink)))
	v1.Get("/runs/:id/kml", long(RenderRunHandler(deps, kmlSink)))

	app.Post("/graphql", long(GraphQLHandler(deps)))

	SetupDocs(app)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}

func withTimeout(h fiber.Handler, d time.Duration) fiber.Handler {
	if d <= 0 {
		return h
	}
	return timeout.NewWithContext(h, d)
}

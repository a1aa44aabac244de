package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/seacorridor/internal/adapters/http"
	natsadapter "github.com/samirrijal/seacorridor/internal/adapters/nats"
	"github.com/samirrijal/seacorridor/internal/adapters/render"
	"github.com/samirrijal/seacorridor/internal/bootstrap"
	"github.com/samirrijal/seacorridor/internal/core/domain"
	"github.com/samirrijal/seacorridor/internal/core/ports"
	"github.com/samirrijal/seacorridor/internal/core/usecases"
	"github.com/samirrijal/seacorridor/internal/pkg/config"
	"github.com/samirrijal/seacorridor/internal/pkg/logging"
	"github.com/samirrijal/seacorridor/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("seacorridor-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer func() { _ = shutdown(context.Background()) }()
		}
	}

	// Database
	store, err := bootstrap.OpenStore(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer store.Close()

	deps := &http.Dependencies{DB: store}

	// Cache
	var cache ports.CacheService
	if c := bootstrap.OpenCache(cfg.Valkey); c != nil {
		defer c.Close()
		cache = c
		deps.Cache = c
	}

	// NATS
	var engineOpts []usecases.EngineOption
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			engineOpts = append(engineOpts, usecases.WithPublisher(pub))
			deps.Requests = pub
		}

		// Raw NATS connection for WebSocket relay
		nc, err := natsadapter.RawConn(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats ws conn unavailable", "error", err)
		} else {
			defer nc.Close()
			deps.NATS = nc
		}
	}

	engine, err := bootstrap.NewEngine(cfg, store.Observations, cache, engineOpts...)
	if err != nil {
		log.Fatalf("engine: %v", err)
	}
	history, err := usecases.NewRunHistory(cfg.Engine.HistorySize)
	if err != nil {
		log.Fatalf("run history: %v", err)
	}
	popups, err := render.NewPopupCache(cfg.Render.PhotoDir, cfg.Render.PopupCacheSize)
	if err != nil {
		log.Fatalf("popup cache: %v", err)
	}

	deps.Observations = usecases.NewObservationService(store.Observations, store.Individuals, cache)
	deps.Runs = usecases.NewRunService(engine, history)
	deps.GeoJSON = render.GeoJSON{}
	deps.KML = render.KML{Name: "Migration corridors"}
	deps.Popups = popups

	// Queued runs finish on the worker; log them here for operators.
	if cfg.NATS.Enabled {
		if sub, err := natsadapter.NewSubscriber(cfg.NATS.URL); err != nil {
			slog.Warn("nats subscriber unavailable", "error", err)
		} else {
			defer sub.Close()
			err := sub.SubscribeRunCompleted(ctx, func(ctx context.Context, s *domain.RunSummary) error {
				slog.Info("run completed", "run_id", s.ID, "corridors", s.Corridors, "overlaps", s.Overlaps)
				return nil
			})
			if err != nil {
				slog.Warn("subscribe run completed failed", "error", err)
			}
		}
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    4 * 1024 * 1024,
		AppName:      "Seacorridor API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
		MaxAge:       3600,
	}))

	opts := http.DefaultRouteOptions()
	opts.RunTimeout = time.Duration(cfg.Server.RunTimeout) * time.Second
	http.SetupRoutes(app, deps, opts)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

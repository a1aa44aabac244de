// Package bootstrap assembles the store and the corridor engine from
// configuration for the commands under cmd/.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samirrijal/seacorridor/internal/adapters/postgres"
	"github.com/samirrijal/seacorridor/internal/adapters/seagraph"
	"github.com/samirrijal/seacorridor/internal/adapters/sqlite"
	"github.com/samirrijal/seacorridor/internal/adapters/valkey"
	"github.com/samirrijal/seacorridor/internal/core/ports"
	"github.com/samirrijal/seacorridor/internal/core/usecases"
	"github.com/samirrijal/seacorridor/internal/pkg/config"
)

// Store bundles the repositories of the configured database driver.
type Store struct {
	Observations ports.ObservationRepository
	Individuals  ports.IndividualRepository

	ping  func(ctx context.Context) error
	close func()
}

// OpenStore connects to PostgreSQL or opens the SQLite file, depending on
// the configured driver. SQLite is migrated on open.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	switch cfg.Driver {
	case "sqlite":
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Store{
			Observations: s,
			Individuals:  s,
			ping:         s.Ping,
			close:        func() { _ = s.Close() },
		}, nil
	case "postgres":
		db, err := postgres.New(ctx, cfg.DSN())
		if err != nil {
			return nil, err
		}
		return &Store{
			Observations: postgres.NewObservationRepo(db),
			Individuals:  postgres.NewIndividualRepo(db),
			ping:         db.Ping,
			close:        db.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error { return s.ping(ctx) }

// Close releases the database.
func (s *Store) Close() { s.close() }

// OpenCache connects to Valkey when it is enabled. It returns nil when
// caching is off or unreachable.
func OpenCache(cfg config.ValkeyConfig) *valkey.Cache {
	if !cfg.Enabled {
		return nil
	}
	cache, err := valkey.New(cfg.Addr, valkey.DefaultPrefix)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
		return nil
	}
	return cache
}

// NewEngine loads the sea network and builds the corridor engine. cache and
// opts are optional.
func NewEngine(cfg *config.Config, observations ports.ObservationRepository, cache ports.CacheService, opts ...usecases.EngineOption) (*usecases.MigrationEngine, error) {
	var graphOpts []seagraph.Option
	if cfg.SeaGraph.DensifyStepDeg > 0 {
		graphOpts = append(graphOpts, seagraph.WithDensify(cfg.SeaGraph.DensifyStepDeg))
	}
	graph, err := seagraph.Load(cfg.SeaGraph.NetworkPath, graphOpts...)
	if err != nil {
		return nil, fmt.Errorf("load sea network: %w", err)
	}
	slog.Info("sea network loaded", "path", cfg.SeaGraph.NetworkPath, "nodes", graph.Nodes())

	opts = append([]usecases.EngineOption{
		usecases.WithWorkers(cfg.Engine.Workers),
		usecases.WithDefaultWidth(cfg.Engine.DefaultWidthKm),
	}, opts...)

	return usecases.NewMigrationEngine(
		observations,
		usecases.NewSeaRouteResolver(graph, cache, cfg.Engine.RouteCacheTTL),
		usecases.NewCorridorBuilder(cfg.Engine.SampleCount, cfg.Engine.Smoothing),
		usecases.NewOverlapDetector(cfg.Engine.Workers),
		opts...,
	), nil
}

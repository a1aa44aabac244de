package main

import (
	"context"
	"flag"
	"log"
	"log/slog"

	"github.com/samirrijal/seacorridor/internal/adapters/regions"
	"github.com/samirrijal/seacorridor/internal/bootstrap"
	"github.com/samirrijal/seacorridor/internal/pkg/config"
	"github.com/samirrijal/seacorridor/internal/pkg/logging"
	"github.com/samirrijal/seacorridor/internal/synthetic"
)

// seed fills the store with synthetic groups whose observations all fall
// inside the ocean mask.
func main() {
	groups := flag.Int("groups", 10, "number of groups to generate")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	cfg, err := config.Load("seacorridor-seed")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()

	ocean, err := regions.Load(cfg.Regions.OceanPath)
	if err != nil {
		log.Fatalf("ocean mask: %v", err)
	}
	slog.Info("ocean mask loaded", "path", cfg.Regions.OceanPath, "polygons", ocean.Len())

	genCfg := synthetic.DefaultConfig(*groups)
	genCfg.Seed = *seed
	gen, err := synthetic.New(genCfg, ocean)
	if err != nil {
		log.Fatalf("generator: %v", err)
	}
	ds, err := gen.Generate(ctx)
	if err != nil {
		log.Fatalf("generate: %v", err)
	}

	store, err := bootstrap.OpenStore(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer store.Close()

	for i := range ds.Individuals {
		if err := store.Individuals.Create(ctx, &ds.Individuals[i]); err != nil {
			log.Fatalf("create individual %d: %v", ds.Individuals[i].ID, err)
		}
	}
	if err := store.Observations.InsertBatch(ctx, ds.Observations); err != nil {
		log.Fatalf("insert observations: %v", err)
	}

	slog.Info("seed complete",
		"groups", *groups,
		"individuals", len(ds.Individuals),
		"observations", len(ds.Observations),
	)
}

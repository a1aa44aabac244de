package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/samirrijal/seacorridor/internal/adapters/render"
	"github.com/samirrijal/seacorridor/internal/bootstrap"
	"github.com/samirrijal/seacorridor/internal/core/domain"
	"github.com/samirrijal/seacorridor/internal/core/ports"
	"github.com/samirrijal/seacorridor/internal/pkg/config"
	"github.com/samirrijal/seacorridor/internal/pkg/logging"
)

// corridors runs the pipeline once over the stored observations and writes
// the map as GeoJSON and KML.
func main() {
	width := flag.Float64("width", 0, "overlap threshold in km (0 uses engine.default_width_km)")
	samples := flag.Int("samples", 0, "points per smoothed route (0 uses engine.sample_count)")
	flag.Parse()

	cfg, err := config.Load("seacorridor-corridors")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := bootstrap.OpenStore(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer store.Close()

	engine, err := bootstrap.NewEngine(cfg, store.Observations, nil)
	if err != nil {
		log.Fatalf("engine: %v", err)
	}

	result, err := engine.Run(ctx, domain.RunRequest{WidthKm: *width, SampleCount: *samples})
	if err != nil {
		log.Fatalf("run: %v", err)
	}
	for _, f := range result.Failures {
		slog.Warn("group failed", "group_id", f.GroupID, "kind", f.Kind, "reason", f.Reason)
	}

	obs, err := store.Observations.ListAll(ctx)
	if err != nil {
		log.Fatalf("list observations: %v", err)
	}

	sinks := map[string]ports.RenderSink{
		"map.geojson": render.GeoJSON{},
		"map.kml":     render.KML{Name: "Migration corridors"},
	}
	for name, sink := range sinks {
		data, err := sink.Render(ctx, result, obs)
		if err != nil {
			log.Fatalf("render %s: %v", name, err)
		}
		path := filepath.Join(cfg.Render.OutputDir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			log.Fatalf("write %s: %v", path, err)
		}
		slog.Info("map written", "path", path, "bytes", len(data))
	}

	slog.Info("corridor run complete",
		"run_id", result.ID,
		"corridors", len(result.Corridors),
		"overlaps", len(result.Overlaps),
		"failures", len(result.Failures),
	)
}

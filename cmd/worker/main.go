package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/seacorridor/internal/adapters/nats"
	"github.com/samirrijal/seacorridor/internal/bootstrap"
	"github.com/samirrijal/seacorridor/internal/core/domain"
	"github.com/samirrijal/seacorridor/internal/core/ports"
	"github.com/samirrijal/seacorridor/internal/core/usecases"
	"github.com/samirrijal/seacorridor/internal/pkg/config"
	"github.com/samirrijal/seacorridor/internal/pkg/logging"
	"github.com/samirrijal/seacorridor/internal/workflows"
)

func main() {
	cfg, err := config.Load("seacorridor-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := bootstrap.OpenStore(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer store.Close()

	var cache ports.CacheService
	if c := bootstrap.OpenCache(cfg.Valkey); c != nil {
		defer c.Close()
		cache = c
	}

	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer pub.Close()

	engine, err := bootstrap.NewEngine(cfg, store.Observations, cache, usecases.WithPublisher(pub))
	if err != nil {
		log.Fatalf("engine: %v", err)
	}
	history, err := usecases.NewRunHistory(cfg.Engine.HistorySize)
	if err != nil {
		log.Fatalf("run history: %v", err)
	}

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.CorridorRunWorkflow)
	w.RegisterActivity(&workflows.CorridorActivities{
		Engine:       engine,
		Observations: store.Observations,
		Runs:         usecases.NewRunService(engine, history),
	})

	// Queued run requests become workflow executions.
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer sub.Close()

	err = sub.SubscribeRunRequests(ctx, func(ctx context.Context, req *domain.RunRequest) error {
		run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
			ID:        "corridor-run-" + uuid.NewString(),
			TaskQueue: cfg.Temporal.TaskQueue,
		}, workflows.CorridorRunWorkflow, workflows.CorridorRunInput{
			Request:        *req,
			DefaultWidthKm: cfg.Engine.DefaultWidthKm,
		})
		if err != nil {
			return fmt.Errorf("start corridor run: %w", err)
		}
		slog.Info("corridor run started", "workflow_id", run.GetID(), "width_km", req.WidthKm)
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe run requests: %v", err)
	}

	slog.Info("corridor worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}

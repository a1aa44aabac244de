package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/seacorridor/internal/core/domain"
	"github.com/samirrijal/seacorridor/internal/core/geometry"
	"github.com/samirrijal/seacorridor/internal/core/ports"
	"github.com/samirrijal/seacorridor/internal/pkg/metrics"
	"github.com/samirrijal/seacorridor/internal/pkg/telemetry"
)

// DefaultWidthKm is the overlap threshold used when a run does not set one.
const DefaultWidthKm = 1000

// GroupOutcome is the product of a single group's pipeline.
type GroupOutcome struct {
	Route    *domain.Route
	Corridor *domain.Corridor
}

// MigrationEngine runs the corridor pipeline for every group and then looks
// for overlaps between the resulting corridors.
type MigrationEngine struct {
	observations ports.ObservationRepository
	resolver     *SeaRouteResolver
	builder      *CorridorBuilder
	overlaps     *OverlapDetector
	publisher    ports.EventPublisher
	workers      int
	widthKm      float64
}

// EngineOption customizes a MigrationEngine.
type EngineOption func(*MigrationEngine)

// WithPublisher publishes corridors, overlaps and run summaries as they are
// produced.
func WithPublisher(p ports.EventPublisher) EngineOption {
	return func(e *MigrationEngine) { e.publisher = p }
}

// WithWorkers bounds the number of groups processed concurrently.
func WithWorkers(n int) EngineOption {
	return func(e *MigrationEngine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithDefaultWidth sets the overlap threshold used when a run passes zero.
func WithDefaultWidth(km float64) EngineOption {
	return func(e *MigrationEngine) {
		if km > 0 {
			e.widthKm = km
		}
	}
}

// NewMigrationEngine creates a new MigrationEngine.
func NewMigrationEngine(
	observations ports.ObservationRepository,
	resolver *SeaRouteResolver,
	builder *CorridorBuilder,
	overlaps *OverlapDetector,
	opts ...EngineOption,
) *MigrationEngine {
	e := &MigrationEngine{
		observations: observations,
		resolver:     resolver,
		builder:      builder,
		overlaps:     overlaps,
		workers:      runtime.NumCPU(),
		widthKm:      DefaultWidthKm,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Width returns the overlap threshold for a requested width in kilometers.
func (e *MigrationEngine) Width(requestedKm float64) float64 {
	if requestedKm == 0 {
		return e.widthKm
	}
	return requestedKm
}

// BuildGroup runs fit, route, smooth and offset for one group. A positive
// sampleCount overrides the builder default.
func (e *MigrationEngine) BuildGroup(ctx context.Context, groupID int64, sampleCount int) (*GroupOutcome, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanGroup)
	defer span.End()
	span.SetAttributes(telemetry.AttrGroupID.Int64(groupID))

	obs, err := e.observations.GetGroupObservations(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("get observations for group %d: %w", groupID, err)
	}

	starts, finishes := partition(obs)
	if len(starts) == 0 {
		return nil, &domain.DataError{GroupID: groupID, Role: domain.RoleStart, Err: domain.ErrMissingRole}
	}
	if len(finishes) == 0 {
		return nil, &domain.DataError{GroupID: groupID, Role: domain.RoleFinish, Err: domain.ErrMissingRole}
	}

	origin, err := geometry.FitCircle(starts)
	if err != nil {
		return nil, err
	}
	destination, err := geometry.FitCircle(finishes)
	if err != nil {
		return nil, err
	}

	path, err := e.resolver.ShortestPath(ctx, origin.Center, destination.Center)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	route, corridor, err := e.builder.Build(groupID, path, origin, destination, sampleCount)
	if err != nil {
		return nil, err
	}
	return &GroupOutcome{Route: route, Corridor: corridor}, nil
}

// DetectOverlaps compares corridors with a threshold given in kilometers.
func (e *MigrationEngine) DetectOverlaps(ctx context.Context, corridors []domain.Corridor, widthKm float64) ([]domain.OverlapRegion, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanOverlaps)
	defer span.End()
	span.SetAttributes(telemetry.AttrWidthKm.Float64(widthKm))

	regions, err := e.overlaps.Detect(ctx, corridors, widthKm*1000)
	if err != nil {
		return nil, fmt.Errorf("detect overlaps: %w", err)
	}
	metrics.OverlapsDetected.Add(float64(len(regions)))
	return regions, nil
}

// Run processes every known group and then detects overlaps among the
// corridors that were built. A failing group is recorded in the result and
// does not stop the others.
func (e *MigrationEngine) Run(ctx context.Context, req domain.RunRequest) (*domain.RunResult, error) {
	if req.WidthKm < 0 {
		return nil, fmt.Errorf("%w: width must not be negative, got %v", domain.ErrInvalidInput, req.WidthKm)
	}
	widthKm := e.Width(req.WidthKm)

	result := &domain.RunResult{
		ID:        uuid.NewString(),
		WidthKm:   widthKm,
		StartedAt: time.Now().UTC(),
	}

	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanRun)
	defer span.End()
	span.SetAttributes(telemetry.AttrRunID.String(result.ID), telemetry.AttrWidthKm.Float64(widthKm))

	groups, err := e.observations.ListGroups(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("list groups: %w", err)
	}

	outcomes := make([]*GroupOutcome, len(groups))
	failures := make([]*domain.GroupFailure, len(groups))

	var wg sync.WaitGroup
	sem := make(chan struct{}, e.workers)

	for i, groupID := range groups {
		wg.Add(1)
		go func(i int, groupID int64) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				failures[i] = NewGroupFailure(groupID, err)
				return
			}

			out, err := e.BuildGroup(ctx, groupID, req.SampleCount)
			if err != nil {
				failures[i] = NewGroupFailure(groupID, err)
				return
			}
			outcomes[i] = out
		}(i, groupID)
	}
	wg.Wait()

	var corridors []domain.Corridor
	for i := range groups {
		if f := failures[i]; f != nil {
			metrics.GroupsProcessed.WithLabelValues(string(f.Kind)).Inc()
			slog.Warn("group skipped", "run_id", result.ID, "group_id", f.GroupID, "kind", f.Kind, "error", f.Reason)
			result.Failures = append(result.Failures, *f)
			continue
		}
		metrics.GroupsProcessed.WithLabelValues("ok").Inc()
		result.Routes = append(result.Routes, *outcomes[i].Route)
		corridors = append(corridors, *outcomes[i].Corridor)
	}
	result.Corridors = corridors

	overlaps, err := e.DetectOverlaps(ctx, corridors, widthKm)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	result.Overlaps = overlaps
	result.FinishedAt = time.Now().UTC()
	metrics.RunDuration.Observe(result.FinishedAt.Sub(result.StartedAt).Seconds())

	e.Publish(ctx, result)

	slog.Info("corridor run complete",
		"run_id", result.ID,
		"groups", len(groups),
		"corridors", len(result.Corridors),
		"overlaps", len(result.Overlaps),
		"failures", len(result.Failures),
	)
	return result, nil
}

// Publish emits the corridors, overlaps and summary of a finished run. Publish
// failures are logged and do not fail the run.
func (e *MigrationEngine) Publish(ctx context.Context, result *domain.RunResult) {
	if e.publisher == nil {
		return
	}
	for i := range result.Corridors {
		if err := e.publisher.PublishCorridor(ctx, result.ID, &result.Corridors[i]); err != nil {
			slog.Warn("publish corridor failed", "run_id", result.ID, "error", err)
		}
	}
	for i := range result.Overlaps {
		if err := e.publisher.PublishOverlap(ctx, result.ID, &result.Overlaps[i]); err != nil {
			slog.Warn("publish overlap failed", "run_id", result.ID, "error", err)
		}
	}
	summary := result.Summary()
	if err := e.publisher.PublishRunCompleted(ctx, &summary); err != nil {
		slog.Warn("publish run summary failed", "run_id", result.ID, "error", err)
	}
	if data, err := json.Marshal(summary); err == nil {
		if err := e.publisher.PublishBroadcast(ctx, data); err != nil {
			slog.Warn("broadcast run summary failed", "run_id", result.ID, "error", err)
		}
	}
}

func partition(obs []domain.Observation) (starts, finishes []domain.GeoPoint) {
	for _, o := range obs {
		switch o.Role {
		case domain.RoleStart:
			starts = append(starts, o.Location)
		case domain.RoleFinish:
			finishes = append(finishes, o.Location)
		}
	}
	return starts, finishes
}

// NewGroupFailure classifies err as the failure of one group. A group whose
// observations vanished counts as a data failure.
func NewGroupFailure(groupID int64, err error) *domain.GroupFailure {
	kind := domain.KindOf(err)
	if errors.Is(err, domain.ErrNotFound) {
		kind = domain.KindData
	}
	return &domain.GroupFailure{GroupID: groupID, Kind: kind, Reason: err.Error()}
}

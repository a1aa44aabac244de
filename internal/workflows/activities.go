package workflows

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samirrijal/seacorridor/internal/core/domain"
	"github.com/samirrijal/seacorridor/internal/core/ports"
	"github.com/samirrijal/seacorridor/internal/core/usecases"
)

// Activity names registered with the worker.
const (
	ActivityListGroups     = "ListGroups"
	ActivityBuildGroup     = "BuildGroup"
	ActivityDetectOverlaps = "DetectOverlaps"
	ActivityPublishRun     = "PublishRun"
)

// TaskQueue is the queue corridor runs are scheduled on.
const TaskQueue = "corridor-runs"

// BuildGroupInput selects one group of a run.
type BuildGroupInput struct {
	RunID       string
	GroupID     int64
	SampleCount int
}

// BuildGroupResult carries either the built route and corridor or the reason
// the group was skipped. Group failures are data, not activity errors, so
// they are never retried.
type BuildGroupResult struct {
	Route    *domain.Route
	Corridor *domain.Corridor
	Failure  *domain.GroupFailure
}

// DetectOverlapsInput is the corridor set of a run.
type DetectOverlapsInput struct {
	Corridors []domain.Corridor
	WidthKm   float64
}

// CorridorActivities holds the activity implementations for corridor runs.
type CorridorActivities struct {
	Engine       *usecases.MigrationEngine
	Observations ports.ObservationRepository
	Runs         *usecases.RunService
}

// ListGroups returns the groups to process.
func (a *CorridorActivities) ListGroups(ctx context.Context) ([]int64, error) {
	groups, err := a.Observations.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// BuildGroup runs the per-group pipeline. Only cancellation and storage
// errors are returned as errors.
func (a *CorridorActivities) BuildGroup(ctx context.Context, in BuildGroupInput) (*BuildGroupResult, error) {
	out, err := a.Engine.BuildGroup(ctx, in.GroupID, in.SampleCount)
	if err != nil {
		f := usecases.NewGroupFailure(in.GroupID, err)
		if f.Kind == domain.KindCancelled || f.Kind == domain.KindInternal {
			return nil, err
		}
		slog.Warn("group skipped", "run_id", in.RunID, "group_id", in.GroupID, "kind", f.Kind, "error", f.Reason)
		return &BuildGroupResult{Failure: f}, nil
	}
	return &BuildGroupResult{Route: out.Route, Corridor: out.Corridor}, nil
}

// DetectOverlaps compares all corridors of a run.
func (a *CorridorActivities) DetectOverlaps(ctx context.Context, in DetectOverlapsInput) ([]domain.OverlapRegion, error) {
	return a.Engine.DetectOverlaps(ctx, in.Corridors, in.WidthKm)
}

// PublishRun records the finished run and emits its events.
func (a *CorridorActivities) PublishRun(ctx context.Context, result *domain.RunResult) error {
	if a.Runs != nil {
		a.Runs.Record(result)
	}
	a.Engine.Publish(ctx, result)
	slog.Info("corridor run published",
		"run_id", result.ID,
		"corridors", len(result.Corridors),
		"overlaps", len(result.Overlaps),
		"failures", len(result.Failures),
	)
	return nil
}

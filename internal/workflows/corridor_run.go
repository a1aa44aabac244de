package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/seacorridor/internal/core/domain"
)

// CorridorRunInput is the input for the corridor run workflow.
type CorridorRunInput struct {
	Request domain.RunRequest
	// DefaultWidthKm replaces a zero width in Request.
	DefaultWidthKm float64
}

// CorridorRunWorkflow builds every group's corridor in parallel, detects
// overlaps between them, then records and publishes the result. The run id
// is the workflow id.
func CorridorRunWorkflow(ctx workflow.Context, input CorridorRunInput) (*domain.RunResult, error) {
	logger := workflow.GetLogger(ctx)

	if input.Request.WidthKm < 0 {
		return nil, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("width must not be negative, got %v", input.Request.WidthKm), "InvalidInput", nil)
	}
	widthKm := input.Request.WidthKm
	if widthKm == 0 {
		widthKm = input.DefaultWidthKm
	}

	result := &domain.RunResult{
		ID:        workflow.GetInfo(ctx).WorkflowExecution.ID,
		WidthKm:   widthKm,
		StartedAt: workflow.Now(ctx).UTC(),
	}
	logger.Info("Starting corridor run", "runID", result.ID, "widthKm", widthKm)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: time.Second,
			MaximumAttempts: 3,
		},
	})

	// Step 1: groups
	var groups []int64
	if err := workflow.ExecuteActivity(ctx, ActivityListGroups).Get(ctx, &groups); err != nil {
		return nil, err
	}

	// Step 2: one activity per group, collected in group order
	futures := make([]workflow.Future, len(groups))
	for i, g := range groups {
		futures[i] = workflow.ExecuteActivity(ctx, ActivityBuildGroup, BuildGroupInput{
			RunID:       result.ID,
			GroupID:     g,
			SampleCount: input.Request.SampleCount,
		})
	}
	for i, f := range futures {
		var out BuildGroupResult
		if err := f.Get(ctx, &out); err != nil {
			result.Failures = append(result.Failures, domain.GroupFailure{
				GroupID: groups[i],
				Kind:    domain.KindInternal,
				Reason:  err.Error(),
			})
			continue
		}
		if out.Failure != nil {
			result.Failures = append(result.Failures, *out.Failure)
			continue
		}
		result.Routes = append(result.Routes, *out.Route)
		result.Corridors = append(result.Corridors, *out.Corridor)
	}

	// Step 3: overlaps
	if err := workflow.ExecuteActivity(ctx, ActivityDetectOverlaps, DetectOverlapsInput{
		Corridors: result.Corridors,
		WidthKm:   widthKm,
	}).Get(ctx, &result.Overlaps); err != nil {
		return nil, err
	}
	result.FinishedAt = workflow.Now(ctx).UTC()

	// Step 4: record and publish. The result stands even if this fails.
	if err := workflow.ExecuteActivity(ctx, ActivityPublishRun, result).Get(ctx, nil); err != nil {
		logger.Warn("publishing run failed", "runID", result.ID, "error", err)
	}

	logger.Info("Corridor run finished",
		"runID", result.ID,
		"corridors", len(result.Corridors),
		"overlaps", len(result.Overlaps),
		"failures", len(result.Failures),
	)
	return result, nil
}

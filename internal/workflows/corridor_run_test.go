package workflows

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"

	"github.com/samirrijal/seacorridor/internal/core/domain"
	"github.com/samirrijal/seacorridor/internal/core/usecases"
)

type fakeObservations struct {
	obs map[int64][]domain.Observation
}

func (f *fakeObservations) ListGroups(ctx context.Context) ([]int64, error) {
	return []int64{1, 2, 3}, nil
}

func (f *fakeObservations) GetGroupObservations(ctx context.Context, groupID int64) ([]domain.Observation, error) {
	return f.obs[groupID], nil
}

func (f *fakeObservations) ListAll(ctx context.Context) ([]domain.Observation, error) {
	var all []domain.Observation
	for _, o := range f.obs {
		all = append(all, o...)
	}
	return all, nil
}

func (f *fakeObservations) Insert(ctx context.Context, obs *domain.Observation) error { return nil }

func (f *fakeObservations) InsertBatch(ctx context.Context, obs []domain.Observation) error {
	return nil
}

type lineGraph struct{}

func (lineGraph) ShortestPath(ctx context.Context, a, b domain.GeoPoint) ([]domain.GeoPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := make([]domain.GeoPoint, 6)
	for i := range path {
		f := float64(i) / 5
		path[i] = domain.GeoPoint{Lat: a.Lat + f*(b.Lat-a.Lat), Lon: a.Lon + f*(b.Lon-a.Lon)}
	}
	return path, nil
}

func obsAt(group int64, role domain.Role, pts ...domain.GeoPoint) []domain.Observation {
	out := make([]domain.Observation, len(pts))
	for i, p := range pts {
		out[i] = domain.Observation{IndividualID: group*100 + int64(i), GroupID: group, Role: role, Location: p}
	}
	return out
}

// groups 1 and 2 share a lane, group 3 has no finish observations
func newActivities(t *testing.T) (*CorridorActivities, *usecases.RunService) {
	t.Helper()
	repo := &fakeObservations{obs: map[int64][]domain.Observation{
		1: append(
			obsAt(1, domain.RoleStart, domain.GeoPoint{Lat: 0, Lon: 0}, domain.GeoPoint{Lat: 0.2, Lon: 0.2}),
			obsAt(1, domain.RoleFinish, domain.GeoPoint{Lat: 5, Lon: 10}, domain.GeoPoint{Lat: 5.2, Lon: 10.1})...),
		2: append(
			obsAt(2, domain.RoleStart, domain.GeoPoint{Lat: 0.1, Lon: 0.1}, domain.GeoPoint{Lat: 0.3, Lon: 0}),
			obsAt(2, domain.RoleFinish, domain.GeoPoint{Lat: 5.1, Lon: 10}, domain.GeoPoint{Lat: 4.9, Lon: 10.2})...),
		3: obsAt(3, domain.RoleStart, domain.GeoPoint{Lat: 40, Lon: 40}),
	}}
	engine := usecases.NewMigrationEngine(repo,
		usecases.NewSeaRouteResolver(lineGraph{}, nil, 0),
		usecases.NewCorridorBuilder(25, 0.1),
		usecases.NewOverlapDetector(2),
	)
	history, err := usecases.NewRunHistory(4)
	require.NoError(t, err)
	runs := usecases.NewRunService(engine, history)
	return &CorridorActivities{Engine: engine, Observations: repo, Runs: runs}, runs
}

func TestCorridorRunWorkflow(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	acts, runs := newActivities(t)
	env.RegisterActivity(acts)

	env.ExecuteWorkflow(CorridorRunWorkflow, CorridorRunInput{
		Request:        domain.RunRequest{WidthKm: 50},
		DefaultWidthKm: usecases.DefaultWidthKm,
	})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var result domain.RunResult
	require.NoError(t, env.GetWorkflowResult(&result))

	assert.Equal(t, 50.0, result.WidthKm)
	require.Len(t, result.Corridors, 2)
	assert.Equal(t, int64(1), result.Corridors[0].GroupID)
	assert.Equal(t, int64(2), result.Corridors[1].GroupID)
	require.Len(t, result.Routes, 2)
	assert.Len(t, result.Routes[0].Points, 25)

	require.Len(t, result.Failures, 1)
	assert.Equal(t, int64(3), result.Failures[0].GroupID)
	assert.Equal(t, domain.KindData, result.Failures[0].Kind)

	require.Len(t, result.Overlaps, 1)
	assert.Equal(t, int64(1), result.Overlaps[0].GroupA)
	assert.Equal(t, int64(2), result.Overlaps[0].GroupB)

	recorded, err := runs.Latest()
	require.NoError(t, err)
	assert.Equal(t, result.ID, recorded.ID)
}

func TestCorridorRunWorkflow_DefaultWidth(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	acts, _ := newActivities(t)
	env.RegisterActivity(acts)

	env.ExecuteWorkflow(CorridorRunWorkflow, CorridorRunInput{DefaultWidthKm: 321})
	require.NoError(t, env.GetWorkflowError())

	var result domain.RunResult
	require.NoError(t, env.GetWorkflowResult(&result))
	assert.Equal(t, 321.0, result.WidthKm)
}

func TestCorridorRunWorkflow_NegativeWidth(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	acts, _ := newActivities(t)
	env.RegisterActivity(acts)

	env.ExecuteWorkflow(CorridorRunWorkflow, CorridorRunInput{Request: domain.RunRequest{WidthKm: -1}})
	require.True(t, env.IsWorkflowCompleted())
	assert.Error(t, env.GetWorkflowError())
}

func TestCorridorActivities_BuildGroupFailure(t *testing.T) {
	acts, _ := newActivities(t)

	out, err := acts.BuildGroup(context.Background(), BuildGroupInput{RunID: "r", GroupID: 3})
	require.NoError(t, err)
	require.NotNil(t, out.Failure)
	assert.Equal(t, domain.KindData, out.Failure.Kind)
	assert.Nil(t, out.Corridor)
}

func TestCorridorActivities_BuildGroupCancelled(t *testing.T) {
	acts, _ := newActivities(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := acts.BuildGroup(ctx, BuildGroupInput{RunID: "r", GroupID: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

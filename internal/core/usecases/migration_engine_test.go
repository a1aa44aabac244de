package usecases_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/samirrijal/seacorridor/internal/core/domain"
	"github.com/samirrijal/seacorridor/internal/core/usecases"
)

// cluster returns observations at center±0.449° of longitude, about 50 km
// either side on the equator.
func cluster(groupID int64, role domain.Role, center domain.GeoPoint) []domain.Observation {
	return []domain.Observation{
		{GroupID: groupID, Role: role, Location: domain.GeoPoint{Lat: center.Lat, Lon: center.Lon - 0.449}},
		{GroupID: groupID, Role: role, Location: domain.GeoPoint{Lat: center.Lat, Lon: center.Lon + 0.449}},
	}
}

func newEngine(obs map[int64][]domain.Observation, graph *mockSeaGraph, opts ...usecases.EngineOption) *usecases.MigrationEngine {
	repo := &mockObservationRepo{
		listGroupsFn: func(ctx context.Context) ([]int64, error) {
			ids := make([]int64, 0, len(obs))
			for id := range obs {
				ids = append(ids, id)
			}
			return ids, nil
		},
		getGroupObservationsFn: func(ctx context.Context, groupID int64) ([]domain.Observation, error) {
			return obs[groupID], nil
		},
	}
	return usecases.NewMigrationEngine(
		repo,
		usecases.NewSeaRouteResolver(graph, nil, 0),
		usecases.NewCorridorBuilder(100, 0),
		usecases.NewOverlapDetector(2),
		opts...,
	)
}

func TestMigrationEngine_TwoDistantGroups(t *testing.T) {
	start1 := domain.GeoPoint{Lat: 0, Lon: 0}
	finish1 := domain.GeoPoint{Lat: 0, Lon: 17.966} // ~2,000 km east
	start2 := domain.GeoPoint{Lat: 40, Lon: -40}
	finish2 := domain.GeoPoint{Lat: 45, Lon: -20}

	obs := map[int64][]domain.Observation{
		1: append(cluster(1, domain.RoleStart, start1), cluster(1, domain.RoleFinish, finish1)...),
		2: append(cluster(2, domain.RoleStart, start2), cluster(2, domain.RoleFinish, finish2)...),
	}
	graph := &mockSeaGraph{}
	pub := &mockPublisher{}

	res, err := newEngine(obs, graph, usecases.WithPublisher(pub)).Run(context.Background(), domain.RunRequest{WidthKm: 1000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Failures) != 0 {
		t.Fatalf("expected no failures, got %+v", res.Failures)
	}
	if len(res.Corridors) != 2 {
		t.Fatalf("expected 2 corridors, got %d", len(res.Corridors))
	}
	for _, c := range res.Corridors {
		if len(c.Boundary) != 200 {
			t.Errorf("group %d: expected 200 boundary vertices, got %d", c.GroupID, len(c.Boundary))
		}
	}
	if len(res.Overlaps) != 0 {
		t.Errorf("expected no overlaps, got %d", len(res.Overlaps))
	}

	for _, r := range res.Routes {
		var called bool
		for _, call := range graph.calls {
			if call[0] == r.Origin.Center && call[1] == r.Destination.Center {
				called = true
			}
		}
		if !called {
			t.Errorf("group %d: expected graph call between circle centers %v and %v", r.GroupID, r.Origin.Center, r.Destination.Center)
		}
		if r.GroupID != 1 {
			continue
		}
		if math.Abs(r.Origin.Center.Lon-start1.Lon) > 1e-9 || math.Abs(r.Destination.Center.Lon-finish1.Lon) > 1e-9 {
			t.Errorf("unexpected centers %v -> %v", r.Origin.Center, r.Destination.Center)
		}
		if r.Origin.RadiusMeters < 49000 || r.Origin.RadiusMeters > 51000 {
			t.Errorf("expected ~50 km origin radius, got %.0f", r.Origin.RadiusMeters)
		}
	}

	if pub.corridors != 2 || len(pub.summaries) != 1 {
		t.Errorf("expected 2 corridor events and 1 summary, got %d and %d", pub.corridors, len(pub.summaries))
	}
}

func TestMigrationEngine_PartialFailure(t *testing.T) {
	home := domain.GeoPoint{Lat: 10, Lon: 10}
	away := domain.GeoPoint{Lat: 12, Lon: 20}
	blocked := domain.GeoPoint{Lat: 60, Lon: 60}

	obs := map[int64][]domain.Observation{
		1: append(cluster(1, domain.RoleStart, home), cluster(1, domain.RoleFinish, away)...),
		2: append(cluster(2, domain.RoleStart, home), cluster(2, domain.RoleFinish, away)...),
		3: cluster(3, domain.RoleStart, home),
		4: append(cluster(4, domain.RoleStart, home), cluster(4, domain.RoleFinish, blocked)...),
	}
	graph := &mockSeaGraph{
		shortestPathFn: func(ctx context.Context, o, d domain.GeoPoint) ([]domain.GeoPoint, error) {
			if d == blocked {
				return nil, domain.ErrNoPath
			}
			return straightSeaPath(o, d, 8), nil
		},
	}

	res, err := newEngine(obs, graph).Run(context.Background(), domain.RunRequest{WidthKm: 0.001})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Corridors) != 2 {
		t.Fatalf("expected 2 corridors, got %d", len(res.Corridors))
	}
	kinds := map[int64]domain.ErrorKind{}
	for _, f := range res.Failures {
		kinds[f.GroupID] = f.Kind
	}
	if kinds[3] != domain.KindData {
		t.Errorf("expected data failure for group 3, got %q", kinds[3])
	}
	if kinds[4] != domain.KindRouting {
		t.Errorf("expected routing failure for group 4, got %q", kinds[4])
	}

	// groups 1 and 2 share every input, so their corridors coincide
	if len(res.Overlaps) != 1 {
		t.Fatalf("expected 1 overlap, got %d", len(res.Overlaps))
	}
	ov := res.Overlaps[0]
	if ov.GroupA != 1 || ov.GroupB != 2 {
		t.Errorf("expected overlap 1-2, got %d-%d", ov.GroupA, ov.GroupB)
	}
	if len(ov.Polygon) != 200 {
		t.Errorf("expected overlap to cover the 200-vertex boundary, got %d", len(ov.Polygon))
	}
}

func TestMigrationEngine_DefaultWidthAndSampleCount(t *testing.T) {
	obs := map[int64][]domain.Observation{
		7: append(cluster(7, domain.RoleStart, domain.GeoPoint{Lat: 5, Lon: 5}), cluster(7, domain.RoleFinish, domain.GeoPoint{Lat: 6, Lon: 9})...),
	}
	res, err := newEngine(obs, &mockSeaGraph{}, usecases.WithDefaultWidth(250)).
		Run(context.Background(), domain.RunRequest{SampleCount: 30})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.WidthKm != 250 {
		t.Errorf("expected default width 250, got %v", res.WidthKm)
	}
	if len(res.Routes) != 1 || len(res.Routes[0].Points) != 30 {
		t.Fatalf("expected one 30-point route, got %+v", res.Routes)
	}
	if len(res.Corridors[0].Boundary) != 60 {
		t.Errorf("expected 60 boundary vertices, got %d", len(res.Corridors[0].Boundary))
	}
}

func TestMigrationEngine_ListGroupsError(t *testing.T) {
	repo := &mockObservationRepo{
		listGroupsFn: func(ctx context.Context) ([]int64, error) {
			return nil, errors.New("connection refused")
		},
	}
	eng := usecases.NewMigrationEngine(repo, usecases.NewSeaRouteResolver(&mockSeaGraph{}, nil, 0),
		usecases.NewCorridorBuilder(0, 0), usecases.NewOverlapDetector(1))

	if _, err := eng.Run(context.Background(), domain.RunRequest{}); err == nil {
		t.Fatal("expected error when groups cannot be listed")
	}
}

func TestMigrationEngine_NegativeWidth(t *testing.T) {
	_, err := newEngine(nil, &mockSeaGraph{}).Run(context.Background(), domain.RunRequest{WidthKm: -1})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestMigrationEngine_BuildGroup(t *testing.T) {
	obs := map[int64][]domain.Observation{
		9: append(cluster(9, domain.RoleStart, domain.GeoPoint{Lat: -20, Lon: 170}), cluster(9, domain.RoleFinish, domain.GeoPoint{Lat: -25, Lon: -170})...),
	}
	graph := &mockSeaGraph{
		shortestPathFn: func(ctx context.Context, o, d domain.GeoPoint) ([]domain.GeoPoint, error) {
			return []domain.GeoPoint{o, {Lat: -21, Lon: 178}, {Lat: -23, Lon: -178}, {Lat: -24, Lon: -174}, d}, nil
		},
	}

	out, err := newEngine(obs, graph).BuildGroup(context.Background(), 9, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pts := out.Route.Points
	for i := 1; i < len(pts); i++ {
		if d := pts[i].Lon - pts[i-1].Lon; d <= -180 || d > 180 {
			t.Fatalf("route jumps across the antimeridian at %d: %v -> %v", i, pts[i-1], pts[i])
		}
	}
	if len(out.Corridor.Boundary) != 2*len(pts) {
		t.Errorf("expected %d boundary vertices, got %d", 2*len(pts), len(out.Corridor.Boundary))
	}
}

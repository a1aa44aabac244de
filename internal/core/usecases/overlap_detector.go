package usecases

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"github.com/samirrijal/seacorridor/internal/core/domain"
	"github.com/samirrijal/seacorridor/internal/core/geometry"
)

// OverlapDetector compares every pair of corridors for boundary overlap.
type OverlapDetector struct {
	workers int
}

// NewOverlapDetector creates a new OverlapDetector running at most workers
// pair comparisons at once.
func NewOverlapDetector(workers int) *OverlapDetector {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &OverlapDetector{workers: workers}
}

// Detect returns one region per corridor pair whose boundaries come within
// thresholdMeters of each other. Corridors are ordered by group id before
// pairing, so the output does not depend on the order of the input.
func (d *OverlapDetector) Detect(ctx context.Context, corridors []domain.Corridor, thresholdMeters float64) ([]domain.OverlapRegion, error) {
	if len(corridors) < 2 {
		return nil, nil
	}

	sorted := make([]domain.Corridor, len(corridors))
	copy(sorted, corridors)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].GroupID != sorted[j].GroupID {
			return sorted[i].GroupID < sorted[j].GroupID
		}
		return sorted[i].RouteID < sorted[j].RouteID
	})

	type pair struct{ i, j int }
	pairs := make([]pair, 0, len(sorted)*(len(sorted)-1)/2)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			pairs = append(pairs, pair{i, j})
		}
	}

	results := make([][]domain.GeoPoint, len(pairs))
	var wg sync.WaitGroup
	sem := make(chan struct{}, d.workers)

	for k, p := range pairs {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(k int, p pair) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}
			results[k] = geometry.OverlapPolygon(sorted[p.i].Boundary, sorted[p.j].Boundary, thresholdMeters)
		}(k, p)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var regions []domain.OverlapRegion
	for k, poly := range results {
		if poly == nil {
			continue
		}
		regions = append(regions, domain.OverlapRegion{
			GroupA:  sorted[pairs[k].i].GroupID,
			GroupB:  sorted[pairs[k].j].GroupID,
			Polygon: poly,
		})
	}
	return regions, nil
}

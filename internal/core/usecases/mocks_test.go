package usecases_test

import (
	"context"
	"sync"

	"github.com/samirrijal/seacorridor/internal/core/domain"
)

// --- Mock ObservationRepository ---

type mockObservationRepo struct {
	listGroupsFn           func(ctx context.Context) ([]int64, error)
	getGroupObservationsFn func(ctx context.Context, groupID int64) ([]domain.Observation, error)
	insertFn               func(ctx context.Context, obs *domain.Observation) error
}

func (m *mockObservationRepo) ListGroups(ctx context.Context) ([]int64, error) {
	if m.listGroupsFn != nil {
		return m.listGroupsFn(ctx)
	}
	return nil, nil
}

func (m *mockObservationRepo) GetGroupObservations(ctx context.Context, groupID int64) ([]domain.Observation, error) {
	if m.getGroupObservationsFn != nil {
		return m.getGroupObservationsFn(ctx, groupID)
	}
	return nil, nil
}

func (m *mockObservationRepo) ListAll(ctx context.Context) ([]domain.Observation, error) {
	return nil, nil
}

func (m *mockObservationRepo) Insert(ctx context.Context, obs *domain.Observation) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, obs)
	}
	return nil
}

func (m *mockObservationRepo) InsertBatch(ctx context.Context, obs []domain.Observation) error {
	return nil
}

// --- Mock IndividualRepository ---

type mockIndividualRepo struct {
	createFn  func(ctx context.Context, ind *domain.Individual) error
	getByIDFn func(ctx context.Context, id int64) (*domain.Individual, error)
	updateFn  func(ctx context.Context, id int64, upd domain.IndividualUpdate) (*domain.Individual, error)
}

func (m *mockIndividualRepo) Create(ctx context.Context, ind *domain.Individual) error {
	if m.createFn != nil {
		return m.createFn(ctx, ind)
	}
	return nil
}

func (m *mockIndividualRepo) GetByID(ctx context.Context, id int64) (*domain.Individual, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockIndividualRepo) ListByGroup(ctx context.Context, groupID int64) ([]domain.Individual, error) {
	return nil, nil
}

func (m *mockIndividualRepo) Update(ctx context.Context, id int64, upd domain.IndividualUpdate) (*domain.Individual, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, upd)
	}
	return nil, nil
}

func (m *mockIndividualRepo) Delete(ctx context.Context, id int64) error { return nil }

// --- Mock SeaGraph ---

type mockSeaGraph struct {
	mu             sync.Mutex
	calls          [][2]domain.GeoPoint
	shortestPathFn func(ctx context.Context, origin, destination domain.GeoPoint) ([]domain.GeoPoint, error)
}

func (m *mockSeaGraph) ShortestPath(ctx context.Context, origin, destination domain.GeoPoint) ([]domain.GeoPoint, error) {
	m.mu.Lock()
	m.calls = append(m.calls, [2]domain.GeoPoint{origin, destination})
	m.mu.Unlock()
	if m.shortestPathFn != nil {
		return m.shortestPathFn(ctx, origin, destination)
	}
	return straightSeaPath(origin, destination, 6), nil
}

func (m *mockSeaGraph) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// straightSeaPath interpolates n points from a to b.
func straightSeaPath(a, b domain.GeoPoint, n int) []domain.GeoPoint {
	out := make([]domain.GeoPoint, n)
	for i := range out {
		f := float64(i) / float64(n-1)
		out[i] = domain.GeoPoint{Lat: a.Lat + f*(b.Lat-a.Lat), Lon: a.Lon + f*(b.Lon-a.Lon)}
	}
	return out
}

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu        sync.Mutex
	corridors int
	overlaps  int
	summaries []domain.RunSummary
}

func (m *mockPublisher) PublishCorridor(ctx context.Context, runID string, c *domain.Corridor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.corridors++
	return nil
}

func (m *mockPublisher) PublishOverlap(ctx context.Context, runID string, o *domain.OverlapRegion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overlaps++
	return nil
}

func (m *mockPublisher) PublishRunCompleted(ctx context.Context, s *domain.RunSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries = append(m.summaries, *s)
	return nil
}

func (m *mockPublisher) PublishBroadcast(ctx context.Context, data []byte) error { return nil }

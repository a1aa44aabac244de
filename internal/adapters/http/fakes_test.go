package http_test

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/samirrijal/seacorridor/internal/core/domain"
)

// memStore is an in-memory ObservationRepository and IndividualRepository.
type memStore struct {
	mu          sync.Mutex
	individuals map[int64]domain.Individual
	obs         []domain.Observation
	failList    error
}

func newMemStore() *memStore {
	return &memStore{individuals: make(map[int64]domain.Individual)}
}

func (m *memStore) add(ind domain.Individual, obs ...domain.Observation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.individuals[ind.ID] = ind
	for _, o := range obs {
		o.IndividualID = ind.ID
		o.GroupID = ind.GroupID
		m.obs = append(m.obs, o)
	}
}

func (m *memStore) ListGroups(ctx context.Context) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList != nil {
		return nil, m.failList
	}
	seen := make(map[int64]bool)
	var groups []int64
	for _, ind := range m.individuals {
		if !seen[ind.GroupID] {
			seen[ind.GroupID] = true
			groups = append(groups, ind.GroupID)
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i] < groups[j] })
	return groups, nil
}

func (m *memStore) GetGroupObservations(ctx context.Context, groupID int64) ([]domain.Observation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Observation
	for _, o := range m.obs {
		if m.individuals[o.IndividualID].GroupID == groupID {
			o.GroupID = groupID
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memStore) ListAll(ctx context.Context) ([]domain.Observation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Observation(nil), m.obs...), nil
}

func (m *memStore) Insert(ctx context.Context, obs *domain.Observation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.obs = append(m.obs, *obs)
	return nil
}

func (m *memStore) InsertBatch(ctx context.Context, obs []domain.Observation) error {
	for i := range obs {
		if err := m.Insert(ctx, &obs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *memStore) Create(ctx context.Context, ind *domain.Individual) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.individuals[ind.ID]; ok {
		return fmt.Errorf("individual %d exists", ind.ID)
	}
	m.individuals[ind.ID] = *ind
	return nil
}

func (m *memStore) GetByID(ctx context.Context, id int64) (*domain.Individual, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ind, ok := m.individuals[id]
	if !ok {
		return nil, fmt.Errorf("individual %d: %w", id, domain.ErrNotFound)
	}
	return &ind, nil
}

func (m *memStore) ListByGroup(ctx context.Context, groupID int64) ([]domain.Individual, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Individual
	for _, ind := range m.individuals {
		if ind.GroupID == groupID {
			out = append(out, ind)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) Update(ctx context.Context, id int64, upd domain.IndividualUpdate) (*domain.Individual, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ind, ok := m.individuals[id]
	if !ok {
		return nil, fmt.Errorf("individual %d: %w", id, domain.ErrNotFound)
	}
	if upd.GroupID != nil {
		ind.GroupID = *upd.GroupID
	}
	if upd.Species != nil {
		ind.Species = *upd.Species
	}
	if upd.Photo != nil {
		ind.Photo = *upd.Photo
	}
	m.individuals[id] = ind
	return &ind, nil
}

func (m *memStore) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.individuals[id]; !ok {
		return fmt.Errorf("individual %d: %w", id, domain.ErrNotFound)
	}
	delete(m.individuals, id)
	kept := m.obs[:0]
	for _, o := range m.obs {
		if o.IndividualID != id {
			kept = append(kept, o)
		}
	}
	m.obs = kept
	return nil
}

// straightGraph connects any two points with a straight five-point path.
type straightGraph struct{}

func (straightGraph) ShortestPath(ctx context.Context, origin, destination domain.GeoPoint) ([]domain.GeoPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := make([]domain.GeoPoint, 5)
	for i := range path {
		f := float64(i) / 4
		path[i] = domain.GeoPoint{
			Lat: origin.Lat + f*(destination.Lat-origin.Lat),
			Lon: origin.Lon + f*(destination.Lon-origin.Lon),
		}
	}
	return path, nil
}

// fakeRequester records queued runs.
type fakeRequester struct {
	mu   sync.Mutex
	reqs []domain.RunRequest
}

func (f *fakeRequester) RequestRun(ctx context.Context, req *domain.RunRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, *req)
	return nil
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

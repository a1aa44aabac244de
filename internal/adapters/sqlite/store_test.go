package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/seacorridor/internal/core/domain"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_IndividualLifecycle(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	ind := &domain.Individual{ID: 1234, GroupID: 501, Species: domain.DefaultSpecies, Photo: domain.DefaultPhoto}
	require.NoError(t, s.Create(ctx, ind))
	assert.False(t, ind.CreatedAt.IsZero())

	auto := &domain.Individual{GroupID: 501, Species: "Blue whale", Photo: "pic2.jpg"}
	require.NoError(t, s.Create(ctx, auto))
	assert.NotZero(t, auto.ID)

	got, err := s.GetByID(ctx, 1234)
	require.NoError(t, err)
	assert.Equal(t, int64(501), got.GroupID)
	assert.Equal(t, domain.DefaultSpecies, got.Species)

	members, err := s.ListByGroup(ctx, 501)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	photo := "pic9.jpg"
	updated, err := s.Update(ctx, 1234, domain.IndividualUpdate{Photo: &photo})
	require.NoError(t, err)
	assert.Equal(t, "pic9.jpg", updated.Photo)
	assert.Equal(t, domain.DefaultSpecies, updated.Species, "untouched fields keep their value")

	require.NoError(t, s.Delete(ctx, 1234))
	_, err = s.GetByID(ctx, 1234)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	assert.True(t, errors.Is(s.Delete(ctx, 1234), domain.ErrNotFound))
	_, err = s.Update(ctx, 1234, domain.IndividualUpdate{Photo: &photo})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestStore_Observations(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &domain.Individual{ID: 1, GroupID: 10, Species: "a", Photo: "p"}))
	require.NoError(t, s.Create(ctx, &domain.Individual{ID: 2, GroupID: 20, Species: "a", Photo: "p"}))

	require.NoError(t, s.Insert(ctx, &domain.Observation{IndividualID: 1, Role: domain.RoleStart, Location: domain.GeoPoint{Lat: 10, Lon: 20}}))
	require.NoError(t, s.InsertBatch(ctx, []domain.Observation{
		{IndividualID: 1, Role: domain.RoleFinish, Location: domain.GeoPoint{Lat: 30, Lon: 40}},
		{IndividualID: 2, Role: domain.RoleStart, Location: domain.GeoPoint{Lat: -5, Lon: 100}},
	}))

	groups, err := s.ListGroups(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20}, groups)

	obs, err := s.GetGroupObservations(ctx, 10)
	require.NoError(t, err)
	require.Len(t, obs, 2)
	assert.Equal(t, domain.RoleStart, obs[0].Role)
	assert.Equal(t, int64(10), obs[0].GroupID)
	assert.Equal(t, domain.GeoPoint{Lat: 30, Lon: 40}, obs[1].Location)

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// regrouping an individual moves its observations
	newGroup := int64(20)
	_, err = s.Update(ctx, 1, domain.IndividualUpdate{GroupID: &newGroup})
	require.NoError(t, err)
	obs, err = s.GetGroupObservations(ctx, 20)
	require.NoError(t, err)
	assert.Len(t, obs, 3)

	require.NoError(t, s.Delete(ctx, 1))
	all, err = s.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "observations cascade with their individual")
}

func TestStore_RejectsInvalidRows(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	err := s.Insert(ctx, &domain.Observation{IndividualID: 99, Role: domain.RoleStart})
	assert.Error(t, err, "unknown individual violates the foreign key")

	require.NoError(t, s.Create(ctx, &domain.Individual{ID: 1, GroupID: 1, Species: "a", Photo: "p"}))
	err = s.Insert(ctx, &domain.Observation{IndividualID: 1, Role: "middle"})
	assert.Error(t, err)
	err = s.Insert(ctx, &domain.Observation{IndividualID: 1, Role: domain.RoleStart, Location: domain.GeoPoint{Lat: 95}})
	assert.Error(t, err)
}

func TestStore_MigrateDown(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Migrate("up"), "up again is a no-op")
	require.Error(t, s.Migrate("sideways"))

	require.NoError(t, s.Migrate("down"))
	_, err := s.ListGroups(ctx)
	assert.Error(t, err)

	require.NoError(t, s.Migrate("up"))
	_, err = s.ListGroups(ctx)
	assert.NoError(t, err)
}

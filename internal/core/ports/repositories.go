package ports

import (
	"context"

	"github.com/samirrijal/seacorridor/internal/core/domain"
)

// ObservationRepository persists start/finish observations.
type ObservationRepository interface {
	// ListGroups returns the distinct group ids that have individuals.
	ListGroups(ctx context.Context) ([]int64, error)
	GetGroupObservations(ctx context.Context, groupID int64) ([]domain.Observation, error)
	ListAll(ctx context.Context) ([]domain.Observation, error)
	Insert(ctx context.Context, obs *domain.Observation) error
	InsertBatch(ctx context.Context, obs []domain.Observation) error
}

// IndividualRepository persists tracked individuals.
type IndividualRepository interface {
	Create(ctx context.Context, ind *domain.Individual) error
	GetByID(ctx context.Context, id int64) (*domain.Individual, error)
	ListByGroup(ctx context.Context, groupID int64) ([]domain.Individual, error)
	Update(ctx context.Context, id int64, upd domain.IndividualUpdate) (*domain.Individual, error)
	Delete(ctx context.Context, id int64) error
}

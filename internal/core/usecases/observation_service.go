package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samirrijal/seacorridor/internal/core/domain"
	"github.com/samirrijal/seacorridor/internal/core/ports"
)

const groupsCacheKey = "groups:list"

// ObservationService handles individuals and their observations.
type ObservationService struct {
	observations ports.ObservationRepository
	individuals  ports.IndividualRepository
	cache        ports.CacheService
}

// NewObservationService creates a new ObservationService.
func NewObservationService(observations ports.ObservationRepository, individuals ports.IndividualRepository, cache ports.CacheService) *ObservationService {
	return &ObservationService{observations: observations, individuals: individuals, cache: cache}
}

// ListGroups returns the ids of all groups.
func (s *ObservationService) ListGroups(ctx context.Context) ([]int64, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, groupsCacheKey); err == nil {
			var groups []int64
			if err := json.Unmarshal(data, &groups); err == nil {
				return groups, nil
			}
		}
	}

	groups, err := s.observations.ListGroups(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(groups); err == nil {
			_ = s.cache.Set(ctx, groupsCacheKey, data, 60)
		}
	}
	return groups, nil
}

// GroupObservations returns all observations of a group.
func (s *ObservationService) GroupObservations(ctx context.Context, groupID int64) ([]domain.Observation, error) {
	return s.observations.GetGroupObservations(ctx, groupID)
}

// AllObservations returns every observation, for marker rendering.
func (s *ObservationService) AllObservations(ctx context.Context) ([]domain.Observation, error) {
	return s.observations.ListAll(ctx)
}

// Record validates and stores an observation of a known individual.
func (s *ObservationService) Record(ctx context.Context, obs *domain.Observation) error {
	if err := validateObservation(obs); err != nil {
		return err
	}
	ind, err := s.individuals.GetByID(ctx, obs.IndividualID)
	if err != nil {
		return fmt.Errorf("individual %d: %w", obs.IndividualID, err)
	}
	obs.GroupID = ind.GroupID

	if err := s.observations.Insert(ctx, obs); err != nil {
		return fmt.Errorf("insert observation: %w", err)
	}
	return nil
}

// RegisterIndividual stores a new individual, filling in default species and
// photo.
func (s *ObservationService) RegisterIndividual(ctx context.Context, ind *domain.Individual) error {
	if ind.Species == "" {
		ind.Species = domain.DefaultSpecies
	}
	if ind.Photo == "" {
		ind.Photo = domain.DefaultPhoto
	}
	if err := s.individuals.Create(ctx, ind); err != nil {
		return fmt.Errorf("create individual: %w", err)
	}
	s.invalidateGroups(ctx)
	return nil
}

// GetIndividual returns an individual by id.
func (s *ObservationService) GetIndividual(ctx context.Context, id int64) (*domain.Individual, error) {
	return s.individuals.GetByID(ctx, id)
}

// ListIndividuals returns the members of a group.
func (s *ObservationService) ListIndividuals(ctx context.Context, groupID int64) ([]domain.Individual, error) {
	return s.individuals.ListByGroup(ctx, groupID)
}

// UpdateIndividual applies a partial update.
func (s *ObservationService) UpdateIndividual(ctx context.Context, id int64, upd domain.IndividualUpdate) (*domain.Individual, error) {
	if upd.Empty() {
		return nil, fmt.Errorf("%w: update has no fields", domain.ErrInvalidInput)
	}
	if upd.Species != nil && *upd.Species == "" {
		return nil, fmt.Errorf("%w: species must not be empty", domain.ErrInvalidInput)
	}
	ind, err := s.individuals.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	if upd.GroupID != nil {
		s.invalidateGroups(ctx)
	}
	return ind, nil
}

// DeleteIndividual removes an individual and its observations.
func (s *ObservationService) DeleteIndividual(ctx context.Context, id int64) error {
	if err := s.individuals.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateGroups(ctx)
	return nil
}

func (s *ObservationService) invalidateGroups(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, groupsCacheKey)
	}
}

func validateObservation(obs *domain.Observation) error {
	if !obs.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, obs.Role)
	}
	if !obs.Location.IsFinite() || obs.Location.Lat < -90 || obs.Location.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range", domain.ErrInvalidInput, obs.Location.Lat)
	}
	if obs.Location.Lon < -180 || obs.Location.Lon > 180 {
		return fmt.Errorf("%w: longitude %v out of range", domain.ErrInvalidInput, obs.Location.Lon)
	}
	return nil
}

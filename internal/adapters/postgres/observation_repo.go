package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/seacorridor/internal/core/domain"
)

// ObservationRepo implements ports.ObservationRepository with pgx.
type ObservationRepo struct {
	db *DB
}

// NewObservationRepo creates a new ObservationRepo.
func NewObservationRepo(db *DB) *ObservationRepo {
	return &ObservationRepo{db: db}
}

const insertObservation = `
	INSERT INTO observations (individual_id, role, latitude, longitude)
	VALUES ($1, $2, $3, $4)
`

const selectObservations = `
	SELECT o.individual_id, i.group_id, o.role, o.latitude, o.longitude
	FROM observations o
	JOIN individuals i ON i.id = o.individual_id
`

// ListGroups returns the distinct group ids of all individuals.
func (r *ObservationRepo) ListGroups(ctx context.Context) ([]int64, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT DISTINCT group_id FROM individuals ORDER BY group_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		groups = append(groups, id)
	}
	return groups, rows.Err()
}

// GetGroupObservations returns every observation of a group's members.
func (r *ObservationRepo) GetGroupObservations(ctx context.Context, groupID int64) ([]domain.Observation, error) {
	rows, err := r.db.Pool.Query(ctx, selectObservations+` WHERE i.group_id = $1 ORDER BY o.id`, groupID)
	if err != nil {
		return nil, err
	}
	return scanObservations(rows)
}

// ListAll returns every observation.
func (r *ObservationRepo) ListAll(ctx context.Context) ([]domain.Observation, error) {
	rows, err := r.db.Pool.Query(ctx, selectObservations+` ORDER BY o.id`)
	if err != nil {
		return nil, err
	}
	return scanObservations(rows)
}

// Insert stores one observation.
func (r *ObservationRepo) Insert(ctx context.Context, obs *domain.Observation) error {
	_, err := r.db.Pool.Exec(ctx, insertObservation,
		obs.IndividualID, string(obs.Role), obs.Location.Lat, obs.Location.Lon)
	return err
}

// InsertBatch stores many observations using pgx.Batch.
func (r *ObservationRepo) InsertBatch(ctx context.Context, obs []domain.Observation) error {
	batch := &pgx.Batch{}
	for _, o := range obs {
		batch.Queue(insertObservation, o.IndividualID, string(o.Role), o.Location.Lat, o.Location.Lon)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range obs {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

func scanObservations(rows pgx.Rows) ([]domain.Observation, error) {
	defer rows.Close()

	var out []domain.Observation
	for rows.Next() {
		var o domain.Observation
		var role string
		if err := rows.Scan(&o.IndividualID, &o.GroupID, &role, &o.Location.Lat, &o.Location.Lon); err != nil {
			return nil, err
		}
		o.Role = domain.Role(role)
		out = append(out, o)
	}
	return out, rows.Err()
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/seacorridor/internal/core/domain"
)

// IndividualRepo implements ports.IndividualRepository with pgx.
type IndividualRepo struct {
	db *DB
}

// NewIndividualRepo creates a new IndividualRepo.
func NewIndividualRepo(db *DB) *IndividualRepo {
	return &IndividualRepo{db: db}
}

// Create inserts an individual. A zero ID is assigned by the database.
func (r *IndividualRepo) Create(ctx context.Context, ind *domain.Individual) error {
	if ind.ID != 0 {
		return r.db.Pool.QueryRow(ctx, `
			INSERT INTO individuals (id, group_id, species, photo)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at
		`, ind.ID, ind.GroupID, ind.Species, ind.Photo).Scan(&ind.CreatedAt)
	}
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO individuals (group_id, species, photo)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, ind.GroupID, ind.Species, ind.Photo).Scan(&ind.ID, &ind.CreatedAt)
}

// GetByID returns an individual by id.
func (r *IndividualRepo) GetByID(ctx context.Context, id int64) (*domain.Individual, error) {
	var ind domain.Individual
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, group_id, species, photo, created_at
		FROM individuals WHERE id = $1
	`, id).Scan(&ind.ID, &ind.GroupID, &ind.Species, &ind.Photo, &ind.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("individual %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &ind, nil
}

// ListByGroup returns the members of a group.
func (r *IndividualRepo) ListByGroup(ctx context.Context, groupID int64) ([]domain.Individual, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, group_id, species, photo, created_at
		FROM individuals WHERE group_id = $1
		ORDER BY id
	`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Individual
	for rows.Next() {
		var ind domain.Individual
		if err := rows.Scan(&ind.ID, &ind.GroupID, &ind.Species, &ind.Photo, &ind.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ind)
	}
	return out, rows.Err()
}

// Update applies the non-nil fields of upd.
func (r *IndividualRepo) Update(ctx context.Context, id int64, upd domain.IndividualUpdate) (*domain.Individual, error) {
	var ind domain.Individual
	err := r.db.Pool.QueryRow(ctx, `
		UPDATE individuals
		SET group_id = COALESCE($2, group_id),
		    species  = COALESCE($3, species),
		    photo    = COALESCE($4, photo)
		WHERE id = $1
		RETURNING id, group_id, species, photo, created_at
	`, id, upd.GroupID, upd.Species, upd.Photo).Scan(&ind.ID, &ind.GroupID, &ind.Species, &ind.Photo, &ind.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("individual %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &ind, nil
}

// Delete removes an individual; its observations cascade.
func (r *IndividualRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM individuals WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("individual %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Package sqlite is a single-file observation store for local runs and tests.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/samirrijal/seacorridor/internal/core/domain"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store implements ports.ObservationRepository and ports.IndividualRepository.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
// Use ":memory:" for a private in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one connection keeps :memory: databases shared and serialises writers
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.Migrate("up"); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate moves the schema one way: "up" applies every pending migration,
// "down" reverts the latest one.
func (s *Store) Migrate(direction string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}
	// m is not closed: closing it would close s.db
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-1)
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration %s failed: %w", direction, err)
	}
	return nil
}

// --- individuals ---

// Create inserts an individual. A zero ID is assigned by the database.
func (s *Store) Create(ctx context.Context, ind *domain.Individual) error {
	var id any
	if ind.ID != 0 {
		id = ind.ID
	}
	createdAt := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO individuals (id, group_id, species, photo, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, ind.GroupID, ind.Species, ind.Photo, createdAt)
	if err != nil {
		return err
	}
	if ind.ID == 0 {
		if ind.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
	}
	ind.CreatedAt = createdAt
	return nil
}

// GetByID returns an individual by id.
func (s *Store) GetByID(ctx context.Context, id int64) (*domain.Individual, error) {
	var ind domain.Individual
	err := s.db.QueryRowContext(ctx, `
		SELECT id, group_id, species, photo, created_at
		FROM individuals WHERE id = ?
	`, id).Scan(&ind.ID, &ind.GroupID, &ind.Species, &ind.Photo, &ind.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("individual %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &ind, nil
}

// ListByGroup returns the members of a group.
func (s *Store) ListByGroup(ctx context.Context, groupID int64) ([]domain.Individual, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, group_id, species, photo, created_at
		FROM individuals WHERE group_id = ?
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
func (s *Store) Update(ctx context.Context, id int64, upd domain.IndividualUpdate) (*domain.Individual, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE individuals
		SET group_id = COALESCE(?, group_id),
		    species  = COALESCE(?, species),
		    photo    = COALESCE(?, photo)
		WHERE id = ?
	`, nullable(upd.GroupID), nullable(upd.Species), nullable(upd.Photo), id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("individual %d: %w", id, domain.ErrNotFound)
	}
	return s.GetByID(ctx, id)
}

// Delete removes an individual; its observations cascade.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM individuals WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("individual %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// --- observations ---

const selectObservations = `
	SELECT o.individual_id, i.group_id, o.role, o.latitude, o.longitude
	FROM observations o
	JOIN individuals i ON i.id = o.individual_id
`

// ListGroups returns the distinct group ids of all individuals.
func (s *Store) ListGroups(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT group_id FROM individuals ORDER BY group_id`)
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
func (s *Store) GetGroupObservations(ctx context.Context, groupID int64) ([]domain.Observation, error) {
	return s.queryObservations(ctx, selectObservations+` WHERE i.group_id = ? ORDER BY o.id`, groupID)
}

// ListAll returns every observation.
func (s *Store) ListAll(ctx context.Context) ([]domain.Observation, error) {
	return s.queryObservations(ctx, selectObservations+` ORDER BY o.id`)
}

// Insert stores one observation.
func (s *Store) Insert(ctx context.Context, obs *domain.Observation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO observations (individual_id, role, latitude, longitude)
		VALUES (?, ?, ?, ?)
	`, obs.IndividualID, string(obs.Role), obs.Location.Lat, obs.Location.Lon)
	return err
}

// InsertBatch stores many observations in one transaction.
func (s *Store) InsertBatch(ctx context.Context, obs []domain.Observation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO observations (individual_id, role, latitude, longitude)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, o := range obs {
		if _, err := stmt.ExecContext(ctx, o.IndividualID, string(o.Role), o.Location.Lat, o.Location.Lon); err != nil {
			return fmt.Errorf("insert observation of %d: %w", o.IndividualID, err)
		}
	}
	return tx.Commit()
}

func (s *Store) queryObservations(ctx context.Context, query string, args ...any) ([]domain.Observation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
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

func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

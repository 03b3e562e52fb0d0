// Package store persists saved affordability scenarios in a local SQLite
// database. Scenarios are stored as versioned JSON state blobs keyed by a
// stable ID.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed migrations/*.sql
var migrations embed.FS

// ErrNotFound is returned when no scenario exists for the given ID.
var ErrNotFound = errors.New("scenario not found")

// Scenario is one saved scenario row.
type Scenario struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	State     []byte    `json:"state,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store wraps the scenario database.
type Store struct {
	db *sql.DB
}

// Open opens the SQLite database at the given path and applies pending
// migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return nil, fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// HealthCheck performs a simple health check on the database.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Save inserts a new scenario and returns the stored row.
func (s *Store) Save(ctx context.Context, name string, state []byte) (Scenario, error) {
	now := time.Now().UTC()
	scenario := Scenario{
		ID:        uuid.New().String(),
		Name:      name,
		State:     state,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scenarios (id, name, state, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		scenario.ID, scenario.Name, string(scenario.State), scenario.CreatedAt, scenario.UpdatedAt)
	if err != nil {
		return Scenario{}, fmt.Errorf("failed to save scenario: %w", err)
	}

	return scenario, nil
}

// Update replaces the name and state of an existing scenario.
func (s *Store) Update(ctx context.Context, id, name string, state []byte) (Scenario, error) {
	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`UPDATE scenarios SET name = ?, state = ?, updated_at = ? WHERE id = ?`,
		name, string(state), now, id)
	if err != nil {
		return Scenario{}, fmt.Errorf("failed to update scenario: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return Scenario{}, fmt.Errorf("failed to update scenario: %w", err)
	}
	if affected == 0 {
		return Scenario{}, ErrNotFound
	}

	return s.Get(ctx, id)
}

// Get returns the scenario with the given ID, including its state blob.
func (s *Store) Get(ctx context.Context, id string) (Scenario, error) {
	var scenario Scenario
	var state string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, state, created_at, updated_at FROM scenarios WHERE id = ?`, id).
		Scan(&scenario.ID, &scenario.Name, &state, &scenario.CreatedAt, &scenario.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Scenario{}, ErrNotFound
	}
	if err != nil {
		return Scenario{}, fmt.Errorf("failed to load scenario: %w", err)
	}
	scenario.State = []byte(state)
	return scenario, nil
}

// List returns every saved scenario without the state blobs, newest first.
func (s *Store) List(ctx context.Context) ([]Scenario, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at, updated_at FROM scenarios ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	defer rows.Close()

	var scenarios []Scenario
	for rows.Next() {
		var scenario Scenario
		if err := rows.Scan(&scenario.ID, &scenario.Name, &scenario.CreatedAt, &scenario.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan scenario: %w", err)
		}
		scenarios = append(scenarios, scenario)
	}
	return scenarios, rows.Err()
}

// Delete removes the scenario with the given ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM scenarios WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete scenario: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete scenario: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

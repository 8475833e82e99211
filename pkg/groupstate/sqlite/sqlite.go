// Package sqlite provides SQLite-backed group-state storage for single-host
// deployments that need expand state to survive process restarts.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/propsheet/propsheet/pkg/groupstate"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS group_state (
	instance_id TEXT NOT NULL,
	group_index TEXT NOT NULL,
	expanded INTEGER NOT NULL,
	PRIMARY KEY (instance_id, group_index)
);`

// Store implements groupstate.Store on an embedded SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens (and creates, if needed) the database at path, accepting a
// plain path or a sqlite:// URL.
func NewStore(path string) (*Store, error) {
	path = strings.Replace(path, "sqlite://", "", 1)

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?cache=shared&mode=rwc&_journal_mode=WAL", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open group state database: %w", err)
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaDDL); err != nil {
		return nil, fmt.Errorf("failed to migrate group state database: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Read(ctx context.Context, instanceID string) (groupstate.State, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT group_index, expanded FROM group_state WHERE instance_id = ?", instanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to read group state for %s: %w", instanceID, err)
	}
	defer rows.Close()

	state := groupstate.State{}

	for rows.Next() {
		var (
			index    string
			expanded bool
		)

		if err := rows.Scan(&index, &expanded); err != nil {
			return nil, fmt.Errorf("failed to scan group state row: %w", err)
		}

		state[index] = expanded
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read group state for %s: %w", instanceID, err)
	}

	return state, nil
}

func (s *Store) Write(ctx context.Context, instanceID string, state groupstate.State) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start group state transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM group_state WHERE instance_id = ?", instanceID); err != nil {
		return fmt.Errorf("failed to clear group state for %s: %w", instanceID, err)
	}

	for index, expanded := range state {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO group_state (instance_id, group_index, expanded) VALUES (?, ?, ?)",
			instanceID, index, expanded); err != nil {
			return fmt.Errorf("failed to write group state for %s: %w", instanceID, err)
		}
	}

	return tx.Commit()
}

func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close(_ context.Context) error {
	return s.db.Close()
}

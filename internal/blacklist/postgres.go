package blacklist

import (
	"context"
	"database/sql"
	"fmt"
)

const createEntriesTable = `CREATE TABLE IF NOT EXISTS blacklist_entries (
	id SERIAL PRIMARY KEY,
	division VARCHAR(64) NOT NULL DEFAULT '',
	kind VARCHAR(16) NOT NULL CHECK (kind IN ('group', 'user')),
	target_id BIGINT NOT NULL,
	name VARCHAR(255) NOT NULL DEFAULT '',
	reason TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT NOW(),
	UNIQUE (division, kind, target_id)
)`

const selectEntries = `SELECT division, kind, target_id, name, reason FROM blacklist_entries ORDER BY id`

// PostgresStore reads entries from the blacklist_entries table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the entries table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createEntriesTable); err != nil {
		return fmt.Errorf("create blacklist_entries: %w", err)
	}
	return nil
}

func (s *PostgresStore) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, selectEntries)
	if err != nil {
		return nil, fmt.Errorf("query blacklist entries: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		var kind string
		if err := rows.Scan(&e.Division, &kind, &e.TargetID, &e.Name, &e.Reason); err != nil {
			return nil, fmt.Errorf("scan blacklist entry: %w", err)
		}
		e.Kind = Kind(kind)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blacklist entries: %w", err)
	}
	return entries, nil
}

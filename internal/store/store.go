package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turnstone-io/turnstone/pkg/types"
)

// ErrMatchExists is returned by LoadMatch when the match is already
// present and force was not requested.
var ErrMatchExists = errors.New("match already imported")

// Store is the Postgres-backed match store.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a new Store and verifies the connection.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Migrate runs the schema DDL to create tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schemaDDL)
	if err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	return nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// MatchExists reports whether a match id is already present.
func (s *Store) MatchExists(ctx context.Context, matchID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM matches WHERE match_id = $1)`, matchID).Scan(&exists)
	return exists, err
}

// InsertImportRun records one archive import attempt in the audit table.
func (s *Store) InsertImportRun(ctx context.Context, run types.ImportRun) error {
	countsJSON, err := json.Marshal(run.Counts)
	if err != nil {
		return fmt.Errorf("marshal import run counts: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO import_runs (import_id, archive, match_id, stage, status, error, row_counts, started_at, completed_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9)
	`, run.ImportID, run.Archive, run.MatchID, string(run.Stage), string(run.Status),
		run.Error, countsJSON, run.StartedAt, run.CompletedAt)
	if err != nil {
		return fmt.Errorf("insert import run: %w", err)
	}
	return nil
}

// RecentImportRuns returns the most recent import attempts, newest first.
func (s *Store) RecentImportRuns(ctx context.Context, limit int) ([]types.ImportRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, `
		SELECT import_id, archive, COALESCE(match_id, ''), stage, status, error, row_counts, started_at, completed_at
		FROM import_runs
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []types.ImportRun
	for rows.Next() {
		var r types.ImportRun
		var countsJSON []byte
		if err := rows.Scan(&r.ImportID, &r.Archive, &r.MatchID, &r.Stage, &r.Status,
			&r.Error, &countsJSON, &r.StartedAt, &r.CompletedAt); err != nil {
			return nil, err
		}
		if len(countsJSON) > 0 {
			if err := json.Unmarshal(countsJSON, &r.Counts); err != nil {
				return nil, fmt.Errorf("unmarshal import run counts: %w", err)
			}
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// TableCounts returns the current row count of each data table.
func (s *Store) TableCounts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, 5)
	for _, table := range []string{"matches", "players", "game_state", "events", "territories"} {
		var n int64
		if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

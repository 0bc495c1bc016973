// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache persists complete pipeline results in a SQLite database
// so repeated queries can be answered without refetching the sources.
// Partial and failed runs are never cached.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Aadilmalik70/signal-engine/pkg/types"
)

const dbFile = "signals.db"

// Store manages the signal cache SQLite database.
type Store struct {
	db  *sql.DB
	ttl time.Duration
}

// NewStore opens or creates the cache database at cfg.Dir/signals.db and
// creates the schema if it does not exist.
func NewStore(cfg types.CacheConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	s := &Store{db: db, ttl: ttl}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS results (
			key TEXT PRIMARY KEY,
			result TEXT NOT NULL,
			stored_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_stored_at ON results(stored_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Key derives the cache key for a run. Two runs share a key only when
// the normalized query, mode, and resolved source set all match.
func Key(query types.Query, mode types.Mode, sources []types.SourceType) string {
	names := make([]string, len(sources))
	for i, st := range sources {
		names[i] = string(st)
	}
	sort.Strings(names)
	return query.Normalized + "|" + string(mode) + "|" + strings.Join(names, ",")
}

// Get returns the cached result for key if one exists and has not
// expired. Expired rows are deleted on read.
func (s *Store) Get(ctx context.Context, key string) (*types.PipelineResult, bool, error) {
	var payload, storedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT result, stored_at FROM results WHERE key = ?`, key,
	).Scan(&payload, &storedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry: %w", err)
	}

	stored, err := time.Parse(time.RFC3339Nano, storedAt)
	if err != nil || time.Since(stored) > s.ttl {
		if _,derr := s.db.ExecContext(ctx, `DELETE FROM results WHERE key = ?`, key); derr != nil {
			return nil, false, fmt.Errorf("deleting expired cache entry: %w", derr)
		}
		return nil, false, nil
	}

	var result types.PipelineResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, false, fmt.Errorf("decoding cache entry: %w", err)
	}
	result.FromCache = true
	return &result, true, nil
}

// Put stores a complete result under key. Results that did not complete
// are rejected so a later run can try the missing sources again.
func (s *Store) Put(ctx context.Context, key string, result *types.PipelineResult) error {
	if result.Status != types.RunComplete {
		return fmt.Errorf("refusing to cache %s run %s", result.Status, result.RunID)
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO results (key, result, stored_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET result=excluded.result, stored_at=excluded.stored_at`,
		key, string(payload), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Purge removes every expired row and returns the number deleted.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-s.ttl).Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx, `DELETE FROM results WHERE stored_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging cache: %w", err)
	}
	return res.RowsAffected()
}

// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

// Package cache persists raw OSV responses in a local SQLite database so
// repeated scans of the same dependencies avoid redundant network calls.
// The store is a performance aid, never a correctness dependency: every
// storage error degrades to a cache miss (reads) or a no-op (writes).
package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // pure Go SQLite driver

	"github.com/bonial-oss/depscan/internal/types"
)

const dbFilename = "osv_cache.db"

// Entry is one cached OSV response with the time it was fetched. Entries
// never expire; a fresh fetch for the same identity overwrites in place.
type Entry struct {
	Response  []byte
	FetchedAt time.Time
}

// Store is a keyed cache over (ecosystem, name, version). Safe for
// concurrent use; last write wins for the same key.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open creates or opens the cache database under dir, creating the
// directory and schema as needed.
func Open(dir string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	db, err := sql.Open("sqlite", filepath.Join(dir, dbFilename))
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	s := &Store{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating cache database: %w", err)
	}
	return s, nil
}

// migrate creates the cache table. The v2 schema keys by ecosystem as well
// as name and version so identical names in different ecosystems never
// collide.
func (s *Store) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS osv_cache_v2 (
		ecosystem  TEXT NOT NULL,
		pkg        TEXT NOT NULL,
		version    TEXT NOT NULL,
		response_json TEXT NOT NULL,
		fetched_at TEXT NOT NULL,
		PRIMARY KEY (ecosystem, pkg, version)
	)`)
	return err
}

// Get looks up the cached response for the dependency. The second return
// is false on a miss; storage errors are logged and reported as misses so
// a broken cache never fails a scan.
func (s *Store) Get(dep types.Dependency) (Entry, bool) {
	var (
		response  string
		fetchedAt string
	)
	row := s.db.QueryRow(
		`SELECT response_json, fetched_at FROM osv_cache_v2 WHERE ecosystem = ? AND pkg = ? AND version = ?`,
		string(dep.Ecosystem), dep.CanonicalName(), dep.Version,
	)
	if err := row.Scan(&response, &fetchedAt); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("cache read failed, treating as miss",
				zap.String("package", dep.String()), zap.Error(err))
		}
		return Entry{}, false
	}
	ts, err := time.Parse(time.RFC3339, fetchedAt)
	if err != nil {
		ts = time.Time{}
	}
	return Entry{Response: []byte(response), FetchedAt: ts}, true
}

// Put upserts the raw response for the dependency. Safe to call whether or
// not the key was previously present. Failures are logged and swallowed.
func (s *Store) Put(dep types.Dependency, response []byte) {
	_, err := s.db.Exec(
		`INSERT INTO osv_cache_v2 (ecosystem, pkg, version, response_json, fetched_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (ecosystem, pkg, version) DO UPDATE SET
		   response_json = excluded.response_json,
		   fetched_at = excluded.fetched_at`,
		string(dep.Ecosystem), dep.CanonicalName(), dep.Version,
		string(response), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		s.logger.Warn("cache write failed",
			zap.String("package", dep.String()), zap.Error(err))
	}
}

// Clear removes all cached entries.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM osv_cache_v2`); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

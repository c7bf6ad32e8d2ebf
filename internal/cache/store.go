// Package cache keeps resolved Modrinth slugs in a local sqlite database so
// repeated scans of the same folder skip the registry.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/didi/gendry/builder"
	_ "github.com/glebarez/go-sqlite"
)

const slugCacheTableName = "slug_cache_tab"

const (
	createTableSQL = `
CREATE TABLE IF NOT EXISTS slug_cache_tab (
	mod_id VARCHAR(128) PRIMARY KEY,
	slug VARCHAR(128) NOT NULL,
	create_time BIGINT NOT NULL,
	update_time BIGINT NOT NULL
);`
)

// QueryExecer is the subset of a database handle the store needs. *sql.DB
// satisfies it, as does any wrapper exposing the same two calls.
type QueryExecer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// Store is the slug cache table.
type Store struct {
	db     QueryExecer
	closer func() error
	ttl    time.Duration
	now    func() time.Time
}

// NewStore uses an already opened database, creating the table when
// missing. Closing the store leaves db open.
func NewStore(ctx context.Context, db QueryExecer, ttl time.Duration) (*Store, error) {
	s := &Store{db: db, closer: func() error { return nil }, ttl: ttl, now: time.Now}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	if _, err := s.Prune(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Open creates (or reuses) the cache database at path. Entries older than
// ttl are treated as missing; a zero ttl keeps entries forever.
func Open(ctx context.Context, path string, ttl time.Duration) (*Store, error) {
	if path == "" {
		return nil, errors.New("cache path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache dir %s: %w", path, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	s, err := NewStore(ctx, db, ttl)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.closer = db.Close
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create cache table: %w", err)
	}
	return nil
}

// Close releases the database handle opened by Open.
func (s *Store) Close() error {
	return s.closer()
}

// Lookup returns the cached slug for a mod id.
func (s *Store) Lookup(ctx context.Context, modID string) (string, bool, error) {
	where := map[string]interface{}{
		"mod_id": modID,
		"_limit": []uint{1},
	}
	query, args, err := builder.BuildSelect(slugCacheTableName, where, []string{"slug", "update_time"})
	if err != nil {
		return "", false, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return "", false, fmt.Errorf("query slug cache: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		var slug string
		var updated int64
		if err := rows.Scan(&slug, &updated); err != nil {
			return "", false, fmt.Errorf("scan slug cache: %w", err)
		}
		if s.expired(updated) {
			return "", false, nil
		}
		return slug, true, nil
	}
	if err := rows.Err(); err != nil {
		return "", false, err
	}
	return "", false, nil
}

// Upsert stores or refreshes the slug for a mod id.
func (s *Store) Upsert(ctx context.Context, modID, slug string) error {
	now := s.now().Unix()
	updateSQL, updateArgs, err := builder.BuildUpdate(slugCacheTableName,
		map[string]interface{}{"mod_id": modID},
		map[string]interface{}{
			"slug":        slug,
			"update_time": now,
		},
	)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, updateSQL, updateArgs...)
	if err != nil {
		return fmt.Errorf("update slug cache: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}

	payload := []map[string]interface{}{{
		"mod_id":      modID,
		"slug":        slug,
		"create_time": now,
		"update_time": now,
	}}
	insertSQL, insertArgs, err := builder.BuildInsert(slugCacheTableName, payload)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, insertSQL, insertArgs...); err != nil {
		return fmt.Errorf("insert slug cache: %w", err)
	}
	return nil
}

// Prune deletes expired entries and returns how many were removed.
func (s *Store) Prune(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	where := map[string]interface{}{
		"update_time <": s.now().Add(-s.ttl).Unix(),
	}
	deleteSQL, args, err := builder.BuildDelete(slugCacheTableName, where)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, deleteSQL, args...)
	if err != nil {
		return 0, fmt.Errorf("prune slug cache: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) expired(updated int64) bool {
	if s.ttl <= 0 {
		return false
	}
	return s.now().Sub(time.Unix(updated, 0)) > s.ttl
}

// Package sqlitestore implements offline.Storage in a single SQLite file.
package sqlitestore

import (
	"bytes"
	"context"
	"database/sql"
	_ "embed"
	"encoding/gob"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/anthozoa/anthozoa/internal/offline"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// Store keeps every cache generation in one database. Generation order is
// the order of their row ids.
type Store struct {
	sqlDB *sql.DB
}

// Open opens and migrates the database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Open implements offline.Storage.
func (s *Store) Open(ctx context.Context, name string) (offline.Cache, error) {
	if name == "" {
		return nil, fmt.Errorf("cache name is required")
	}
	if _, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO caches (name, created_at) VALUES (?, ?) ON CONFLICT(name) DO NOTHING`,
		name, time.Now().UnixMilli(),
	); err != nil {
		return nil, fmt.Errorf("create cache %s: %w", name, err)
	}

	var id int64
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT id FROM caches WHERE name = ?`, name).Scan(&id); err != nil {
		return nil, fmt.Errorf("load cache %s: %w", name, err)
	}
	return &generation{db: s.sqlDB, id: id}, nil
}

// Has implements offline.Storage.
func (s *Store) Has(ctx context.Context, name string) (bool, error) {
	var n int
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM caches WHERE name = ?`, name).Scan(&n); err != nil {
		return false, fmt.Errorf("lookup cache %s: %w", name, err)
	}
	return n > 0, nil
}

// Names implements offline.Storage.
func (s *Store) Names(ctx context.Context) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT name FROM caches ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list caches: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan cache: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Delete implements offline.Storage. Entries go with their cache.
func (s *Store) Delete(ctx context.Context, name string) (bool, error) {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM entries WHERE cache_id = (SELECT id FROM caches WHERE name = ?)`, name,
	); err != nil {
		return false, fmt.Errorf("delete entries of %s: %w", name, err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM caches WHERE name = ?`, name)
	if err != nil {
		return false, fmt.Errorf("delete cache %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit delete: %w", err)
	}
	return n > 0, nil
}

// Match implements offline.Storage in a single query.
func (s *Store) Match(ctx context.Context, url string) (*offline.Entry, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT e.url, e.status, e.header, e.body, e.stored_at
		 FROM entries e JOIN caches c ON c.id = e.cache_id
		 WHERE e.url = ?
		 ORDER BY c.id
		 LIMIT 1`,
		url,
	)
	return scanEntry(row)
}

type generation struct {
	db *sql.DB
	id int64
}

func (g *generation) Match(ctx context.Context, url string) (*offline.Entry, error) {
	row := g.db.QueryRowContext(ctx,
		`SELECT url, status, header, body, stored_at FROM entries WHERE cache_id = ? AND url = ?`,
		g.id, url,
	)
	return scanEntry(row)
}

func (g *generation) Put(ctx context.Context, e *offline.Entry) error {
	header, err := encodeHeader(e.Header)
	if err != nil {
		return err
	}
	storedAt := e.StoredAt
	if storedAt.IsZero() {
		storedAt = time.Now()
	}
	body := e.Body
	if body == nil {
		body = []byte{}
	}
	_, err = g.db.ExecContext(ctx,
		`INSERT INTO entries (cache_id, url, status, header, body, stored_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(cache_id, url) DO UPDATE SET
		   status = excluded.status,
		   header = excluded.header,
		   body = excluded.body,
		   stored_at = excluded.stored_at`,
		g.id, e.URL, e.Status, header, body, storedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put entry %s: %w", e.URL, err)
	}
	return nil
}

func (g *generation) Delete(ctx context.Context, url string) (bool, error) {
	res, err := g.db.ExecContext(ctx, `DELETE FROM entries WHERE cache_id = ? AND url = ?`, g.id, url)
	if err != nil {
		return false, fmt.Errorf("delete entry %s: %w", url, err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (g *generation) Keys(ctx context.Context) ([]string, error) {
	rows, err := g.db.QueryContext(ctx, `SELECT url FROM entries WHERE cache_id = ? ORDER BY url`, g.id)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func scanEntry(row *sql.Row) (*offline.Entry, error) {
	var (
		e        offline.Entry
		header   []byte
		storedAt int64
	)
	if err := row.Scan(&e.URL, &e.Status, &header, &e.Body, &storedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, offline.ErrNotFound
		}
		return nil, fmt.Errorf("get entry: %w", err)
	}
	h, err := decodeHeader(header)
	if err != nil {
		return nil, err
	}
	e.Header = h
	e.StoredAt = time.UnixMilli(storedAt).UTC()
	return &e, nil
}

func encodeHeader(h http.Header) ([]byte, error) {
	if h == nil {
		h = http.Header{}
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(h); err != nil {
		return nil, fmt.Errorf("encode header: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeHeader(b []byte) (http.Header, error) {
	h := http.Header{}
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&h); err != nil {
		return nil, fmt.Errorf("decode header: %w", err)
	}
	return h, nil
}

var _ offline.Storage = (*Store)(nil)

// Package db persists request history and environment variables in sqlite.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitdesk/packages/core/env"
	"github.com/google/uuid"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

// DefaultHistoryLimit is the number of entries History returns when no
// positive limit is given.
const DefaultHistoryLimit = 50

var (
	// ErrNotFound is returned when a variable does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateKey is returned when a rename would collide with an existing key.
	ErrDuplicateKey = errors.New("key already exists")
	// ErrInvalidKey is returned for names outside [A-Za-z_][A-Za-z0-9_]*.
	ErrInvalidKey = errors.New("invalid variable name")
)

const schema = `
CREATE TABLE IF NOT EXISTS history (
	id TEXT PRIMARY KEY,
	method TEXT NOT NULL,
	url TEXT NOT NULL,
	status INTEGER NOT NULL,
	time_ms INTEGER NOT NULL,
	timestamp INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_timestamp ON history(timestamp DESC);
CREATE TABLE IF NOT EXISTS env_vars (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	enabled INTEGER NOT NULL DEFAULT 1
);
`

// HistoryEntry records one sent request.
type HistoryEntry struct {
	ID        string `json:"id"`
	Method    string `json:"method"`
	URL       string `json:"url"`
	Status    int    `json:"status"`
	TimeMs    int64  `json:"time"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
}

// NewHistoryEntry stamps an entry at now with an id of the form <ms>-<uuid>.
func NewHistoryEntry(method, url string, status int, timeMs int64, now time.Time) HistoryEntry {
	ms := now.UnixMilli()
	return HistoryEntry{
		ID:        fmt.Sprintf("%d-%s", ms, uuid.NewString()),
		Method:    method,
		URL:       url,
		Status:    status,
		TimeMs:    timeMs,
		Timestamp: ms,
	}
}

// Time returns the entry timestamp.
func (h HistoryEntry) Time() time.Time {
	return time.UnixMilli(h.Timestamp)
}

// Store is the sqlite-backed history and environment store.
type Store struct {
	db           *sql.DB
	driverName   string
	dataSource   string
	queryTimeout time.Duration
}

// Open opens a store from a connection string and creates missing tables.
// Supported formats:
// - sqlite://path/to/db.sqlite
// - sqlite:./test.db
// - path/to/db.sqlite
func Open(connectionString string) (*Store, error) {
	driver, dsn, err := parseConnectionString(connectionString)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite allows one writer; a single connection also keeps :memory: stable.
	db.SetMaxOpenConns(1)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{
		db:           db,
		driverName:   driver,
		dataSource:   dsn,
		queryTimeout: 30 * time.Second,
	}, nil
}

// OpenPath opens the sqlite file at path, creating its directory.
func OpenPath(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	return Open("sqlite://" + path)
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.queryTimeout)
}

// AddHistory inserts an entry.
func (s *Store) AddHistory(entry HistoryEntry) error {
	ctx, cancel := s.ctx()
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history (id, method, url, status, time_ms, timestamp) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Method, entry.URL, entry.Status, entry.TimeMs, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

// History returns up to limit entries, newest first.
func (s *Store) History(limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	ctx, cancel := s.ctx()
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, method, url, status, time_ms, timestamp FROM history ORDER BY timestamp DESC, rowid DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	entries := make([]HistoryEntry, 0)
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.Method, &e.URL, &e.Status, &e.TimeMs, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return entries, nil
}

// ClearHistory deletes every entry.
func (s *Store) ClearHistory() error {
	ctx, cancel := s.ctx()
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// EnvVars returns every stored variable ordered by key.
func (s *Store) EnvVars() ([]env.EnvVar, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT key, value, enabled FROM env_vars ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	vars := make([]env.EnvVar, 0)
	for rows.Next() {
		var v env.EnvVar
		if err := rows.Scan(&v.Key, &v.Value, &v.Enabled); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		vars = append(vars, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return vars, nil
}

// Environment loads the stored variables as a named environment.
func (s *Store) Environment(name string) (*env.Environment, error) {
	vars, err := s.EnvVars()
	if err != nil {
		return nil, err
	}
	return env.NewEnvironment(name, vars...), nil
}

// SaveEnvironment replaces every stored variable with those of e.
func (s *Store) SaveEnvironment(e *env.Environment) error {
	ctx, cancel := s.ctx()
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM env_vars`); err != nil {
		return fmt.Errorf("save environment: %w", err)
	}
	for _, v := range e.Vars() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO env_vars (key, value, enabled) VALUES (?, ?, ?)`,
			v.Key, v.Value, v.Enabled); err != nil {
			return fmt.Errorf("save environment: %w", err)
		}
	}
	return tx.Commit()
}

// SetEnvVar inserts or updates a variable.
func (s *Store) SetEnvVar(v env.EnvVar) error {
	if !env.ValidKey(v.Key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, v.Key)
	}

	ctx, cancel := s.ctx()
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO env_vars (key, value, enabled) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, enabled = excluded.enabled`,
		v.Key, v.Value, v.Enabled)
	if err != nil {
		return fmt.Errorf("set variable: %w", err)
	}
	return nil
}

// DeleteEnvVar removes a variable.
func (s *Store) DeleteEnvVar(key string) error {
	return s.execOne(`DELETE FROM env_vars WHERE key = ?`, key)
}

// SetEnvVarEnabled toggles whether a variable takes part in resolution.
func (s *Store) SetEnvVarEnabled(key string, enabled bool) error {
	return s.execOne(`UPDATE env_vars SET enabled = ? WHERE key = ?`, enabled, key)
}

// RenameEnvVar changes a variable's key, keeping its value and state.
func (s *Store) RenameEnvVar(oldKey, newKey string) error {
	if !env.ValidKey(newKey) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, newKey)
	}
	if oldKey == newKey {
		return nil
	}

	ctx, cancel := s.ctx()
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM env_vars WHERE key = ?`, newKey).Scan(&exists)
	if err != nil {
		return fmt.Errorf("rename variable: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateKey, newKey)
	}

	res, err := tx.ExecContext(ctx, `UPDATE env_vars SET key = ? WHERE key = ?`, newKey, oldKey)
	if err != nil {
		return fmt.Errorf("rename variable: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, oldKey)
	}
	return tx.Commit()
}

func (s *Store) execOne(query string, args ...any) error {
	ctx, cancel := s.ctx()
	defer cancel()

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// parseConnectionString parses a connection string into driver and DSN
func parseConnectionString(connStr string) (driver string, dsn string, err error) {
	connStr = strings.TrimSpace(connStr)
	if connStr == "" {
		return "", "", fmt.Errorf("empty connection string")
	}

	// Handle sqlite:// and sqlite: prefixes
	if strings.HasPrefix(connStr, "sqlite://") {
		return "sqlite3", strings.TrimPrefix(connStr, "sqlite://"), nil
	}
	if strings.HasPrefix(connStr, "sqlite:") {
		return "sqlite3", strings.TrimPrefix(connStr, "sqlite:"), nil
	}

	if i := strings.Index(connStr, "://"); i > 0 {
		return "", "", fmt.Errorf("unsupported database scheme: %s", connStr[:i])
	}

	// A bare path is a sqlite file
	return "sqlite3", connStr, nil
}

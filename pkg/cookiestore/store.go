// Package cookiestore persists browser cookies in SQLite so a session can be
// restored into a later one.
package cookiestore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed schema.sql
var schemaSQL string

// ErrStoreClosed indicates the underlying database connection is unavailable.
var ErrStoreClosed = errors.New("cookiestore: closed")

// Store keeps cookies grouped by profile name.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// MemoryPath keeps the store in process memory.
const MemoryPath = ":memory:"

// Open creates or opens the database at path. The file and its directory
// are created private to the current user.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("cookiestore: database path is required")
	}

	inMemory := path == MemoryPath
	if !inMemory {
		if err := createPrivate(path); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cookie database: %w", err)
	}
	if inMemory {
		// Each connection to :memory: is its own database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
	}

	pragmas := []string{"PRAGMA busy_timeout = 5000"}
	if !inMemory {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, now: time.Now}, nil
}

// createPrivate makes sure path exists with owner-only permissions before
// SQLite opens it with the process umask.
func createPrivate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create cookie database directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	switch {
	case err == nil:
		return f.Close()
	case errors.Is(err, fs.ErrExist):
		return nil
	default:
		return fmt.Errorf("create cookie database: %w", err)
	}
}

// Close releases the database. It is safe on a nil store.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// migrations are applied in order on top of schema.sql; each entry is
// recorded in schema_migrations once it has run.
var migrations = []struct {
	version int
	name    string
	up      string
}{
	{1, "cookies", ""},
}

func migrate(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create cookie schema: %w", err)
	}
	var applied int
	if err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&applied); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for _, m := range migrations {
		if m.version <= applied {
			continue
		}
		if m.up != "" {
			if _, err := db.Exec(m.up); err != nil {
				return fmt.Errorf("migrate to v%d %s: %w", m.version, m.name, err)
			}
		}
		if _, err := db.Exec("INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.version, m.name); err != nil {
			return fmt.Errorf("record v%d: %w", m.version, err)
		}
	}
	return nil
}

// SchemaVersion returns the highest applied migration.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	if s == nil || s.db == nil {
		return 0, ErrStoreClosed
	}
	var v int
	err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&v)
	return v, err
}

// retryable reports SQLite lock contention.
func retryable(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	switch serr.Code() {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	}
	return false
}

// withRetry runs fn again with growing pauses while the database is
// locked by another writer.
func withRetry(ctx context.Context, fn func() error) error {
	const attempts = 5
	pause := 25 * time.Millisecond
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil || !retryable(err) {
			return err
		}
		t := time.NewTimer(pause)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		pause *= 2
	}
	return err
}

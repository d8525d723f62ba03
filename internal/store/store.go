// Package store defines the collaborator contracts the practice engine
// consumes (content catalog, progress, attempts, sessions) and provides
// two implementations: a sqlx-backed SQL store (SQLite or Postgres) and
// an in-memory store for demos and tests.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"

	// Postgres driver.
	_ "github.com/lib/pq"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// SQL is a sqlx-backed store. The same struct serves both supported
// drivers; queries are written with ? placeholders and rebound per driver.
type SQL struct {
	db *sqlx.DB
}

var (
	_ ContentRepo  = (*SQL)(nil)
	_ ProgressRepo = (*SQL)(nil)
	_ AttemptRepo  = (*SQL)(nil)
	_ SessionRepo  = (*SQL)(nil)

	_ ContentRepo  = (*Memory)(nil)
	_ ProgressRepo = (*Memory)(nil)
	_ AttemptRepo  = (*Memory)(nil)
	_ SessionRepo  = (*Memory)(nil)
)

// Open connects to the database and bootstraps the schema.
// driver is "sqlite" or "postgres".
func Open(driver, dsn string) (*SQL, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	if driver == "sqlite" {
		if err := applyPragmas(db); err != nil {
			db.Close()
			return nil, err
		}
		// SQLite has a single writer.
		db.SetMaxOpenConns(1)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQL{db: db}, nil
}

// DB returns the underlying sqlx handle for raw queries.
func (s *SQL) DB() *sqlx.DB { return s.db }

// Close closes the database connection.
func (s *SQL) Close() error { return s.db.Close() }

func applyPragmas(db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the SQLite file path in priority order:
// 1. ALGODRILL_DB environment variable
// 2. $XDG_DATA_HOME/algodrill/algodrill.db
// 3. ~/.local/share/algodrill/algodrill.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("ALGODRILL_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "algodrill", "algodrill.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// initSchema creates the tables if they don't exist. The DDL sticks to
// the dialect intersection of SQLite and Postgres.
func initSchema(db *sqlx.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS items (
			id           TEXT PRIMARY KEY,
			pattern      TEXT NOT NULL,
			type         TEXT NOT NULL,
			difficulty   TEXT NOT NULL,
			prompt       TEXT NOT NULL,
			answer       TEXT NOT NULL DEFAULT '',
			subtype      TEXT NOT NULL DEFAULT '',
			tags         TEXT NOT NULL DEFAULT '',
			duration_sec INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_items_pattern ON items (pattern)`,

		`CREATE TABLE IF NOT EXISTS progress (
			user_id       TEXT NOT NULL,
			item_id       TEXT NOT NULL,
			easiness      REAL NOT NULL,
			repetitions   INTEGER NOT NULL DEFAULT 0,
			interval_days INTEGER NOT NULL DEFAULT 0,
			next_due      TIMESTAMP NOT NULL,
			last_grade    INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (user_id, item_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_progress_due ON progress (user_id, next_due)`,

		`CREATE TABLE IF NOT EXISTS attempts (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			item_id    TEXT NOT NULL,
			grade      INTEGER NOT NULL,
			feedback   TEXT NOT NULL DEFAULT '',
			time_ms    INTEGER NOT NULL DEFAULT 0,
			timed_out  BOOLEAN NOT NULL DEFAULT FALSE,
			response   TEXT NOT NULL DEFAULT '',
			correct    BOOLEAN,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_user_time ON attempts (user_id, created_at)`,

		`CREATE TABLE IF NOT EXISTS sessions (
			id              TEXT PRIMARY KEY,
			user_id         TEXT NOT NULL,
			pattern         TEXT NOT NULL,
			started_at      TIMESTAMP NOT NULL,
			ended_at        TIMESTAMP,
			size_planned    INTEGER NOT NULL DEFAULT 0,
			size_completed  INTEGER NOT NULL DEFAULT 0,
			accuracy        REAL NOT NULL DEFAULT 0,
			avg_response_ms INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_pattern ON sessions (user_id, pattern, started_at)`,

		`CREATE TABLE IF NOT EXISTS session_items (
			session_id TEXT NOT NULL,
			item_id    TEXT NOT NULL,
			position   INTEGER NOT NULL,
			PRIMARY KEY (session_id, item_id)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

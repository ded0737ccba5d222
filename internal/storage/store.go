package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// Store persists optimization runs in SQLite
type Store struct {
	sql    *sql.DB
	path   string
	logger zerolog.Logger
}

// Open opens (or creates) the database at path and runs migrations
func Open(path string, logger zerolog.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory %s: %w", dir, err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	s := &Store{sql: sqlDB, path: path, logger: logger}
	if err := s.migrate(context.Background()); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	s.logger.Info().Str("path", path).Msg("💾 run store opened")
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.sql.Close()
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate(ctx context.Context) error {
	version := 0
	// missing table on a fresh database leaves version at 0
	s.sql.QueryRowContext(ctx, "SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := s.sql.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS runs (
				id              TEXT PRIMARY KEY,
				created_at      TEXT NOT NULL,
				tickers         TEXT NOT NULL,
				method          TEXT NOT NULL,
				converged       INTEGER NOT NULL,
				status          TEXT NOT NULL,
				warning         TEXT NOT NULL DEFAULT '',
				expected_return REAL NOT NULL,
				std_dev         REAL NOT NULL,
				sharpe          REAL NOT NULL,
				objective       REAL NOT NULL,
				iterations      INTEGER NOT NULL,
				simulations     INTEGER NOT NULL,
				steps           INTEGER NOT NULL,
				step_size       REAL NOT NULL,
				seed            TEXT NOT NULL,
				risk_free_rate  REAL NOT NULL,
				diversification REAL NOT NULL,
				duration_ms     INTEGER NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);

			CREATE TABLE IF NOT EXISTS run_assets (
				run_id        TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
				position      INTEGER NOT NULL,
				ticker        TEXT NOT NULL,
				weight        REAL NOT NULL,
				mean_return   REAL NOT NULL,
				initial_price REAL NOT NULL,
				drift         REAL NOT NULL,
				volatility    REAL NOT NULL,
				PRIMARY KEY (run_id, position)
			);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
		s.logger.Debug().Msg("applied migration v1")
	}

	if version < 2 {
		_, err := s.sql.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS run_plans (
				run_id   TEXT PRIMARY KEY REFERENCES runs(id) ON DELETE CASCADE,
				capital  TEXT NOT NULL,
				invested TEXT NOT NULL,
				cash     TEXT NOT NULL,
				payload  TEXT NOT NULL
			);

			INSERT OR IGNORE INTO schema_version (version) VALUES (2);
		`)
		if err != nil {
			return fmt.Errorf("migration v2: %w", err)
		}
		s.logger.Debug().Msg("applied migration v2")
	}

	return nil
}

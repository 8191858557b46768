// Package stores persists the run history: which versions each run
// installed, skipped, or failed. The history is an audit log only;
// presence on the host is always re-probed from the search path, never
// read back from here.
package stores

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// SQLite driver
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// HistoryStore implements run-history persistence on SQLite.
type HistoryStore struct {
	db   *sql.DB
	path string
}

// NewHistoryStore creates a store for the database at path. Use ":memory:"
// for an ephemeral store.
func NewHistoryStore(path string) (*HistoryStore, error) {
	if path == "" {
		return nil, fmt.Errorf("stores: database path is required")
	}
	return &HistoryStore{path: path}, nil
}

// Init opens the database, creating parent directories as needed, and
// applies pending migrations.
func (s *HistoryStore) Init(ctx context.Context) error {
	if s.path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
			return fmt.Errorf("stores: create data dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", s.path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("stores: open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("stores: ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return fmt.Errorf("stores: enable foreign keys: %w", err)
	}

	s.db = db
	return s.migrate()
}

// Close closes the database connection.
func (s *HistoryStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *HistoryStore) migrate() error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("stores: migration source: %w", err)
	}

	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("stores: migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("stores: migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("stores: apply migrations: %w", err)
	}
	return nil
}

// SaveRun writes one run and its version outcomes in a single transaction.
func (s *HistoryStore) SaveRun(ctx context.Context, run RunRecord, outcomes []OutcomeRecord) error {
	if s.db == nil {
		return fmt.Errorf("stores: database not initialized")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("stores: begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, mode, installed_count, already_present, skipped, failed_labels, cancelled, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Mode, run.InstalledCount, run.AlreadyPresent, run.Skipped,
		strings.Join(run.FailedLabels, ","), run.Cancelled, run.StartedAt.UTC(), run.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("stores: insert run: %w", err)
	}

	for _, o := range outcomes {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO version_outcomes (run_id, position, label, full_version, outcome, installed_version, failed_stage, duration_ms)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, o.Position, o.Label, o.FullVersion, o.Outcome,
			o.InstalledVersion, o.FailedStage, o.Duration.Milliseconds(),
		)
		if err != nil {
			return fmt.Errorf("stores: insert outcome %s: %w", o.Label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("stores: commit: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *HistoryStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("stores: database not initialized")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, mode, installed_count, already_present, skipped, failed_labels, cancelled, started_at, finished_at
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("stores: query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var (
			run          RunRecord
			failedLabels string
		)
		if err := rows.Scan(&run.ID, &run.Mode, &run.InstalledCount, &run.AlreadyPresent,
			&run.Skipped, &failedLabels, &run.Cancelled, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, fmt.Errorf("stores: scan run: %w", err)
		}
		if failedLabels != "" {
			run.FailedLabels = strings.Split(failedLabels, ",")
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunOutcomes returns the per-version outcomes for a run in loop order.
func (s *HistoryStore) RunOutcomes(ctx context.Context, runID string) ([]OutcomeRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("stores: database not initialized")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, position, label, full_version, outcome, installed_version, failed_stage, duration_ms
		FROM version_outcomes WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("stores: query outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []OutcomeRecord
	for rows.Next() {
		var (
			o          OutcomeRecord
			durationMS int64
		)
		if err := rows.Scan(&o.RunID, &o.Position, &o.Label, &o.FullVersion,
			&o.Outcome, &o.InstalledVersion, &o.FailedStage, &durationMS); err != nil {
			return nil, fmt.Errorf("stores: scan outcome: %w", err)
		}
		o.Duration = time.Duration(durationMS) * time.Millisecond
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

// Package planstore provides SQLite-backed history of planning runs.
// Every decomposition attempt (successful or not) can be recorded with
// its outcome and search cost, for later inspection via the CLI.
package planstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store wraps an SQLite database holding plan run history.
type Store struct {
	conn *sql.DB
	path string
	mu   sync.RWMutex
}

// Run is one recorded planning attempt.
type Run struct {
	// ID is the unique run identifier.
	ID string
	// Goal is the root task name that was decomposed.
	Goal string
	// Domain is the domain name the planner consulted.
	Domain string
	// Success reports whether a plan was produced.
	Success bool
	// Steps is the plan length, 0 on failure.
	Steps int
	// Iterations is the number of decompose invocations the search used.
	Iterations int
	// MaxDepth is the deepest recursion level reached.
	MaxDepth int
	// Duration is the wall-clock time of the call.
	Duration time.Duration
	// CreatedAt is when the run was recorded.
	CreatedAt time.Time
}

// DefaultPath returns the default history database location,
// honoring XDG_DATA_HOME.
func DefaultPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "craftplan", "history.db")
}

// Open opens (creating if needed) the history database at the given
// path. WAL mode is enabled for concurrent reads.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	s := &Store{conn: conn, path: path}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

// Path returns the path to the database file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate() error {
	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var currentVersion int
	row := s.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1Runs},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		tx, err := s.conn.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.version, err)
		}
	}
	return nil
}

const migrationV1Runs = `
CREATE TABLE IF NOT EXISTS plan_runs (
	id TEXT PRIMARY KEY,
	goal TEXT NOT NULL,
	domain TEXT NOT NULL,
	success INTEGER NOT NULL DEFAULT 0,
	steps INTEGER NOT NULL DEFAULT 0,
	iterations INTEGER NOT NULL DEFAULT 0,
	max_depth INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_plan_runs_created ON plan_runs(created_at);
CREATE INDEX IF NOT EXISTS idx_plan_runs_goal ON plan_runs(goal);
`

// Record inserts a run. A missing ID or CreatedAt is filled in.
func (s *Store) Record(run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err := s.conn.Exec(`
		INSERT INTO plan_runs (id, goal, domain, success, steps, iterations, max_depth, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Goal, run.Domain, boolToInt(run.Success),
		run.Steps, run.Iterations, run.MaxDepth,
		run.Duration.Milliseconds(), run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Recent returns the most recent runs, newest first.
func (s *Store) Recent(limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.conn.Query(`
		SELECT id, goal, domain, success, steps, iterations, max_depth, duration_ms, created_at
		FROM plan_runs
		ORDER BY created_at DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var success int
		var durationMS int64
		if err := rows.Scan(&r.ID, &r.Goal, &r.Domain, &success, &r.Steps,
			&r.Iterations, &r.MaxDepth, &durationMS, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Success = success != 0
		r.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Summary aggregates run history.
type Summary struct {
	// Total is the number of recorded runs.
	Total int
	// Succeeded is the number of successful runs.
	Succeeded int
	// AvgIterations is the mean search cost across all runs.
	AvgIterations float64
}

// Stats returns aggregate history statistics.
func (s *Store) Stats() (Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum Summary
	row := s.conn.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(success), 0),
		       COALESCE(AVG(iterations), 0)
		FROM plan_runs`)
	if err := row.Scan(&sum.Total, &sum.Succeeded, &sum.AvgIterations); err != nil {
		return Summary{}, fmt.Errorf("query stats: %w", err)
	}
	return sum, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

package results

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/tursodatabase/go-libsql"
)

// Run records one preparation run: which case study, which representation,
// and the knobs that shaped the output tensors.
type Run struct {
	ID          uuid.UUID
	CaseStudy   string
	Mode        string
	SampleCount int
	SampleShape string
	Seed        int64
	CreatedAt   time.Time
}

// Metric is a named scalar attached to a run, for example a class balance
// ratio or a held-out score from an external model artifact.
type Metric struct {
	RunID uuid.UUID
	Name  string
	Value float64
}

// Store persists runs and their metrics in a local libsql database.
type Store struct {
	db *sql.DB
}

// Open opens or initializes the results database at dbPath, creating the
// parent directory if needed.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("could not create results directory: %w", err)
	}

	slog.Info("Results database path:", "path", dbPath)

	db, err := sql.Open("libsql", "file:"+dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open results database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach results database: %w", err)
	}

	store := &Store{db: db}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// init sets up the results tables.
func (s *Store) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY UNIQUE,
		case_study TEXT NOT NULL,
		mode TEXT NOT NULL,
		sample_count INTEGER NOT NULL,
		sample_shape TEXT NOT NULL,
		seed INTEGER NOT NULL,
		created_at TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}

	_, err = s.db.Exec(`CREATE TABLE IF NOT EXISTS metrics (
		run_id TEXT NOT NULL REFERENCES runs(id),
		name TEXT NOT NULL,
		value REAL NOT NULL,
		PRIMARY KEY (run_id, name)
	)`)
	if err != nil {
		return fmt.Errorf("failed to create metrics table: %w", err)
	}

	return nil
}

// RecordRun inserts a run and its metrics in one transaction and returns
// the stored run with its assigned id and timestamp.
func (s *Store) RecordRun(run Run, metrics []Metric) (*Run, error) {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Will be a no-op if transaction is committed

	result, err := tx.Exec(
		"INSERT INTO runs (id, case_study, mode, sample_count, sample_shape, seed, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		run.ID.String(), run.CaseStudy, run.Mode, run.SampleCount, run.SampleShape, run.Seed,
		run.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected != 1 {
		return nil, fmt.Errorf("expected 1 row affected, got %d", rowsAffected)
	}

	for _, m := range metrics {
		if _, err := tx.Exec(
			"INSERT INTO metrics (run_id, name, value) VALUES (?, ?, ?)",
			run.ID.String(), m.Name, m.Value); err != nil {
			return nil, fmt.Errorf("failed to insert metric %s: %w", m.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Debug("Recorded preparation run", "id", run.ID, "case_study", run.CaseStudy, "metrics", len(metrics))

	return &run, nil
}

// GetRun retrieves a run by its id.
func (s *Store) GetRun(id uuid.UUID) (*Run, error) {
	var run Run
	var idStr, createdAt string
	err := s.db.QueryRow(
		"SELECT id, case_study, mode, sample_count, sample_shape, seed, created_at FROM runs WHERE id = ?",
		id.String()).Scan(&idStr, &run.CaseStudy, &run.Mode, &run.SampleCount, &run.SampleShape, &run.Seed, &createdAt)
	if err != nil {
		return nil, err
	}
	run.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse run id: %w", err)
	}
	run.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse run timestamp: %w", err)
	}
	return &run, nil
}

// ListRuns returns all runs for a case study, newest first. An empty
// caseStudy lists every run.
func (s *Store) ListRuns(caseStudy string) ([]Run, error) {
	query := "SELECT id, case_study, mode, sample_count, sample_shape, seed, created_at FROM runs"
	args := []any{}
	if caseStudy != "" {
		query += " WHERE case_study = ?"
		args = append(args, caseStudy)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var idStr, createdAt string
		if err := rows.Scan(&idStr, &run.CaseStudy, &run.Mode, &run.SampleCount, &run.SampleShape, &run.Seed, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.ID, err = uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse run id: %w", err)
		}
		run.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse run timestamp: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return runs, nil
}

// GetMetrics retrieves all metrics recorded for a run, sorted by name.
func (s *Store) GetMetrics(runID uuid.UUID) ([]Metric, error) {
	rows, err := s.db.Query(
		"SELECT run_id, name, value FROM metrics WHERE run_id = ? ORDER BY name ASC",
		runID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics: %w", err)
	}
	defer rows.Close()

	var metrics []Metric
	for rows.Next() {
		var m Metric
		var idStr string
		if err := rows.Scan(&idStr, &m.Name, &m.Value); err != nil {
			return nil, fmt.Errorf("failed to scan metric: %w", err)
		}
		m.RunID, err = uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse metric run id: %w", err)
		}
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return metrics, nil
}

// MetricHistory returns the values of one metric across all runs of a case
// study, oldest first, so trends can be summarized.
func (s *Store) MetricHistory(caseStudy, name string) ([]float64, error) {
	rows, err := s.db.Query(`SELECT m.value FROM metrics m
		JOIN runs r ON r.id = m.run_id
		WHERE r.case_study = ? AND m.name = ?
		ORDER BY r.created_at ASC`, caseStudy, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query metric history: %w", err)
	}
	defer rows.Close()

	var values []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan metric value: %w", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return values, nil
}

// DeleteRun removes a run and its metrics.
func (s *Store) DeleteRun(id uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM metrics WHERE run_id = ?", id.String()); err != nil {
		return fmt.Errorf("failed to delete metrics: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM runs WHERE id = ?", id.String()); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return tx.Commit()
}

// Close closes the results database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

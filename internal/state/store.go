package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"failtrack/internal/report"
	"failtrack/internal/types"
)

// ErrRunNotFound is returned for lookups of unknown run IDs
var ErrRunNotFound = errors.New("run not found")

// Run is one stored analysis
type Run struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Threshold  int       `json:"threshold"`
	Events     int       `json:"events"`
	Suspicious int       `json:"suspicious"`
	CreatedAt  time.Time `json:"created_at"`
}

// Attacker is one summary row of a stored run
type Attacker struct {
	Rank       int    `json:"rank"`
	IP         string `json:"ip"`
	Count      int    `json:"failed_attempts"`
	Suspicious bool   `json:"suspicious"`
}

// Store keeps completed runs in SQLite
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	threshold INTEGER NOT NULL,
	events INTEGER NOT NULL,
	suspicious INTEGER NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS attackers (
	run_id TEXT NOT NULL REFERENCES runs(id),
	position INTEGER NOT NULL,
	ip TEXT NOT NULL,
	failed_attempts INTEGER NOT NULL,
	suspicious INTEGER NOT NULL,
	PRIMARY KEY (run_id, position)
);
CREATE TABLE IF NOT EXISTS timeline (
	run_id TEXT NOT NULL REFERENCES runs(id),
	bucket TEXT NOT NULL,
	failed_attempts INTEGER NOT NULL,
	PRIMARY KEY (run_id, bucket)
);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
`

// NewStore opens (or creates) the database at dbPath
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open state db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Snapshot converts a report into the rows SaveRun stores
func Snapshot(r report.Report, events int, createdAt time.Time) (Run, []Attacker) {
	flagged := make(map[string]bool, len(r.Suspicious))
	for _, s := range r.Suspicious {
		flagged[s.IP] = true
	}

	attackers := make([]Attacker, 0, len(r.Summary))
	for i, c := range r.Summary {
		attackers = append(attackers, Attacker{
			Rank:       i + 1,
			IP:         c.IP,
			Count:      c.Count,
			Suspicious: flagged[c.IP],
		})
	}

	run := Run{
		ID:         r.RunID,
		Source:     r.Source,
		Threshold:  r.Threshold,
		Events:     events,
		Suspicious: len(r.Suspicious),
		CreatedAt:  createdAt.UTC(),
	}
	return run, attackers
}

// SaveRun stores a run with its ranked attackers and time series in one
// transaction
func (s *Store) SaveRun(ctx context.Context, run Run, attackers []Attacker, timeline []types.TimeBucketCount) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, source, threshold, events, suspicious, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.Threshold, run.Events, run.Suspicious, run.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}

	attStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO attackers (run_id, position, ip, failed_attempts, suspicious) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer attStmt.Close()

	for _, a := range attackers {
		if _, err := attStmt.ExecContext(ctx, run.ID, a.Rank, a.IP, a.Count, a.Suspicious); err != nil {
			return fmt.Errorf("failed to save attacker %s: %w", a.IP, err)
		}
	}

	tlStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO timeline (run_id, bucket, failed_attempts) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer tlStmt.Close()

	for _, b := range timeline {
		if _, err := tlStmt.ExecContext(ctx, run.ID, b.Bucket, b.Count); err != nil {
			return fmt.Errorf("failed to save bucket %s: %w", b.Bucket, err)
		}
	}

	return tx.Commit()
}

// ListRuns returns up to limit runs, newest first
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, threshold, events, suspicious, created_at FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Source, &r.Threshold, &r.Events, &r.Suspicious, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns one run by ID
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	var r Run
	err := s.db.QueryRowContext(ctx,
		`SELECT id, source, threshold, events, suspicious, created_at FROM runs WHERE id = ?`, id,
	).Scan(&r.ID, &r.Source, &r.Threshold, &r.Events, &r.Suspicious, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return r, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return r, err
}

// Attackers returns a run's summary rows in rank order
func (s *Store) Attackers(ctx context.Context, runID string) ([]Attacker, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT position, ip, failed_attempts, suspicious FROM attackers WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attackers := []Attacker{}
	for rows.Next() {
		var a Attacker
		if err := rows.Scan(&a.Rank, &a.IP, &a.Count, &a.Suspicious); err != nil {
			return nil, err
		}
		attackers = append(attackers, a)
	}
	return attackers, rows.Err()
}

// Timeline returns a run's time series, ascending by bucket
func (s *Store) Timeline(ctx context.Context, runID string) ([]types.TimeBucketCount, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT bucket, failed_attempts FROM timeline WHERE run_id = ? ORDER BY bucket`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	series := []types.TimeBucketCount{}
	for rows.Next() {
		var b types.TimeBucketCount
		if err := rows.Scan(&b.Bucket, &b.Count); err != nil {
			return nil, err
		}
		series = append(series, b)
	}
	return series, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kamanufred/reBLAST/pkg/model"

	_ "modernc.org/sqlite"
)

var ErrRunNotFound = errors.New("run not found")

// Fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
	CREATE TABLE IF NOT EXISTS runs (
		run_id          TEXT PRIMARY KEY,
		genome1         TEXT NOT NULL,
		genome2         TEXT NOT NULL,
		mol_type        TEXT NOT NULL,
		evalue          REAL NOT NULL,
		max_target_seqs INTEGER NOT NULL,
		num_threads     INTEGER NOT NULL,
		pair_count      INTEGER NOT NULL,
		created_at      TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS orthologs (
		run_id     TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
		rank       INTEGER NOT NULL,
		genome1_id TEXT NOT NULL,
		genome2_id TEXT NOT NULL,
		PRIMARY KEY (run_id, rank)
	);
`

// Run describes one finished pipeline run.
type Run struct {
	ID            string    `json:"run_id"`
	Genome1       string    `json:"genome1"`
	Genome2       string    `json:"genome2"`
	MolType       string    `json:"mol_type"`
	EValue        float64   `json:"evalue"`
	MaxTargetSeqs int       `json:"max_target_seqs"`
	Threads       int       `json:"num_threads"`
	PairCount     int       `json:"pair_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// RunStore records runs and their ortholog pairs in sqlite.
type RunStore struct {
	db *sql.DB
}

// Open opens (or creates) the sqlite file at path.
func Open(path string) (*RunStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	store, err := NewRunStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func NewRunStore(db *sql.DB) (*RunStore, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &RunStore{db: db}, nil
}

func (s *RunStore) Close() error {
	return s.db.Close()
}

// SaveRun stores run and its pairs in one transaction. The pair order is kept.
func (s *RunStore) SaveRun(ctx context.Context, run Run, orthologs model.OrthologSet) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("fail to begin tx %w", err)
	}
	defer tx.Rollback()

	run.PairCount = len(orthologs)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (run_id, genome1, genome2, mol_type, evalue, max_target_seqs, num_threads, pair_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Genome1, run.Genome2, run.MolType, run.EValue, run.MaxTargetSeqs, run.Threads,
		run.PairCount, run.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	stm, err := tx.PrepareContext(ctx, `INSERT INTO orthologs (run_id, rank, genome1_id, genome2_id) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare ortholog insert: %w", err)
	}
	defer stm.Close()

	for i, p := range orthologs {
		if _, err := stm.ExecContext(ctx, run.ID, i, p.Genome1ID, p.Genome2ID); err != nil {
			return fmt.Errorf("insert ortholog %d of run %s: %w", i, run.ID, err)
		}
	}

	return tx.Commit()
}

const runColumns = `run_id, genome1, genome2, mol_type, evalue, max_target_seqs, num_threads, pair_count, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var r Run
	var created string
	if err := row.Scan(&r.ID, &r.Genome1, &r.Genome2, &r.MolType, &r.EValue,
		&r.MaxTargetSeqs, &r.Threads, &r.PairCount, &created); err != nil {
		return r, err
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return r, fmt.Errorf("run %s has a bad created_at %q: %w", r.ID, created, err)
	}
	r.CreatedAt = t
	return r, nil
}

func (s *RunStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRuns returns every run, newest first.
func (s *RunStore) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, run_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetOrthologs returns the pairs of a run in report order.
func (s *RunStore) GetOrthologs(ctx context.Context, runID string) (model.OrthologSet, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT genome1_id, genome2_id FROM orthologs WHERE run_id = ? ORDER BY rank`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orthologs := make(model.OrthologSet, 0)
	for rows.Next() {
		var p model.OrthologPair
		if err := rows.Scan(&p.Genome1ID, &p.Genome2ID); err != nil {
			return nil, err
		}
		orthologs = append(orthologs, p)
	}
	return orthologs, rows.Err()
}

// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/sinecheck/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrRunNotFound is returned when a run id does not exist.
var ErrRunNotFound = errors.New("run not found")

// Store wraps SQLite access for analysis runs.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY,
			analyzed_at TEXT NOT NULL,
			log_path TEXT NOT NULL,
			joint TEXT NOT NULL,
			samples INTEGER NOT NULL,
			mean_dt REAL NOT NULL,
			window_start INTEGER NOT NULL,
			window_end INTEGER NOT NULL,
			min_shift INTEGER NOT NULL,
			max_shift INTEGER NOT NULL,
			epsilon REAL NOT NULL,
			traces BLOB
		);`,
		`CREATE TABLE IF NOT EXISTS pair_results (
			run_id INTEGER NOT NULL,
			ord INTEGER NOT NULL,
			first TEXT NOT NULL,
			second TEXT NOT NULL,
			shift INTEGER NOT NULL,
			score REAL NOT NULL,
			time_offset REAL NOT NULL,
			PRIMARY KEY (run_id, ord)
		);`,
		`CREATE TABLE IF NOT EXISTS stuck_counts (
			run_id INTEGER NOT NULL,
			signal TEXT NOT NULL,
			count INTEGER NOT NULL,
			PRIMARY KEY (run_id, signal)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_analyzed_at ON runs(analyzed_at);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_joint ON runs(joint);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun stores an analysis, its pair results, stuck counts and the
// compressed traces of log.
func (s *Store) InsertRun(ctx context.Context, analysis model.Analysis, log model.Log) (int64, error) {
	traces, err := encodeTraces(log)
	if err != nil {
		return 0, fmt.Errorf("failed to encode traces: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (analyzed_at, log_path, joint, samples, mean_dt, window_start, window_end, min_shift, max_shift, epsilon, traces)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		analysis.AnalyzedAt.UTC().Format(time.RFC3339Nano),
		analysis.LogPath,
		analysis.Joint,
		analysis.Samples,
		analysis.MeanDt,
		analysis.Window.Start,
		analysis.Window.End,
		analysis.Shifts.Min,
		analysis.Shifts.Max,
		analysis.Epsilon,
		traces,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for i, p := range analysis.Pairs {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO pair_results (run_id, ord, first, second, shift, score, time_offset)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, i, p.First, p.Second, p.Shift, p.Score, p.TimeOffset); err != nil {
			return 0, err
		}
	}
	for _, st := range analysis.Stuck {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO stuck_counts (run_id, signal, count) VALUES (?, ?, ?)`,
			id, st.Signal, st.Count); err != nil {
			return 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

const runColumns = `id, analyzed_at, log_path, joint, samples, mean_dt, window_start, window_end, min_shift, max_shift, epsilon`

// ListRuns returns stored runs filtered by cfg, oldest first.
func (s *Store) ListRuns(ctx context.Context, cfg model.HistoryConfig) ([]model.RunSummary, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Joint != "" {
		clauses = append(clauses, "joint = ?")
		args = append(args, cfg.Joint)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "analyzed_at >= ?")
		args = append(args, cfg.Since.UTC().Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT %s
		FROM runs
		WHERE %s
		ORDER BY analyzed_at ASC, id ASC`, runColumns, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.RunSummary
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.attachResults(ctx, runs); err != nil {
		return nil, err
	}
	return runs, nil
}

// GetRun returns one stored run.
func (s *Store) GetRun(ctx context.Context, id int64) (model.RunSummary, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT %s FROM runs WHERE id = ?`, runColumns), id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RunSummary{}, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	if err != nil {
		return model.RunSummary{}, err
	}
	runs := []model.RunSummary{run}
	if err := s.attachResults(ctx, runs); err != nil {
		return model.RunSummary{}, err
	}
	return runs[0], nil
}

// LoadTraces decompresses the traces stored with a run.
func (s *Store) LoadTraces(ctx context.Context, id int64) (model.Log, error) {
	var (
		blob    []byte
		logPath string
		joint   string
	)
	err := s.db.QueryRowContext(ctx, `SELECT traces, log_path, joint FROM runs WHERE id = ?`, id).Scan(&blob, &logPath, &joint)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Log{}, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	if err != nil {
		return model.Log{}, err
	}
	log, err := decodeTraces(blob)
	if err != nil {
		return model.Log{}, fmt.Errorf("failed to decode traces of run %d: %w", id, err)
	}
	log.Path = logPath
	log.Joint = joint
	return log, nil
}

// DeleteRun removes a run and its results.
func (s *Store) DeleteRun(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		err = fmt.Errorf("%w: %d", ErrRunNotFound, id)
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM pair_results WHERE run_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM stuck_counts WHERE run_id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (model.RunSummary, error) {
	var run model.RunSummary
	var analyzedAt string
	if err := row.Scan(
		&run.RunID,
		&analyzedAt,
		&run.LogPath,
		&run.Joint,
		&run.Samples,
		&run.MeanDt,
		&run.Window.Start,
		&run.Window.End,
		&run.Shifts.Min,
		&run.Shifts.Max,
		&run.Epsilon,
	); err != nil {
		return model.RunSummary{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, analyzedAt)
	if err != nil {
		return model.RunSummary{}, err
	}
	run.AnalyzedAt = parsed
	run.Stuck = map[string]int{}
	return run, nil
}

// attachResults fills Pairs and Stuck of runs in place.
func (s *Store) attachResults(ctx context.Context, runs []model.RunSummary) error {
	if len(runs) == 0 {
		return nil
	}
	index := make(map[int64]int, len(runs))
	placeholders := make([]string, len(runs))
	args := make([]any, len(runs))
	for i, r := range runs {
		index[r.RunID] = i
		placeholders[i] = "?"
		args[i] = r.RunID
	}
	in := strings.Join(placeholders, ",")

	pairRows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT run_id, first, second, shift, score, time_offset
		FROM pair_results
		WHERE run_id IN (%s)
		ORDER BY run_id, ord`, in), args...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := pairRows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	for pairRows.Next() {
		var runID int64
		var p model.PairResult
		if err := pairRows.Scan(&runID, &p.First, &p.Second, &p.Shift, &p.Score, &p.TimeOffset); err != nil {
			return err
		}
		i := index[runID]
		runs[i].Pairs = append(runs[i].Pairs, p)
	}
	if err := pairRows.Err(); err != nil {
		return err
	}

	stuckRows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT run_id, signal, count
		FROM stuck_counts
		WHERE run_id IN (%s)`, in), args...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stuckRows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	for stuckRows.Next() {
		var runID int64
		var name string
		var count int
		if err := stuckRows.Scan(&runID, &name, &count); err != nil {
			return err
		}
		runs[index[runID]].Stuck[name] = count
	}
	return stuckRows.Err()
}

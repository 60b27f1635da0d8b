package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SQLStore keeps the journal in a relational database.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

func newSQLStore(ctx context.Context, db *sql.DB, d dialect) (*SQLStore, error) {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.name, err)
	}
	for _, stmt := range d.createTables {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create %s journal tables: %w", d.name, err)
		}
	}
	return &SQLStore{db: db, dialect: d}, nil
}

// DB exposes the underlying handle for tests.
func (s *SQLStore) DB() *sql.DB { return s.db }

func (s *SQLStore) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.dialect.rebind(query), args...)
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// StartRun inserts a new running run.
func (s *SQLStore) StartRun(ctx context.Context, startedAt time.Time) (Run, error) {
	run := Run{ID: uuid.NewString(), Status: StatusRunning, StartedAt: time.UnixMilli(startedAt.UnixMilli()).UTC()}
	_, err := s.exec(ctx,
		`INSERT INTO runs (id, status, message, started_at, finished_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, string(run.Status), "", toMillis(run.StartedAt), int64(0),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// RecordStep appends a step row.
func (s *SQLStore) RecordStep(ctx context.Context, runID string, step Step) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := tx.QueryRowContext(ctx, s.dialect.rebind(`SELECT COUNT(*) FROM runs WHERE id = ?`), runID).Scan(&exists); err != nil {
		return fmt.Errorf("lookup run: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	var seq int
	if err := tx.QueryRowContext(ctx, s.dialect.rebind(`SELECT COUNT(*) FROM run_steps WHERE run_id = ?`), runID).Scan(&seq); err != nil {
		return fmt.Errorf("count steps: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.dialect.rebind(
		`INSERT INTO run_steps (run_id, seq, name, status, attempts, message, started_at, finished_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		runID, seq, step.Name, string(step.Status), step.Attempts, step.Error, toMillis(step.StartedAt), toMillis(step.FinishedAt),
	); err != nil {
		return fmt.Errorf("insert step: %w", err)
	}
	return tx.Commit()
}

// FinishRun closes a run; a nil runErr marks it succeeded.
func (s *SQLStore) FinishRun(ctx context.Context, runID string, finishedAt time.Time, runErr error) error {
	res, err := s.exec(ctx,
		`UPDATE runs SET status = ?, message = ?, finished_at = ? WHERE id = ?`,
		string(StepStatus(runErr)), errText(runErr), toMillis(finishedAt), runID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// GetRun loads one run with its steps.
func (s *SQLStore) GetRun(ctx context.Context, runID string) (Run, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.rebind(
		`SELECT id, status, message, started_at, finished_at FROM runs WHERE id = ?`), runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return Run{}, err
	}
	if run.Steps, err = s.steps(ctx, run.ID); err != nil {
		return Run{}, err
	}
	return run, nil
}

// RecentRuns returns the newest runs first.
func (s *SQLStore) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(
		`SELECT id, status, message, started_at, finished_at FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	for i := range runs {
		if runs[i].Steps, err = s.steps(ctx, runs[i].ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (s *SQLStore) steps(ctx context.Context, runID string) ([]Step, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(
		`SELECT name, status, attempts, message, started_at, finished_at FROM run_steps WHERE run_id = ? ORDER BY seq`), runID)
	if err != nil {
		return nil, fmt.Errorf("select steps: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var steps []Step
	for rows.Next() {
		var (
			st                Step
			status            string
			started, finished int64
		)
		if err := rows.Scan(&st.Name, &status, &st.Attempts, &st.Error, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		st.Status = RunStatus(status)
		st.StartedAt = fromMillis(started)
		st.FinishedAt = fromMillis(finished)
		steps = append(steps, st)
	}
	return steps, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run               Run
		status            string
		started, finished int64
	)
	if err := row.Scan(&run.ID, &status, &run.Error, &started, &finished); err != nil {
		return Run{}, err
	}
	run.Status = RunStatus(status)
	run.StartedAt = fromMillis(started)
	run.FinishedAt = fromMillis(finished)
	return run, nil
}

// Close releases the database handle.
func (s *SQLStore) Close() error { return s.db.Close() }

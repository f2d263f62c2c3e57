package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/me/rrsim/internal/logging"
	"github.com/me/rrsim/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns a Store.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	// Every connection to ":memory:" is a separate database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logging.Component(logger, "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// timeFormat is fixed width so created_at sorts lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// NewRunID returns a fresh archive id.
func NewRunID() string {
	return "run_" + uuid.New().String()
}

// CreateRun inserts a run with its process results and timeline in one
// transaction. An empty ID is filled with NewRunID and a zero CreatedAt
// with the current time.
func (s *SQLiteStore) CreateRun(ctx context.Context, run *model.Run) error {
	if run.ID == "" {
		run.ID = NewRunID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	s.logger.Debug("sql", "op", "insert", "table", "runs", "id", run.ID,
		"processes", len(run.Metrics.Processes), "intervals", len(run.Timeline))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	m := run.Metrics
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, name, quantum, cores, total_ticks, busy_ticks,
		 average_waiting, average_turnaround, utilization, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Name, m.Quantum, m.Cores, m.TotalTicks, m.BusyTicks,
		m.AverageWaiting, m.AverageTurnaround, m.Utilization,
		run.CreatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, p := range m.Processes {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_processes (run_id, process_id, arrival_time, burst_time, start_time,
			 completion_time, waiting_time, turnaround_time)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, p.ID, p.ArrivalTime, p.BurstTime, p.StartTime,
			p.CompletionTime, p.WaitingTime, p.TurnaroundTime,
		)
		if err != nil {
			return fmt.Errorf("insert process %d: %w", p.ID, err)
		}
	}

	for i, iv := range run.Timeline {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_intervals (run_id, seq, process_id, core_id, start_tick, end_tick)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, i, iv.ProcessID, iv.CoreID, iv.Start, iv.End,
		)
		if err != nil {
			return fmt.Errorf("insert interval %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetRun returns a run with its processes and timeline, or nil if it does
// not exist.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	s.logger.Debug("sql", "op", "select", "table", "runs", "id", id)

	run, err := scanRun(s.db.QueryRowContext(ctx,
		`SELECT id, name, quantum, cores, total_ticks, busy_ticks,
		 average_waiting, average_turnaround, utilization, created_at
		 FROM runs WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	procs, err := s.db.QueryContext(ctx,
		`SELECT process_id, arrival_time, burst_time, start_time, completion_time, waiting_time, turnaround_time
		 FROM run_processes WHERE run_id = ? ORDER BY process_id`, id)
	if err != nil {
		return nil, err
	}
	for procs.Next() {
		var p model.ProcessResult
		if err := procs.Scan(&p.ID, &p.ArrivalTime, &p.BurstTime, &p.StartTime,
			&p.CompletionTime, &p.WaitingTime, &p.TurnaroundTime); err != nil {
			procs.Close()
			return nil, err
		}
		run.Metrics.Processes = append(run.Metrics.Processes, p)
	}
	procs.Close()
	if err := procs.Err(); err != nil {
		return nil, err
	}

	intervals, err := s.db.QueryContext(ctx,
		`SELECT process_id, core_id, start_tick, end_tick
		 FROM run_intervals WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer intervals.Close()
	for intervals.Next() {
		var iv model.Interval
		if err := intervals.Scan(&iv.ProcessID, &iv.CoreID, &iv.Start, &iv.End); err != nil {
			return nil, err
		}
		run.Timeline = append(run.Timeline, iv)
	}
	return run, intervals.Err()
}

// ListRuns returns run summaries, newest first, and the total number of
// matching runs. Summaries carry no processes or timeline.
func (s *SQLiteStore) ListRuns(ctx context.Context, opts model.ListOptions) ([]*model.Run, int, error) {
	s.logger.Debug("sql", "op", "list", "table", "runs", "limit", opts.Limit, "offset", opts.Offset, "name", opts.Name)
	opts.Clamp()

	where := ""
	var args []any
	if opts.Name != "" {
		where = " WHERE name = ?"
		args = append(args, opts.Name)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, quantum, cores, total_ticks, busy_ticks,
		 average_waiting, average_turnaround, utilization, created_at
		 FROM runs`+where+` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		append(args, opts.Limit, opts.Offset)...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var runs []*model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, err
		}
		runs = append(runs, run)
	}
	return runs, total, rows.Err()
}

// DeleteRun removes a run and, by cascade, its processes and timeline.
func (s *SQLiteStore) DeleteRun(ctx context.Context, id string) error {
	s.logger.Debug("sql", "op", "delete", "table", "runs", "id", id)

	result, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return model.NewNotFoundError("run", id)
	}
	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*model.Run, error) {
	var run model.Run
	var createdAt string
	m := &run.Metrics
	if err := row.Scan(&run.ID, &run.Name, &m.Quantum, &m.Cores, &m.TotalTicks, &m.BusyTicks,
		&m.AverageWaiting, &m.AverageTurnaround, &m.Utilization, &createdAt); err != nil {
		return nil, err
	}
	created, err := time.Parse(timeFormat, createdAt)
	if err != nil {
		return nil, fmt.Errorf("run %s: parse created_at %q: %w", run.ID, createdAt, err)
	}
	run.CreatedAt = created
	return &run, nil
}

package store

import (
	"context"
	"database/sql"
)

// schema contains the DDL for the run archive.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id                 TEXT PRIMARY KEY,
		name               TEXT NOT NULL DEFAULT '',
		quantum            INTEGER NOT NULL,
		cores              INTEGER NOT NULL,
		total_ticks        INTEGER NOT NULL,
		busy_ticks         INTEGER NOT NULL,
		average_waiting    REAL NOT NULL,
		average_turnaround REAL NOT NULL,
		utilization        REAL NOT NULL,
		created_at         TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS run_processes (
		run_id          TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		process_id      INTEGER NOT NULL,
		arrival_time    INTEGER NOT NULL,
		burst_time      INTEGER NOT NULL,
		start_time      INTEGER NOT NULL,
		completion_time INTEGER NOT NULL,
		waiting_time    INTEGER NOT NULL,
		turnaround_time INTEGER NOT NULL,
		PRIMARY KEY (run_id, process_id)
	)`,

	`CREATE TABLE IF NOT EXISTS run_intervals (
		run_id     TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		seq        INTEGER NOT NULL,
		process_id INTEGER NOT NULL,
		core_id    INTEGER NOT NULL,
		start_tick INTEGER NOT NULL,
		end_tick   INTEGER NOT NULL,
		PRIMARY KEY (run_id, seq)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_name ON runs(name)`,
}

// migrate executes all schema DDL statements.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

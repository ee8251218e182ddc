package persistence

import (
	"context"
)

// initSchema creates all required tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		priority INTEGER NOT NULL,
		estimated_hours REAL NOT NULL,
		min_block_hours REAL NOT NULL,
		deadline TEXT,
		start_time TEXT,
		end_time TEXT,
		is_locked INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_user_status ON tasks(user_id, status);

	CREATE TABLE IF NOT EXISTS time_blocks (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		is_recurring INTEGER NOT NULL DEFAULT 0,
		day_of_week INTEGER,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_time_blocks_user ON time_blocks(user_id);

	CREATE TABLE IF NOT EXISTS optimization_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		run_at TEXT NOT NULL,
		scheduled_count INTEGER NOT NULL,
		unscheduled_count INTEGER NOT NULL,
		utilization_rate REAL NOT NULL,
		scheduled_hours REAL NOT NULL,
		was_overloaded INTEGER NOT NULL DEFAULT 0,
		overload_ratio REAL,
		excess_hours REAL,
		previous_task_state TEXT NOT NULL,
		decisions TEXT NOT NULL,
		recommendations TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_optimization_history_user_run_at
		ON optimization_history(user_id, run_at);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

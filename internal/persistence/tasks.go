package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rayedriasat/taskplanner/internal/scheduler"
)

// SaveTask saves or updates a task. Uses ON CONFLICT to make saves
// idempotent.
func (s *SQLiteStore) SaveTask(ctx context.Context, userID string, task *scheduler.Task) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, user_id, title, priority, estimated_hours, min_block_hours,
			deadline, start_time, end_time, is_locked, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			priority = excluded.priority,
			estimated_hours = excluded.estimated_hours,
			min_block_hours = excluded.min_block_hours,
			deadline = excluded.deadline,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			is_locked = excluded.is_locked,
			status = excluded.status,
			updated_at = CURRENT_TIMESTAMP
	`, task.ID, userID, task.Title, task.Priority, task.EstimatedHours, task.MinBlockHours,
		formatTimePtr(task.Deadline), formatTimePtr(task.StartTime), formatTimePtr(task.EndTime),
		task.IsLocked, string(task.Status))
	if err != nil {
		return fmt.Errorf("failed to upsert task: %w", err)
	}
	return nil
}

const taskColumns = `id, title, priority, estimated_hours, min_block_hours,
	deadline, start_time, end_time, is_locked, status`

// scanTask reads one task row. The scan order must match taskColumns.
func scanTask(row interface{ Scan(...any) error }) (*scheduler.Task, error) {
	task := &scheduler.Task{}
	var deadline, start, end sql.NullString
	var status string

	err := row.Scan(&task.ID, &task.Title, &task.Priority, &task.EstimatedHours,
		&task.MinBlockHours, &deadline, &start, &end, &task.IsLocked, &status)
	if err != nil {
		return nil, err
	}

	task.Status = scheduler.TaskStatus(status)
	if task.Deadline, err = parseTimePtr(deadline); err != nil {
		return nil, err
	}
	if task.StartTime, err = parseTimePtr(start); err != nil {
		return nil, err
	}
	if task.EndTime, err = parseTimePtr(end); err != nil {
		return nil, err
	}
	return task, nil
}

// GetTask retrieves a task by ID.
func (s *SQLiteStore) GetTask(ctx context.Context, userID, taskID string) (*scheduler.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = ? AND user_id = ?
	`, taskID, userID)

	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task not found: %s", taskID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query task: %w", err)
	}
	return task, nil
}

// ListTasks returns all of a user's tasks, oldest first.
func (s *SQLiteStore) ListTasks(ctx context.Context, userID string) ([]*scheduler.Task, error) {
	return s.listTasksWhere(ctx, `user_id = ?`, userID)
}

// ListSchedulable returns the tasks the allocator may assign: unlocked and
// not completed. This is the default task set for a scheduling run.
func (s *SQLiteStore) ListSchedulable(ctx context.Context, userID string) ([]*scheduler.Task, error) {
	return s.listTasksWhere(ctx, `user_id = ? AND is_locked = 0 AND status != ?`,
		userID, string(scheduler.StatusCompleted))
}

func (s *SQLiteStore) listTasksWhere(ctx context.Context, where string, args ...any) ([]*scheduler.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE `+where+`
		ORDER BY created_at, id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*scheduler.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}
	return tasks, nil
}

// SaveSchedules persists the start/end times of the given tasks in a single
// transaction, so a scheduling run commits atomically or not at all.
func (s *SQLiteStore) SaveSchedules(ctx context.Context, userID string, tasks []*scheduler.Task) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, task := range tasks {
		res, err := tx.ExecContext(ctx, `
			UPDATE tasks
			SET start_time = ?, end_time = ?, is_locked = ?, status = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ? AND user_id = ?
		`, formatTimePtr(task.StartTime), formatTimePtr(task.EndTime),
			task.IsLocked, string(task.Status), task.ID, userID)
		if err != nil {
			return fmt.Errorf("failed to update schedule for task %s: %w", task.ID, err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("task not found: %s", task.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ClearSchedules removes start/end times from every unlocked, non-completed
// task. Used by the reschedule operation before recomputing the week.
func (s *SQLiteStore) ClearSchedules(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET start_time = NULL, end_time = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ? AND is_locked = 0 AND status != ?
	`, userID, string(scheduler.StatusCompleted))
	if err != nil {
		return fmt.Errorf("failed to clear schedules: %w", err)
	}
	return nil
}

// DeleteTask removes a task.
func (s *SQLiteStore) DeleteTask(ctx context.Context, userID, taskID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, taskID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("task not found: %s", taskID)
	}
	return nil
}

package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rayedriasat/taskplanner/internal/scheduler"
)

// ErrNoHistory is returned when a user has no recorded optimization runs.
var ErrNoHistory = errors.New("no optimization history")

// TaskSnapshot captures one task's scheduling state before a run, for undo.
type TaskSnapshot struct {
	TaskID    string     `json:"task_id"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	IsLocked  bool       `json:"is_locked"`
	Status    string     `json:"status"`
}

// RunRecord is one optimization run: its outcome figures, the decisions
// made, and a snapshot of task state taken before the run.
type RunRecord struct {
	ID                int64
	RunAt             time.Time
	ScheduledCount    int
	UnscheduledCount  int
	UtilizationRate   float64
	ScheduledHours    float64
	WasOverloaded     bool
	OverloadRatio     float64
	ExcessHours       float64
	PreviousTaskState []TaskSnapshot
	Decisions         []scheduler.Decision
	Recommendations   []string
}

// SaveRun records an optimization run.
func (s *SQLiteStore) SaveRun(ctx context.Context, userID string, rec *RunRecord) error {
	snapshot, err := json.Marshal(rec.PreviousTaskState)
	if err != nil {
		return fmt.Errorf("failed to marshal task snapshot: %w", err)
	}
	decisions, err := json.Marshal(rec.Decisions)
	if err != nil {
		return fmt.Errorf("failed to marshal decisions: %w", err)
	}
	recommendations, err := json.Marshal(rec.Recommendations)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO optimization_history (user_id, run_at, scheduled_count, unscheduled_count,
			utilization_rate, scheduled_hours, was_overloaded, overload_ratio, excess_hours,
			previous_task_state, decisions, recommendations)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, userID, formatTime(rec.RunAt), rec.ScheduledCount, rec.UnscheduledCount,
		rec.UtilizationRate, rec.ScheduledHours, rec.WasOverloaded, rec.OverloadRatio,
		rec.ExcessHours, string(snapshot), string(decisions), string(recommendations))
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// LatestRun returns the most recent optimization run for a user, or
// ErrNoHistory when there is none.
func (s *SQLiteStore) LatestRun(ctx context.Context, userID string) (*RunRecord, error) {
	rec := &RunRecord{}
	var runAt, snapshot, decisions, recommendations string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, run_at, scheduled_count, unscheduled_count, utilization_rate,
			scheduled_hours, was_overloaded, overload_ratio, excess_hours,
			previous_task_state, decisions, recommendations
		FROM optimization_history
		WHERE user_id = ?
		ORDER BY run_at DESC, id DESC
		LIMIT 1
	`, userID).Scan(&rec.ID, &runAt, &rec.ScheduledCount, &rec.UnscheduledCount,
		&rec.UtilizationRate, &rec.ScheduledHours, &rec.WasOverloaded,
		&rec.OverloadRatio, &rec.ExcessHours, &snapshot, &decisions, &recommendations)

	if err == sql.ErrNoRows {
		return nil, ErrNoHistory
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest run: %w", err)
	}

	if rec.RunAt, err = parseTime(runAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(snapshot), &rec.PreviousTaskState); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(decisions), &rec.Decisions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decisions: %w", err)
	}
	if err := json.Unmarshal([]byte(recommendations), &rec.Recommendations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recommendations: %w", err)
	}
	return rec, nil
}

package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rayedriasat/taskplanner/internal/scheduler"
)

// SaveTimeBlock saves or updates an availability window.
func (s *SQLiteStore) SaveTimeBlock(ctx context.Context, userID string, block scheduler.TimeBlock) error {
	var dayOfWeek sql.NullInt64
	if block.IsRecurring {
		dayOfWeek = sql.NullInt64{Int64: int64(block.DayOfWeek), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO time_blocks (id, user_id, start_time, end_time, is_recurring, day_of_week)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			is_recurring = excluded.is_recurring,
			day_of_week = excluded.day_of_week
	`, block.ID, userID, formatTime(block.StartTime), formatTime(block.EndTime),
		block.IsRecurring, dayOfWeek)
	if err != nil {
		return fmt.Errorf("failed to upsert time block: %w", err)
	}
	return nil
}

// ListTimeBlocks returns all of a user's declared availability windows.
func (s *SQLiteStore) ListTimeBlocks(ctx context.Context, userID string) ([]scheduler.TimeBlock, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, start_time, end_time, is_recurring, day_of_week
		FROM time_blocks
		WHERE user_id = ?
		ORDER BY created_at, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query time blocks: %w", err)
	}
	defer rows.Close()

	var blocks []scheduler.TimeBlock
	for rows.Next() {
		var block scheduler.TimeBlock
		var start, end string
		var dayOfWeek sql.NullInt64

		if err := rows.Scan(&block.ID, &start, &end, &block.IsRecurring, &dayOfWeek); err != nil {
			return nil, fmt.Errorf("failed to scan time block: %w", err)
		}
		if block.StartTime, err = parseTime(start); err != nil {
			return nil, err
		}
		if block.EndTime, err = parseTime(end); err != nil {
			return nil, err
		}
		if dayOfWeek.Valid {
			block.DayOfWeek = int(dayOfWeek.Int64)
		}
		blocks = append(blocks, block)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating time blocks: %w", err)
	}
	return blocks, nil
}

// DeleteTimeBlock removes an availability window.
func (s *SQLiteStore) DeleteTimeBlock(ctx context.Context, userID, blockID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM time_blocks WHERE id = ? AND user_id = ?`, blockID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete time block: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("time block not found: %s", blockID)
	}
	return nil
}

package planner

import (
	"context"
	"fmt"

	"github.com/rayedriasat/taskplanner/internal/scheduler"
)

// CreateTask validates and stores a new task. A missing ID is minted; a
// missing status defaults to todo.
func (s *Service) CreateTask(ctx context.Context, userID string, task *scheduler.Task) error {
	if task.ID == "" {
		task.ID = newID()
	}
	if task.Status == "" {
		task.Status = scheduler.StatusTodo
	}
	if err := validateTask(task); err != nil {
		return err
	}
	return s.store.SaveTask(ctx, userID, task)
}

// UpdateTask validates and stores changes to an existing task.
func (s *Service) UpdateTask(ctx context.Context, userID string, task *scheduler.Task) error {
	if err := validateTask(task); err != nil {
		return err
	}
	if _, err := s.store.GetTask(ctx, userID, task.ID); err != nil {
		return err
	}
	return s.store.SaveTask(ctx, userID, task)
}

// DeleteTask removes a task.
func (s *Service) DeleteTask(ctx context.Context, userID, taskID string) error {
	return s.store.DeleteTask(ctx, userID, taskID)
}

// ListTasks returns all of a user's tasks.
func (s *Service) ListTasks(ctx context.Context, userID string) ([]*scheduler.Task, error) {
	return s.store.ListTasks(ctx, userID)
}

// AddTimeBlock validates and stores an availability window.
func (s *Service) AddTimeBlock(ctx context.Context, userID string, block scheduler.TimeBlock) (scheduler.TimeBlock, error) {
	if block.ID == "" {
		block.ID = newID()
	}
	if !block.EndTime.After(block.StartTime) {
		return block, fmt.Errorf("time block end must be after start")
	}
	if block.IsRecurring && (block.DayOfWeek < 0 || block.DayOfWeek > 6) {
		return block, fmt.Errorf("recurring block day of week must be 0..6, got %d", block.DayOfWeek)
	}
	if err := s.store.SaveTimeBlock(ctx, userID, block); err != nil {
		return block, err
	}
	return block, nil
}

// RemoveTimeBlock deletes an availability window.
func (s *Service) RemoveTimeBlock(ctx context.Context, userID, blockID string) error {
	return s.store.DeleteTimeBlock(ctx, userID, blockID)
}

// ListTimeBlocks returns all of a user's availability windows.
func (s *Service) ListTimeBlocks(ctx context.Context, userID string) ([]scheduler.TimeBlock, error) {
	return s.store.ListTimeBlocks(ctx, userID)
}

func validateTask(task *scheduler.Task) error {
	if task.Title == "" {
		return fmt.Errorf("task title is required")
	}
	if task.Priority < scheduler.PriorityLow || task.Priority > scheduler.PriorityUrgent {
		return fmt.Errorf("task priority must be %d..%d, got %d", scheduler.PriorityLow, scheduler.PriorityUrgent, task.Priority)
	}
	if task.EstimatedHours <= 0 {
		return fmt.Errorf("task estimated hours must be positive, got %v", task.EstimatedHours)
	}
	if task.MinBlockHours <= 0 || task.MinBlockHours > task.EstimatedHours {
		return fmt.Errorf("task minimum block must be in (0, estimated hours], got %v", task.MinBlockHours)
	}
	switch task.Status {
	case scheduler.StatusTodo, scheduler.StatusInProgress, scheduler.StatusCompleted:
	default:
		return fmt.Errorf("unknown task status %q", task.Status)
	}
	return nil
}

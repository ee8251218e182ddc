package planner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/rayedriasat/taskplanner/internal/events"
	"github.com/rayedriasat/taskplanner/internal/notify"
	"github.com/rayedriasat/taskplanner/internal/persistence"
	"github.com/rayedriasat/taskplanner/internal/scheduler"
)

// UndoWindow bounds how long after a run its snapshot may be restored.
const UndoWindow = time.Hour

// ErrUndoExpired is returned when the last run is too old to roll back.
var ErrUndoExpired = errors.New("last optimization is outside the undo window")

// Service coordinates scheduling runs: it loads state, serializes runs per
// user, invokes the engine, commits the outcome, and fans out events and
// notifications. The engine itself stays a pure function of its inputs.
type Service struct {
	store    persistence.Store
	engine   *scheduler.Engine
	locks    *scheduler.RunLockManager
	bus      *events.EventBus
	notifier *notify.Dispatcher
}

// NewService creates a planner service. bus and notifier may be nil, in
// which case events and notifications are skipped.
func NewService(store persistence.Store, engine *scheduler.Engine, bus *events.EventBus, notifier *notify.Dispatcher) *Service {
	return &Service{
		store:    store,
		engine:   engine,
		locks:    scheduler.NewRunLockManager(),
		bus:      bus,
		notifier: notifier,
	}
}

// OptimizeSchedule runs the full analysis pass for a user: places every
// reschedulable task, records an undo snapshot, and commits the new plan in
// one transaction. Concurrent runs for the same user are serialized.
func (s *Service) OptimizeSchedule(ctx context.Context, userID string) (*scheduler.Result, error) {
	release, err := s.locks.Acquire(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	now := s.engine.Now()

	candidates, busy, blocks, err := s.loadState(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.publish(events.TopicRun, events.RunStartedEvent{
		UserID:    userID,
		TaskCount: len(candidates),
		Timestamp: now,
	})

	// Snapshot before the engine mutates anything, so the run can be undone.
	snapshot := snapshotTasks(candidates)

	res := s.engine.CalculateScheduleWithAnalysis(candidates, blocks, busy)

	// Tasks that lost their place must not keep stale intervals.
	for _, t := range res.Unscheduled {
		t.StartTime = nil
		t.EndTime = nil
	}

	if err := s.store.SaveSchedules(ctx, userID, candidates); err != nil {
		return nil, fmt.Errorf("committing schedule: %w", err)
	}

	if err := s.store.SaveRun(ctx, userID, runRecord(now, snapshot, res)); err != nil {
		return nil, fmt.Errorf("recording optimization run: %w", err)
	}

	s.publishRunOutcome(userID, now, res)
	s.notifyRunOutcome(ctx, userID, now, res)

	return res, nil
}

// RescheduleWeek clears every movable task off the calendar and replaces the
// week with a fresh plan. Locked and completed tasks keep their intervals.
func (s *Service) RescheduleWeek(ctx context.Context, userID string) (scheduled, unscheduled []*scheduler.Task, err error) {
	release, err := s.locks.Acquire(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	now := s.engine.Now()

	if err := s.store.ClearSchedules(ctx, userID); err != nil {
		return nil, nil, fmt.Errorf("clearing schedules: %w", err)
	}

	candidates, busy, blocks, err := s.loadState(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	scheduled, unscheduled = s.engine.CalculateSchedule(candidates, blocks, busy)
	for _, t := range unscheduled {
		t.StartTime = nil
		t.EndTime = nil
	}

	if err := s.store.SaveSchedules(ctx, userID, candidates); err != nil {
		return nil, nil, fmt.Errorf("committing schedule: %w", err)
	}

	s.publish(events.TopicRun, events.RunCompletedEvent{
		UserID:           userID,
		ScheduledCount:   len(scheduled),
		UnscheduledCount: len(unscheduled),
		Timestamp:        now,
	})

	return scheduled, unscheduled, nil
}

// UndoLastOptimization restores the task state captured before the most
// recent run. Only the latest run can be undone, and only within UndoWindow.
func (s *Service) UndoLastOptimization(ctx context.Context, userID string) error {
	release, err := s.locks.Acquire(ctx, userID)
	if err != nil {
		return err
	}
	defer release()

	now := s.engine.Now()

	rec, err := s.store.LatestRun(ctx, userID)
	if err != nil {
		return err
	}
	if now.Sub(rec.RunAt) > UndoWindow {
		return fmt.Errorf("%w: run was at %s", ErrUndoExpired, rec.RunAt.Format(time.RFC3339))
	}

	restored := make([]*scheduler.Task, 0, len(rec.PreviousTaskState))
	for _, snap := range rec.PreviousTaskState {
		restored = append(restored, &scheduler.Task{
			ID:        snap.TaskID,
			StartTime: snap.StartTime,
			EndTime:   snap.EndTime,
			IsLocked:  snap.IsLocked,
			Status:    scheduler.TaskStatus(snap.Status),
		})
	}

	if err := s.store.SaveSchedules(ctx, userID, restored); err != nil {
		return fmt.Errorf("restoring snapshot: %w", err)
	}

	s.publish(events.TopicRun, events.RunUndoneEvent{
		UserID:        userID,
		RestoredCount: len(restored),
		Timestamp:     now,
	})

	return nil
}

// ManualSchedule pins a task to an exact interval, optionally locking it so
// later optimization runs cannot move it.
func (s *Service) ManualSchedule(ctx context.Context, userID, taskID string, start, end time.Time, lock bool) error {
	if !end.After(start) {
		return fmt.Errorf("invalid interval: end %s is not after start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}

	task, err := s.store.GetTask(ctx, userID, taskID)
	if err != nil {
		return err
	}

	task.StartTime = &start
	task.EndTime = &end
	task.IsLocked = lock

	if err := s.store.SaveSchedules(ctx, userID, []*scheduler.Task{task}); err != nil {
		return fmt.Errorf("saving manual schedule: %w", err)
	}

	s.publish(events.TopicTask, events.TaskScheduledEvent{
		ID:        task.ID,
		Title:     task.Title,
		Start:     start,
		End:       end,
		Outcome:   string(scheduler.OutcomeScheduled),
		Timestamp: s.engine.Now(),
	})

	return nil
}

// Unschedule removes a task from the calendar and unlocks it.
func (s *Service) Unschedule(ctx context.Context, userID, taskID string) error {
	task, err := s.store.GetTask(ctx, userID, taskID)
	if err != nil {
		return err
	}

	task.StartTime = nil
	task.EndTime = nil
	task.IsLocked = false

	if err := s.store.SaveSchedules(ctx, userID, []*scheduler.Task{task}); err != nil {
		return fmt.Errorf("unscheduling task: %w", err)
	}

	s.publish(events.TopicTask, events.TaskUnscheduledEvent{
		ID:        task.ID,
		Title:     task.Title,
		Reason:    "removed from calendar",
		Timestamp: s.engine.Now(),
	})

	return nil
}

// loadState reads the user's tasks and availability, partitioning tasks into
// scheduling candidates and fixed commitments the engine must plan around.
func (s *Service) loadState(ctx context.Context, userID string) (candidates, busy []*scheduler.Task, blocks []scheduler.TimeBlock, err error) {
	tasks, err := s.store.ListTasks(ctx, userID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading tasks: %w", err)
	}
	blocks, err = s.store.ListTimeBlocks(ctx, userID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading time blocks: %w", err)
	}

	for _, t := range tasks {
		if t.Reschedulable() {
			candidates = append(candidates, t)
		} else {
			busy = append(busy, t)
		}
	}
	return candidates, busy, blocks, nil
}

func (s *Service) publish(topic string, event events.Event) {
	if s.bus != nil {
		s.bus.Publish(topic, event)
	}
}

// publishRunOutcome emits the per-task and run-level events for a completed
// analysis pass.
func (s *Service) publishRunOutcome(userID string, now time.Time, res *scheduler.Result) {
	if s.bus == nil {
		return
	}

	for _, d := range res.Decisions {
		if d.Outcome == scheduler.OutcomeUnscheduled {
			s.bus.Publish(events.TopicTask, events.TaskUnscheduledEvent{
				ID:        d.TaskID,
				Title:     d.Title,
				Reason:    d.Reason,
				Timestamp: now,
			})
			continue
		}
		var start, end time.Time
		if len(d.Fragments) > 0 {
			start, end = d.Fragments[0].Start, d.Fragments[0].End
		}
		s.bus.Publish(events.TopicTask, events.TaskScheduledEvent{
			ID:        d.TaskID,
			Title:     d.Title,
			Start:     start,
			End:       end,
			Outcome:   string(d.Outcome),
			Timestamp: now,
		})
	}

	if res.Overload != nil && res.Overload.IsOverloaded {
		s.bus.Publish(events.TopicRun, events.OverloadDetectedEvent{
			UserID:          userID,
			Ratio:           res.Overload.OverloadRatio,
			ExcessHours:     res.Overload.ExcessHours,
			Recommendations: res.Overload.Recommendations,
			Timestamp:       now,
		})
	}

	s.bus.Publish(events.TopicRun, events.RunCompletedEvent{
		UserID:           userID,
		ScheduledCount:   len(res.Scheduled),
		UnscheduledCount: len(res.Unscheduled),
		ScheduledHours:   res.ScheduledHours,
		UtilizationRate:  res.UtilizationRate,
		Overloaded:       res.Overload != nil && res.Overload.IsOverloaded,
		Timestamp:        now,
	})
}

// notifyRunOutcome delivers the run summary to configured channels.
// Delivery failures are logged, never surfaced to the caller.
func (s *Service) notifyRunOutcome(ctx context.Context, userID string, now time.Time, res *scheduler.Result) {
	if s.notifier == nil {
		return
	}

	overloaded := res.Overload != nil && res.Overload.IsOverloaded
	subject := "Schedule updated"
	if overloaded {
		subject = "Schedule updated (overloaded week)"
	}

	msg := notify.Message{
		UserID:  userID,
		Subject: subject,
		Body: fmt.Sprintf("Scheduled %d tasks, %d unscheduled, %.0f%% of available time used",
			len(res.Scheduled), len(res.Unscheduled), res.UtilizationRate),
		ScheduledCount:   len(res.Scheduled),
		UnscheduledCount: len(res.Unscheduled),
		Overloaded:       overloaded,
		Timestamp:        now,
	}

	if err := s.notifier.Dispatch(ctx, msg); err != nil {
		log.Printf("WARNING: notification delivery for user %s: %v", userID, err)
	}
}

// snapshotTasks captures the scheduling state of tasks for later undo.
func snapshotTasks(tasks []*scheduler.Task) []persistence.TaskSnapshot {
	snaps := make([]persistence.TaskSnapshot, 0, len(tasks))
	for _, t := range tasks {
		snap := persistence.TaskSnapshot{
			TaskID:   t.ID,
			IsLocked: t.IsLocked,
			Status:   string(t.Status),
		}
		if t.StartTime != nil {
			start := *t.StartTime
			snap.StartTime = &start
		}
		if t.EndTime != nil {
			end := *t.EndTime
			snap.EndTime = &end
		}
		snaps = append(snaps, snap)
	}
	return snaps
}

// runRecord assembles the persisted form of a completed run.
func runRecord(now time.Time, snapshot []persistence.TaskSnapshot, res *scheduler.Result) *persistence.RunRecord {
	rec := &persistence.RunRecord{
		RunAt:             now,
		ScheduledCount:    len(res.Scheduled),
		UnscheduledCount:  len(res.Unscheduled),
		UtilizationRate:   res.UtilizationRate,
		ScheduledHours:    res.ScheduledHours,
		PreviousTaskState: snapshot,
		Decisions:         res.Decisions,
	}
	if res.Overload != nil {
		rec.WasOverloaded = res.Overload.IsOverloaded
		rec.OverloadRatio = res.Overload.OverloadRatio
		rec.ExcessHours = res.Overload.ExcessHours
		rec.Recommendations = res.Overload.Recommendations
	}
	return rec
}

// newID mints identifiers for user-created entities.
func newID() string {
	return uuid.NewString()
}

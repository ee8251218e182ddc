package scheduler

import "time"

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

// Priority levels. Higher numbers are more important.
const (
	PriorityLow    = 1
	PriorityMedium = 2
	PriorityHigh   = 3
	PriorityUrgent = 4
)

// Task is a unit of work to be placed on the calendar.
// The engine mutates StartTime/EndTime on the in-memory value it is given;
// persisting the result is the caller's responsibility.
type Task struct {
	ID             string
	Title          string
	Priority       int     // 1=Low .. 4=Urgent
	EstimatedHours float64 // Total work required
	MinBlockHours  float64 // Smallest useful contiguous session
	Deadline       *time.Time
	StartTime      *time.Time // nil means unscheduled
	EndTime        *time.Time
	IsLocked       bool // Locked tasks are never reassigned
	Status         TaskStatus
}

// Scheduled reports whether the task currently occupies a calendar interval.
func (t *Task) Scheduled() bool {
	return t.StartTime != nil && t.EndTime != nil
}

// Reschedulable reports whether the allocator may assign or move this task.
// Locked and completed tasks only contribute as conflicts that shrink slots.
func (t *Task) Reschedulable() bool {
	return !t.IsLocked && t.Status != StatusCompleted
}

// TimeBlock is a user-declared availability window, either a single concrete
// interval or a weekly-repeating pattern. Read-only input to the engine.
type TimeBlock struct {
	ID          string
	StartTime   time.Time
	EndTime     time.Time
	IsRecurring bool
	DayOfWeek   int // 0=Monday .. 6=Sunday; meaningful only when recurring
}

// Slot is a contiguous, currently-free interval derived from one TimeBlock.
// Slots are ephemeral: regenerated fresh on every scheduling run.
type Slot struct {
	Start   time.Time
	End     time.Time
	BlockID string
}

// Hours returns the slot duration in hours.
func (s Slot) Hours() float64 {
	return s.End.Sub(s.Start).Hours()
}

// hoursToDuration converts fractional hours to a time.Duration.
func hoursToDuration(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}

// weekdayIndex maps a time to the 0=Monday .. 6=Sunday convention used by
// TimeBlock.DayOfWeek (Go's time.Weekday starts at Sunday).
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

package events

import (
	"time"
)

// Event is the base interface for all events.
type Event interface {
	EventType() string
	TaskID() string
}

// Topic constants
const (
	TopicRun  = "run"
	TopicTask = "task"
)

// Event type constants
const (
	EventTypeRunStarted       = "run.started"
	EventTypeRunCompleted     = "run.completed"
	EventTypeRunUndone        = "run.undone"
	EventTypeOverloadDetected = "run.overload_detected"
	EventTypeTaskScheduled    = "task.scheduled"
	EventTypeTaskUnscheduled  = "task.unscheduled"
)

// RunStartedEvent is published when a scheduling run begins.
type RunStartedEvent struct {
	UserID    string
	TaskCount int
	Timestamp time.Time
}

func (e RunStartedEvent) EventType() string { return EventTypeRunStarted }
func (e RunStartedEvent) TaskID() string    { return "" }

// RunCompletedEvent is published when a scheduling run finishes.
type RunCompletedEvent struct {
	UserID           string
	ScheduledCount   int
	UnscheduledCount int
	ScheduledHours   float64
	UtilizationRate  float64
	Overloaded       bool
	Timestamp        time.Time
}

func (e RunCompletedEvent) EventType() string { return EventTypeRunCompleted }
func (e RunCompletedEvent) TaskID() string    { return "" }

// RunUndoneEvent is published when the last optimization is rolled back.
type RunUndoneEvent struct {
	UserID        string
	RestoredCount int
	Timestamp     time.Time
}

func (e RunUndoneEvent) EventType() string { return EventTypeRunUndone }
func (e RunUndoneEvent) TaskID() string    { return "" }

// OverloadDetectedEvent is published when demand exceeds available time.
type OverloadDetectedEvent struct {
	UserID          string
	Ratio           float64
	ExcessHours     float64
	Recommendations []string
	Timestamp       time.Time
}

func (e OverloadDetectedEvent) EventType() string { return EventTypeOverloadDetected }
func (e OverloadDetectedEvent) TaskID() string    { return "" }

// TaskScheduledEvent is published when a task is placed on the calendar.
type TaskScheduledEvent struct {
	ID        string
	Title     string
	Start     time.Time
	End       time.Time
	Outcome   string // Decision outcome: scheduled, scheduled_split, ...
	Timestamp time.Time
}

func (e TaskScheduledEvent) EventType() string { return EventTypeTaskScheduled }
func (e TaskScheduledEvent) TaskID() string    { return e.ID }

// TaskUnscheduledEvent is published when a task could not be placed.
type TaskUnscheduledEvent struct {
	ID        string
	Title     string
	Reason    string
	Timestamp time.Time
}

func (e TaskUnscheduledEvent) EventType() string { return EventTypeTaskUnscheduled }
func (e TaskUnscheduledEvent) TaskID() string    { return e.ID }

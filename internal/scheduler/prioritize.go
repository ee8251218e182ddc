package scheduler

import (
	"sort"
	"time"
)

// UrgentWindow is how far ahead a deadline must fall for a task to be
// treated as urgent regardless of its declared priority.
const UrgentWindow = 24 * time.Hour

// farFutureOffset stands in for a missing deadline when comparing.
const farFutureOffset = 365 * 24 * time.Hour

// IsUrgent reports whether a task belongs to the urgent partition: its
// deadline falls within the next 24 hours (and has not already passed), or
// it carries maximum priority.
func IsUrgent(now time.Time, t *Task) bool {
	if t.Priority == PriorityUrgent {
		return true
	}
	if t.Deadline == nil {
		return false
	}
	return t.Deadline.After(now) && !t.Deadline.After(now.Add(UrgentWindow))
}

// Order returns tasks in allocation precedence: urgent tasks first, ordered
// by ascending deadline with descending priority as tie-break, then regular
// tasks ordered by descending priority with ascending deadline and ascending
// estimated hours as tie-breaks.
//
// This is the single source of "who wins" under contention. Every scheduling
// entry point uses this one comparator; a deadline inside the urgent window
// dominates declared priority, outside it the declared priority dominates.
func Order(now time.Time, tasks []*Task) []*Task {
	farFuture := now.Add(farFutureOffset)

	var urgent, regular []*Task
	for _, t := range tasks {
		if IsUrgent(now, t) {
			urgent = append(urgent, t)
		} else {
			regular = append(regular, t)
		}
	}

	sort.SliceStable(urgent, func(i, j int) bool {
		di, dj := deadlineOr(urgent[i], farFuture), deadlineOr(urgent[j], farFuture)
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return urgent[i].Priority > urgent[j].Priority
	})

	sort.SliceStable(regular, func(i, j int) bool {
		a, b := regular[i], regular[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		da, db := deadlineOr(a, farFuture), deadlineOr(b, farFuture)
		if !da.Equal(db) {
			return da.Before(db)
		}
		return a.EstimatedHours < b.EstimatedHours
	})

	ordered := make([]*Task, 0, len(tasks))
	ordered = append(ordered, urgent...)
	ordered = append(ordered, regular...)
	return ordered
}

func deadlineOr(t *Task, fallback time.Time) time.Time {
	if t.Deadline == nil {
		return fallback
	}
	return *t.Deadline
}

package scheduler

import (
	"math"
	"time"
)

// hoursEpsilon absorbs floating-point noise when comparing hour totals.
const hoursEpsilon = 1e-9

// findSlot returns the interval inside the earliest feasible slot for the
// task. notBefore is the sequential allocator's monotonic cursor; pass the
// zero time for cursor-free placement.
//
// A slot is feasible when its usable portion (from max(slot start, cursor))
// ends after it begins, starts before the task's deadline, and leaves at
// least MinBlockHours before min(slot end, deadline). When the full
// estimated duration fits, the interval covers it exactly; otherwise the
// task is truncated to what fits before the deadline, a deliberate "better
// a partial session than none" policy.
func findSlot(task *Task, slots []Slot, notBefore time.Time) (Slot, bool) {
	required := hoursToDuration(task.EstimatedHours)
	minBlock := hoursToDuration(task.MinBlockHours)

	for _, s := range slots {
		usable := s.Start
		if usable.Before(notBefore) {
			usable = notBefore
		}
		if !usable.Before(s.End) {
			continue
		}
		if task.Deadline != nil && !usable.Before(*task.Deadline) {
			continue
		}

		latestEnd := s.End
		if task.Deadline != nil && task.Deadline.Before(latestEnd) {
			latestEnd = *task.Deadline
		}

		available := latestEnd.Sub(usable)
		if available < minBlock {
			continue
		}
		if available >= required {
			return Slot{Start: usable, End: usable.Add(required), BlockID: s.BlockID}, true
		}
		return Slot{Start: usable, End: latestEnd, BlockID: s.BlockID}, true
	}
	return Slot{}, false
}

// allocateSequential walks the prioritized tasks against the slot pool,
// assigning each the earliest feasible interval at or after the cursor.
// The cursor starts at now and advances to each placed task's end, so
// placements never overlap even across different source blocks. A failed
// placement leaves the cursor unchanged and never blocks later tasks.
func (e *Engine) allocateSequential(now time.Time, ordered []*Task, slots []Slot) (scheduled, unscheduled []*Task) {
	cursor := now
	for _, task := range ordered {
		s, ok := findSlot(task, slots, cursor)
		if !ok {
			unscheduled = append(unscheduled, task)
			continue
		}
		start, end := s.Start, s.End
		task.StartTime = &start
		task.EndTime = &end
		scheduled = append(scheduled, task)
		cursor = end
		slots = consumeSlot(slots, s)
	}
	return scheduled, unscheduled
}

// splitAllocate finds intervals covering the task, splitting it across
// multiple ascending slots when no single slot holds it. Every fragment must
// itself be at least MinBlockHours. The plan is accepted only when covered
// hours reach coverage (a fraction of the estimated hours); on rejection the
// attempted coverage is still returned so callers can report it.
func splitAllocate(task *Task, slots []Slot, coverage float64) (frags []Slot, covered float64, ok bool) {
	required := task.EstimatedHours
	minBlock := task.MinBlockHours

	// A single slot holding the full task needs no splitting.
	if s, found := findSlot(task, slots, time.Time{}); found && s.Hours()+hoursEpsilon >= required {
		return []Slot{s}, s.Hours(), true
	}

	remaining := required
	for _, s := range slots {
		if remaining <= hoursEpsilon {
			break
		}
		// Fragments must finish before the deadline like any placement.
		usableEnd := s.End
		if task.Deadline != nil {
			if !s.Start.Before(*task.Deadline) {
				continue
			}
			if task.Deadline.Before(usableEnd) {
				usableEnd = *task.Deadline
			}
		}
		slotHours := usableEnd.Sub(s.Start).Hours()
		if slotHours+hoursEpsilon < minBlock {
			continue
		}
		use := math.Min(remaining, slotHours)
		if use+hoursEpsilon < minBlock {
			continue
		}
		frags = append(frags, Slot{
			Start:   s.Start,
			End:     s.Start.Add(hoursToDuration(use)),
			BlockID: s.BlockID,
		})
		remaining -= use
	}

	covered = required - remaining
	if covered+hoursEpsilon >= required*coverage {
		return frags, covered, true
	}
	return nil, covered, false
}

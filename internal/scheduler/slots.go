package scheduler

import (
	"sort"
	"time"
)

// CalendarStartHour is the start of the daily visible-hours window.
// Slots are clipped to 06:00 through midnight of the following day.
const CalendarStartHour = 6

// GenerateSlots expands the given time blocks into concrete, non-past,
// conflict-free slots within the engine's scheduling horizon.
//
// Recurring blocks are enumerated for every matching weekday between today
// and the horizon end; one-off blocks are included when they fall inside the
// horizon and end in the future. Every candidate is clipped to the calendar
// window, truncated to now when it straddles the current moment, and reduced
// by the intervals of tasks in busy that are scheduled and not completed
// (locked tasks included).
//
// The returned slice is sorted ascending by start time. The allocator
// depends on that ordering for deterministic earliest-feasible placement.
func (e *Engine) GenerateSlots(now time.Time, blocks []TimeBlock, busy []*Task) []Slot {
	startDate := dateOf(now)
	endDate := dateOf(now.AddDate(0, 0, e.HorizonDays))

	var slots []Slot

	for _, block := range blocks {
		if block.IsRecurring {
			for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
				if block.DayOfWeek != weekdayIndex(d) {
					continue
				}
				start := combine(d, block.StartTime)
				end := combine(d, block.EndTime)
				if s, ok := clipToCalendarWindow(start, end, d); ok && s.End.After(now) {
					s.BlockID = block.ID
					slots = append(slots, s)
				}
			}
			continue
		}

		// One-off block: must end in the future and start inside the horizon.
		blockDate := dateOf(block.StartTime)
		if !block.EndTime.After(now) || blockDate.Before(startDate) || blockDate.After(endDate) {
			continue
		}
		if s, ok := clipToCalendarWindow(block.StartTime, block.EndTime, blockDate); ok {
			s.BlockID = block.ID
			slots = append(slots, s)
		}
	}

	// Never schedule in the past: truncate slots straddling now, drop the rest.
	adjusted := slots[:0:0]
	for _, s := range slots {
		switch {
		case s.Start.Before(now) && now.Before(s.End):
			adjusted = append(adjusted, Slot{Start: now, End: s.End, BlockID: s.BlockID})
		case s.End.After(now):
			adjusted = append(adjusted, s)
		}
	}
	slots = adjusted

	// Existing scheduled tasks shrink availability regardless of lock state.
	for _, t := range busy {
		if t.Status == StatusCompleted || !t.Scheduled() {
			continue
		}
		slots = subtractInterval(slots, *t.StartTime, *t.EndTime)
	}

	sortSlots(slots)
	return slots
}

// dateOf returns midnight of t's calendar day, in t's location.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// combine builds a timestamp from day's date and src's time-of-day.
func combine(day, src time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(),
		src.Hour(), src.Minute(), src.Second(), 0, day.Location())
}

// clipToCalendarWindow constrains [start, end) to the visible calendar hours
// of the given day: CalendarStartHour through midnight of the next day.
// Returns false when the interval collapses.
func clipToCalendarWindow(start, end, day time.Time) (Slot, bool) {
	windowStart := day.Add(time.Duration(CalendarStartHour) * time.Hour)
	windowEnd := day.AddDate(0, 0, 1)

	if start.Before(windowStart) {
		start = windowStart
	}
	if end.After(windowEnd) {
		end = windowEnd
	}
	if !end.After(start) {
		return Slot{}, false
	}
	return Slot{Start: start, End: end}, true
}

// subtractInterval removes [start, end) from every overlapping slot,
// splitting slots into the remainders strictly before and strictly after the
// conflict. Returns a fresh slice; the input is never mutated in place so
// slot pools can be handed between allocation steps safely.
func subtractInterval(slots []Slot, start, end time.Time) []Slot {
	out := make([]Slot, 0, len(slots)+1)
	for _, s := range slots {
		if !start.Before(s.End) || !end.After(s.Start) {
			out = append(out, s)
			continue
		}
		if s.Start.Before(start) {
			out = append(out, Slot{Start: s.Start, End: start, BlockID: s.BlockID})
		}
		if end.Before(s.End) {
			out = append(out, Slot{Start: end, End: s.End, BlockID: s.BlockID})
		}
	}
	return out
}

// consumeSlot removes a used interval from its source slot in the pool.
// Only slots from the same source block are split; splitting preserves the
// ascending start-time ordering of the pool.
func consumeSlot(slots []Slot, used Slot) []Slot {
	out := make([]Slot, 0, len(slots)+1)
	for _, s := range slots {
		if s.BlockID != used.BlockID || !s.Start.Before(used.End) || !s.End.After(used.Start) {
			out = append(out, s)
			continue
		}
		if s.Start.Before(used.Start) {
			out = append(out, Slot{Start: s.Start, End: used.Start, BlockID: s.BlockID})
		}
		if used.End.Before(s.End) {
			out = append(out, Slot{Start: used.End, End: s.End, BlockID: s.BlockID})
		}
	}
	return out
}

// sortSlots orders slots ascending by start, with end and block ID as
// deterministic tie-breakers.
func sortSlots(slots []Slot) {
	sort.Slice(slots, func(i, j int) bool {
		if !slots[i].Start.Equal(slots[j].Start) {
			return slots[i].Start.Before(slots[j].Start)
		}
		if !slots[i].End.Equal(slots[j].End) {
			return slots[i].End.Before(slots[j].End)
		}
		return slots[i].BlockID < slots[j].BlockID
	})
}

// totalAvailableHours sums slot durations in hours.
func totalAvailableHours(slots []Slot) float64 {
	var total float64
	for _, s := range slots {
		total += s.Hours()
	}
	return total
}

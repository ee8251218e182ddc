package scheduler

import (
	"testing"
	"time"
)

// Monday, 10 March 2025, 09:00 UTC. Fixed clock for deterministic runs.
var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func testEngine(now time.Time) *Engine {
	e := NewEngine()
	e.Now = func() time.Time { return now }
	return e
}

func at(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

func oneOff(id string, start, end time.Time) TimeBlock {
	return TimeBlock{ID: id, StartTime: start, EndTime: end}
}

func recurring(id string, dayOfWeek int, start, end time.Time) TimeBlock {
	return TimeBlock{ID: id, StartTime: start, EndTime: end, IsRecurring: true, DayOfWeek: dayOfWeek}
}

func timePtr(t time.Time) *time.Time { return &t }

func scheduledTask(id string, start, end time.Time, locked bool) *Task {
	return &Task{
		ID:        id,
		Title:     id,
		Priority:  PriorityMedium,
		StartTime: timePtr(start),
		EndTime:   timePtr(end),
		IsLocked:  locked,
		Status:    StatusTodo,
	}
}

func TestGenerateSlotsRecurringExpansion(t *testing.T) {
	e := testEngine(testNow)

	// Every Wednesday 14:00-16:00. Horizon is 7 days from Monday, so exactly
	// one Wednesday falls inside it.
	block := recurring("b1", 2, at(testNow, 14, 0), at(testNow, 16, 0))
	slots := e.GenerateSlots(testNow, []TimeBlock{block}, nil)

	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d: %v", len(slots), slots)
	}
	wednesday := testNow.AddDate(0, 0, 2)
	if !slots[0].Start.Equal(at(wednesday, 14, 0)) || !slots[0].End.Equal(at(wednesday, 16, 0)) {
		t.Errorf("slot = [%v, %v], want Wednesday 14:00-16:00", slots[0].Start, slots[0].End)
	}
	if slots[0].BlockID != "b1" {
		t.Errorf("BlockID = %q, want b1", slots[0].BlockID)
	}
}

func TestGenerateSlotsRecurringMatchesTodayAndNextWeek(t *testing.T) {
	e := testEngine(testNow)

	// Recurring Monday block. Today is Monday and the horizon end (Monday
	// next week) is inclusive, so two occurrences materialize.
	block := recurring("b1", 0, at(testNow, 14, 0), at(testNow, 16, 0))
	slots := e.GenerateSlots(testNow, []TimeBlock{block}, nil)

	if len(slots) != 2 {
		t.Fatalf("expected 2 slots (today + next Monday), got %d", len(slots))
	}
	if !slots[0].Start.Equal(at(testNow, 14, 0)) {
		t.Errorf("first slot starts %v, want today 14:00", slots[0].Start)
	}
	nextMonday := testNow.AddDate(0, 0, 7)
	if !slots[1].Start.Equal(at(nextMonday, 14, 0)) {
		t.Errorf("second slot starts %v, want next Monday 14:00", slots[1].Start)
	}
}

func TestGenerateSlotsOneOff(t *testing.T) {
	tests := []struct {
		name      string
		block     TimeBlock
		wantCount int
	}{
		{
			name:      "future block inside horizon",
			block:     oneOff("b1", at(testNow, 14, 0), at(testNow, 16, 0)),
			wantCount: 1,
		},
		{
			name:      "block entirely in the past",
			block:     oneOff("b1", at(testNow, 6, 0), at(testNow, 8, 0)),
			wantCount: 0,
		},
		{
			name:      "block beyond horizon",
			block:     oneOff("b1", at(testNow.AddDate(0, 0, 9), 14, 0), at(testNow.AddDate(0, 0, 9), 16, 0)),
			wantCount: 0,
		},
		{
			name:      "block started yesterday",
			block:     oneOff("b1", at(testNow.AddDate(0, 0, -1), 20, 0), at(testNow, 16, 0)),
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := testEngine(testNow)
			slots := e.GenerateSlots(testNow, []TimeBlock{tt.block}, nil)
			if len(slots) != tt.wantCount {
				t.Errorf("got %d slots, want %d: %v", len(slots), tt.wantCount, slots)
			}
		})
	}
}

func TestGenerateSlotsCalendarWindowClipping(t *testing.T) {
	e := testEngine(testNow)

	// Block declared 04:00-23:00 tomorrow: start clips to 06:00.
	tomorrow := testNow.AddDate(0, 0, 1)
	block := oneOff("b1", at(tomorrow, 4, 0), at(tomorrow, 23, 0))
	slots := e.GenerateSlots(testNow, []TimeBlock{block}, nil)

	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	if !slots[0].Start.Equal(at(tomorrow, 6, 0)) {
		t.Errorf("start = %v, want clipped to 06:00", slots[0].Start)
	}
	if !slots[0].End.Equal(at(tomorrow, 23, 0)) {
		t.Errorf("end = %v, want 23:00 untouched", slots[0].End)
	}
}

func TestGenerateSlotsTruncatesToNow(t *testing.T) {
	e := testEngine(testNow)

	// Block 08:00-12:00 today; now is 09:00, inside the slot.
	block := oneOff("b1", at(testNow, 8, 0), at(testNow, 12, 0))
	slots := e.GenerateSlots(testNow, []TimeBlock{block}, nil)

	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	if !slots[0].Start.Equal(testNow) {
		t.Errorf("start = %v, want truncated to now (%v)", slots[0].Start, testNow)
	}
}

func TestGenerateSlotsConflictSubtraction(t *testing.T) {
	tests := []struct {
		name string
		busy []*Task
		want []Slot
	}{
		{
			name: "conflict splits slot in two",
			busy: []*Task{scheduledTask("t1", at(testNow, 13, 0), at(testNow, 15, 0), true)},
			want: []Slot{
				{Start: at(testNow, 10, 0), End: at(testNow, 13, 0), BlockID: "b1"},
				{Start: at(testNow, 15, 0), End: at(testNow, 17, 0), BlockID: "b1"},
			},
		},
		{
			name: "conflict at slot start leaves only tail",
			busy: []*Task{scheduledTask("t1", at(testNow, 10, 0), at(testNow, 12, 0), false)},
			want: []Slot{
				{Start: at(testNow, 12, 0), End: at(testNow, 17, 0), BlockID: "b1"},
			},
		},
		{
			name: "conflict swallowing the slot removes it",
			busy: []*Task{scheduledTask("t1", at(testNow, 9, 0), at(testNow, 18, 0), false)},
			want: nil,
		},
		{
			name: "completed task does not conflict",
			busy: func() []*Task {
				done := scheduledTask("t1", at(testNow, 13, 0), at(testNow, 15, 0), false)
				done.Status = StatusCompleted
				return []*Task{done}
			}(),
			want: []Slot{
				{Start: at(testNow, 10, 0), End: at(testNow, 17, 0), BlockID: "b1"},
			},
		},
		{
			name: "unscheduled task does not conflict",
			busy: []*Task{{ID: "t1", Status: StatusTodo}},
			want: []Slot{
				{Start: at(testNow, 10, 0), End: at(testNow, 17, 0), BlockID: "b1"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := testEngine(testNow)
			block := oneOff("b1", at(testNow, 10, 0), at(testNow, 17, 0))
			slots := e.GenerateSlots(testNow, []TimeBlock{block}, tt.busy)

			if len(slots) != len(tt.want) {
				t.Fatalf("got %d slots, want %d: %v", len(slots), len(tt.want), slots)
			}
			for i, w := range tt.want {
				if !slots[i].Start.Equal(w.Start) || !slots[i].End.Equal(w.End) {
					t.Errorf("slot %d = [%v, %v], want [%v, %v]", i, slots[i].Start, slots[i].End, w.Start, w.End)
				}
			}
		})
	}
}

func TestGenerateSlotsNoBlocks(t *testing.T) {
	e := testEngine(testNow)
	if slots := e.GenerateSlots(testNow, nil, nil); len(slots) != 0 {
		t.Errorf("expected empty slot list, got %v", slots)
	}
}

func TestGenerateSlotsSortedAscending(t *testing.T) {
	e := testEngine(testNow)
	tomorrow := testNow.AddDate(0, 0, 1)
	blocks := []TimeBlock{
		oneOff("late", at(tomorrow, 18, 0), at(tomorrow, 20, 0)),
		oneOff("early", at(testNow, 14, 0), at(testNow, 16, 0)),
		oneOff("mid", at(tomorrow, 8, 0), at(tomorrow, 10, 0)),
	}

	slots := e.GenerateSlots(testNow, blocks, nil)
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(slots))
	}
	for i := 1; i < len(slots); i++ {
		if slots[i].Start.Before(slots[i-1].Start) {
			t.Errorf("slots out of order at %d: %v before %v", i, slots[i].Start, slots[i-1].Start)
		}
	}
}

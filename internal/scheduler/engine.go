package scheduler

import (
	"fmt"
	"time"
)

// Default engine tuning.
const (
	DefaultHorizonDays      = 7
	DefaultSplitCoverage    = 0.75
	DefaultOverloadCoverage = 0.5
)

// DecisionOutcome tags one entry in the scheduling audit trail.
type DecisionOutcome string

const (
	OutcomeScheduled         DecisionOutcome = "scheduled"
	OutcomeScheduledPartial  DecisionOutcome = "scheduled_partial"
	OutcomeScheduledSplit    DecisionOutcome = "scheduled_split"
	OutcomeScheduledOverload DecisionOutcome = "scheduled_overload"
	OutcomeUnscheduled       DecisionOutcome = "unscheduled"
)

// Decision records why a task ended up where it did, for transparency and
// undo UIs. Fragments lists every interval of a split plan; the task itself
// only carries the first fragment.
type Decision struct {
	TaskID       string
	Title        string
	Outcome      DecisionOutcome
	Reason       string
	SlotCount    int
	CoveredHours float64
	Fragments    []Slot
}

// Result is the full outcome of a scheduling run.
type Result struct {
	Scheduled       []*Task
	Unscheduled     []*Task
	Overload        *OverloadAnalysis
	Decisions       []Decision
	ScheduledHours  float64
	AvailableHours  float64
	UtilizationRate float64
}

// Engine assigns tasks to concrete time intervals given declared
// availability, deadlines, priorities, and minimum-block constraints,
// degrading to a best-effort plan under overload.
//
// The engine is single-threaded, stateless between invocations, and a pure
// function of its inputs: it holds no locks, performs no I/O, and mutates
// only the in-memory tasks it is handed. Callers must serialize concurrent
// runs for the same user and persist the mutated tasks themselves.
type Engine struct {
	Now              func() time.Time // injectable clock
	HorizonDays      int              // scheduling horizon from today
	SplitCoverage    float64          // minimum covered fraction to accept a split plan
	OverloadCoverage float64          // looser bar used under overload
}

// NewEngine returns an engine with default tuning and the system clock.
func NewEngine() *Engine {
	return &Engine{
		Now:              time.Now,
		HorizonDays:      DefaultHorizonDays,
		SplitCoverage:    DefaultSplitCoverage,
		OverloadCoverage: DefaultOverloadCoverage,
	}
}

// CalculateSchedule partitions tasks into scheduled and unscheduled.
// busy contributes existing calendar commitments that shrink availability;
// it may overlap with tasks (entries without times are ignored).
//
// When aggregate demand exceeds aggregate supply the run delegates to the
// overload path instead of failing. Otherwise tasks are placed sequentially:
// each successive start time is at or after the previous task's end.
func (e *Engine) CalculateSchedule(tasks []*Task, blocks []TimeBlock, busy []*Task) (scheduled, unscheduled []*Task) {
	now := e.Now()
	slots := e.GenerateSlots(now, blocks, busy)
	ordered := Order(now, tasks)

	var required float64
	for _, t := range ordered {
		required += t.EstimatedHours
	}
	if required > totalAvailableHours(slots) {
		res := e.HandleOverload(now, ordered, slots)
		return res.Scheduled, res.Unscheduled
	}

	return e.allocateSequential(now, ordered, slots)
}

// CalculateScheduleWithAnalysis runs the richer scheduling pass used for
// user-facing optimize actions: it returns the overload analysis, a
// per-task audit trail, and utilization figures alongside the partitions.
// Tasks that cannot fit one slot are split across several, accepted when the
// plan covers at least SplitCoverage of the estimated hours.
func (e *Engine) CalculateScheduleWithAnalysis(tasks []*Task, blocks []TimeBlock, busy []*Task) *Result {
	now := e.Now()
	slots := e.GenerateSlots(now, blocks, busy)
	analysis := Analyze(tasks, slots)
	ordered := Order(now, tasks)

	if analysis.IsOverloaded {
		res := e.HandleOverload(now, ordered, slots)
		res.Overload = &analysis
		return res
	}

	res := &Result{
		Overload:       &analysis,
		AvailableHours: analysis.TotalAvailableHours,
	}
	remaining := slots

	for _, task := range ordered {
		frags, covered, ok := splitAllocate(task, remaining, e.SplitCoverage)
		if !ok {
			res.Unscheduled = append(res.Unscheduled, task)
			res.Decisions = append(res.Decisions, Decision{
				TaskID:  task.ID,
				Title:   task.Title,
				Outcome: OutcomeUnscheduled,
				Reason:  "no suitable time slots available",
			})
			continue
		}

		first := frags[0]
		start, end := first.Start, first.End
		task.StartTime = &start
		task.EndTime = &end
		res.Scheduled = append(res.Scheduled, task)
		res.ScheduledHours += covered

		outcome := OutcomeScheduled
		reason := "fits a single slot"
		switch {
		case len(frags) > 1:
			outcome = OutcomeScheduledSplit
			reason = fmt.Sprintf("split across %d time blocks", len(frags))
		case covered+hoursEpsilon < task.EstimatedHours:
			outcome = OutcomeScheduledPartial
			reason = fmt.Sprintf("truncated to %.1fh of %.1fh before deadline", covered, task.EstimatedHours)
		}
		res.Decisions = append(res.Decisions, Decision{
			TaskID:       task.ID,
			Title:        task.Title,
			Outcome:      outcome,
			Reason:       reason,
			SlotCount:    len(frags),
			CoveredHours: covered,
			Fragments:    frags,
		})

		for _, f := range frags {
			remaining = consumeSlot(remaining, f)
		}
	}

	res.UtilizationRate = res.ScheduledHours / max(res.AvailableHours, ratioEpsilon) * 100
	return res
}

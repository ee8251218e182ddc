package scheduler

import (
	"fmt"
	"time"
)

// ratioEpsilon floors the denominator of ratio computations so a zero-supply
// week degrades to a huge ratio instead of a division by zero.
const ratioEpsilon = 0.01

// Recommendation thresholds for overload severity.
const (
	overloadSevere   = 2.0
	overloadModerate = 1.2
	overloadTight    = 1.1
)

// PriorityStat aggregates demand for one priority level.
type PriorityStat struct {
	Count int
	Hours float64
}

// OverloadAnalysis describes how aggregate demand compares to aggregate
// supply for a scheduling run.
type OverloadAnalysis struct {
	IsOverloaded         bool
	OverloadRatio        float64
	TotalRequiredHours   float64
	TotalAvailableHours  float64
	ExcessHours          float64
	PriorityDistribution map[int]PriorityStat
	Recommendations      []string
}

// Analyze computes the demand/supply picture for the given tasks and slots.
func Analyze(tasks []*Task, slots []Slot) OverloadAnalysis {
	var required float64
	dist := make(map[int]PriorityStat)
	for _, t := range tasks {
		required += t.EstimatedHours
		stat := dist[t.Priority]
		stat.Count++
		stat.Hours += t.EstimatedHours
		dist[t.Priority] = stat
	}

	available := totalAvailableHours(slots)
	ratio := required / max(available, ratioEpsilon)

	return OverloadAnalysis{
		IsOverloaded:         required > available,
		OverloadRatio:        ratio,
		TotalRequiredHours:   required,
		TotalAvailableHours:  available,
		ExcessHours:          max(0, required-available),
		PriorityDistribution: dist,
		Recommendations:      recommendations(ratio, dist),
	}
}

// recommendations maps overload severity to human-readable guidance.
// Rules are non-exclusive: every matching threshold contributes.
func recommendations(ratio float64, dist map[int]PriorityStat) []string {
	var recs []string

	if ratio > overloadSevere {
		recs = append(recs,
			"Consider deferring low-priority tasks to next week",
			"Break large tasks into smaller, more manageable chunks")
	}
	if ratio > overloadModerate {
		recs = append(recs,
			"Look for opportunities to reduce task scope",
			"Consider extending deadlines where possible")
	}
	if ratio > overloadTight {
		recs = append(recs, "Schedule might be tight - consider adding more availability")
	}

	if stat, ok := dist[PriorityLow]; ok && stat.Hours > 8 {
		recs = append(recs, "Many priority-1 tasks detected - ensure adequate focus time")
	}
	if stat, ok := dist[PriorityUrgent]; ok && stat.Hours > 4 {
		recs = append(recs, "Consider deferring some low-priority tasks")
	}

	return recs
}

// HandleOverload produces a best-effort plan when demand exceeds supply.
// Tasks are taken in the already-prioritized order; each gets a splitting
// allocation and is accepted when coverage reaches the overload bar (50% by
// default, looser than the normal-path bar to reflect genuine scarcity).
// Rejections are recorded with a reason instead of failing the run.
func (e *Engine) HandleOverload(now time.Time, ordered []*Task, slots []Slot) *Result {
	res := &Result{AvailableHours: totalAvailableHours(slots)}
	remaining := slots

	for _, task := range ordered {
		frags, covered, ok := splitAllocate(task, remaining, e.OverloadCoverage)
		if !ok {
			res.Unscheduled = append(res.Unscheduled, task)
			reason := "no suitable time slots in overload scenario"
			if covered > 0 {
				reason = fmt.Sprintf("insufficient time available (%.1fh of %.1fh needed)",
					covered, task.EstimatedHours)
			}
			res.Decisions = append(res.Decisions, Decision{
				TaskID:  task.ID,
				Title:   task.Title,
				Outcome: OutcomeUnscheduled,
				Reason:  reason,
			})
			continue
		}

		first := frags[0]
		start, end := first.Start, first.End
		task.StartTime = &start
		task.EndTime = &end
		res.Scheduled = append(res.Scheduled, task)
		res.ScheduledHours += covered

		res.Decisions = append(res.Decisions, Decision{
			TaskID:       task.ID,
			Title:        task.Title,
			Outcome:      OutcomeScheduledOverload,
			Reason:       fmt.Sprintf("%.0f%% coverage under overload", covered/max(task.EstimatedHours, ratioEpsilon)*100),
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

package goal

import (
	"math"
	"sort"
)

// ComputeProgress returns the rounded (half-up) percentage of completed
// milestones. The plan must be non-empty; empty plans are rejected at the
// boundary, so hitting one here is a bug.
func ComputeProgress(plan []Milestone) int {
	if len(plan) == 0 {
		panic("goal: ComputeProgress called with empty plan")
	}
	done := 0
	for _, m := range plan {
		if m.Completed {
			done++
		}
	}
	return int(math.Round(100 * float64(done) / float64(len(plan))))
}

// IsComplete reports whether every milestone of a non-empty plan is done.
func IsComplete(plan []Milestone) bool {
	if len(plan) == 0 {
		return false
	}
	for _, m := range plan {
		if !m.Completed {
			return false
		}
	}
	return true
}

// UpsertLogEntry records percent for the given day: an existing entry for
// that day is overwritten in place, otherwise a new one is appended. The
// result is sorted ascending by date. Last write wins within a day.
func UpsertLogEntry(log []ProgressEntry, date string, percent int) []ProgressEntry {
	updated := false
	out := make([]ProgressEntry, 0, len(log)+1)
	for _, e := range log {
		if e.Date == date {
			e.Percent = percent
			updated = true
		}
		out = append(out, e)
	}
	if !updated {
		out = append(out, ProgressEntry{Date: date, Percent: percent})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

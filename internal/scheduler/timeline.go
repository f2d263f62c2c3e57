package scheduler

import (
	"sort"

	"github.com/me/rrsim/pkg/model"
)

// Timeline is the per-core execution log. Within one core intervals are
// time ordered and never overlap.
type Timeline struct {
	perCore [][]model.Interval
}

// NewTimeline creates an empty timeline for n cores.
func NewTimeline(n int) *Timeline {
	tl := &Timeline{}
	tl.Reset(n)
	return tl
}

// Reset clears the log and resizes it to n cores.
func (tl *Timeline) Reset(n int) {
	tl.perCore = make([][]model.Interval, n)
}

// Record logs one tick of execution of pid on core at tick t. The tick
// extends the core's last interval when that interval belongs to pid and
// ends at t.
func (tl *Timeline) Record(pid, core, t int) {
	entries := tl.perCore[core]
	if n := len(entries); n > 0 {
		last := &entries[n-1]
		if last.ProcessID == pid && last.End == t {
			last.End = t + 1
			return
		}
	}
	tl.perCore[core] = append(entries, model.Interval{ProcessID: pid, CoreID: core, Start: t, End: t + 1})
}

// ForCore returns a copy of the intervals recorded on core.
func (tl *Timeline) ForCore(core int) []model.Interval {
	if core < 0 || core >= len(tl.perCore) {
		return nil
	}
	out := make([]model.Interval, len(tl.perCore[core]))
	copy(out, tl.perCore[core])
	return out
}

// ForProcess returns every interval of pid ordered by start tick.
func (tl *Timeline) ForProcess(pid int) []model.Interval {
	var out []model.Interval
	for _, iv := range tl.Entries() {
		if iv.ProcessID == pid {
			out = append(out, iv)
		}
	}
	return out
}

// Entries returns every interval ordered by start tick, then core.
func (tl *Timeline) Entries() []model.Interval {
	var out []model.Interval
	for _, entries := range tl.perCore {
		out = append(out, entries...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].CoreID < out[j].CoreID
	})
	return out
}

// BusyTicks returns the summed duration of every interval.
func (tl *Timeline) BusyTicks() int {
	total := 0
	for _, entries := range tl.perCore {
		for _, iv := range entries {
			total += iv.Duration()
		}
	}
	return total
}

// End returns the largest interval end, 0 for an empty log.
func (tl *Timeline) End() int {
	end := 0
	for _, entries := range tl.perCore {
		if n := len(entries); n > 0 && entries[n-1].End > end {
			end = entries[n-1].End
		}
	}
	return end
}

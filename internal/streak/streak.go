// Package streak derives streak counters from a habit's completion
// history. Everything here is a pure function of its arguments: the
// reference day is passed in rather than read from the clock, so identical
// input always yields identical output.
package streak

import (
	"sort"

	"github.com/awsmlife/habits/pkg/dates"
	"github.com/awsmlife/habits/pkg/entity"
)

// Result holds the derived counters the ledger caches on the habit row.
type Result struct {
	Current int
	Longest int
	Total   int
	Last    *dates.Day
}

// Calculate computes the current and longest streak for the given
// completion days under the given frequency, as seen from today.
//
// The unit of consecutiveness is the calendar day for daily habits and
// the ISO week for weekly ones. The current streak carries a one-period
// grace: a streak is not broken until a full day (or week) has passed
// with no completion, so it may start at today or at yesterday (this
// week or last week).
func Calculate(days []dates.Day, freq entity.Frequency, today dates.Day) Result {
	periods := distinctPeriods(days, freq)
	if len(periods) == 0 {
		return Result{}
	}

	step := 1
	cursor := today
	if freq == entity.FrequencyWeekly {
		step = 7
		cursor = today.WeekStart()
	}

	present := make(map[dates.Day]bool, len(periods))
	for _, p := range periods {
		present[p] = true
	}

	current := 0
	if !present[cursor] {
		cursor = cursor.AddDays(-step)
	}
	for present[cursor] {
		current++
		cursor = cursor.AddDays(-step)
	}

	longest, run := 1, 1
	for i := 1; i < len(periods); i++ {
		if periods[i].DaysSince(periods[i-1]) == step {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	last := days[0]
	total := 0
	seen := make(map[dates.Day]bool, len(days))
	for _, d := range days {
		if seen[d] {
			continue
		}
		seen[d] = true
		total++
		if d.After(last) {
			last = d
		}
	}
	return Result{Current: current, Longest: longest, Total: total, Last: &last}
}

// distinctPeriods maps completion days onto their period keys (the day
// itself, or the ISO week's Monday), deduplicated and sorted ascending.
func distinctPeriods(days []dates.Day, freq entity.Frequency) []dates.Day {
	set := make(map[dates.Day]bool, len(days))
	for _, d := range days {
		key := d
		if freq == entity.FrequencyWeekly {
			key = d.WeekStart()
		}
		set[key] = true
	}
	periods := make([]dates.Day, 0, len(set))
	for p := range set {
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })
	return periods
}

package service

import "github.com/awsmlife/habits/pkg/dates"

// Clock hooks for deterministic tests.

func (hs *HabitsService) SetToday(f func() dates.Day) {
	hs.today = f
}

func (ss *StatsService) SetToday(f func() dates.Day) {
	ss.today = f
}

package service

import (
	"context"
	"errors"
	"log"

	"github.com/awsmlife/habits/internal/repository"
	"github.com/awsmlife/habits/pkg/dates"
	"github.com/awsmlife/habits/pkg/entity"
	"github.com/google/uuid"
)

type StatsService struct {
	habitsRepo      repository.HabitsRepositoryI
	completionsRepo repository.CompletionsRepositoryI
	today           func() dates.Day
}

func NewStatsService(habitsRepo repository.HabitsRepositoryI, completionsRepo repository.CompletionsRepositoryI) *StatsService {
	if habitsRepo == nil || completionsRepo == nil {
		log.Fatal("on stats service provided nil repos")
	}
	return &StatsService{
		habitsRepo:      habitsRepo,
		completionsRepo: completionsRepo,
		today:           dates.Today,
	}
}

// GetStats is a read-only rollup over one snapshot of the user's habits.
// Totals come from the cached counters; the weekly histogram is counted
// from the ledger and always spans exactly the last 7 calendar days,
// oldest first, zero-filled.
func (ss *StatsService) GetStats(ctx context.Context, uid uuid.UUID) (*entity.StatsSummary, error) {
	habits, err := ss.habitsRepo.ListAll(ctx, uid)
	if err != nil {
		return nil, errors.New("habits repository error: " + err.Error())
	}
	summary := &entity.StatsSummary{
		TotalHabits: len(habits),
	}
	for _, h := range habits {
		summary.TotalStreak += h.Streak
		summary.TotalCompletions += h.TotalCompletions
		if h.Streak > summary.MaxStreak {
			summary.MaxStreak = h.Streak
		}
	}

	to := ss.today()
	from := to.AddDays(-6)
	counts, err := ss.completionsRepo.CountPerDay(ctx, uid, from, to)
	if err != nil {
		return nil, errors.New("completions repository error: " + err.Error())
	}
	summary.WeeklyData = make([]entity.DayCount, 0, 7)
	for day := from; !day.After(to); day = day.AddDays(1) {
		summary.WeeklyData = append(summary.WeeklyData, entity.DayCount{
			Day:         day.Label(),
			Completions: counts[day],
		})
	}
	return summary, nil
}

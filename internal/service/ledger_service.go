package service

import (
	"context"
	"errors"
	"log"
	"sort"

	errorvalues "github.com/awsmlife/habits/internal/error_values"
	"github.com/awsmlife/habits/internal/repository"
	"github.com/awsmlife/habits/internal/streak"
	"github.com/awsmlife/habits/pkg/dates"
	"github.com/awsmlife/habits/pkg/entity"
	"github.com/google/uuid"
)

// DefaultBackfillDays bounds how far back a completion may be edited.
// Mirrors the 30-day history window the client exposes.
const DefaultBackfillDays = 30

type LedgerOptions struct {
	// BackfillDays is the maximum age of an editable day; 0 picks the
	// default, negative disables the bound.
	BackfillDays int
	// Today overrides the clock, for tests.
	Today func() dates.Day
}

type LedgerService struct {
	habitsRepo      repository.HabitsRepositoryI
	completionsRepo repository.CompletionsRepositoryI
	backfillDays    int
	today           func() dates.Day
}

func NewLedgerService(habitsRepo repository.HabitsRepositoryI, completionsRepo repository.CompletionsRepositoryI, opts LedgerOptions) *LedgerService {
	if habitsRepo == nil || completionsRepo == nil {
		log.Fatal("on ledger service provided nil repos")
	}
	if opts.BackfillDays == 0 {
		opts.BackfillDays = DefaultBackfillDays
	}
	if opts.Today == nil {
		opts.Today = dates.Today
	}
	return &LedgerService{
		habitsRepo:      habitsRepo,
		completionsRepo: completionsRepo,
		backfillDays:    opts.BackfillDays,
		today:           opts.Today,
	}
}

// SetCompletion marks day complete or incomplete for the habit. Both
// directions are idempotent: completing a completed day and uncompleting
// an absent one change nothing. The repository applies the mutation and
// the counter recomputation in one transaction, so no caller ever sees a
// habit whose counters disagree with its history.
func (ls *LedgerService) SetCompletion(ctx context.Context, habitID, userID uuid.UUID, day dates.Day, completed bool) (*entity.Habit, error) {
	habit, err := ls.habitsRepo.GetByID(ctx, habitID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrHabitNotFound) {
			return nil, err
		}
		return nil, errors.New("habits repository error: " + err.Error())
	}
	if habit.UserID != userID {
		return nil, errorvalues.ErrWrongOwner
	}
	today := ls.today()
	if day.IsZero() {
		day = today
	}
	if day.After(today) {
		return nil, errorvalues.ErrDateInFuture
	}
	if ls.backfillDays > 0 && today.DaysSince(day) > ls.backfillDays {
		return nil, errorvalues.ErrDateTooOld
	}
	frequency := habit.Frequency
	updated, err := ls.completionsRepo.SetForDay(ctx, habitID, day, completed, func(days []dates.Day) streak.Result {
		return streak.Calculate(days, frequency, today)
	})
	if err != nil {
		if errors.Is(err, errorvalues.ErrHabitNotFound) {
			return nil, err
		}
		return nil, errors.New("completions repository error: " + err.Error())
	}
	return updated, nil
}

// BulkSetCompletion logs today for every id. Ids are deduplicated and
// processed in a stable sorted order, so two overlapping bulk calls
// always take per-habit locks in the same sequence. Unknown and foreign
// ids are collected into Skipped instead of failing the batch.
func (ls *LedgerService) BulkSetCompletion(ctx context.Context, userID uuid.UUID, habitIDs []uuid.UUID) (*BulkLogResult, error) {
	seen := make(map[uuid.UUID]bool, len(habitIDs))
	ids := make([]uuid.UUID, 0, len(habitIDs))
	for _, id := range habitIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	result := &BulkLogResult{
		Habits: make([]*entity.Habit, 0, len(ids)),
	}
	for _, id := range ids {
		habit, err := ls.SetCompletion(ctx, id, userID, dates.Day{}, true)
		if err != nil {
			if errors.Is(err, errorvalues.ErrHabitNotFound) || errors.Is(err, errorvalues.ErrWrongOwner) {
				result.Skipped = append(result.Skipped, id)
				continue
			}
			return nil, err
		}
		result.Habits = append(result.Habits, habit)
	}
	return result, nil
}

func (ls *LedgerService) GetCompletions(ctx context.Context, habitID, userID uuid.UUID, from, to dates.Day) ([]entity.Completion, error) {
	habit, err := ls.habitsRepo.GetByID(ctx, habitID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrHabitNotFound) {
			return nil, err
		}
		return nil, errors.New("habits repository error: " + err.Error())
	}
	if habit.UserID != userID {
		return nil, errorvalues.ErrWrongOwner
	}
	if from.IsZero() {
		from = dates.FromTime(habit.CreatedAt)
	}
	if to.IsZero() {
		to = ls.today()
	}
	if to.Before(from) {
		return nil, errorvalues.ErrValidation
	}
	completions, err := ls.completionsRepo.ListRange(ctx, habitID, from, to)
	if err != nil {
		return nil, errors.New("completions repository error: " + err.Error())
	}
	return completions, nil
}

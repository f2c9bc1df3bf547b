package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	errorvalues "github.com/awsmlife/habits/internal/error_values"
	"github.com/awsmlife/habits/internal/repository"
	"github.com/awsmlife/habits/internal/streak"
	"github.com/awsmlife/habits/pkg/dates"
	"github.com/awsmlife/habits/pkg/entity"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type HabitsService struct {
	repo        repository.HabitsRepositoryI
	completions repository.CompletionsRepositoryI
	today       func() dates.Day
}

func NewHabitsService(habitsRepo repository.HabitsRepositoryI, completionsRepo repository.CompletionsRepositoryI) *HabitsService {
	if habitsRepo == nil || completionsRepo == nil {
		log.Fatal("on habits service provided nil repos")
	}
	return &HabitsService{
		repo:        habitsRepo,
		completions: completionsRepo,
		today:       dates.Today,
	}
}

func (hs *HabitsService) CreateHabit(ctx context.Context, uid uuid.UUID, req *CreateHabitRequest) (*entity.Habit, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Frequency == "" {
		req.Frequency = entity.FrequencyDaily
	}
	if err := validate.Struct(*req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return nil, fmt.Errorf("%w: %s", errorvalues.ErrValidation, validationErrors.Error())
		}
		return nil, errors.New("validation unexpected error: " + err.Error())
	}
	h := entity.Habit{
		UserID:      uid,
		Name:        req.Name,
		Description: req.Description,
		Frequency:   req.Frequency,
	}
	id, err := hs.repo.Create(ctx, &h)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrOwnerNotFound):
			return nil, errorvalues.ErrUserNotFound
		case errors.Is(err, errorvalues.ErrHabitExists):
			return nil, err
		}
		return nil, errors.New("habits repository error: " + err.Error())
	}
	habit, err := hs.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrHabitNotFound) {
			return nil, err
		}
		return nil, errors.New("habits repository error: " + err.Error())
	}
	habit.Completions = []dates.Day{}
	return habit, nil
}

func (hs *HabitsService) GetHabit(ctx context.Context, habitID, userID uuid.UUID) (*entity.Habit, error) {
	habit, err := hs.ownedHabit(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}
	if err = hs.attachCompletions(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

func (hs *HabitsService) GetUserHabits(ctx context.Context, uid uuid.UUID, pagination PaginationOpts) ([]*entity.Habit, error) {
	habits, err := hs.repo.GetByUserID(ctx, uid, pagination.Limit, pagination.Offset)
	if err != nil {
		return nil, errors.New("habits repository error: " + err.Error())
	}
	for _, h := range habits {
		if err = hs.attachCompletions(ctx, h); err != nil {
			return nil, err
		}
	}
	return habits, nil
}

// UpdateHabit applies a partial patch to name/description/frequency. The
// completion history is never touched, but a frequency change reshapes
// what counts as a streak, so the cached counters are recomputed to keep
// them in sync with the history.
func (hs *HabitsService) UpdateHabit(ctx context.Context, habitID, userID uuid.UUID, req *UpdateHabitRequest) (*entity.Habit, error) {
	if req.Name == nil && req.Description == nil && req.Frequency == nil {
		return nil, errorvalues.ErrNothingToUpdate
	}
	habit, err := hs.ownedHabit(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}
	prevFrequency := habit.Frequency
	if req.Name != nil {
		habit.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		habit.Description = *req.Description
	}
	if req.Frequency != nil {
		habit.Frequency = *req.Frequency
	}
	if habit.Name == "" {
		return nil, fmt.Errorf("%w: name must not be empty", errorvalues.ErrValidation)
	}
	if !habit.Frequency.Valid() {
		return nil, fmt.Errorf("%w: frequency must be daily or weekly", errorvalues.ErrValidation)
	}
	err = hs.repo.Update(ctx, habit)
	if err != nil {
		if errors.Is(err, errorvalues.ErrHabitNotFound) || errors.Is(err, errorvalues.ErrHabitExists) {
			return nil, err
		}
		return nil, errors.New("habits repository error: " + err.Error())
	}
	if habit.Frequency != prevFrequency {
		days, err := hs.completions.ListDays(ctx, habitID)
		if err != nil {
			return nil, errors.New("completions repository error: " + err.Error())
		}
		res := streak.Calculate(days, habit.Frequency, hs.today())
		if err = hs.repo.UpdateDerived(ctx, habitID, res); err != nil {
			return nil, errors.New("habits repository error: " + err.Error())
		}
	}
	updated, err := hs.repo.GetByID(ctx, habitID)
	if err != nil {
		return nil, errors.New("habits repository error: " + err.Error())
	}
	if err = hs.attachCompletions(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (hs *HabitsService) DeleteHabit(ctx context.Context, habitID, userID uuid.UUID) error {
	_, err := hs.ownedHabit(ctx, habitID, userID)
	if err != nil {
		return err
	}
	err = hs.repo.Delete(ctx, habitID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrHabitNotFound) {
			return err
		}
		return errors.New("habits repository error: " + err.Error())
	}
	return nil
}

// Starter habits offered to fresh accounts.
var defaultHabits = []CreateHabitRequest{
	{Name: "Morning Meditation", Description: "5 minutes of mindful breathing", Frequency: entity.FrequencyDaily},
	{Name: "Read 10 Pages", Description: "Read 10 pages of a book", Frequency: entity.FrequencyDaily},
	{Name: "Evening Walk", Description: "30-minute walk in nature", Frequency: entity.FrequencyDaily},
	{Name: "Gratitude Journal", Description: "Write 3 things I'm grateful for", Frequency: entity.FrequencyDaily},
	{Name: "Drink 8 Glasses of Water", Description: "Stay hydrated throughout the day", Frequency: entity.FrequencyDaily},
}

func (hs *HabitsService) SeedDefaults(ctx context.Context, uid uuid.UUID) (bool, error) {
	count, err := hs.repo.CountByUserID(ctx, uid)
	if err != nil {
		return false, errors.New("habits repository error: " + err.Error())
	}
	if count > 0 {
		return false, nil
	}
	for i := range defaultHabits {
		req := defaultHabits[i]
		if _, err = hs.CreateHabit(ctx, uid, &req); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (hs *HabitsService) ownedHabit(ctx context.Context, habitID, userID uuid.UUID) (*entity.Habit, error) {
	habit, err := hs.repo.GetByID(ctx, habitID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrHabitNotFound) {
			return nil, err
		}
		return nil, errors.New("habits repository error: " + err.Error())
	}
	if habit.UserID != userID {
		return nil, errorvalues.ErrWrongOwner
	}
	return habit, nil
}

func (hs *HabitsService) attachCompletions(ctx context.Context, habit *entity.Habit) error {
	days, err := hs.completions.ListDays(ctx, habit.ID)
	if err != nil {
		return errors.New("completions repository error: " + err.Error())
	}
	habit.Completions = days
	return nil
}

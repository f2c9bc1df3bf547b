package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	errorvalues "github.com/awsmlife/habits/internal/error_values"
	"github.com/awsmlife/habits/internal/repository"
	"github.com/awsmlife/habits/internal/streak"
	"github.com/awsmlife/habits/pkg/dates"
	"github.com/awsmlife/habits/pkg/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
)

var (
	lockSQL    = regexp.QuoteMeta(`SELECT user_id, name, description, frequency, created_at FROM habits WHERE id = $1 FOR UPDATE;`)
	insertSQL  = regexp.QuoteMeta(`INSERT INTO habit_completions (habit_id, day) VALUES ($1, $2) ON CONFLICT DO NOTHING;`)
	deleteSQL  = regexp.QuoteMeta(`DELETE FROM habit_completions WHERE habit_id = $1 AND day = $2;`)
	historySQL = regexp.QuoteMeta(`SELECT day FROM habit_completions WHERE habit_id = $1 ORDER BY day;`)
	derivedSQL = regexp.QuoteMeta(`UPDATE habits SET streak = $1, longest_streak = $2, total_completions = $3, last_completed = $4, updated_at = NOW() WHERE id = $5;`)
)

func lockRows(freq string, createdAt time.Time) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"user_id", "name", "description", "frequency", "created_at"}).
		AddRow(userID, "test_habit", "blah blah blah", freq, createdAt)
}

func TestSetForDay(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewCompletionsRepoWithConn(mock)
	habitID := uuid.New()
	day := dates.Make(2025, time.March, 15)
	prev := day.AddDays(-1)
	createdAt := time.Now()
	ctx := context.Background()

	t.Run("marks a day complete", func(t *testing.T) {
		var got []dates.Day
		last := day
		derive := func(days []dates.Day) streak.Result {
			got = days
			return streak.Result{Current: 2, Longest: 2, Total: 2, Last: &last}
		}
		lastTime := last.Time()
		mock.ExpectBegin()
		mock.ExpectQuery(lockSQL).WithArgs(habitID).WillReturnRows(lockRows("daily", createdAt))
		mock.ExpectExec(insertSQL).WithArgs(habitID, day.Time()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectQuery(historySQL).WithArgs(habitID).
			WillReturnRows(pgxmock.NewRows([]string{"day"}).AddRow(prev.Time()).AddRow(day.Time()))
		mock.ExpectExec(derivedSQL).WithArgs(2, 2, 2, &lastTime, habitID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		habit, err := repo.SetForDay(ctx, habitID, day, true, derive)
		assert.NoError(t, err)
		assert.Equal(t, []dates.Day{prev, day}, got)
		assert.Equal(t, habitID, habit.ID)
		assert.Equal(t, userID, habit.UserID)
		assert.Equal(t, entity.FrequencyDaily, habit.Frequency)
		assert.Equal(t, 2, habit.Streak)
		assert.Equal(t, 2, habit.TotalCompletions)
		assert.Equal(t, []dates.Day{prev, day}, habit.Completions)
		if assert.NotNil(t, habit.LastCompleted) {
			assert.True(t, habit.LastCompleted.Equal(day))
		}
	})

	t.Run("unmarks a day", func(t *testing.T) {
		var nilTime *time.Time
		derive := func(days []dates.Day) streak.Result {
			assert.Empty(t, days)
			return streak.Result{}
		}
		mock.ExpectBegin()
		mock.ExpectQuery(lockSQL).WithArgs(habitID).WillReturnRows(lockRows("daily", createdAt))
		mock.ExpectExec(deleteSQL).WithArgs(habitID, day.Time()).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectQuery(historySQL).WithArgs(habitID).
			WillReturnRows(pgxmock.NewRows([]string{"day"}))
		mock.ExpectExec(derivedSQL).WithArgs(0, 0, 0, nilTime, habitID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		habit, err := repo.SetForDay(ctx, habitID, day, false, derive)
		assert.NoError(t, err)
		assert.Zero(t, habit.Streak)
		assert.Zero(t, habit.TotalCompletions)
		assert.Nil(t, habit.LastCompleted)
		assert.Empty(t, habit.Completions)
	})

	t.Run("habit not found", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(lockSQL).WithArgs(habitID).WillReturnError(pgx.ErrNoRows)
		mock.ExpectRollback()

		_, err := repo.SetForDay(ctx, habitID, day, true, func([]dates.Day) streak.Result {
			t.Fatal("derive must not run when the habit is missing")
			return streak.Result{}
		})
		assert.ErrorIs(t, err, errorvalues.ErrHabitNotFound)
	})

	t.Run("db error while locking", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(lockSQL).WithArgs(habitID).WillReturnError(errors.New("db error"))
		mock.ExpectRollback()

		_, err := repo.SetForDay(ctx, habitID, day, true, func([]dates.Day) streak.Result {
			return streak.Result{}
		})
		assert.Error(t, err)
		assert.NotErrorIs(t, err, errorvalues.ErrHabitNotFound)
	})

	t.Run("db error while persisting counters", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(lockSQL).WithArgs(habitID).WillReturnRows(lockRows("daily", createdAt))
		mock.ExpectExec(insertSQL).WithArgs(habitID, day.Time()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectQuery(historySQL).WithArgs(habitID).
			WillReturnRows(pgxmock.NewRows([]string{"day"}).AddRow(day.Time()))
		mock.ExpectExec(derivedSQL).WithArgs(1, 1, 1, pgxmock.AnyArg(), habitID).
			WillReturnError(errors.New("db error"))
		mock.ExpectRollback()

		last := day
		_, err := repo.SetForDay(ctx, habitID, day, true, func([]dates.Day) streak.Result {
			return streak.Result{Current: 1, Longest: 1, Total: 1, Last: &last}
		})
		assert.Error(t, err)
	})
}

func TestListDays(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewCompletionsRepoWithConn(mock)
	habitID := uuid.New()
	ctx := context.Background()
	t.Run("success", func(t *testing.T) {
		d1 := dates.Make(2025, time.March, 1)
		d2 := dates.Make(2025, time.March, 2)
		mock.ExpectQuery(historySQL).WithArgs(habitID).
			WillReturnRows(pgxmock.NewRows([]string{"day"}).AddRow(d1.Time()).AddRow(d2.Time()))
		days, err := repo.ListDays(ctx, habitID)
		assert.NoError(t, err)
		assert.Equal(t, []dates.Day{d1, d2}, days)
	})
	t.Run("empty history", func(t *testing.T) {
		mock.ExpectQuery(historySQL).WithArgs(habitID).
			WillReturnRows(pgxmock.NewRows([]string{"day"}))
		days, err := repo.ListDays(ctx, habitID)
		assert.NoError(t, err)
		assert.Empty(t, days)
	})
	t.Run("db error", func(t *testing.T) {
		mock.ExpectQuery(historySQL).WithArgs(habitID).
			WillReturnError(errors.New("db error"))
		_, err := repo.ListDays(ctx, habitID)
		assert.Error(t, err)
	})
}

func TestListRange(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewCompletionsRepoWithConn(mock)
	habitID := uuid.New()
	from := dates.Make(2025, time.March, 1)
	to := dates.Make(2025, time.March, 31)
	query := regexp.QuoteMeta(`SELECT id, habit_id, day, created_at FROM habit_completions WHERE habit_id = $1 AND day >= $2 AND day <= $3 ORDER BY day;`)
	ctx := context.Background()
	t.Run("success", func(t *testing.T) {
		day := dates.Make(2025, time.March, 10)
		createdAt := time.Now()
		mock.ExpectQuery(query).WithArgs(habitID, from.Time(), to.Time()).
			WillReturnRows(pgxmock.NewRows([]string{"id", "habit_id", "day", "created_at"}).
				AddRow(int64(7), habitID, day.Time(), createdAt))
		result, err := repo.ListRange(ctx, habitID, from, to)
		assert.NoError(t, err)
		assert.Equal(t, []entity.Completion{{ID: 7, HabitID: habitID, Day: day, CreatedAt: createdAt}}, result)
	})
	t.Run("empty range", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(habitID, from.Time(), to.Time()).
			WillReturnRows(pgxmock.NewRows([]string{"id", "habit_id", "day", "created_at"}))
		result, err := repo.ListRange(ctx, habitID, from, to)
		assert.NoError(t, err)
		assert.Empty(t, result)
	})
	t.Run("db error", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(habitID, from.Time(), to.Time()).
			WillReturnError(errors.New("db error"))
		_, err := repo.ListRange(ctx, habitID, from, to)
		assert.Error(t, err)
	})
}

func TestCountPerDay(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewCompletionsRepoWithConn(mock)
	from := dates.Make(2025, time.March, 9)
	to := dates.Make(2025, time.March, 15)
	query := regexp.QuoteMeta(`SELECT c.day, COUNT(*) FROM habit_completions c JOIN habits h ON h.id = c.habit_id WHERE h.user_id = $1 AND c.day >= $2 AND c.day <= $3 GROUP BY c.day;`)
	ctx := context.Background()
	t.Run("success", func(t *testing.T) {
		d1 := dates.Make(2025, time.March, 10)
		d2 := dates.Make(2025, time.March, 12)
		mock.ExpectQuery(query).WithArgs(userID, from.Time(), to.Time()).
			WillReturnRows(pgxmock.NewRows([]string{"day", "count"}).
				AddRow(d1.Time(), 3).AddRow(d2.Time(), 1))
		counts, err := repo.CountPerDay(ctx, userID, from, to)
		assert.NoError(t, err)
		assert.Equal(t, map[dates.Day]int{d1: 3, d2: 1}, counts)
	})
	t.Run("no completions", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(userID, from.Time(), to.Time()).
			WillReturnRows(pgxmock.NewRows([]string{"day", "count"}))
		counts, err := repo.CountPerDay(ctx, userID, from, to)
		assert.NoError(t, err)
		assert.Empty(t, counts)
	})
	t.Run("db error", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(userID, from.Time(), to.Time()).
			WillReturnError(errors.New("db error"))
		_, err := repo.CountPerDay(ctx, userID, from, to)
		assert.Error(t, err)
	})
}

func TestCompletionsRepositoryIntegration(t *testing.T) {
	cfg := setupTestDB(t)
	habitsRepo := repository.NewHabitsRepo(cfg)
	repo := repository.NewCompletionsRepo(cfg)
	ctx := context.Background()

	habitID, err := habitsRepo.Create(ctx, &entity.Habit{
		UserID:    userID,
		Name:      "integration_toggle",
		Frequency: entity.FrequencyDaily,
	})
	assert.NoError(t, err)

	day := dates.Make(2025, time.March, 15)
	derive := func(days []dates.Day) streak.Result {
		var last *dates.Day
		if len(days) > 0 {
			last = &days[len(days)-1]
		}
		return streak.Result{Current: len(days), Longest: len(days), Total: len(days), Last: last}
	}

	// Logging the same day twice must not change anything.
	habit, err := repo.SetForDay(ctx, habitID, day, true, derive)
	assert.NoError(t, err)
	assert.Equal(t, 1, habit.TotalCompletions)
	habit, err = repo.SetForDay(ctx, habitID, day, true, derive)
	assert.NoError(t, err)
	assert.Equal(t, 1, habit.TotalCompletions)
	assert.Equal(t, []dates.Day{day}, habit.Completions)

	stored, err := habitsRepo.GetByID(ctx, habitID)
	assert.NoError(t, err)
	assert.Equal(t, 1, stored.TotalCompletions)

	// Unlogging is idempotent too.
	habit, err = repo.SetForDay(ctx, habitID, day, false, derive)
	assert.NoError(t, err)
	assert.Zero(t, habit.TotalCompletions)
	habit, err = repo.SetForDay(ctx, habitID, day, false, derive)
	assert.NoError(t, err)
	assert.Zero(t, habit.TotalCompletions)
	assert.Nil(t, habit.LastCompleted)

	_, err = repo.SetForDay(ctx, uuid.New(), day, true, derive)
	assert.ErrorIs(t, err, errorvalues.ErrHabitNotFound)
}

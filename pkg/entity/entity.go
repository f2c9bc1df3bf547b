package entity

import (
	"time"

	"github.com/awsmlife/habits/pkg/dates"
	"github.com/google/uuid"
)

type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

func (f Frequency) Valid() bool {
	return f == FrequencyDaily || f == FrequencyWeekly
}

type User struct {
	ID           uuid.UUID
	Name         string
	PasswordHash string
}

// Habit carries its completion history plus cached derived fields. The
// cached values (Streak, LongestStreak, TotalCompletions, LastCompleted)
// are always recomputable from Completions and Frequency; the ledger is
// the only writer of either side, so they cannot drift.
type Habit struct {
	ID               uuid.UUID   `json:"id"`
	UserID           uuid.UUID   `json:"uid"`
	Name             string      `json:"name"`
	Description      string      `json:"description"`
	Frequency        Frequency   `json:"frequency"`
	Streak           int         `json:"streak"`
	LongestStreak    int         `json:"longest_streak"`
	TotalCompletions int         `json:"total_completions"`
	LastCompleted    *dates.Day  `json:"last_completed,omitempty"`
	Completions      []dates.Day `json:"completions"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

type Completion struct {
	ID        int64     `json:"-"`
	HabitID   uuid.UUID `json:"habit_id"`
	Day       dates.Day `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

// DayCount is one bucket of the weekly completions histogram.
type DayCount struct {
	Day         string `json:"day"`
	Completions int    `json:"completions"`
}

type StatsSummary struct {
	TotalHabits      int        `json:"total_habits"`
	MaxStreak        int        `json:"max_streak"`
	TotalStreak      int        `json:"total_streak"`
	TotalCompletions int        `json:"total_completions"`
	WeeklyData       []DayCount `json:"weekly_data"`
}

package service

import (
	"context"

	"github.com/awsmlife/habits/pkg/dates"
	"github.com/awsmlife/habits/pkg/entity"
	"github.com/google/uuid"
)

type RegisterRequest struct {
	Name     string `validate:"required,alphanum_underscore,min=3,max=100"`
	Password string `validate:"required,min=8,max=72"`
}

type CreateHabitRequest struct {
	Name        string           `validate:"required,max=200"`
	Description string           `validate:"max=2000"`
	Frequency   entity.Frequency `validate:"omitempty,habit_frequency"`
}

// UpdateHabitRequest is a partial patch: nil fields are left untouched.
type UpdateHabitRequest struct {
	Name        *string
	Description *string
	Frequency   *entity.Frequency
}

type PaginationOpts struct {
	Limit  int
	Offset int
}

// BulkLogResult reports the outcome of a bulk log: habits that were
// marked complete and ids that were skipped because they don't exist or
// belong to someone else. A bad id never fails the batch.
type BulkLogResult struct {
	Habits  []*entity.Habit `json:"habits"`
	Skipped []uuid.UUID     `json:"skipped,omitempty"`
}

type UserServiceI interface {
	// Validates user's credentials, creates new row in database. Returns user's data with ID
	Register(ctx context.Context, req *RegisterRequest) (*entity.User, error)
	// Compares given credentials. If ok, gives back user's data with ID.
	Login(ctx context.Context, name, password string) (*entity.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	DeleteAccount(ctx context.Context, id uuid.UUID, password string) error
}

// HabitsServiceI owns the habit collection: definitions only, never the
// completion history (that belongs to the ledger).
type HabitsServiceI interface {
	CreateHabit(ctx context.Context, uid uuid.UUID, req *CreateHabitRequest) (*entity.Habit, error)
	GetHabit(ctx context.Context, habitID, userID uuid.UUID) (*entity.Habit, error)
	GetUserHabits(ctx context.Context, uid uuid.UUID, pagination PaginationOpts) ([]*entity.Habit, error)
	UpdateHabit(ctx context.Context, habitID, userID uuid.UUID, req *UpdateHabitRequest) (*entity.Habit, error)
	DeleteHabit(ctx context.Context, habitID, userID uuid.UUID) error
	// SeedDefaults creates the starter habits for a fresh account. No-op
	// when the user already has any habit; reports whether it seeded.
	SeedDefaults(ctx context.Context, uid uuid.UUID) (bool, error)
}

// LedgerServiceI is the single authority for marking days complete or
// incomplete. Every mutation recomputes the cached streak counters.
type LedgerServiceI interface {
	// SetCompletion toggles one day. A zero day means today.
	SetCompletion(ctx context.Context, habitID, userID uuid.UUID, day dates.Day, completed bool) (*entity.Habit, error)
	// BulkSetCompletion marks today complete for every given habit id.
	BulkSetCompletion(ctx context.Context, userID uuid.UUID, habitIDs []uuid.UUID) (*BulkLogResult, error)
	// GetCompletions lists a habit's completions inside [from, to]; zero
	// bounds default to the habit's creation day and today.
	GetCompletions(ctx context.Context, habitID, userID uuid.UUID, from, to dates.Day) ([]entity.Completion, error)
}

type StatsServiceI interface {
	// GetStats rolls up the user's habits into the dashboard summary.
	GetStats(ctx context.Context, uid uuid.UUID) (*entity.StatsSummary, error)
}

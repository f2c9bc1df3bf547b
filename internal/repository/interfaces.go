package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/awsmlife/habits/internal/streak"
	"github.com/awsmlife/habits/pkg/dates"
	"github.com/awsmlife/habits/pkg/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type UsersRepositoryI interface {
	// Creates new user in database and fills in its ID
	Create(ctx context.Context, user *entity.User) error
	// Looks up user by name. Can be used for login
	FindByName(ctx context.Context, name string) (*entity.User, error)
	// Looks up user by uid. Can be used for authorization middleware
	FindByID(ctx context.Context, uid uuid.UUID) (*entity.User, error)
	// Deletes user with all owned habits
	Delete(ctx context.Context, uid uuid.UUID) error
}

type HabitsRepositoryI interface {
	// Creates new habit. Only UserID, Name, Description, Frequency are read
	Create(ctx context.Context, habit *entity.Habit) (uuid.UUID, error)
	// Returns the habit row without its completion history
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Habit, error)
	// Lists habits owned by user with uid, insertion-ordered. Requires pagination params
	GetByUserID(ctx context.Context, uid uuid.UUID, limit, offset int) ([]*entity.Habit, error)
	// Lists every habit owned by user with uid, insertion-ordered
	ListAll(ctx context.Context, uid uuid.UUID) ([]*entity.Habit, error)
	// Counts habits owned by user with uid
	CountByUserID(ctx context.Context, uid uuid.UUID) (int, error)
	// Updates name/description/frequency of habit by ID
	Update(ctx context.Context, habit *entity.Habit) error
	// Rewrites the cached derived counters of habit with id
	UpdateDerived(ctx context.Context, id uuid.UUID, res streak.Result) error
	// Deletes habit with id; completions go with it
	Delete(ctx context.Context, id uuid.UUID) error
}

type CompletionsRepositoryI interface {
	// Applies one completion toggle atomically: locks the habit row,
	// adds or removes the day (both idempotent), recomputes the derived
	// counters through derive over the post-mutation history and persists
	// them. Returns the habit with its full completion list.
	SetForDay(ctx context.Context, habitID uuid.UUID, day dates.Day, completed bool, derive DeriveFunc) (*entity.Habit, error)
	// Lists all completion days of a habit, ascending
	ListDays(ctx context.Context, habitID uuid.UUID) ([]dates.Day, error)
	// Lists completions of a habit inside [from, to], ascending
	ListRange(ctx context.Context, habitID uuid.UUID, from, to dates.Day) ([]entity.Completion, error)
	// Counts completions per day across all of a user's habits inside [from, to]
	CountPerDay(ctx context.Context, uid uuid.UUID, from, to dates.Day) (map[dates.Day]int, error)
}

// DeriveFunc recomputes the cached counters from a habit's full
// post-mutation completion history. Kept as a callback so the repository
// stays free of streak semantics.
type DeriveFunc func(days []dates.Day) streak.Result

type DBConfig interface {
	ConnString() string
}

type PgConnection interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGCfg struct {
	Address  string
	Username string
	Password string
	DB       string
}

func (pgcfg *PGCfg) ConnString() string {
	return fmt.Sprintf("postgresql://%s:%s@%s/%s", pgcfg.Username, pgcfg.Password, pgcfg.Address, pgcfg.DB)
}

// scanDay converts a DATE column value into the canonical Day type.
func scanDay(t time.Time) dates.Day {
	return dates.FromTime(t)
}

package repository

import (
	"context"
	"errors"
	"log"
	"time"

	errorvalues "github.com/awsmlife/habits/internal/error_values"
	"github.com/awsmlife/habits/internal/streak"
	"github.com/awsmlife/habits/pkg/cleanup"
	"github.com/awsmlife/habits/pkg/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type HabitsRepository struct {
	conn PgConnection
}

func NewHabitsRepo(cfg DBConfig) *HabitsRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for habitsRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for habitsRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing habits pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &HabitsRepository{
		conn: pool,
	}
}

func NewHabitsRepoWithConn(conn PgConnection) *HabitsRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for habitsRepo: " + err.Error())
	}
	return &HabitsRepository{
		conn: conn,
	}
}

func (hr *HabitsRepository) Create(ctx context.Context, habit *entity.Habit) (uuid.UUID, error) {
	var id uuid.UUID
	row := hr.conn.QueryRow(ctx,
		`INSERT INTO habits (user_id, name, description, frequency) VALUES ($1, $2, $3, $4) RETURNING id;`,
		habit.UserID,
		habit.Name,
		habit.Description,
		string(habit.Frequency),
	)
	if err := row.Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			// Unique violation
			case "23505":
				return uuid.UUID{}, errorvalues.ErrHabitExists
			// FK violation
			case "23503":
				return uuid.UUID{}, errorvalues.ErrOwnerNotFound
			}
		}
		return uuid.UUID{}, errors.New("creating habit db error: " + err.Error())
	}
	return id, nil
}

func (hr *HabitsRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Habit, error) {
	row := hr.conn.QueryRow(ctx,
		`SELECT user_id, name, description, frequency, streak, longest_streak, total_completions, last_completed, created_at, updated_at FROM habits WHERE id = $1;`, id)
	habit, err := scanHabit(row, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrHabitNotFound
		}
		return nil, errors.New("getting habit by id error: " + err.Error())
	}
	return habit, nil
}

func (hr *HabitsRepository) GetByUserID(ctx context.Context, uid uuid.UUID, limit, offset int) ([]*entity.Habit, error) {
	rows, err := hr.conn.Query(ctx,
		`SELECT id, user_id, name, description, frequency, streak, longest_streak, total_completions, last_completed, created_at, updated_at FROM habits WHERE user_id = $1 ORDER BY created_at LIMIT $2 OFFSET $3;`, uid, limit, offset)
	if err != nil {
		return nil, errors.New("getting habits by uid error: " + err.Error())
	}
	return collectHabits(rows)
}

func (hr *HabitsRepository) ListAll(ctx context.Context, uid uuid.UUID) ([]*entity.Habit, error) {
	rows, err := hr.conn.Query(ctx,
		`SELECT id, user_id, name, description, frequency, streak, longest_streak, total_completions, last_completed, created_at, updated_at FROM habits WHERE user_id = $1 ORDER BY created_at;`, uid)
	if err != nil {
		return nil, errors.New("listing habits by uid error: " + err.Error())
	}
	return collectHabits(rows)
}

func (hr *HabitsRepository) CountByUserID(ctx context.Context, uid uuid.UUID) (int, error) {
	var count int
	row := hr.conn.QueryRow(ctx, `SELECT COUNT(*) FROM habits WHERE user_id = $1;`, uid)
	if err := row.Scan(&count); err != nil {
		return 0, errors.New("counting habits error: " + err.Error())
	}
	return count, nil
}

func (hr *HabitsRepository) Update(ctx context.Context, habit *entity.Habit) error {
	ct, err := hr.conn.Exec(ctx,
		`UPDATE habits SET name = $1, description = $2, frequency = $3, updated_at = NOW() WHERE id = $4;`,
		habit.Name, habit.Description, string(habit.Frequency), habit.ID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return errorvalues.ErrHabitExists
		}
		return errors.New("error updating habit: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrHabitNotFound
	}
	return nil
}

func (hr *HabitsRepository) UpdateDerived(ctx context.Context, id uuid.UUID, res streak.Result) error {
	var last *time.Time
	if res.Last != nil {
		t := res.Last.Time()
		last = &t
	}
	ct, err := hr.conn.Exec(ctx,
		`UPDATE habits SET streak = $1, longest_streak = $2, total_completions = $3, last_completed = $4, updated_at = NOW() WHERE id = $5;`,
		res.Current, res.Longest, res.Total, last, id,
	)
	if err != nil {
		return errors.New("error updating derived habit fields: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrHabitNotFound
	}
	return nil
}

func (hr *HabitsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := hr.conn.Exec(ctx, `DELETE FROM habits WHERE id = $1;`, id)
	if err != nil {
		return errors.New("error deleting habit: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrHabitNotFound
	}
	return nil
}

func scanHabit(row pgx.Row, id uuid.UUID) (*entity.Habit, error) {
	var (
		habit entity.Habit
		freq  string
		last  *time.Time
	)
	habit.ID = id
	err := row.Scan(&habit.UserID, &habit.Name, &habit.Description, &freq,
		&habit.Streak, &habit.LongestStreak, &habit.TotalCompletions, &last,
		&habit.CreatedAt, &habit.UpdatedAt)
	if err != nil {
		return nil, err
	}
	habit.Frequency = entity.Frequency(freq)
	if last != nil {
		d := scanDay(*last)
		habit.LastCompleted = &d
	}
	return &habit, nil
}

func collectHabits(rows pgx.Rows) ([]*entity.Habit, error) {
	defer rows.Close()
	habits := make([]*entity.Habit, 0)
	for rows.Next() {
		var (
			h    entity.Habit
			freq string
			last *time.Time
		)
		err := rows.Scan(&h.ID, &h.UserID, &h.Name, &h.Description, &freq,
			&h.Streak, &h.LongestStreak, &h.TotalCompletions, &last,
			&h.CreatedAt, &h.UpdatedAt)
		if err != nil {
			return nil, errors.New("unmarshalling habit error: " + err.Error())
		}
		h.Frequency = entity.Frequency(freq)
		if last != nil {
			d := scanDay(*last)
			h.LastCompleted = &d
		}
		habits = append(habits, &h)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected error after scanning: " + rows.Err().Error())
	}
	return habits, nil
}

package repository

import (
	"context"
	"errors"
	"log"
	"time"

	errorvalues "github.com/awsmlife/habits/internal/error_values"
	"github.com/awsmlife/habits/pkg/cleanup"
	"github.com/awsmlife/habits/pkg/dates"
	"github.com/awsmlife/habits/pkg/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CompletionsRepository struct {
	conn PgConnection
}

func NewCompletionsRepo(cfg DBConfig) *CompletionsRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for completionsRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for completionsRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing completions pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &CompletionsRepository{
		conn: pool,
	}
}

func NewCompletionsRepoWithConn(conn PgConnection) *CompletionsRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for completionsRepo: " + err.Error())
	}
	return &CompletionsRepository{
		conn: conn,
	}
}

// SetForDay runs the whole toggle in one transaction. The habit row is
// locked FOR UPDATE first, which serializes concurrent toggles on the
// same habit and keeps the cached counters consistent with the history
// they were derived from. Add and remove are both idempotent.
func (cr *CompletionsRepository) SetForDay(ctx context.Context, habitID uuid.UUID, day dates.Day, completed bool, derive DeriveFunc) (*entity.Habit, error) {
	tx, err := cr.conn.Begin(ctx)
	if err != nil {
		return nil, errors.New("starting toggle tx error: " + err.Error())
	}
	defer tx.Rollback(ctx)

	var (
		habit entity.Habit
		freq  string
	)
	habit.ID = habitID
	row := tx.QueryRow(ctx,
		`SELECT user_id, name, description, frequency, created_at FROM habits WHERE id = $1 FOR UPDATE;`, habitID)
	if err = row.Scan(&habit.UserID, &habit.Name, &habit.Description, &freq, &habit.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrHabitNotFound
		}
		return nil, errors.New("locking habit row error: " + err.Error())
	}
	habit.Frequency = entity.Frequency(freq)

	if completed {
		_, err = tx.Exec(ctx,
			`INSERT INTO habit_completions (habit_id, day) VALUES ($1, $2) ON CONFLICT DO NOTHING;`,
			habitID, day.Time())
	} else {
		_, err = tx.Exec(ctx,
			`DELETE FROM habit_completions WHERE habit_id = $1 AND day = $2;`,
			habitID, day.Time())
	}
	if err != nil {
		return nil, errors.New("mutating completion error: " + err.Error())
	}

	rows, err := tx.Query(ctx,
		`SELECT day FROM habit_completions WHERE habit_id = $1 ORDER BY day;`, habitID)
	if err != nil {
		return nil, errors.New("reading completion history error: " + err.Error())
	}
	days, err := collectDays(rows)
	if err != nil {
		return nil, err
	}

	res := derive(days)
	var last *time.Time
	if res.Last != nil {
		t := res.Last.Time()
		last = &t
	}
	_, err = tx.Exec(ctx,
		`UPDATE habits SET streak = $1, longest_streak = $2, total_completions = $3, last_completed = $4, updated_at = NOW() WHERE id = $5;`,
		res.Current, res.Longest, res.Total, last, habitID)
	if err != nil {
		return nil, errors.New("persisting derived fields error: " + err.Error())
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, errors.New("committing toggle tx error: " + err.Error())
	}

	habit.Streak = res.Current
	habit.LongestStreak = res.Longest
	habit.TotalCompletions = res.Total
	habit.LastCompleted = res.Last
	habit.Completions = days
	habit.UpdatedAt = time.Now()
	return &habit, nil
}

func (cr *CompletionsRepository) ListDays(ctx context.Context, habitID uuid.UUID) ([]dates.Day, error) {
	rows, err := cr.conn.Query(ctx,
		`SELECT day FROM habit_completions WHERE habit_id = $1 ORDER BY day;`, habitID)
	if err != nil {
		return nil, errors.New("listing completion days error: " + err.Error())
	}
	return collectDays(rows)
}

func (cr *CompletionsRepository) ListRange(ctx context.Context, habitID uuid.UUID, from, to dates.Day) ([]entity.Completion, error) {
	rows, err := cr.conn.Query(ctx,
		`SELECT id, habit_id, day, created_at FROM habit_completions WHERE habit_id = $1 AND day >= $2 AND day <= $3 ORDER BY day;`,
		habitID, from.Time(), to.Time())
	if err != nil {
		return nil, errors.New("getting completions for period error: " + err.Error())
	}
	defer rows.Close()
	result := make([]entity.Completion, 0)
	for rows.Next() {
		var (
			c entity.Completion
			d time.Time
		)
		if err = rows.Scan(&c.ID, &c.HabitID, &d, &c.CreatedAt); err != nil {
			return nil, errors.New("completion row parsing error: " + err.Error())
		}
		c.Day = scanDay(d)
		result = append(result, c)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected completion rows error: " + rows.Err().Error())
	}
	return result, nil
}

func (cr *CompletionsRepository) CountPerDay(ctx context.Context, uid uuid.UUID, from, to dates.Day) (map[dates.Day]int, error) {
	rows, err := cr.conn.Query(ctx,
		`SELECT c.day, COUNT(*) FROM habit_completions c JOIN habits h ON h.id = c.habit_id WHERE h.user_id = $1 AND c.day >= $2 AND c.day <= $3 GROUP BY c.day;`,
		uid, from.Time(), to.Time())
	if err != nil {
		return nil, errors.New("counting completions per day error: " + err.Error())
	}
	defer rows.Close()
	counts := make(map[dates.Day]int)
	for rows.Next() {
		var (
			d time.Time
			n int
		)
		if err = rows.Scan(&d, &n); err != nil {
			return nil, errors.New("per-day count row parsing error: " + err.Error())
		}
		counts[scanDay(d)] = n
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected per-day count rows error: " + rows.Err().Error())
	}
	return counts, nil
}

func collectDays(rows pgx.Rows) ([]dates.Day, error) {
	defer rows.Close()
	days := make([]dates.Day, 0)
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, errors.New("completion day parsing error: " + err.Error())
		}
		days = append(days, scanDay(d))
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected completion day rows error: " + rows.Err().Error())
	}
	return days, nil
}

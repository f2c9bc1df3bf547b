package streak_test

import (
	"testing"
	"time"

	"github.com/awsmlife/habits/internal/streak"
	"github.com/awsmlife/habits/pkg/dates"
	"github.com/awsmlife/habits/pkg/entity"
	"github.com/stretchr/testify/assert"
)

var today = dates.Make(2025, time.March, 15)

func day(offset int) dates.Day {
	return today.AddDays(offset)
}

func TestCalculateDaily(t *testing.T) {
	t.Run("empty history", func(t *testing.T) {
		res := streak.Calculate(nil, entity.FrequencyDaily, today)
		assert.Zero(t, res.Current)
		assert.Zero(t, res.Longest)
		assert.Zero(t, res.Total)
		assert.Nil(t, res.Last)
	})
	t.Run("single completion today", func(t *testing.T) {
		res := streak.Calculate([]dates.Day{day(0)}, entity.FrequencyDaily, today)
		assert.Equal(t, 1, res.Current)
		assert.Equal(t, 1, res.Longest)
		assert.Equal(t, 1, res.Total)
	})
	t.Run("three consecutive days ending today", func(t *testing.T) {
		res := streak.Calculate([]dates.Day{day(0), day(-1), day(-2)}, entity.FrequencyDaily, today)
		assert.Equal(t, 3, res.Current)
		assert.Equal(t, 3, res.Longest)
	})
	t.Run("today missing keeps streak alive for one day", func(t *testing.T) {
		res := streak.Calculate([]dates.Day{day(-1), day(-2)}, entity.FrequencyDaily, today)
		assert.Equal(t, 2, res.Current)
		assert.Equal(t, 2, res.Longest)
	})
	t.Run("full missed day breaks the streak", func(t *testing.T) {
		res := streak.Calculate([]dates.Day{day(-2), day(-3)}, entity.FrequencyDaily, today)
		assert.Equal(t, 0, res.Current)
		assert.Equal(t, 2, res.Longest)
	})
	t.Run("gap splits current and longest", func(t *testing.T) {
		res := streak.Calculate([]dates.Day{day(0), day(-3)}, entity.FrequencyDaily, today)
		assert.Equal(t, 1, res.Current)
		assert.Equal(t, 1, res.Longest)
	})
	t.Run("longest run sits in history", func(t *testing.T) {
		history := []dates.Day{day(0), day(-5), day(-6), day(-7), day(-8)}
		res := streak.Calculate(history, entity.FrequencyDaily, today)
		assert.Equal(t, 1, res.Current)
		assert.Equal(t, 4, res.Longest)
	})
	t.Run("duplicates collapse", func(t *testing.T) {
		res := streak.Calculate([]dates.Day{day(0), day(0), day(-1)}, entity.FrequencyDaily, today)
		assert.Equal(t, 2, res.Current)
		assert.Equal(t, 2, res.Total)
	})
	t.Run("last completed is the max day", func(t *testing.T) {
		res := streak.Calculate([]dates.Day{day(-4), day(-1), day(-9)}, entity.FrequencyDaily, today)
		if assert.NotNil(t, res.Last) {
			assert.True(t, res.Last.Equal(day(-1)))
		}
	})
}

func TestCalculateWeekly(t *testing.T) {
	// today is Saturday 2025-03-15; its ISO week starts Monday 2025-03-10
	t.Run("one completion per week over three weeks", func(t *testing.T) {
		history := []dates.Day{day(-2), day(-8), day(-16)}
		res := streak.Calculate(history, entity.FrequencyWeekly, today)
		assert.Equal(t, 3, res.Current)
		assert.Equal(t, 3, res.Longest)
	})
	t.Run("nothing this week leans on last week", func(t *testing.T) {
		history := []dates.Day{day(-8), day(-16)}
		res := streak.Calculate(history, entity.FrequencyWeekly, today)
		assert.Equal(t, 2, res.Current)
	})
	t.Run("full missed week breaks the streak", func(t *testing.T) {
		history := []dates.Day{day(-16), day(-22)}
		res := streak.Calculate(history, entity.FrequencyWeekly, today)
		assert.Equal(t, 0, res.Current)
		assert.Equal(t, 2, res.Longest)
	})
	t.Run("several completions in one week count once", func(t *testing.T) {
		history := []dates.Day{day(0), day(-1), day(-2)}
		res := streak.Calculate(history, entity.FrequencyWeekly, today)
		assert.Equal(t, 1, res.Current)
		assert.Equal(t, 1, res.Longest)
		assert.Equal(t, 3, res.Total)
	})
}

func TestCalculateIsPure(t *testing.T) {
	history := []dates.Day{day(0), day(-1), day(-4)}
	first := streak.Calculate(history, entity.FrequencyDaily, today)
	second := streak.Calculate(history, entity.FrequencyDaily, today)
	assert.Equal(t, first.Current, second.Current)
	assert.Equal(t, first.Longest, second.Longest)
	assert.Equal(t, first.Total, second.Total)
}

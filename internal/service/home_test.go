package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/saadjs/caltrack/internal/model"
	"github.com/saadjs/caltrack/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBandFor(t *testing.T) {
	t.Parallel()
	assert.Equal(t, service.BandNone, service.BandFor(0, 2000, false))
	assert.Equal(t, service.BandGreen, service.BandFor(1500, 2000, true))
	assert.Equal(t, service.BandGreen, service.BandFor(2100, 2000, true))
	assert.Equal(t, service.BandYellow, service.BandFor(2101, 2000, true))
	assert.Equal(t, service.BandYellow, service.BandFor(2200, 2000, true))
	assert.Equal(t, service.BandRed, service.BandFor(2201, 2000, true))
}

func TestBuildWeekDays(t *testing.T) {
	t.Parallel()
	now := fixedNow()
	monday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.Local)
	week := service.WeekSummaries{
		"2026-03-09": {Date: monday, TotalCalories: 2300, MealCount: 2},
		"2026-03-11": {Date: time.Date(2026, 3, 11, 0, 0, 0, 0, time.Local), TotalCalories: 2300, MealCount: 3},
	}

	days := service.BuildWeekDays(week, 2000, 2400, now)
	require.Len(t, days, 7)
	assert.Equal(t, "Sun", days[0].DayName)
	assert.Equal(t, 8, days[0].DayNumber)
	assert.Equal(t, service.BandNone, days[0].Band)
	assert.Nil(t, days[0].Summary)

	assert.Equal(t, service.BandRed, days[1].Band)
	assert.Equal(t, 300, days[1].OverGoal())

	today := days[3]
	assert.True(t, today.IsToday)
	assert.Equal(t, 2400, today.Goal)
	assert.Equal(t, service.BandGreen, today.Band)
	assert.InDelta(t, 2300.0/2400.0, today.Progress, 1e-9)
	assert.Equal(t, "Sat", days[6].DayName)
}

func TestLoadHomeAppliesCredits(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()
	store := service.NewSettingsStore(db)
	now := fixedNow()

	_, err := store.Update(func(s *model.UserSettings) error {
		s.AddBurnedCalories = true
		s.RolloverCalories = true
		return nil
	})
	require.NoError(t, err)

	saveTestMeal(t, db, "Yesterday", now.AddDate(0, 0, -1), 1850)
	saveTestMeal(t, db, "Lunch", now, 500)
	_, err = service.SaveExercise(db, service.ExerciseInput{Type: "manual", Calories: 300, Date: now})
	require.NoError(t, err)

	state, err := service.LoadHome(context.Background(), db, store, nil, now)
	require.NoError(t, err)

	assert.Equal(t, 500, state.Today.TotalCalories)
	assert.Equal(t, 300, state.Burned)
	assert.Equal(t, 150, state.Rollover)
	assert.Equal(t, 2450, state.GoalTotal)
	assert.Equal(t, 1950, state.Remaining)
	assert.Equal(t, "+300 burned, +150 rollover", state.Adjustments)
	require.Len(t, state.RecentMeals, 1)
	assert.Equal(t, "Lunch", state.RecentMeals[0].Name)
	require.Len(t, state.Week, 7)
	assert.Equal(t, 2000, state.Week[2].Goal)
	assert.Equal(t, 2450, state.Week[3].Goal)
	require.Len(t, state.Insights, 4)
	assert.Equal(t, 2450.0, state.Insights[0].Goal)

	settings, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 150, settings.RolloverAmount)
	assert.Equal(t, "2026-03-10", settings.RolloverLastDate.Format("2006-01-02"))
}

func TestLoadHomeWithoutYesterday(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()
	store := service.NewSettingsStore(db)

	state, err := service.LoadHome(context.Background(), db, store, nil, fixedNow())
	require.NoError(t, err)
	assert.Equal(t, 0, state.Rollover)
	assert.Equal(t, 2000, state.GoalTotal)
	assert.Equal(t, 2000, state.Remaining)
	assert.Empty(t, state.RecentMeals)
	assert.Empty(t, state.Adjustments)
}

func TestViewHomeDoesNotStoreRollover(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()
	store := service.NewSettingsStore(db)
	now := fixedNow()

	_, err := store.Update(func(s *model.UserSettings) error {
		s.RolloverCalories = true
		return nil
	})
	require.NoError(t, err)
	saveTestMeal(t, db, "Yesterday", now.AddDate(0, 0, -1), 1850)

	notified := 0
	unsubscribe := store.Subscribe(func(model.UserSettings) { notified++ })
	defer unsubscribe()

	state, err := service.ViewHome(context.Background(), db, store, nil, now)
	require.NoError(t, err)
	assert.Equal(t, 150, state.Rollover)
	assert.Equal(t, 2150, state.GoalTotal)
	assert.Zero(t, notified)

	settings, err := store.Load()
	require.NoError(t, err)
	assert.True(t, settings.RolloverLastDate.IsZero())
	assert.Zero(t, settings.RolloverAmount)
}

package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/saadjs/caltrack/internal/model"
	"github.com/saadjs/caltrack/internal/provider/workoutapi"
	"github.com/saadjs/caltrack/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWorkoutAPI struct {
	resp  workoutapi.CaloriesBurned
	err   error
	calls int
	last  workoutapi.Request
}

func (f *fakeWorkoutAPI) Estimate(ctx context.Context, in workoutapi.Request) (workoutapi.CaloriesBurned, error) {
	f.calls++
	f.last = in
	return f.resp, f.err
}

func TestWorkoutRequestProfileErrors(t *testing.T) {
	t.Parallel()
	now := fixedNow()
	base := model.DefaultUserSettings()
	base.Gender = "female"
	base.Age = 30

	cases := map[string]func(s *model.UserSettings){
		"missing gender": func(s *model.UserSettings) { s.Gender = "" },
		"other gender":   func(s *model.UserSettings) { s.Gender = "other" },
		"missing age":    func(s *model.UserSettings) { s.Age = 0 },
		"age too high":   func(s *model.UserSettings) { s.Age = 121 },
		"no weight":      func(s *model.UserSettings) { s.CurrentWeightKg = 0 },
		"no height":      func(s *model.UserSettings) { s.HeightCm = 0 },
	}
	for name, mutate := range cases {
		s := base
		mutate(&s)
		_, err := service.WorkoutRequest(s, now)
		assert.ErrorIs(t, err, service.ErrIncompleteProfile, name)
	}
}

func TestWorkoutRequestUnits(t *testing.T) {
	t.Parallel()
	now := fixedNow()
	s := model.DefaultUserSettings()
	s.Gender = "Male"
	s.Birthdate = time.Date(1990, 6, 1, 0, 0, 0, 0, time.Local)

	req, err := service.WorkoutRequest(s, now)
	require.NoError(t, err)
	assert.Equal(t, "male", req.Gender)
	assert.Equal(t, 35, req.Age)
	assert.Equal(t, workoutapi.Measurement{Value: 70, Unit: "kg"}, req.Weight)
	assert.Equal(t, workoutapi.Measurement{Value: 170, Unit: "cm"}, req.Height)

	s.UseMetricUnits = false
	req, err = service.WorkoutRequest(s, now)
	require.NoError(t, err)
	assert.Equal(t, workoutapi.Measurement{Value: 154.3, Unit: "lbs"}, req.Weight)
	assert.Equal(t, workoutapi.Measurement{Value: 66.9, Unit: "in"}, req.Height)
}

func TestWorkoutCaloriesCalculate(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()
	store := service.NewSettingsStore(db)
	_, err := store.Update(func(s *model.UserSettings) error {
		s.Gender = "female"
		s.Age = 28
		return nil
	})
	require.NoError(t, err)

	remote := &fakeWorkoutAPI{resp: workoutapi.CaloriesBurned{TotalCalories: 320}}
	calc := &service.WorkoutCalories{
		Remote:      remote,
		Credentials: testCredentials,
		Store:       store,
		Now:         fixedNow,
	}
	workouts := []workoutapi.Workout{{Type: "cycling", DurationMinutes: 45, Intensity: "moderate"}}

	got, err := calc.Calculate(context.Background(), workouts)
	require.NoError(t, err)
	assert.Equal(t, 320, got.TotalCalories)
	assert.Equal(t, "user-1", remote.last.UserID)
	assert.Equal(t, 28, remote.last.Age)
	assert.Equal(t, workouts, remote.last.Workouts)

	_, err = calc.Calculate(context.Background(), []workoutapi.Workout{{Type: "cycling", DurationMinutes: 0, Intensity: "moderate"}})
	assert.ErrorIs(t, err, service.ErrInvalidWorkout)
	_, err = calc.Calculate(context.Background(), []workoutapi.Workout{{Type: "cycling", DurationMinutes: 30, Intensity: "extreme"}})
	assert.ErrorIs(t, err, service.ErrInvalidWorkout)
	_, err = calc.Calculate(context.Background(), nil)
	assert.ErrorIs(t, err, service.ErrInvalidWorkout)
	assert.Equal(t, 1, remote.calls)

	remote.err = workoutapi.ErrServer
	_, err = calc.Calculate(context.Background(), workouts)
	assert.True(t, errors.Is(err, workoutapi.ErrServer))

	noCreds := &service.WorkoutCalories{Remote: remote, Store: store, Now: fixedNow}
	_, err = noCreds.Calculate(context.Background(), workouts)
	assert.ErrorIs(t, err, workoutapi.ErrMissingCredentials)
}

func TestWorkoutFromExercise(t *testing.T) {
	t.Parallel()
	w := service.WorkoutFromExercise(model.Exercise{Type: model.ExerciseDescribe, Description: "rowing", DurationMin: 20, Intensity: model.IntensityHigh})
	assert.Equal(t, workoutapi.Workout{Type: "rowing", DurationMinutes: 20, Intensity: "high"}, w)

	w = service.WorkoutFromExercise(model.Exercise{Type: model.ExerciseRun, DurationMin: 30})
	assert.Equal(t, "moderate", w.Intensity)
	assert.Equal(t, "run", w.Type)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/saadjs/caltrack/internal/auth"
	"github.com/saadjs/caltrack/internal/model"
	"github.com/saadjs/caltrack/internal/onboarding"
	"github.com/saadjs/caltrack/internal/provider/workoutapi"
)

var (
	ErrIncompleteProfile = errors.New("complete your profile to estimate workout calories")
	ErrInvalidWorkout    = errors.New("invalid workout")
)

// WorkoutAPI is the remote calorie estimator. *workoutapi.Client satisfies it.
type WorkoutAPI interface {
	Estimate(ctx context.Context, in workoutapi.Request) (workoutapi.CaloriesBurned, error)
}

type WorkoutCalories struct {
	Remote      WorkoutAPI
	Credentials auth.Credentials
	Store       *SettingsStore
	Timeout     time.Duration
	Now         func() time.Time
}

var workoutIntensities = map[string]bool{"low": true, "moderate": true, "high": true, "vigorous": true}

// Calculate asks the remote estimator for the calories burned by workouts.
// Errors are returned as-is; there is no retry and no local fallback here.
func (w *WorkoutCalories) Calculate(ctx context.Context, workouts []workoutapi.Workout) (workoutapi.CaloriesBurned, error) {
	now := time.Now()
	if w.Now != nil {
		now = w.Now()
	}
	if w.Remote == nil || !w.Credentials.Available(now) {
		return workoutapi.CaloriesBurned{}, workoutapi.ErrMissingCredentials
	}
	if err := validateWorkouts(workouts); err != nil {
		return workoutapi.CaloriesBurned{}, err
	}
	settings, err := w.Store.Load()
	if err != nil {
		return workoutapi.CaloriesBurned{}, err
	}
	req, err := WorkoutRequest(settings, now)
	if err != nil {
		return workoutapi.CaloriesBurned{}, err
	}
	req.UserID = w.Credentials.UserID
	req.Workouts = workouts

	if w.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.Timeout)
		defer cancel()
	}
	return w.Remote.Estimate(ctx, req)
}

func validateWorkouts(workouts []workoutapi.Workout) error {
	if len(workouts) == 0 {
		return fmt.Errorf("%w: at least one workout is required", ErrInvalidWorkout)
	}
	for i, wo := range workouts {
		if strings.TrimSpace(wo.Type) == "" {
			return fmt.Errorf("%w: workout %d has no type", ErrInvalidWorkout, i+1)
		}
		if wo.DurationMinutes <= 0 {
			return fmt.Errorf("%w: workout %d duration must be > 0", ErrInvalidWorkout, i+1)
		}
		if !workoutIntensities[strings.ToLower(wo.Intensity)] {
			return fmt.Errorf("%w: workout %d intensity %q (use low, moderate, high or vigorous)", ErrInvalidWorkout, i+1, wo.Intensity)
		}
	}
	return nil
}

// WorkoutRequest builds the profile half of a workout request from
// settings. Weight and height are sent in the user's preferred units.
func WorkoutRequest(s model.UserSettings, now time.Time) (workoutapi.Request, error) {
	gender := strings.ToLower(strings.TrimSpace(s.Gender))
	if gender != "male" && gender != "female" {
		return workoutapi.Request{}, fmt.Errorf("%w: gender must be male or female", ErrIncompleteProfile)
	}
	age := s.Age
	if age <= 0 && !s.Birthdate.IsZero() {
		age = onboarding.YearsBetween(s.Birthdate, now)
	}
	if age < 1 || age > 120 {
		return workoutapi.Request{}, fmt.Errorf("%w: age is missing or out of range", ErrIncompleteProfile)
	}
	if s.CurrentWeightKg <= 0 || s.HeightCm <= 0 {
		return workoutapi.Request{}, fmt.Errorf("%w: weight and height are required", ErrIncompleteProfile)
	}

	req := workoutapi.Request{
		Gender: gender,
		Age:    age,
		Weight: workoutapi.Measurement{Value: s.CurrentWeightKg, Unit: "kg"},
		Height: workoutapi.Measurement{Value: s.HeightCm, Unit: "cm"},
	}
	if !s.UseMetricUnits {
		req.Weight = workoutapi.Measurement{Value: roundTo(KgToLbs(s.CurrentWeightKg), 1), Unit: "lbs"}
		req.Height = workoutapi.Measurement{Value: roundTo(CmToInches(s.HeightCm), 1), Unit: "in"}
	}
	return req, nil
}

// WorkoutFromExercise maps a logged exercise onto the remote workout shape.
func WorkoutFromExercise(ex model.Exercise) workoutapi.Workout {
	intensity := "moderate"
	switch ex.Intensity {
	case model.IntensityLow:
		intensity = "low"
	case model.IntensityHigh:
		intensity = "high"
	case model.IntensityMedium:
	}
	typ := string(ex.Type)
	if ex.Type == model.ExerciseDescribe && ex.Description != "" {
		typ = ex.Description
	}
	return workoutapi.Workout{Type: typ, DurationMinutes: ex.DurationMin, Intensity: intensity}
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

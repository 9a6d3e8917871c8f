package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/saadjs/caltrack/internal/model"
	"github.com/saadjs/caltrack/internal/service"
)

func TestExerciseSaveListDelete(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	now := fixedNow()
	run, err := service.SaveExercise(db, service.ExerciseInput{
		Type:         "run",
		Calories:     400,
		DurationMin:  40,
		Distance:     floatPtr(5.5),
		DistanceUnit: "km",
		Date:         now,
		Notes:        "easy run",
	})
	if err != nil {
		t.Fatalf("save run: %v", err)
	}
	if !run.Date.Equal(time.Date(2026, 3, 11, 0, 0, 0, 0, time.Local)) {
		t.Fatalf("expected date normalized to start of day, got %s", run.Date)
	}
	if run.Intensity != model.IntensityMedium {
		t.Fatalf("expected default medium intensity, got %q", run.Intensity)
	}

	if _, err := service.SaveExercise(db, service.ExerciseInput{
		Type:       "weight_lifting",
		Date:       now,
		SetEntries: []model.ExerciseSet{{Reps: 10, Weight: 60}, {Reps: 8, Weight: 70}},
	}); err != nil {
		t.Fatalf("save lifting: %v", err)
	}

	items, err := service.FetchExercises(db, now)
	if err != nil {
		t.Fatalf("fetch exercises: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 exercises, got %d", len(items))
	}
	var lifting model.Exercise
	for _, it := range items {
		if it.Type == model.ExerciseWeightLifting {
			lifting = it
		}
	}
	if len(lifting.SetEntries) != 2 || lifting.SetEntries[1].Weight != 70 {
		t.Fatalf("expected set entries to round-trip, got %+v", lifting.SetEntries)
	}

	burned, err := service.TotalCaloriesBurned(db, now)
	if err != nil {
		t.Fatalf("total burned: %v", err)
	}
	if burned != 400+lifting.Calories {
		t.Fatalf("expected burned %d, got %d", 400+lifting.Calories, burned)
	}

	summary, err := service.FetchDaySummary(db, now)
	if err != nil {
		t.Fatalf("fetch summary: %v", err)
	}
	if summary == nil || summary.ExerciseCount != 2 || summary.MealCount != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	if err := service.DeleteExercise(db, run.ID); err != nil {
		t.Fatalf("delete run: %v", err)
	}
	if _, err := service.FetchExercise(db, run.ID); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	summary, _ = service.FetchDaySummary(db, now)
	if summary.ExerciseCount != 1 {
		t.Fatalf("expected exercise count 1 after delete, got %d", summary.ExerciseCount)
	}
}

func TestSaveExerciseEstimatesMissingCalories(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	ex, err := service.SaveExercise(db, service.ExerciseInput{
		Type:        "describe",
		Description: "yoga",
		DurationMin: 30,
		Date:        fixedNow(),
	})
	if err != nil {
		t.Fatalf("save described exercise: %v", err)
	}
	if ex.Calories != 300 {
		t.Fatalf("expected 300 estimated calories, got %d", ex.Calories)
	}
}

func TestSaveExerciseRejectsInvalidInput(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	now := fixedNow()
	cases := []service.ExerciseInput{
		{Type: "swim", Calories: 100, Date: now},
		{Type: "run", DurationMin: 30, Date: now},
		{Type: "run", DurationMin: 30, Distance: floatPtr(5), DistanceUnit: "furlong", Date: now},
		{Type: "run", DurationMin: 30, Distance: floatPtr(5), DistanceUnit: "km", Intensity: "extreme", Date: now},
		{Type: "weight_lifting", Date: now},
		{Type: "weight_lifting", Reps: intPtr(10), Sets: intPtr(1_000_000_000), Weight: floatPtr(60), Date: now},
		{Type: "weight_lifting", Reps: intPtr(5000), Sets: intPtr(3), Weight: floatPtr(60), Date: now},
		{Type: "weight_lifting", SetEntries: make([]model.ExerciseSet, 101), Date: now},
		{Type: "describe", DurationMin: 20, Date: now},
		{Type: "manual", Date: now},
	}
	for _, in := range cases {
		if _, err := service.SaveExercise(db, in); err == nil {
			t.Fatalf("expected error for %+v", in)
		}
	}
}

func TestListExercisesFilters(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	for i, typ := range []string{"manual", "manual", "describe"} {
		in := service.ExerciseInput{Type: typ, Calories: 100, DurationMin: 20, Description: "walk", Date: time.Date(2026, 3, 9+i, 8, 0, 0, 0, time.Local)}
		if _, err := service.SaveExercise(db, in); err != nil {
			t.Fatalf("seed exercise %d: %v", i, err)
		}
	}
	manual, err := service.ListExercises(db, service.ListExerciseFilter{ExerciseType: "manual"})
	if err != nil {
		t.Fatalf("list manual: %v", err)
	}
	if len(manual) != 2 {
		t.Fatalf("expected 2 manual exercises, got %d", len(manual))
	}
	ranged, err := service.FetchExercisesRange(db, time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local), time.Date(2026, 3, 11, 0, 0, 0, 0, time.Local))
	if err != nil {
		t.Fatalf("fetch range: %v", err)
	}
	if len(ranged) != 2 || ranged[0].Type != model.ExerciseDescribe {
		t.Fatalf("expected newest-first range of 2, got %+v", ranged)
	}
}

func TestExerciseEstimators(t *testing.T) {
	t.Parallel()

	if got := service.EstimateRunCalories(10, "km", 60, model.IntensityMedium); got != 900 {
		t.Fatalf("expected 900 for 10km medium hour, got %d", got)
	}
	miles := service.EstimateRunCalories(1, "mi", 10, model.IntensityHigh)
	if miles != 162 {
		t.Fatalf("unexpected miles estimate %d", miles)
	}
	if got := service.EstimateRunCalories(0, "km", 0, model.IntensityLow); got != 1 {
		t.Fatalf("expected floor of 1, got %d", got)
	}

	sets := []model.ExerciseSet{{Reps: 10, Weight: 100}, {Reps: 1, Weight: 1}}
	if got := service.EstimateWeightLiftingCalories(sets); got != 51 {
		t.Fatalf("expected 51 lifting calories, got %d", got)
	}
	light := []model.ExerciseSet{{Reps: 5, Weight: 2}, {Reps: 5, Weight: 2}, {Reps: 5, Weight: 2}}
	if got := service.EstimateWeightLiftingCalories(light); got != 15 {
		t.Fatalf("expected 5 per set minimum, got %d", got)
	}

	if got := service.EstimateDescribedCalories(0); got != 1 {
		t.Fatalf("expected floor of 1, got %d", got)
	}
}

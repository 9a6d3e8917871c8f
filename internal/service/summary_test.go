package service_test

import (
	"testing"
	"time"

	"github.com/saadjs/caltrack/internal/service"
)

func TestFetchCurrentWeekSummariesStaysInsideWeek(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	now := fixedNow()
	start := service.WeekStart(now)
	if start.Weekday() != time.Sunday || start.Format("2006-01-02") != "2026-03-08" {
		t.Fatalf("unexpected week start %s", start)
	}

	// Previous Saturday, every day of this week, and next Sunday.
	for offset := -1; offset <= 7; offset++ {
		saveTestMeal(t, db, "Meal", start.AddDate(0, 0, offset).Add(12*time.Hour), 100*(offset+2))
	}

	week, err := service.FetchCurrentWeekSummaries(db, now)
	if err != nil {
		t.Fatalf("fetch week summaries: %v", err)
	}
	if len(week) != 7 {
		t.Fatalf("expected 7 entries, got %d", len(week))
	}
	end := start.AddDate(0, 0, 7)
	for key, s := range week {
		if s.Date.Before(start) || !s.Date.Before(end) {
			t.Fatalf("summary %s outside week window", key)
		}
	}
	wed, ok := week.Get(now)
	if !ok || wed.TotalCalories != 500 {
		t.Fatalf("expected wednesday summary of 500 kcal, got %+v (present=%v)", wed, ok)
	}
}

func TestFetchCurrentWeekSummariesLeavesMissingDaysAbsent(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	now := fixedNow()
	saveTestMeal(t, db, "Monday", time.Date(2026, 3, 9, 9, 0, 0, 0, time.Local), 400)

	week, err := service.FetchCurrentWeekSummaries(db, now)
	if err != nil {
		t.Fatalf("fetch week summaries: %v", err)
	}
	if len(week) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(week))
	}
	if _, ok := week.Get(time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)); ok {
		t.Fatalf("expected tuesday to be absent")
	}
}

func TestFetchTodaySummaryCreatesEmptyRowOnce(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	now := fixedNow()
	for i := 0; i < 2; i++ {
		s, err := service.FetchTodaySummary(db, now)
		if err != nil {
			t.Fatalf("fetch today summary: %v", err)
		}
		if s.TotalCalories != 0 || s.MealCount != 0 {
			t.Fatalf("expected empty summary, got %+v", s)
		}
	}
	all, err := service.FetchAllDaySummaries(db)
	if err != nil {
		t.Fatalf("fetch all summaries: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected a single summary row, got %d", len(all))
	}
}

func TestRebuildDaySummaryRecoversDrift(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	now := fixedNow()
	saveTestMeal(t, db, "Lunch", now, 640)
	if _, err := db.Exec(`UPDATE day_summaries SET total_calories = 9999, meal_count = 7`); err != nil {
		t.Fatalf("corrupt summary: %v", err)
	}

	s, err := service.RebuildDaySummary(db, now)
	if err != nil {
		t.Fatalf("rebuild summary: %v", err)
	}
	if s.TotalCalories != 640 || s.MealCount != 1 {
		t.Fatalf("unexpected rebuilt summary: %+v", s)
	}
}

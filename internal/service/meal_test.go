package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/saadjs/caltrack/internal/model"
	"github.com/saadjs/caltrack/internal/service"
)

func TestSaveAndDeleteMealKeepsDaySummaryInSync(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	now := fixedNow()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	breakfast := saveTestMeal(t, db, "Breakfast", day.Add(8*time.Hour), 500)
	saveTestMeal(t, db, "Lunch", day.Add(12*time.Hour), 700)

	summary, err := service.FetchDaySummary(db, now)
	if err != nil {
		t.Fatalf("fetch day summary: %v", err)
	}
	if summary == nil || summary.TotalCalories != 1200 || summary.MealCount != 2 {
		t.Fatalf("unexpected summary after two meals: %+v", summary)
	}

	if err := service.DeleteMeal(db, breakfast.ID); err != nil {
		t.Fatalf("delete breakfast: %v", err)
	}
	summary, err = service.FetchDaySummary(db, now)
	if err != nil {
		t.Fatalf("fetch day summary after delete: %v", err)
	}
	if summary.TotalCalories != 700 || summary.MealCount != 1 {
		t.Fatalf("expected 700 kcal over 1 meal, got %+v", summary)
	}

	goal := service.NewEffectiveGoal(model.DefaultUserSettings(), 0, 0)
	if got := goal.Remaining(summary.TotalCalories); got != 1300 {
		t.Fatalf("expected 1300 remaining, got %d", got)
	}

	if err := service.DeleteMeal(db, breakfast.ID); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected not found deleting twice, got %v", err)
	}
}

func TestDeleteLastMealLeavesZeroSummary(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	now := fixedNow()
	meal := saveTestMeal(t, db, "Snack", now, 250)
	if err := service.DeleteMeal(db, meal.ID); err != nil {
		t.Fatalf("delete meal: %v", err)
	}
	summary, err := service.FetchDaySummary(db, now)
	if err != nil {
		t.Fatalf("fetch day summary: %v", err)
	}
	if summary == nil {
		t.Fatalf("expected summary row to survive delete")
	}
	if summary.TotalCalories != 0 || summary.MealCount != 0 || summary.HasMeals() {
		t.Fatalf("expected zeroed summary, got %+v", summary)
	}
}

func TestSaveMealValidatesAndInfersCategory(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	at := time.Date(2026, 3, 11, 7, 15, 0, 0, time.Local)
	meal := saveTestMeal(t, db, "Oats", at, 300)
	if meal.Category != model.MealBreakfast {
		t.Fatalf("expected breakfast category, got %q", meal.Category)
	}

	cases := []service.MealInput{
		{Name: "", Timestamp: at, Items: []service.MealItemInput{{Name: "x", Calories: 1}}},
		{Name: "No items", Timestamp: at},
		{Name: "Huge", Timestamp: at, Items: []service.MealItemInput{{Name: "x", Calories: 10001}}},
		{Name: "Fatty", Timestamp: at, Items: []service.MealItemInput{{Name: "x", Calories: 100, FatG: 301}}},
		{Name: "Bad category", Timestamp: at, Category: "brunch", Items: []service.MealItemInput{{Name: "x", Calories: 1}}},
		{Name: "Bad confidence", Timestamp: at, Confidence: 1.5, Items: []service.MealItemInput{{Name: "x", Calories: 1}}},
	}
	for _, in := range cases {
		if _, err := service.SaveMeal(db, in); err == nil {
			t.Fatalf("expected validation error for %+v", in)
		}
	}
}

func TestReplaceMealItemsAppliesDelta(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	now := fixedNow()
	meal := saveTestMeal(t, db, "Dinner", now, 800)
	updated, err := service.ReplaceMealItems(db, meal.ID, []service.MealItemInput{
		{Name: "Salmon", Calories: 400, ProteinG: 40, FatG: 20},
		{Name: "Rice", Calories: 200, CarbsG: 45, Portion: 1.5, Unit: "cup"},
	})
	if err != nil {
		t.Fatalf("replace items: %v", err)
	}
	if len(updated.Items) != 2 || updated.TotalCalories() != 600 {
		t.Fatalf("unexpected meal after replace: %+v", updated)
	}
	if updated.Items[1].Portion != 1.5 || updated.Items[1].Unit != "cup" {
		t.Fatalf("expected item order and portion preserved, got %+v", updated.Items)
	}

	summary, err := service.FetchDaySummary(db, now)
	if err != nil {
		t.Fatalf("fetch summary: %v", err)
	}
	if summary.TotalCalories != 600 || summary.MealCount != 1 || summary.TotalProteinG != 40 {
		t.Fatalf("unexpected summary after replace: %+v", summary)
	}

	if _, err := service.ReplaceMealItems(db, uuid.New(), []service.MealItemInput{{Name: "x", Calories: 1}}); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected not found for unknown meal, got %v", err)
	}
}

func TestFetchMealsByDayAndRecent(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	now := fixedNow()
	yesterday := now.AddDate(0, 0, -1)
	saveTestMeal(t, db, "Old", yesterday, 400)
	first := saveTestMeal(t, db, "First", now.Add(-2*time.Hour), 100)
	second := saveTestMeal(t, db, "Second", now.Add(-1*time.Hour), 200)

	today, err := service.FetchMeals(db, now)
	if err != nil {
		t.Fatalf("fetch meals: %v", err)
	}
	if len(today) != 2 || today[0].ID != second.ID || today[1].ID != first.ID {
		t.Fatalf("expected today's meals newest first, got %+v", today)
	}

	recent, err := service.FetchRecentMeals(db, now, 1)
	if err != nil {
		t.Fatalf("fetch recent meals: %v", err)
	}
	if len(recent) != 1 || recent[0].ID != second.ID {
		t.Fatalf("expected only the newest meal, got %+v", recent)
	}

	got, err := service.FetchMeal(db, first.ID)
	if err != nil {
		t.Fatalf("fetch meal: %v", err)
	}
	if got.Name != "First" || len(got.Items) != 1 || !got.Timestamp.Equal(first.Timestamp.Truncate(time.Second)) {
		t.Fatalf("unexpected fetched meal: %+v", got)
	}
}

func TestListMealsFilters(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	saveTestMeal(t, db, "Mon lunch", time.Date(2026, 3, 9, 12, 0, 0, 0, time.Local), 600)
	saveTestMeal(t, db, "Tue lunch", time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local), 650)
	saveTestMeal(t, db, "Tue dinner", time.Date(2026, 3, 10, 19, 0, 0, 0, time.Local), 900)

	tuesday, err := service.ListMeals(db, service.ListMealsFilter{Date: "2026-03-10"})
	if err != nil {
		t.Fatalf("list by date: %v", err)
	}
	if len(tuesday) != 2 {
		t.Fatalf("expected 2 tuesday meals, got %d", len(tuesday))
	}

	lunches, err := service.ListMeals(db, service.ListMealsFilter{FromDate: "2026-03-09", ToDate: "2026-03-10", Category: "lunch"})
	if err != nil {
		t.Fatalf("list by range and category: %v", err)
	}
	if len(lunches) != 2 {
		t.Fatalf("expected 2 lunches, got %d", len(lunches))
	}

	if _, err := service.ListMeals(db, service.ListMealsFilter{Date: "2026-03-10", FromDate: "2026-03-09"}); err == nil {
		t.Fatalf("expected error combining date with range")
	}
}

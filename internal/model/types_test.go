package model

import (
	"testing"
	"time"
)

func TestInferMealCategory(t *testing.T) {
	t.Parallel()
	cases := []struct {
		hour int
		want MealCategory
	}{
		{4, MealSnack},
		{5, MealBreakfast},
		{10, MealBreakfast},
		{11, MealLunch},
		{15, MealLunch},
		{16, MealDinner},
		{20, MealDinner},
		{21, MealSnack},
		{23, MealSnack},
	}
	for _, tc := range cases {
		at := time.Date(2026, 3, 11, tc.hour, 59, 0, 0, time.Local)
		if got := InferMealCategory(at); got != tc.want {
			t.Fatalf("hour %d: expected %s, got %s", tc.hour, tc.want, got)
		}
	}
}

func TestDaySummaryRemoveMealFloorsAtZero(t *testing.T) {
	t.Parallel()
	d := DaySummary{}
	d.AddMeal(MacroData{Calories: 300, ProteinG: 20, CarbsG: 30, FatG: 10})
	if d.MealCount != 1 || d.TotalCalories != 300 {
		t.Fatalf("unexpected summary after add: %+v", d)
	}

	d.RemoveMeal(MacroData{Calories: 500, ProteinG: 25, CarbsG: 30, FatG: 12})
	if d.TotalCalories != 0 || d.TotalProteinG != 0 || d.TotalFatG != 0 || d.MealCount != 0 {
		t.Fatalf("expected floored summary, got %+v", d)
	}
	d.RemoveMeal(MacroData{Calories: 1})
	if d.MealCount != 0 {
		t.Fatalf("meal count went negative: %d", d.MealCount)
	}
}

func TestMealTotalMacros(t *testing.T) {
	t.Parallel()
	m := Meal{Items: []MealItem{
		{Calories: 200, ProteinG: 10, CarbsG: 20, FatG: 5},
		{Calories: 150, ProteinG: 5, CarbsG: 10, FatG: 8},
	}}
	want := MacroData{Calories: 350, ProteinG: 15, CarbsG: 30, FatG: 13}
	if got := m.TotalMacros(); got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if (Meal{}).TotalCalories() != 0 {
		t.Fatalf("expected zero calories for a meal without items")
	}
}

func TestGeneratedGoalsEqualIgnoresMetadata(t *testing.T) {
	t.Parallel()
	a := DefaultGeneratedGoals()
	b := a
	b.Source = GoalSourceRemote
	b.Notes = "from server"
	if !a.Equal(b) {
		t.Fatalf("expected goals with equal macros to be equal")
	}
	b.FatG++
	if a.Equal(b) {
		t.Fatalf("expected differing fat to be unequal")
	}
}

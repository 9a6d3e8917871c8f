package service

import "github.com/saadjs/caltrack/internal/model"

type Nutrient string

const (
	NutrientCalories Nutrient = "calories"
	NutrientProtein  Nutrient = "protein"
	NutrientCarbs    Nutrient = "carbs"
	NutrientFat      Nutrient = "fat"
)

const closeToLimitRatio = 0.8

// NutritionStatus compares one nutrient's intake against its goal.
type NutritionStatus struct {
	Nutrient   Nutrient `json:"nutrient"`
	Unit       string   `json:"unit"`
	Consumed   float64  `json:"consumed"`
	Goal       float64  `json:"goal"`
	Remaining  float64  `json:"remaining"`
	Over       float64  `json:"over"`
	Percentage float64  `json:"percentage"`
}

func newNutritionStatus(n Nutrient, unit string, consumed, goal float64) NutritionStatus {
	st := NutritionStatus{
		Nutrient:  n,
		Unit:      unit,
		Consumed:  consumed,
		Goal:      goal,
		Remaining: max(0, goal-consumed),
		Over:      max(0, consumed-goal),
	}
	if goal > 0 {
		st.Percentage = consumed / goal
	}
	return st
}

func (s NutritionStatus) IsCloseToLimit() bool {
	return s.Percentage >= closeToLimitRatio && s.Percentage < 1
}

func (s NutritionStatus) IsAtLimit() bool {
	return s.Percentage >= 1
}

func (s NutritionStatus) IsOverGoal() bool {
	return s.Over > 0
}

// CalculateTodayStatus reports calories, protein, carbs and fat in that order.
func CalculateTodayStatus(consumed, goals model.MacroData) []NutritionStatus {
	return []NutritionStatus{
		newNutritionStatus(NutrientCalories, "kcal", float64(consumed.Calories), float64(goals.Calories)),
		newNutritionStatus(NutrientProtein, "g", consumed.ProteinG, goals.ProteinG),
		newNutritionStatus(NutrientCarbs, "g", consumed.CarbsG, goals.CarbsG),
		newNutritionStatus(NutrientFat, "g", consumed.FatG, goals.FatG),
	}
}

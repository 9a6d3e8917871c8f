package model

import (
	"time"

	"github.com/google/uuid"
)

type MealCategory string

const (
	MealBreakfast MealCategory = "breakfast"
	MealLunch     MealCategory = "lunch"
	MealDinner    MealCategory = "dinner"
	MealSnack     MealCategory = "snack"
)

// InferMealCategory picks a category from the local hour of t.
func InferMealCategory(t time.Time) MealCategory {
	switch h := t.Hour(); {
	case h >= 5 && h < 11:
		return MealBreakfast
	case h >= 11 && h < 16:
		return MealLunch
	case h >= 16 && h < 21:
		return MealDinner
	default:
		return MealSnack
	}
}

func ParseMealCategory(value string) (MealCategory, bool) {
	switch c := MealCategory(value); c {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return c, true
	}
	return "", false
}

type Meal struct {
	ID         uuid.UUID    `json:"id"`
	Name       string       `json:"name"`
	Timestamp  time.Time    `json:"timestamp"`
	PhotoURL   string       `json:"photo_url"`
	Confidence float64      `json:"confidence"`
	Notes      string       `json:"notes"`
	Category   MealCategory `json:"category"`
	Items      []MealItem   `json:"items"`
	CreatedAt  time.Time    `json:"created_at"`
}

// TotalMacros is derived from the items and never stored.
func (m Meal) TotalMacros() MacroData {
	total := MacroZero
	for _, item := range m.Items {
		total = total.Add(item.Macros())
	}
	return total
}

func (m Meal) TotalCalories() int {
	return m.TotalMacros().Calories
}

type MealItem struct {
	ID       uuid.UUID `json:"id"`
	MealID   uuid.UUID `json:"meal_id"`
	Name     string    `json:"name"`
	Portion  float64   `json:"portion"`
	Unit     string    `json:"unit"`
	Calories int       `json:"calories"`
	ProteinG float64   `json:"protein_g"`
	CarbsG   float64   `json:"carbs_g"`
	FatG     float64   `json:"fat_g"`
}

func (i MealItem) Macros() MacroData {
	return MacroData{Calories: i.Calories, ProteinG: i.ProteinG, CarbsG: i.CarbsG, FatG: i.FatG}
}

type ExerciseType string

const (
	ExerciseRun           ExerciseType = "run"
	ExerciseWeightLifting ExerciseType = "weight_lifting"
	ExerciseDescribe      ExerciseType = "describe"
	ExerciseManual        ExerciseType = "manual"
)

type ExerciseIntensity string

const (
	IntensityLow    ExerciseIntensity = "low"
	IntensityMedium ExerciseIntensity = "medium"
	IntensityHigh   ExerciseIntensity = "high"
)

type Exercise struct {
	ID           uuid.UUID         `json:"id"`
	Type         ExerciseType      `json:"type"`
	Calories     int               `json:"calories"`
	DurationMin  int               `json:"duration_min"`
	Intensity    ExerciseIntensity `json:"intensity"`
	Notes        string            `json:"notes"`
	Date         time.Time         `json:"date"`
	Distance     *float64          `json:"distance,omitempty"`
	DistanceUnit string            `json:"distance_unit"`
	// Reps, Sets and Weight hold the legacy single-set shape.
	Reps        *int          `json:"reps,omitempty"`
	Sets        *int          `json:"sets,omitempty"`
	Weight      *float64      `json:"weight,omitempty"`
	SetEntries  []ExerciseSet `json:"set_entries,omitempty"`
	Description string        `json:"description"`
	CreatedAt   time.Time     `json:"created_at"`
}

type ExerciseSet struct {
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
}

// DaySummary is the persisted aggregate for one calendar day. Date is
// always the local start of that day.
type DaySummary struct {
	Date          time.Time `json:"date"`
	TotalCalories int       `json:"total_calories"`
	TotalProteinG float64   `json:"total_protein_g"`
	TotalCarbsG   float64   `json:"total_carbs_g"`
	TotalFatG     float64   `json:"total_fat_g"`
	MealCount     int       `json:"meal_count"`
	ExerciseCount int       `json:"exercise_count"`
}

func (d DaySummary) Macros() MacroData {
	return MacroData{Calories: d.TotalCalories, ProteinG: d.TotalProteinG, CarbsG: d.TotalCarbsG, FatG: d.TotalFatG}
}

func (d DaySummary) HasMeals() bool {
	return d.MealCount > 0
}

func (d *DaySummary) AddMeal(m MacroData) {
	d.setMacros(d.Macros().Add(m))
	d.MealCount++
}

// RemoveMeal subtracts m. Totals and the meal count never go below zero.
func (d *DaySummary) RemoveMeal(m MacroData) {
	d.setMacros(d.Macros().Sub(m))
	if d.MealCount > 0 {
		d.MealCount--
	}
}

func (d *DaySummary) setMacros(m MacroData) {
	d.TotalCalories = max(0, m.Calories)
	d.TotalProteinG = max(0, m.ProteinG)
	d.TotalCarbsG = max(0, m.CarbsG)
	d.TotalFatG = max(0, m.FatG)
}

type Goal struct {
	ID            int64     `json:"id"`
	Calories      int       `json:"calories"`
	ProteinG      float64   `json:"protein_g"`
	CarbsG        float64   `json:"carbs_g"`
	FatG          float64   `json:"fat_g"`
	Source        string    `json:"source"`
	EffectiveDate string    `json:"effective_date"`
	CreatedAt     time.Time `json:"created_at"`
}

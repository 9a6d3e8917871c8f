package service

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/saadjs/caltrack/internal/model"
)

type CategoryBreakdown struct {
	Category string  `json:"category"`
	Meals    int     `json:"meals"`
	Calories int     `json:"calories"`
	Protein  float64 `json:"protein_g"`
	Carbs    float64 `json:"carbs_g"`
	Fat      float64 `json:"fat_g"`
}

type AdherenceSummary struct {
	EvaluatedDays   int     `json:"evaluated_days"`
	WithinGoalDays  int     `json:"within_goal_days"`
	PercentWithin   float64 `json:"percent_within_goal"`
	SkippedGoalDays int     `json:"days_without_goal"`
}

// HistoryReport aggregates stored day summaries over a date range.
type HistoryReport struct {
	FromDate              string              `json:"from_date"`
	ToDate                string              `json:"to_date"`
	TotalCalories         int                 `json:"total_calories"`
	TotalProtein          float64             `json:"total_protein_g"`
	TotalCarbs            float64             `json:"total_carbs_g"`
	TotalFat              float64             `json:"total_fat_g"`
	DaysWithMeals         int                 `json:"days_with_meals"`
	AverageCaloriesPerDay float64             `json:"avg_calories_per_day"`
	HighestDay            *model.DaySummary   `json:"highest_day,omitempty"`
	LowestDay             *model.DaySummary   `json:"lowest_day,omitempty"`
	Adherence             AdherenceSummary    `json:"adherence"`
	ByCategory            []CategoryBreakdown `json:"by_category"`
	Days                  []model.DaySummary  `json:"days"`
}

// HistoryRange reports from..to inclusive. Days whose summary has no meals
// are left out of averages and extremes. Adherence uses the goal in effect
// on each day and a macro tolerance such as 0.10.
func HistoryRange(db *sql.DB, from, to time.Time, tolerance float64) (*HistoryReport, error) {
	from = startOfDay(from)
	to = startOfDay(to)
	if from.After(to) {
		return nil, fmt.Errorf("from date must be <= to date")
	}
	report := &HistoryReport{FromDate: dayKey(from), ToDate: dayKey(to)}

	summaries, err := FetchDaySummariesRange(db, from, to)
	if err != nil {
		return nil, err
	}
	days := make([]model.DaySummary, 0, len(summaries))
	for _, d := range summaries {
		if d.HasMeals() {
			days = append(days, d)
		}
	}
	report.Days = days
	report.DaysWithMeals = len(days)
	for _, d := range days {
		report.TotalCalories += d.TotalCalories
		report.TotalProtein += d.TotalProteinG
		report.TotalCarbs += d.TotalCarbsG
		report.TotalFat += d.TotalFatG
	}
	if report.DaysWithMeals > 0 {
		report.AverageCaloriesPerDay = float64(report.TotalCalories) / float64(report.DaysWithMeals)
	}
	report.HighestDay, report.LowestDay = extremeDays(days)

	if report.Adherence, err = calculateAdherence(db, days, tolerance); err != nil {
		return nil, err
	}
	if report.ByCategory, err = loadCategoryBreakdown(db, from, to); err != nil {
		return nil, err
	}
	return report, nil
}

func loadCategoryBreakdown(db *sql.DB, from, to time.Time) ([]CategoryBreakdown, error) {
	rows, err := db.Query(`
SELECT m.category, COUNT(DISTINCT m.id), COALESCE(SUM(i.calories), 0), COALESCE(SUM(i.protein_g), 0), COALESCE(SUM(i.carbs_g), 0), COALESCE(SUM(i.fat_g), 0)
FROM meals m
LEFT JOIN meal_items i ON i.meal_id = m.id
WHERE m.day >= ? AND m.day <= ?
GROUP BY m.category
ORDER BY SUM(i.calories) DESC
`, dayKey(from), dayKey(to))
	if err != nil {
		return nil, fmt.Errorf("query category breakdown: %w", err)
	}
	defer rows.Close()

	items := make([]CategoryBreakdown, 0)
	for rows.Next() {
		var c CategoryBreakdown
		if err := rows.Scan(&c.Category, &c.Meals, &c.Calories, &c.Protein, &c.Carbs, &c.Fat); err != nil {
			return nil, fmt.Errorf("scan category breakdown: %w", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category breakdown: %w", err)
	}
	return items, nil
}

func calculateAdherence(db *sql.DB, days []model.DaySummary, tolerance float64) (AdherenceSummary, error) {
	out := AdherenceSummary{}
	for _, d := range days {
		goal, err := CurrentGoal(db, dayKey(d.Date))
		if err != nil {
			return out, err
		}
		if goal == nil {
			out.SkippedGoalDays++
			continue
		}
		out.EvaluatedDays++
		if d.TotalCalories <= goal.Calories &&
			AdherenceWithin(d.TotalProteinG, goal.ProteinG, tolerance) &&
			AdherenceWithin(d.TotalCarbsG, goal.CarbsG, tolerance) &&
			AdherenceWithin(d.TotalFatG, goal.FatG, tolerance) {
			out.WithinGoalDays++
		}
	}
	if out.EvaluatedDays > 0 {
		out.PercentWithin = (float64(out.WithinGoalDays) / float64(out.EvaluatedDays)) * 100
	}
	return out, nil
}

func AdherenceWithin(actual float64, target float64, tolerance float64) bool {
	if target == 0 {
		return actual == 0
	}
	lower := target * (1 - tolerance)
	upper := target * (1 + tolerance)
	return actual >= lower && actual <= upper
}

func extremeDays(days []model.DaySummary) (*model.DaySummary, *model.DaySummary) {
	if len(days) == 0 {
		return nil, nil
	}
	copied := make([]model.DaySummary, len(days))
	copy(copied, days)
	sort.SliceStable(copied, func(i, j int) bool {
		return copied[i].TotalCalories < copied[j].TotalCalories
	})
	low := copied[0]
	high := copied[len(copied)-1]
	return &high, &low
}

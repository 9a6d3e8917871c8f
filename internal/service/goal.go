package service

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/saadjs/caltrack/internal/model"
)

type SetGoalInput struct {
	Calories      int
	ProteinG      float64
	CarbsG        float64
	FatG          float64
	Source        model.GoalSource
	EffectiveDate string
}

// SetGoal records a goal in history. One row per effective date; a second
// write on the same date replaces the first.
func SetGoal(db *sql.DB, in SetGoalInput) error {
	if err := validateNonNegativeInt("calories", in.Calories); err != nil {
		return err
	}
	if err := validateNonNegativeFloat("protein", in.ProteinG); err != nil {
		return err
	}
	if err := validateNonNegativeFloat("carbs", in.CarbsG); err != nil {
		return err
	}
	if err := validateNonNegativeFloat("fat", in.FatG); err != nil {
		return err
	}
	in.EffectiveDate = strings.TrimSpace(in.EffectiveDate)
	if in.EffectiveDate == "" {
		in.EffectiveDate = time.Now().Format(dayLayout)
	}
	if _, err := time.Parse(dayLayout, in.EffectiveDate); err != nil {
		return fmt.Errorf("invalid effective date %q (expected YYYY-MM-DD)", in.EffectiveDate)
	}
	if in.Source == "" {
		in.Source = model.GoalSourceManual
	}

	_, err := db.Exec(`
INSERT INTO goals(calories, protein_g, carbs_g, fat_g, source, effective_date)
VALUES(?, ?, ?, ?, ?, ?)
ON CONFLICT(effective_date) DO UPDATE SET
  calories=excluded.calories,
  protein_g=excluded.protein_g,
  carbs_g=excluded.carbs_g,
  fat_g=excluded.fat_g,
  source=excluded.source
`, in.Calories, in.ProteinG, in.CarbsG, in.FatG, string(in.Source), in.EffectiveDate)
	if err != nil {
		return fmt.Errorf("set goal: %w", err)
	}
	return nil
}

func CurrentGoal(db *sql.DB, date string) (*model.Goal, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		date = time.Now().Format(dayLayout)
	}
	if _, err := time.Parse(dayLayout, date); err != nil {
		return nil, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", date)
	}

	g, err := scanGoal(db.QueryRow(`
SELECT id, calories, protein_g, carbs_g, fat_g, source, effective_date, created_at
FROM goals
WHERE effective_date <= ?
ORDER BY effective_date DESC
LIMIT 1
`, date).Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("current goal for %s: %w", date, err)
	}
	return &g, nil
}

func GoalHistory(db *sql.DB) ([]model.Goal, error) {
	rows, err := db.Query(`
SELECT id, calories, protein_g, carbs_g, fat_g, source, effective_date, created_at
FROM goals
ORDER BY effective_date DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list goal history: %w", err)
	}
	defer rows.Close()

	goals := make([]model.Goal, 0)
	for rows.Next() {
		g, err := scanGoal(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan goal history: %w", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goal history: %w", err)
	}
	return goals, nil
}

func scanGoal(scan func(dest ...any) error) (model.Goal, error) {
	var g model.Goal
	var createdRaw string
	if err := scan(&g.ID, &g.Calories, &g.ProteinG, &g.CarbsG, &g.FatG, &g.Source, &g.EffectiveDate, &createdRaw); err != nil {
		return model.Goal{}, err
	}
	g.CreatedAt = parseCreatedAt(createdRaw)
	return g, nil
}

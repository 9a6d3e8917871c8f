package service

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/saadjs/caltrack/internal/model"
)

const exportVersion = 1

type ExportData struct {
	Version      int                 `json:"version"`
	ExportedAt   time.Time           `json:"exported_at"`
	Meals        []model.Meal        `json:"meals"`
	Exercises    []model.Exercise    `json:"exercises"`
	DaySummaries []model.DaySummary  `json:"day_summaries"`
	Goals        []model.Goal        `json:"goals"`
	Weights      []model.WeightEntry `json:"weights"`
}

func ExportDataSnapshot(db *sql.DB, now time.Time) (*ExportData, error) {
	meals, err := queryMeals(db, squirrel.Select(mealColumns...).
		From("meals").
		OrderBy("timestamp DESC"))
	if err != nil {
		return nil, fmt.Errorf("export meals: %w", err)
	}
	exercises, err := queryExercises(db, squirrel.Select(exerciseColumns...).
		From("exercises").
		OrderBy("date DESC", "created_at DESC"))
	if err != nil {
		return nil, fmt.Errorf("export exercises: %w", err)
	}
	summaries, err := FetchAllDaySummaries(db)
	if err != nil {
		return nil, fmt.Errorf("export day summaries: %w", err)
	}
	goals, err := GoalHistory(db)
	if err != nil {
		return nil, fmt.Errorf("export goals: %w", err)
	}
	weights, err := WeightHistory(db)
	if err != nil {
		return nil, fmt.Errorf("export weights: %w", err)
	}
	return &ExportData{
		Version:      exportVersion,
		ExportedAt:   now.UTC(),
		Meals:        meals,
		Exercises:    exercises,
		DaySummaries: summaries,
		Goals:        goals,
		Weights:      weights,
	}, nil
}

// ExportMeals renders the snapshot as indented JSON with object keys in
// sorted order and ISO-8601 times.
func ExportMeals(db *sql.DB, now time.Time) ([]byte, error) {
	data, err := ExportDataSnapshot(db, now)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	// Round-tripping through a generic value sorts every object's keys.
	var generic any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("normalize export: %w", err)
	}
	out, err := json.MarshalIndent(generic, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return append(out, '\n'), nil
}

// DeleteAllData removes every meal, exercise, day summary and weigh-in.
// Settings and goal history are kept.
func DeleteAllData(db *sql.DB) error {
	return withTx(db, "delete all data", func(tx *sql.Tx) error {
		for _, table := range []string{"meal_items", "meals", "exercise_sets", "exercises", "day_summaries", "weight_entries"} {
			if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}

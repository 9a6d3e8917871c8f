package service

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/saadjs/caltrack/internal/model"
)

var summaryColumns = []string{"date", "total_calories", "total_protein_g", "total_carbs_g", "total_fat_g", "meal_count", "exercise_count"}

// WeekSummaries maps a day key (YYYY-MM-DD) to that day's summary. Days
// without a stored summary are absent, not zero-filled.
type WeekSummaries map[string]model.DaySummary

func (w WeekSummaries) Get(day time.Time) (model.DaySummary, bool) {
	s, ok := w[dayKey(day)]
	return s, ok
}

// WeekStart returns the Sunday that opens the week containing now.
func WeekStart(now time.Time) time.Time {
	today := startOfDay(now)
	return today.AddDate(0, 0, -int(today.Weekday()))
}

func ensureDaySummary(q queryRunner, day string) error {
	if _, err := q.Exec(`INSERT OR IGNORE INTO day_summaries(date) VALUES(?)`, day); err != nil {
		return fmt.Errorf("create day summary %s: %w", day, err)
	}
	return nil
}

// applySummaryDelta adds delta to the day's totals, creating the row first.
// Totals and counts floor at zero so a stale summary can never go negative.
func applySummaryDelta(q queryRunner, day string, delta model.MacroData, meals, exercises int) error {
	if err := ensureDaySummary(q, day); err != nil {
		return err
	}
	_, err := q.Exec(`
UPDATE day_summaries SET
  total_calories = MAX(0, total_calories + ?),
  total_protein_g = MAX(0, total_protein_g + ?),
  total_carbs_g = MAX(0, total_carbs_g + ?),
  total_fat_g = MAX(0, total_fat_g + ?),
  meal_count = MAX(0, meal_count + ?),
  exercise_count = MAX(0, exercise_count + ?),
  updated_at = CURRENT_TIMESTAMP
WHERE date = ?
`, delta.Calories, delta.ProteinG, delta.CarbsG, delta.FatG, meals, exercises, day)
	if err != nil {
		return fmt.Errorf("update day summary %s: %w", day, err)
	}
	return nil
}

func scanDaySummary(scan func(dest ...any) error, loc *time.Location) (model.DaySummary, error) {
	var s model.DaySummary
	var raw string
	if err := scan(&raw, &s.TotalCalories, &s.TotalProteinG, &s.TotalCarbsG, &s.TotalFatG, &s.MealCount, &s.ExerciseCount); err != nil {
		return model.DaySummary{}, err
	}
	date, err := parseDayKey(raw, loc)
	if err != nil {
		return model.DaySummary{}, err
	}
	s.Date = date
	return s, nil
}

func querySummaries(q queryRunner, b squirrel.SelectBuilder, loc *time.Location) ([]model.DaySummary, error) {
	rows, err := runSelect(q, b)
	if err != nil {
		return nil, fmt.Errorf("list day summaries: %w", err)
	}
	defer rows.Close()

	out := make([]model.DaySummary, 0)
	for rows.Next() {
		s, err := scanDaySummary(rows.Scan, loc)
		if err != nil {
			return nil, fmt.Errorf("scan day summary: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate day summaries: %w", err)
	}
	return out, nil
}

// FetchDaySummary returns nil when the day has never had a summary.
func FetchDaySummary(db *sql.DB, date time.Time) (*model.DaySummary, error) {
	items, err := querySummaries(db, squirrel.Select(summaryColumns...).
		From("day_summaries").
		Where(squirrel.Eq{"date": dayKey(date)}).
		Limit(1), date.Location())
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// FetchTodaySummary returns today's summary, creating an empty one if needed.
func FetchTodaySummary(db *sql.DB, now time.Time) (model.DaySummary, error) {
	if err := ensureDaySummary(db, dayKey(now)); err != nil {
		return model.DaySummary{}, err
	}
	s, err := FetchDaySummary(db, now)
	if err != nil {
		return model.DaySummary{}, err
	}
	if s == nil {
		return model.DaySummary{}, fmt.Errorf("day summary %s missing after create", dayKey(now))
	}
	return *s, nil
}

func FetchAllDaySummaries(db *sql.DB) ([]model.DaySummary, error) {
	return querySummaries(db, squirrel.Select(summaryColumns...).
		From("day_summaries").
		OrderBy("date DESC"), time.Local)
}

// FetchDaySummariesRange returns summaries for from..to inclusive, oldest first.
func FetchDaySummariesRange(db *sql.DB, from, to time.Time) ([]model.DaySummary, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("range end %s is before start %s", dayKey(to), dayKey(from))
	}
	return querySummaries(db, squirrel.Select(summaryColumns...).
		From("day_summaries").
		Where(squirrel.GtOrEq{"date": dayKey(from)}).
		Where(squirrel.LtOrEq{"date": dayKey(to)}).
		OrderBy("date ASC"), from.Location())
}

// FetchCurrentWeekSummaries returns at most seven summaries from the
// Sunday-to-Saturday week containing now.
func FetchCurrentWeekSummaries(db *sql.DB, now time.Time) (WeekSummaries, error) {
	start := WeekStart(now)
	end := start.AddDate(0, 0, 7)
	items, err := querySummaries(db, squirrel.Select(summaryColumns...).
		From("day_summaries").
		Where(squirrel.GtOrEq{"date": dayKey(start)}).
		Where(squirrel.Lt{"date": dayKey(end)}).
		OrderBy("date ASC").
		Limit(7), now.Location())
	if err != nil {
		return nil, err
	}
	out := make(WeekSummaries, len(items))
	for _, s := range items {
		out[dayKey(s.Date)] = s
	}
	return out, nil
}

// RebuildDaySummary recomputes a day's totals from its persisted meals and
// exercises and overwrites the stored summary.
func RebuildDaySummary(db *sql.DB, date time.Time) (model.DaySummary, error) {
	day := dayKey(date)
	err := withTx(db, "rebuild day summary", func(tx *sql.Tx) error {
		return rebuildDaySummaryTx(tx, day)
	})
	if err != nil {
		return model.DaySummary{}, err
	}
	s, err := FetchDaySummary(db, date)
	if err != nil {
		return model.DaySummary{}, err
	}
	return *s, nil
}

func rebuildDaySummaryTx(q queryRunner, day string) error {
	if err := ensureDaySummary(q, day); err != nil {
		return err
	}
	_, err := q.Exec(`
UPDATE day_summaries SET
  total_calories = (SELECT COALESCE(SUM(i.calories), 0) FROM meal_items i JOIN meals m ON m.id = i.meal_id WHERE m.day = ?1),
  total_protein_g = (SELECT COALESCE(SUM(i.protein_g), 0) FROM meal_items i JOIN meals m ON m.id = i.meal_id WHERE m.day = ?1),
  total_carbs_g = (SELECT COALESCE(SUM(i.carbs_g), 0) FROM meal_items i JOIN meals m ON m.id = i.meal_id WHERE m.day = ?1),
  total_fat_g = (SELECT COALESCE(SUM(i.fat_g), 0) FROM meal_items i JOIN meals m ON m.id = i.meal_id WHERE m.day = ?1),
  meal_count = (SELECT COUNT(1) FROM meals WHERE day = ?1),
  exercise_count = (SELECT COUNT(1) FROM exercises WHERE date = ?1),
  updated_at = CURRENT_TIMESTAMP
WHERE date = ?1
`, day)
	if err != nil {
		return fmt.Errorf("rebuild day summary %s: %w", day, err)
	}
	return nil
}

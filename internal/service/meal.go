package service

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/saadjs/caltrack/internal/model"
)

const defaultRecentMealsLimit = 10

type MealItemInput struct {
	Name     string
	Portion  float64
	Unit     string
	Calories int
	ProteinG float64
	CarbsG   float64
	FatG     float64
}

type MealInput struct {
	Name       string
	Timestamp  time.Time
	PhotoURL   string
	Confidence float64
	Notes      string
	Category   string
	Items      []MealItemInput
}

type ListMealsFilter struct {
	Date     string
	FromDate string
	ToDate   string
	Category string
	Limit    int
}

var mealColumns = []string{"id", "name", "timestamp", "IFNULL(photo_url, '')", "confidence", "IFNULL(notes, '')", "category", "created_at"}

// SaveMeal stores the meal and its items and adds their macros to the
// summary of the meal's own day, all in one transaction.
func SaveMeal(db *sql.DB, in MealInput) (model.Meal, error) {
	meal, err := normalizeMealInput(in)
	if err != nil {
		return model.Meal{}, err
	}
	day := dayKey(meal.Timestamp)
	err = withTx(db, "save meal", func(tx *sql.Tx) error {
		_, err := tx.Exec(`
INSERT INTO meals(id, name, timestamp, day, photo_url, confidence, notes, category)
VALUES(?, ?, ?, ?, ?, ?, ?, ?)
`, meal.ID.String(), meal.Name, formatTimestamp(meal.Timestamp), day, nullableString(meal.PhotoURL), meal.Confidence, nullableString(meal.Notes), string(meal.Category))
		if err != nil {
			return fmt.Errorf("add meal: %w", err)
		}
		if err := insertMealItems(tx, meal.ID, meal.Items); err != nil {
			return err
		}
		return applySummaryDelta(tx, day, meal.TotalMacros(), 1, 0)
	})
	if err != nil {
		return model.Meal{}, err
	}
	return meal, nil
}

// DeleteMeal removes the meal and subtracts it from its day's summary. The
// summary row itself stays, even when it drops to zero.
func DeleteMeal(db *sql.DB, id uuid.UUID) error {
	return withTx(db, "delete meal", func(tx *sql.Tx) error {
		day, macros, err := mealDayAndMacros(tx, id)
		if err != nil {
			return err
		}
		if err := applySummaryDelta(tx, day, model.MacroZero.Sub(macros), -1, 0); err != nil {
			return err
		}
		res, err := tx.Exec(`DELETE FROM meals WHERE id = ?`, id.String())
		if err != nil {
			return fmt.Errorf("delete meal %s: %w", id, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("read rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("meal %s: %w", id, ErrNotFound)
		}
		return nil
	})
}

// ReplaceMealItems swaps the meal's items and moves the day summary by the
// difference between the old and new totals.
func ReplaceMealItems(db *sql.DB, id uuid.UUID, items []MealItemInput) (model.Meal, error) {
	normalized, err := normalizeMealItems(id, items)
	if err != nil {
		return model.Meal{}, err
	}
	err = withTx(db, "replace meal items", func(tx *sql.Tx) error {
		day, before, err := mealDayAndMacros(tx, id)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM meal_items WHERE meal_id = ?`, id.String()); err != nil {
			return fmt.Errorf("clear meal items %s: %w", id, err)
		}
		if err := insertMealItems(tx, id, normalized); err != nil {
			return err
		}
		after := model.Meal{Items: normalized}.TotalMacros()
		return applySummaryDelta(tx, day, after.Sub(before), 0, 0)
	})
	if err != nil {
		return model.Meal{}, err
	}
	return FetchMeal(db, id)
}

func FetchMeal(db *sql.DB, id uuid.UUID) (model.Meal, error) {
	meals, err := queryMeals(db, squirrel.Select(mealColumns...).
		From("meals").
		Where(squirrel.Eq{"id": id.String()}))
	if err != nil {
		return model.Meal{}, err
	}
	if len(meals) == 0 {
		return model.Meal{}, fmt.Errorf("meal %s: %w", id, ErrNotFound)
	}
	return meals[0], nil
}

// FetchMeals returns the meals of date's calendar day, newest first.
func FetchMeals(db *sql.DB, date time.Time) ([]model.Meal, error) {
	return queryMeals(db, squirrel.Select(mealColumns...).
		From("meals").
		Where(squirrel.Eq{"day": dayKey(date)}).
		OrderBy("timestamp DESC", "created_at DESC"))
}

// FetchRecentMeals returns up to limit of today's meals, newest first.
func FetchRecentMeals(db *sql.DB, now time.Time, limit int) ([]model.Meal, error) {
	if limit <= 0 {
		limit = defaultRecentMealsLimit
	}
	return queryMeals(db, squirrel.Select(mealColumns...).
		From("meals").
		Where(squirrel.Eq{"day": dayKey(now)}).
		OrderBy("timestamp DESC", "created_at DESC").
		Limit(uint64(limit)))
}

func ListMeals(db *sql.DB, f ListMealsFilter) ([]model.Meal, error) {
	if strings.TrimSpace(f.Date) != "" && (strings.TrimSpace(f.FromDate) != "" || strings.TrimSpace(f.ToDate) != "") {
		return nil, fmt.Errorf("--date cannot be combined with --from or --to")
	}
	q := squirrel.Select(mealColumns...).From("meals")
	if strings.TrimSpace(f.Date) != "" {
		d, err := parseDayKey(f.Date, time.Local)
		if err != nil {
			return nil, err
		}
		q = q.Where(squirrel.Eq{"day": dayKey(d)})
	}
	if strings.TrimSpace(f.FromDate) != "" {
		d, err := parseDayKey(f.FromDate, time.Local)
		if err != nil {
			return nil, err
		}
		q = q.Where(squirrel.GtOrEq{"day": dayKey(d)})
	}
	if strings.TrimSpace(f.ToDate) != "" {
		d, err := parseDayKey(f.ToDate, time.Local)
		if err != nil {
			return nil, err
		}
		q = q.Where(squirrel.LtOrEq{"day": dayKey(d)})
	}
	if c := strings.ToLower(strings.TrimSpace(f.Category)); c != "" {
		if _, ok := model.ParseMealCategory(c); !ok {
			return nil, fmt.Errorf("unknown meal category %q", f.Category)
		}
		q = q.Where(squirrel.Eq{"category": c})
	}
	if f.Limit <= 0 {
		f.Limit = 50
	}
	return queryMeals(db, q.OrderBy("timestamp DESC", "created_at DESC").Limit(uint64(f.Limit)))
}

func queryMeals(q queryRunner, b squirrel.SelectBuilder) ([]model.Meal, error) {
	rows, err := runSelect(q, b)
	if err != nil {
		return nil, fmt.Errorf("list meals: %w", err)
	}
	meals := make([]model.Meal, 0)
	ids := make([]string, 0)
	for rows.Next() {
		var m model.Meal
		var id, ts, category, createdRaw string
		if err := rows.Scan(&id, &m.Name, &ts, &m.PhotoURL, &m.Confidence, &m.Notes, &category, &createdRaw); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan meal: %w", err)
		}
		if m.ID, err = uuid.Parse(id); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("parse meal id %q: %w", id, err)
		}
		if m.Timestamp, err = parseTimestamp(ts, time.Local); err != nil {
			_ = rows.Close()
			return nil, err
		}
		m.Category = model.MealCategory(category)
		m.CreatedAt = parseCreatedAt(createdRaw)
		meals = append(meals, m)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate meals: %w", err)
	}
	_ = rows.Close()

	if len(ids) == 0 {
		return meals, nil
	}
	items, err := loadMealItems(q, ids)
	if err != nil {
		return nil, err
	}
	for i := range meals {
		meals[i].Items = items[meals[i].ID]
	}
	return meals, nil
}

func loadMealItems(q queryRunner, mealIDs []string) (map[uuid.UUID][]model.MealItem, error) {
	rows, err := runSelect(q, squirrel.Select("id", "meal_id", "name", "portion", "unit", "calories", "protein_g", "carbs_g", "fat_g").
		From("meal_items").
		Where(squirrel.Eq{"meal_id": mealIDs}).
		OrderBy("meal_id", "position"))
	if err != nil {
		return nil, fmt.Errorf("list meal items: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]model.MealItem, len(mealIDs))
	for rows.Next() {
		var item model.MealItem
		var id, mealID string
		if err := rows.Scan(&id, &mealID, &item.Name, &item.Portion, &item.Unit, &item.Calories, &item.ProteinG, &item.CarbsG, &item.FatG); err != nil {
			return nil, fmt.Errorf("scan meal item: %w", err)
		}
		if item.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse meal item id %q: %w", id, err)
		}
		if item.MealID, err = uuid.Parse(mealID); err != nil {
			return nil, fmt.Errorf("parse meal id %q: %w", mealID, err)
		}
		out[item.MealID] = append(out[item.MealID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meal items: %w", err)
	}
	return out, nil
}

func mealDayAndMacros(q queryRunner, id uuid.UUID) (string, model.MacroData, error) {
	var day string
	var m model.MacroData
	err := q.QueryRow(`
SELECT m.day, COALESCE(SUM(i.calories), 0), COALESCE(SUM(i.protein_g), 0), COALESCE(SUM(i.carbs_g), 0), COALESCE(SUM(i.fat_g), 0)
FROM meals m LEFT JOIN meal_items i ON i.meal_id = m.id
WHERE m.id = ?
GROUP BY m.id
`, id.String()).Scan(&day, &m.Calories, &m.ProteinG, &m.CarbsG, &m.FatG)
	if err == sql.ErrNoRows {
		return "", model.MacroData{}, fmt.Errorf("meal %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return "", model.MacroData{}, fmt.Errorf("load meal %s: %w", id, err)
	}
	return day, m, nil
}

func insertMealItems(tx *sql.Tx, mealID uuid.UUID, items []model.MealItem) error {
	for pos, item := range items {
		_, err := tx.Exec(`
INSERT INTO meal_items(id, meal_id, position, name, portion, unit, calories, protein_g, carbs_g, fat_g)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, item.ID.String(), mealID.String(), pos, item.Name, item.Portion, item.Unit, item.Calories, item.ProteinG, item.CarbsG, item.FatG)
		if err != nil {
			return fmt.Errorf("add meal item %q: %w", item.Name, err)
		}
	}
	return nil
}

func normalizeMealInput(in MealInput) (model.Meal, error) {
	name := strings.TrimSpace(in.Name)
	if err := ValidateText("meal name", name, 1, 500); err != nil {
		return model.Meal{}, err
	}
	if in.Timestamp.IsZero() {
		in.Timestamp = time.Now()
	}
	if in.Confidence < 0 || in.Confidence > 1 {
		return model.Meal{}, fmt.Errorf("confidence must be between 0 and 1")
	}
	category := model.InferMealCategory(in.Timestamp)
	if c := strings.ToLower(strings.TrimSpace(in.Category)); c != "" {
		parsed, ok := model.ParseMealCategory(c)
		if !ok {
			return model.Meal{}, fmt.Errorf("unknown meal category %q (use breakfast, lunch, dinner or snack)", in.Category)
		}
		category = parsed
	}
	id := uuid.New()
	items, err := normalizeMealItems(id, in.Items)
	if err != nil {
		return model.Meal{}, err
	}
	return model.Meal{
		ID:         id,
		Name:       name,
		Timestamp:  in.Timestamp,
		PhotoURL:   strings.TrimSpace(in.PhotoURL),
		Confidence: in.Confidence,
		Notes:      strings.TrimSpace(in.Notes),
		Category:   category,
		Items:      items,
	}, nil
}

func normalizeMealItems(mealID uuid.UUID, in []MealItemInput) ([]model.MealItem, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("a meal needs at least one item")
	}
	out := make([]model.MealItem, 0, len(in))
	for _, item := range in {
		name := strings.TrimSpace(item.Name)
		if err := ValidateText("item name", name, 1, 500); err != nil {
			return nil, err
		}
		if err := ValidateCalories(item.Calories); err != nil {
			return nil, fmt.Errorf("item %q: %w", name, err)
		}
		for _, m := range []struct {
			kind  MacroKind
			value float64
		}{{MacroProtein, item.ProteinG}, {MacroCarbs, item.CarbsG}, {MacroFat, item.FatG}} {
			if err := ValidateMacro(m.kind, m.value); err != nil {
				return nil, fmt.Errorf("item %q: %w", name, err)
			}
		}
		if err := validateNonNegativeFloat("portion", item.Portion); err != nil {
			return nil, fmt.Errorf("item %q: %w", name, err)
		}
		portion := item.Portion
		if portion == 0 {
			portion = 1
		}
		out = append(out, model.MealItem{
			ID:       uuid.New(),
			MealID:   mealID,
			Name:     name,
			Portion:  portion,
			Unit:     strings.TrimSpace(item.Unit),
			Calories: item.Calories,
			ProteinG: item.ProteinG,
			CarbsG:   item.CarbsG,
			FatG:     item.FatG,
		})
	}
	return out, nil
}

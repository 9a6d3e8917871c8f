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

const todaysExercisesLimit = 100

type ExerciseInput struct {
	Type string
	// Calories <= 0 asks for a local estimate.
	Calories     int
	DurationMin  int
	Intensity    string
	Notes        string
	Date         time.Time
	Distance     *float64
	DistanceUnit string
	Reps         *int
	Sets         *int
	Weight       *float64
	SetEntries   []model.ExerciseSet
	Description  string
}

type ListExerciseFilter struct {
	Date         string
	FromDate     string
	ToDate       string
	ExerciseType string
	Limit        int
}

var exerciseColumns = []string{
	"id", "exercise_type", "calories", "duration_min", "IFNULL(intensity, '')", "IFNULL(notes, '')", "date",
	"distance", "IFNULL(distance_unit, '')", "reps", "sets", "weight", "IFNULL(description, '')", "created_at",
}

// SaveExercise stores the exercise on the start of its day and bumps that
// day's exercise count in the same transaction.
func SaveExercise(db *sql.DB, in ExerciseInput) (model.Exercise, error) {
	ex, err := normalizeExerciseInput(in)
	if err != nil {
		return model.Exercise{}, err
	}
	day := dayKey(ex.Date)
	err = withTx(db, "save exercise", func(tx *sql.Tx) error {
		_, err := tx.Exec(`
INSERT INTO exercises(id, exercise_type, calories, duration_min, intensity, notes, date, distance, distance_unit, reps, sets, weight, description)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, ex.ID.String(), string(ex.Type), ex.Calories, ex.DurationMin, nullableString(string(ex.Intensity)), nullableString(ex.Notes), day,
			ex.Distance, nullableString(ex.DistanceUnit), ex.Reps, ex.Sets, ex.Weight, nullableString(ex.Description))
		if err != nil {
			return fmt.Errorf("add exercise: %w", err)
		}
		for pos, set := range ex.SetEntries {
			if _, err := tx.Exec(`INSERT INTO exercise_sets(exercise_id, position, reps, weight) VALUES(?, ?, ?, ?)`, ex.ID.String(), pos, set.Reps, set.Weight); err != nil {
				return fmt.Errorf("add exercise set: %w", err)
			}
		}
		return applySummaryDelta(tx, day, model.MacroZero, 0, 1)
	})
	if err != nil {
		return model.Exercise{}, err
	}
	return ex, nil
}

func DeleteExercise(db *sql.DB, id uuid.UUID) error {
	return withTx(db, "delete exercise", func(tx *sql.Tx) error {
		var day string
		err := tx.QueryRow(`SELECT date FROM exercises WHERE id = ?`, id.String()).Scan(&day)
		if err == sql.ErrNoRows {
			return fmt.Errorf("exercise %s: %w", id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("load exercise %s: %w", id, err)
		}
		if _, err := tx.Exec(`DELETE FROM exercises WHERE id = ?`, id.String()); err != nil {
			return fmt.Errorf("delete exercise %s: %w", id, err)
		}
		return applySummaryDelta(tx, day, model.MacroZero, 0, -1)
	})
}

func FetchExercise(db *sql.DB, id uuid.UUID) (model.Exercise, error) {
	items, err := queryExercises(db, squirrel.Select(exerciseColumns...).
		From("exercises").
		Where(squirrel.Eq{"id": id.String()}))
	if err != nil {
		return model.Exercise{}, err
	}
	if len(items) == 0 {
		return model.Exercise{}, fmt.Errorf("exercise %s: %w", id, ErrNotFound)
	}
	return items[0], nil
}

func FetchExercises(db *sql.DB, date time.Time) ([]model.Exercise, error) {
	return queryExercises(db, squirrel.Select(exerciseColumns...).
		From("exercises").
		Where(squirrel.Eq{"date": dayKey(date)}).
		OrderBy("created_at DESC"))
}

// FetchExercisesRange covers from..to inclusive, newest day first.
func FetchExercisesRange(db *sql.DB, from, to time.Time) ([]model.Exercise, error) {
	return queryExercises(db, squirrel.Select(exerciseColumns...).
		From("exercises").
		Where(squirrel.GtOrEq{"date": dayKey(from)}).
		Where(squirrel.LtOrEq{"date": dayKey(to)}).
		OrderBy("date DESC", "created_at DESC"))
}

func FetchTodaysExercises(db *sql.DB, now time.Time) ([]model.Exercise, error) {
	return queryExercises(db, squirrel.Select(exerciseColumns...).
		From("exercises").
		Where(squirrel.Eq{"date": dayKey(now)}).
		OrderBy("created_at DESC").
		Limit(todaysExercisesLimit))
}

func TotalCaloriesBurned(db *sql.DB, date time.Time) (int, error) {
	var total int
	if err := db.QueryRow(`SELECT COALESCE(SUM(calories), 0) FROM exercises WHERE date = ?`, dayKey(date)).Scan(&total); err != nil {
		return 0, fmt.Errorf("total calories burned %s: %w", dayKey(date), err)
	}
	return total, nil
}

func ListExercises(db *sql.DB, f ListExerciseFilter) ([]model.Exercise, error) {
	if strings.TrimSpace(f.Date) != "" && (strings.TrimSpace(f.FromDate) != "" || strings.TrimSpace(f.ToDate) != "") {
		return nil, fmt.Errorf("--date cannot be combined with --from or --to")
	}
	q := squirrel.Select(exerciseColumns...).From("exercises")
	if strings.TrimSpace(f.Date) != "" {
		d, err := parseDayKey(f.Date, time.Local)
		if err != nil {
			return nil, err
		}
		q = q.Where(squirrel.Eq{"date": dayKey(d)})
	}
	if strings.TrimSpace(f.FromDate) != "" {
		d, err := parseDayKey(f.FromDate, time.Local)
		if err != nil {
			return nil, err
		}
		q = q.Where(squirrel.GtOrEq{"date": dayKey(d)})
	}
	if strings.TrimSpace(f.ToDate) != "" {
		d, err := parseDayKey(f.ToDate, time.Local)
		if err != nil {
			return nil, err
		}
		q = q.Where(squirrel.LtOrEq{"date": dayKey(d)})
	}
	if t := strings.ToLower(strings.TrimSpace(f.ExerciseType)); t != "" {
		q = q.Where(squirrel.Eq{"exercise_type": t})
	}
	if f.Limit <= 0 {
		f.Limit = 50
	}
	return queryExercises(db, q.OrderBy("date DESC", "created_at DESC").Limit(uint64(f.Limit)))
}

func queryExercises(q queryRunner, b squirrel.SelectBuilder) ([]model.Exercise, error) {
	rows, err := runSelect(q, b)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	items := make([]model.Exercise, 0)
	for rows.Next() {
		var item model.Exercise
		var id, typ, intensity, day, createdRaw string
		var distance, weight sql.NullFloat64
		var reps, sets sql.NullInt64
		if err := rows.Scan(&id, &typ, &item.Calories, &item.DurationMin, &intensity, &item.Notes, &day,
			&distance, &item.DistanceUnit, &reps, &sets, &weight, &item.Description, &createdRaw); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		if item.ID, err = uuid.Parse(id); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("parse exercise id %q: %w", id, err)
		}
		if item.Date, err = parseDayKey(day, time.Local); err != nil {
			_ = rows.Close()
			return nil, err
		}
		item.Type = model.ExerciseType(typ)
		item.Intensity = model.ExerciseIntensity(intensity)
		if distance.Valid {
			v := distance.Float64
			item.Distance = &v
		}
		if weight.Valid {
			v := weight.Float64
			item.Weight = &v
		}
		if reps.Valid {
			v := int(reps.Int64)
			item.Reps = &v
		}
		if sets.Valid {
			v := int(sets.Int64)
			item.Sets = &v
		}
		item.CreatedAt = parseCreatedAt(createdRaw)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate exercises: %w", err)
	}
	_ = rows.Close()

	for i := range items {
		sets, err := loadExerciseSets(q, items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].SetEntries = sets
	}
	return items, nil
}

func loadExerciseSets(q queryRunner, id uuid.UUID) ([]model.ExerciseSet, error) {
	rows, err := q.Query(`SELECT reps, weight FROM exercise_sets WHERE exercise_id = ? ORDER BY position ASC`, id.String())
	if err != nil {
		return nil, fmt.Errorf("list exercise sets: %w", err)
	}
	defer rows.Close()
	var out []model.ExerciseSet
	for rows.Next() {
		var s model.ExerciseSet
		if err := rows.Scan(&s.Reps, &s.Weight); err != nil {
			return nil, fmt.Errorf("scan exercise set: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exercise sets: %w", err)
	}
	return out, nil
}

func normalizeExerciseInput(in ExerciseInput) (model.Exercise, error) {
	ex := model.Exercise{
		ID:          uuid.New(),
		Type:        model.ExerciseType(strings.ToLower(strings.TrimSpace(in.Type))),
		Calories:    in.Calories,
		DurationMin: in.DurationMin,
		Notes:       strings.TrimSpace(in.Notes),
		Description: strings.TrimSpace(in.Description),
		Reps:        in.Reps,
		Sets:        in.Sets,
		Weight:      in.Weight,
		SetEntries:  in.SetEntries,
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}
	ex.Date = startOfDay(in.Date)

	if ex.DurationMin < 0 {
		return model.Exercise{}, fmt.Errorf("duration must be >= 0")
	}
	if err := ValidateCalories(max(ex.Calories, 0)); err != nil {
		return model.Exercise{}, err
	}

	if intensity := strings.ToLower(strings.TrimSpace(in.Intensity)); intensity != "" {
		switch model.ExerciseIntensity(intensity) {
		case model.IntensityLow, model.IntensityMedium, model.IntensityHigh:
			ex.Intensity = model.ExerciseIntensity(intensity)
		default:
			return model.Exercise{}, fmt.Errorf("invalid intensity %q (use low, medium or high)", in.Intensity)
		}
	}

	switch ex.Type {
	case model.ExerciseRun:
		if in.Distance == nil || *in.Distance <= 0 {
			return model.Exercise{}, fmt.Errorf("run distance must be > 0")
		}
		if ex.DurationMin <= 0 {
			return model.Exercise{}, fmt.Errorf("run duration must be > 0")
		}
		unit := normalizeUnit(in.DistanceUnit)
		if unit != "km" && unit != "mi" {
			return model.Exercise{}, fmt.Errorf("invalid distance unit %q (use km or mi)", in.DistanceUnit)
		}
		ex.Distance = in.Distance
		ex.DistanceUnit = unit
		if ex.Intensity == "" {
			ex.Intensity = model.IntensityMedium
		}
		if ex.Calories <= 0 {
			ex.Calories = EstimateRunCalories(*ex.Distance, ex.DistanceUnit, ex.DurationMin, ex.Intensity)
		}
	case model.ExerciseWeightLifting:
		sets, err := liftingSets(in)
		if err != nil {
			return model.Exercise{}, err
		}
		if ex.Calories <= 0 {
			ex.Calories = EstimateWeightLiftingCalories(sets)
		}
	case model.ExerciseDescribe:
		if ex.Description == "" {
			return model.Exercise{}, fmt.Errorf("describe exercises need a description")
		}
		if ex.DurationMin <= 0 {
			return model.Exercise{}, fmt.Errorf("duration must be > 0")
		}
		if ex.Calories <= 0 {
			ex.Calories = EstimateDescribedCalories(ex.DurationMin)
		}
	case model.ExerciseManual:
		if ex.Calories <= 0 {
			return model.Exercise{}, fmt.Errorf("calories burned must be > 0")
		}
	default:
		return model.Exercise{}, fmt.Errorf("unknown exercise type %q (use run, weight_lifting, describe or manual)", in.Type)
	}
	return ex, nil
}

const (
	maxLiftingSets = 100
	maxLiftingReps = 1000
)

// liftingSets returns the per-set entries, expanding the legacy
// reps/sets/weight shape when no entries were given.
func liftingSets(in ExerciseInput) ([]model.ExerciseSet, error) {
	if len(in.SetEntries) > 0 {
		if len(in.SetEntries) > maxLiftingSets {
			return nil, fmt.Errorf("at most %d sets are allowed", maxLiftingSets)
		}
		for i, s := range in.SetEntries {
			if s.Reps <= 0 || s.Reps > maxLiftingReps || s.Weight < 0 {
				return nil, fmt.Errorf("set %d needs reps between 1 and %d and weight >= 0", i+1, maxLiftingReps)
			}
		}
		return in.SetEntries, nil
	}
	if in.Reps == nil || in.Sets == nil || in.Weight == nil {
		return nil, fmt.Errorf("weight lifting needs set entries or reps, sets and weight")
	}
	if *in.Reps <= 0 || *in.Sets <= 0 || *in.Weight < 0 {
		return nil, fmt.Errorf("reps and sets must be > 0 and weight >= 0")
	}
	if *in.Sets > maxLiftingSets || *in.Reps > maxLiftingReps {
		return nil, fmt.Errorf("sets must be <= %d and reps <= %d", maxLiftingSets, maxLiftingReps)
	}
	out := make([]model.ExerciseSet, *in.Sets)
	for i := range out {
		out[i] = model.ExerciseSet{Reps: *in.Reps, Weight: *in.Weight}
	}
	return out, nil
}

func runCaloriesPerMinute(intensity model.ExerciseIntensity) float64 {
	switch intensity {
	case model.IntensityHigh:
		return 15
	case model.IntensityLow:
		return 5
	default:
		return 10
	}
}

// EstimateRunCalories scales a per-minute burn by 5% per kilometre.
func EstimateRunCalories(distance float64, unit string, durationMin int, intensity model.ExerciseIntensity) int {
	km := distance
	if normalizeUnit(unit) == "mi" {
		km = MilesToKm(distance)
	}
	factor := 1 + km*0.05
	return max(1, int(runCaloriesPerMinute(intensity)*float64(durationMin)*factor))
}

func EstimateWeightLiftingCalories(sets []model.ExerciseSet) int {
	total := 0
	for _, s := range sets {
		total += max(1, int(float64(s.Reps)*s.Weight*0.05))
	}
	return max(len(sets)*5, total)
}

func EstimateDescribedCalories(durationMin int) int {
	return max(1, 10*durationMin)
}

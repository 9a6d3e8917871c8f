package service

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/saadjs/caltrack/internal/model"
)

type WeightInput struct {
	Weight     float64
	Unit       string
	MeasuredAt time.Time
	Note       string
}

type WeightFilter struct {
	FromDate string
	ToDate   string
	Limit    int
}

var weightColumns = []string{"id", "measured_at", "weight_kg", "IFNULL(note, '')"}

// LogWeight records a weigh-in in kg. When it is the newest entry the
// profile's current weight follows it.
func LogWeight(store *SettingsStore, db *sql.DB, in WeightInput) (model.WeightEntry, error) {
	unit := strings.TrimSpace(in.Unit)
	if unit == "" {
		unit = "kg"
	}
	if err := ValidateWeight(in.Weight, unit); err != nil {
		return model.WeightEntry{}, err
	}
	kg, _, err := ToMetric(in.Weight, unit)
	if err != nil {
		return model.WeightEntry{}, err
	}
	if in.MeasuredAt.IsZero() {
		in.MeasuredAt = time.Now()
	}
	entry := model.WeightEntry{
		ID:         uuid.New(),
		MeasuredAt: in.MeasuredAt,
		WeightKg:   kg,
		Note:       strings.TrimSpace(in.Note),
	}
	if _, err := db.Exec(`
INSERT INTO weight_entries(id, measured_at, day, weight_kg, note)
VALUES(?, ?, ?, ?, ?)
`, entry.ID.String(), formatTimestamp(entry.MeasuredAt), dayKey(entry.MeasuredAt), entry.WeightKg, nullableString(entry.Note)); err != nil {
		return model.WeightEntry{}, fmt.Errorf("log weight: %w", err)
	}
	if err := syncCurrentWeight(store, db); err != nil {
		return model.WeightEntry{}, err
	}
	return entry, nil
}

// ListWeights returns entries newest first, 50 by default.
func ListWeights(db *sql.DB, f WeightFilter) ([]model.WeightEntry, error) {
	q := squirrel.Select(weightColumns...).From("weight_entries")
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
	if f.Limit <= 0 {
		f.Limit = 50
	}
	return queryWeights(db, q.OrderBy("measured_at DESC", "rowid DESC").Limit(uint64(f.Limit)))
}

// WeightHistory returns every entry, oldest first.
func WeightHistory(db *sql.DB) ([]model.WeightEntry, error) {
	return queryWeights(db, squirrel.Select(weightColumns...).
		From("weight_entries").
		OrderBy("measured_at ASC", "rowid ASC"))
}

func DeleteWeight(store *SettingsStore, db *sql.DB, id uuid.UUID) error {
	res, err := db.Exec(`DELETE FROM weight_entries WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete weight %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("weight %s: %w", id, ErrNotFound)
	}
	return syncCurrentWeight(store, db)
}

// syncCurrentWeight copies the newest entry into settings. With no entries
// left the stored profile weight is kept.
func syncCurrentWeight(store *SettingsStore, db *sql.DB) error {
	latest, err := queryWeights(db, squirrel.Select(weightColumns...).
		From("weight_entries").
		OrderBy("measured_at DESC", "rowid DESC").
		Limit(1))
	if err != nil {
		return err
	}
	if len(latest) == 0 {
		return nil
	}
	_, err = store.Update(func(u *model.UserSettings) error {
		u.CurrentWeightKg = latest[0].WeightKg
		u.LastWeightDate = startOfDay(latest[0].MeasuredAt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("update current weight: %w", err)
	}
	return nil
}

func queryWeights(q queryRunner, b squirrel.SelectBuilder) ([]model.WeightEntry, error) {
	rows, err := runSelect(q, b)
	if err != nil {
		return nil, fmt.Errorf("list weights: %w", err)
	}
	defer rows.Close()

	items := make([]model.WeightEntry, 0)
	for rows.Next() {
		var (
			w           model.WeightEntry
			idRaw       string
			measuredRaw string
		)
		if err := rows.Scan(&idRaw, &measuredRaw, &w.WeightKg, &w.Note); err != nil {
			return nil, fmt.Errorf("scan weight: %w", err)
		}
		if w.ID, err = uuid.Parse(idRaw); err != nil {
			return nil, fmt.Errorf("parse weight id %q: %w", idRaw, err)
		}
		if w.MeasuredAt, err = parseTimestamp(measuredRaw, time.Local); err != nil {
			return nil, err
		}
		items = append(items, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate weights: %w", err)
	}
	return items, nil
}

type WeightPoint struct {
	Date     time.Time `json:"date"`
	WeightKg float64   `json:"weight_kg"`
}

// WeightTrend keeps the last weigh-in of each day, oldest first. A lone
// point is paired with a flat companion so a trend line can be drawn: today
// for a past point, a week earlier for today's.
func WeightTrend(entries []model.WeightEntry, now time.Time) []WeightPoint {
	byDay := make(map[string]model.WeightEntry, len(entries))
	for _, e := range entries {
		key := dayKey(e.MeasuredAt)
		if cur, ok := byDay[key]; !ok || !e.MeasuredAt.Before(cur.MeasuredAt) {
			byDay[key] = e
		}
	}
	points := make([]WeightPoint, 0, len(byDay)+1)
	for _, e := range byDay {
		points = append(points, WeightPoint{Date: e.MeasuredAt, WeightKg: e.WeightKg})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	if len(points) == 1 {
		today := startOfDay(now)
		only := points[0]
		switch day := startOfDay(only.Date); {
		case day.Before(today):
			points = append(points, WeightPoint{Date: today, WeightKg: only.WeightKg})
		case day.Equal(today):
			points = append([]WeightPoint{{Date: today.AddDate(0, 0, -7), WeightKg: only.WeightKg}}, points...)
		}
	}
	return points
}

// WeightChange is the difference between the newest weigh-in and the one
// in effect Days ago. Days is 0 for the all-time change.
type WeightChange struct {
	Days      int     `json:"days"`
	ChangeKg  float64 `json:"change_kg"`
	HasChange bool    `json:"has_change"`
}

var weightChangeWindows = []int{3, 7, 14, 30, 0}

var errNoWeightBaseline = errors.New("no baseline")

// WeightChanges reports the 3, 7, 14 and 30 day and all-time changes.
// Changes under 0.01 kg count as none.
func WeightChanges(entries []model.WeightEntry, now time.Time) []WeightChange {
	newest := make([]model.WeightEntry, len(entries))
	copy(newest, entries)
	sort.SliceStable(newest, func(i, j int) bool { return newest[i].MeasuredAt.After(newest[j].MeasuredAt) })

	out := make([]WeightChange, 0, len(weightChangeWindows))
	for _, days := range weightChangeWindows {
		c := WeightChange{Days: days}
		if baseline, err := weightBaseline(newest, days, now); err == nil {
			c.ChangeKg = newest[0].WeightKg - baseline
			c.HasChange = math.Abs(c.ChangeKg) > 0.01
		}
		out = append(out, c)
	}
	return out
}

// weightBaseline picks the comparison weight from entries sorted newest
// first. A window prefers the newest entry from before today that is on or
// before the cutoff, then the oldest entry from before today, then the
// oldest entry overall.
func weightBaseline(newest []model.WeightEntry, days int, now time.Time) (float64, error) {
	if len(newest) == 0 {
		return 0, errNoWeightBaseline
	}
	oldest := newest[len(newest)-1]
	if days == 0 {
		return oldest.WeightKg, nil
	}
	today := startOfDay(now)
	cutoff := startOfDay(now.AddDate(0, 0, -days))
	var earlier []model.WeightEntry
	for _, e := range newest {
		if startOfDay(e.MeasuredAt).Before(today) {
			earlier = append(earlier, e)
		}
	}
	for _, e := range earlier {
		if !startOfDay(e.MeasuredAt).After(cutoff) {
			return e.WeightKg, nil
		}
	}
	if len(earlier) > 0 {
		return earlier[len(earlier)-1].WeightKg, nil
	}
	if len(newest) > 1 {
		return oldest.WeightKg, nil
	}
	return 0, errNoWeightBaseline
}

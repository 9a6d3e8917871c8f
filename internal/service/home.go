package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/saadjs/caltrack/internal/model"
	"golang.org/x/sync/errgroup"
)

const recentMealsLimit = 10

type ProgressBand string

const (
	BandNone   ProgressBand = "none"
	BandGreen  ProgressBand = "green"
	BandYellow ProgressBand = "yellow"
	BandRed    ProgressBand = "red"
)

// BandFor colours a day by how far it went over goal. Days without meals
// have no band and render dotted.
func BandFor(consumed, goal int, hasMeals bool) ProgressBand {
	if !hasMeals {
		return BandNone
	}
	switch over := max(0, consumed-goal); {
	case over <= 100:
		return BandGreen
	case over <= 200:
		return BandYellow
	default:
		return BandRed
	}
}

type WeekDay struct {
	Date      time.Time         `json:"date"`
	DayName   string            `json:"day_name"`
	DayNumber int               `json:"day_number"`
	IsToday   bool              `json:"is_today"`
	Summary   *model.DaySummary `json:"summary,omitempty"`
	Consumed  int               `json:"consumed"`
	Goal      int               `json:"goal"`
	Progress  float64           `json:"progress"`
	HasMeals  bool              `json:"has_meals"`
	Band      ProgressBand      `json:"band"`
}

func (d WeekDay) OverGoal() int {
	return max(0, d.Consumed-d.Goal)
}

// BuildWeekDays lays out Sunday through Saturday of the week containing
// now. Today is measured against the effective goal, other days against
// the base goal.
func BuildWeekDays(week WeekSummaries, baseGoal, todayGoal int, now time.Time) []WeekDay {
	start := WeekStart(now)
	today := dayKey(now)
	days := make([]WeekDay, 0, 7)
	for i := 0; i < 7; i++ {
		date := start.AddDate(0, 0, i)
		d := WeekDay{
			Date:      date,
			DayName:   date.Format("Mon"),
			DayNumber: date.Day(),
			IsToday:   dayKey(date) == today,
			Goal:      baseGoal,
		}
		if d.IsToday {
			d.Goal = todayGoal
		}
		if s, ok := week.Get(date); ok {
			d.Summary = &s
			d.Consumed = s.TotalCalories
			d.HasMeals = s.HasMeals()
		}
		if d.Goal > 0 {
			d.Progress = float64(d.Consumed) / float64(d.Goal)
		}
		d.Band = BandFor(d.Consumed, d.Goal, d.HasMeals)
		days = append(days, d)
	}
	return days
}

// HomeState is everything the home and widget surfaces show for one day.
type HomeState struct {
	Date        time.Time          `json:"date"`
	Settings    model.UserSettings `json:"-"`
	Today       model.DaySummary   `json:"today"`
	RecentMeals []model.Meal       `json:"recent_meals"`
	Week        []WeekDay          `json:"week"`
	Burned      int                `json:"burned"`
	Rollover    int                `json:"rollover"`
	Goal        EffectiveGoal      `json:"-"`
	GoalTotal   int                `json:"goal"`
	Remaining   int                `json:"remaining"`
	Progress    float64            `json:"progress"`
	Adjustments string             `json:"adjustments,omitempty"`
	Insights    []NutritionStatus  `json:"insights"`
}

// LoadHome runs one day-load cycle and records yesterday's rollover. Week
// summaries, recent meals and burned calories are read concurrently; a
// failed burned-calorie read counts as 0.
func LoadHome(ctx context.Context, db *sql.DB, store *SettingsStore, logger *slog.Logger, now time.Time) (HomeState, error) {
	return loadHome(ctx, db, store, logger, now, true)
}

// ViewHome is LoadHome without writes. Yesterday's rollover is computed but
// settings are left untouched.
func ViewHome(ctx context.Context, db *sql.DB, store *SettingsStore, logger *slog.Logger, now time.Time) (HomeState, error) {
	return loadHome(ctx, db, store, logger, now, false)
}

func loadHome(ctx context.Context, db *sql.DB, store *SettingsStore, logger *slog.Logger, now time.Time, persist bool) (HomeState, error) {
	if logger == nil {
		logger = slog.Default()
	}
	settings, err := store.Load()
	if err != nil {
		return HomeState{}, err
	}
	today, err := FetchTodaySummary(db, now)
	if err != nil {
		return HomeState{}, err
	}

	var (
		week   WeekSummaries
		recent []model.Meal
		burned int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		w, err := FetchCurrentWeekSummaries(db, now)
		if err != nil {
			return fmt.Errorf("load week: %w", err)
		}
		week = w
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		meals, err := FetchRecentMeals(db, now, recentMealsLimit)
		if err != nil {
			return fmt.Errorf("load recent meals: %w", err)
		}
		recent = meals
		return nil
	})
	g.Go(func() error {
		total, err := TotalCaloriesBurned(db, now)
		if err != nil {
			logger.Warn("burned calories unavailable, using 0", "error", err)
			return nil
		}
		burned = total
		return nil
	})
	if err := g.Wait(); err != nil {
		return HomeState{}, err
	}

	rollover := LoadRollover(settings, now)
	switch {
	case !persist:
		if amount, ok := PendingRollover(settings, week, now); ok {
			rollover = amount
		}
	default:
		if amount, ok, err := CalculateAndStoreRollover(store, week, now); err != nil {
			logger.Warn("rollover not stored", "error", err)
		} else if ok {
			rollover = amount
			if settings, err = store.Load(); err != nil {
				return HomeState{}, err
			}
		} else {
			logger.Debug("rollover skipped, no summary for yesterday")
		}
	}

	goal := NewEffectiveGoal(settings, burned, rollover)
	consumed := today.TotalCalories
	goals := settings.MacroGoals()
	goals.Calories = goal.Calories()

	return HomeState{
		Date:        startOfDay(now),
		Settings:    settings,
		Today:       today,
		RecentMeals: recent,
		Week:        BuildWeekDays(week, settings.CalorieGoal, goal.Calories(), now),
		Burned:      burned,
		Rollover:    rollover,
		Goal:        goal,
		GoalTotal:   goal.Calories(),
		Remaining:   goal.Remaining(consumed),
		Progress:    goal.Progress(consumed),
		Adjustments: goal.Adjustments(),
		Insights:    CalculateTodayStatus(today.Macros(), goals),
	}, nil
}

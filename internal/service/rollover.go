package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/saadjs/caltrack/internal/model"
)

const MaxRollover = 200

// RolloverAmount is yesterday's unused allowance clamped to [0, MaxRollover].
func RolloverAmount(goal, consumed int) int {
	return min(max(goal-consumed, 0), MaxRollover)
}

// LoadRollover returns the stored rollover only when it was recorded for
// the day before now. Older credits have expired.
func LoadRollover(s model.UserSettings, now time.Time) int {
	if s.RolloverLastDate.IsZero() {
		return 0
	}
	yesterday := startOfDay(now).AddDate(0, 0, -1)
	if dayKey(s.RolloverLastDate) != dayKey(yesterday) {
		return 0
	}
	return s.RolloverAmount
}

// PendingRollover computes yesterday's rollover from the week window
// without storing it. It reports false when yesterday is not in week.
func PendingRollover(s model.UserSettings, week WeekSummaries, now time.Time) (int, bool) {
	summary, ok := week.Get(startOfDay(now).AddDate(0, 0, -1))
	if !ok {
		return 0, false
	}
	return RolloverAmount(s.CalorieGoal, summary.TotalCalories), true
}

// CalculateAndStoreRollover computes yesterday's rollover from the week
// window and records it for the next day-load. It stores nothing and
// reports false when yesterday is not in week.
func CalculateAndStoreRollover(store *SettingsStore, week WeekSummaries, now time.Time) (int, bool, error) {
	yesterday := startOfDay(now).AddDate(0, 0, -1)
	summary, ok := week.Get(yesterday)
	if !ok {
		return 0, false, nil
	}
	current, err := store.Load()
	if err != nil {
		return 0, false, err
	}
	amount := RolloverAmount(current.CalorieGoal, summary.TotalCalories)
	_, err = store.Update(func(u *model.UserSettings) error {
		u.RolloverLastDate = yesterday
		u.RolloverAmount = amount
		return nil
	})
	if err != nil {
		return 0, false, fmt.Errorf("store rollover: %w", err)
	}
	return amount, true, nil
}

// EffectiveGoal is the base calorie goal plus the optional burned and
// rollover credits.
type EffectiveGoal struct {
	Base            int
	Burned          int
	Rollover        int
	BurnedEnabled   bool
	RolloverEnabled bool
}

func NewEffectiveGoal(s model.UserSettings, burned, rollover int) EffectiveGoal {
	return EffectiveGoal{
		Base:            s.CalorieGoal,
		Burned:          burned,
		Rollover:        rollover,
		BurnedEnabled:   s.AddBurnedCalories,
		RolloverEnabled: s.RolloverCalories,
	}
}

func (g EffectiveGoal) Calories() int {
	total := g.Base
	if g.BurnedEnabled {
		total += g.Burned
	}
	if g.RolloverEnabled {
		total += g.Rollover
	}
	return total
}

func (g EffectiveGoal) Remaining(consumed int) int {
	return max(0, g.Calories()-consumed)
}

// Progress is consumed over the effective goal. It is not clamped at 1.
func (g EffectiveGoal) Progress(consumed int) float64 {
	eff := g.Calories()
	if eff <= 0 {
		return 0
	}
	return float64(consumed) / float64(eff)
}

// Adjustments describes the active credits, e.g. "+320 burned, +150 rollover".
func (g EffectiveGoal) Adjustments() string {
	var parts []string
	if g.BurnedEnabled && g.Burned > 0 {
		parts = append(parts, fmt.Sprintf("+%d burned", g.Burned))
	}
	if g.RolloverEnabled && g.Rollover > 0 {
		parts = append(parts, fmt.Sprintf("+%d rollover", g.Rollover))
	}
	return strings.Join(parts, ", ")
}

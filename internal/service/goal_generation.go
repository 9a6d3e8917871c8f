package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/saadjs/caltrack/internal/auth"
	"github.com/saadjs/caltrack/internal/model"
	"github.com/saadjs/caltrack/internal/onboarding"
	"github.com/saadjs/caltrack/internal/provider/goalsapi"
)

const defaultBaseCalories = 2000

// GoalsAPI is the remote goal generator. *goalsapi.Client satisfies it.
type GoalsAPI interface {
	GenerateGoals(ctx context.Context, in goalsapi.Request) (goalsapi.Response, error)
}

type GoalGenerator struct {
	Remote      GoalsAPI
	Credentials auth.Credentials
	Logger      *slog.Logger
	// Timeout bounds the whole remote exchange. Zero leaves it to ctx.
	Timeout time.Duration
	Now     func() time.Time
}

func (g *GoalGenerator) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

func (g *GoalGenerator) logger() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}

// Generate never fails. Remote goals are used when credentials allow, scaled
// to an explicit calorie_goal answer; every other path ends in
// CalculateLocalGoals.
func (g *GoalGenerator) Generate(ctx context.Context, answers onboarding.Answers) model.GeneratedGoals {
	now := g.now()
	if g.Remote == nil || !g.Credentials.Available(now) {
		g.logger().Info("goal generation using local calculation", "reason", "no credentials")
		return CalculateLocalGoals(answers)
	}

	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}
	resp, err := g.Remote.GenerateGoals(ctx, ToAPIRequest(answers, now))
	if err != nil {
		g.logger().Warn("remote goal generation failed, using local calculation", "error", err)
		return CalculateLocalGoals(answers)
	}

	goals := model.GeneratedGoals{
		Calories:        resp.Calories,
		ProteinG:        resp.ProteinG,
		CarbsG:          resp.CarbsG,
		FatG:            resp.FatG,
		BMI:             resp.BMI,
		BMR:             resp.BMR,
		TDEE:            resp.TDEE,
		TimeToGoalWeeks: resp.TimeToGoalWeeks,
		Notes:           resp.Notes,
		Source:          model.GoalSourceRemote,
	}
	if target, ok := answers.Int(onboarding.KeyCalorieGoal); ok && target > 0 {
		g.logger().Debug("scaling remote macros to calorie goal", "api_calories", resp.Calories, "calorie_goal", target)
		goals.ProteinG, goals.CarbsG, goals.FatG = ScaleMacrosToCalories(target, resp.Calories, resp.ProteinG, resp.CarbsG, resp.FatG)
		goals.Calories = target
		goals.Source = model.GoalSourceRemoteScaled
	}
	return goals
}

// ScaleMacrosToCalories keeps the API's macro ratios at the target calorie
// level. A non-positive apiCalories falls back to the plain 30/40/30 split.
func ScaleMacrosToCalories(target, apiCalories int, protein, carbs, fat float64) (float64, float64, float64) {
	if apiCalories <= 0 {
		return MacroSplit(target, nil)
	}
	ratio := float64(target) / float64(apiCalories)
	return math.Round(protein * ratio), math.Round(carbs * ratio), math.Round(fat * ratio)
}

func CalculateLocalGoals(answers onboarding.Answers) model.GeneratedGoals {
	calories := BaseCalories(answers)
	protein, carbs, fat := MacroSplit(calories, answers)
	return model.GeneratedGoals{
		Calories: calories,
		ProteinG: protein,
		CarbsG:   carbs,
		FatG:     fat,
		Source:   model.GoalSourceLocal,
	}
}

var activityCalories = map[string]int{
	"sedentary":         1800,
	"lightly_active":    2000,
	"light":             2000,
	"moderately_active": 2200,
	"moderate":          2200,
	"very_active":       2500,
	"active":            2500,
	"extra_active":      2800,
	"athlete":           2800,
	"extremely_active":  2800,
}

type goalKind int

const (
	goalMaintain goalKind = iota
	goalLose
	goalGain
)

func parseGoalKind(value string) goalKind {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "lose_weight", "weight_loss", "lose":
		return goalLose
	case "gain_weight", "weight_gain", "gain", "build_muscle":
		return goalGain
	default:
		return goalMaintain
	}
}

func isHighActivity(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "very_active", "active", "extra_active", "athlete", "extremely_active":
		return true
	}
	return false
}

// BaseCalories honours an explicit calorie_goal answer and otherwise derives
// a target from activity level and goal type.
func BaseCalories(answers onboarding.Answers) int {
	if target, ok := answers.Int(onboarding.KeyCalorieGoal); ok && target > 0 {
		return target
	}
	base := defaultBaseCalories
	if level, ok := answers.Text(onboarding.KeyActivityLevel); ok {
		if v, ok := activityCalories[strings.ToLower(level)]; ok {
			base = v
		}
	}
	goal, _ := answers.Text(onboarding.KeyGoal)
	switch parseGoalKind(goal) {
	case goalLose:
		base = int(float64(base) * 0.8)
	case goalGain:
		base = int(float64(base) * 1.15)
	case goalMaintain:
	}
	return base
}

// MacroSplit turns calories into grams at 30% protein, 40% carbs and 30%
// fat. Protein is raised for gain or loss goals and again for high
// activity. A nil answer set gives the plain split.
func MacroSplit(calories int, answers onboarding.Answers) (protein, carbs, fat float64) {
	multiplier := 1.0
	goal, _ := answers.Text(onboarding.KeyGoal)
	switch parseGoalKind(goal) {
	case goalGain:
		multiplier = 1.2
	case goalLose:
		multiplier = 1.1
	case goalMaintain:
	}
	if level, ok := answers.Text(onboarding.KeyActivityLevel); ok && isHighActivity(level) {
		multiplier *= 1.1
	}
	c := float64(calories)
	protein = math.Round(c * 0.30 / 4 * multiplier)
	carbs = math.Round(c * 0.40 / 4)
	fat = math.Round(c * 0.30 / 9)
	return protein, carbs, fat
}

// ToAPIRequest converts the answers into the remote payload. Every
// measurement leaves here in cm or kg.
func ToAPIRequest(answers onboarding.Answers, now time.Time) goalsapi.Request {
	req := goalsapi.Request{
		GoalSpeed: goalsapi.ValueField[float64]{Value: 0.5},
		Coach:     goalsapi.ValueField[string]{Value: "no"},
	}
	if gender, ok := answers.Text(onboarding.KeyGender); ok {
		req.Gender = &goalsapi.ValueField[string]{Value: strings.ToLower(gender)}
	}

	hw := goalsapi.HeightWeight{}
	if cm, ok := answerHeightCm(answers); ok {
		hw.Height = cm
		hw.HeightUnit = "cm"
	}
	if kg, ok := answerKg(answers, onboarding.KeyWeight); ok {
		hw.Weight = kg
		hw.WeightUnit = "kg"
	}
	if hw.HeightUnit != "" || hw.WeightUnit != "" {
		req.HeightWeight = &hw
	}
	if kg, ok := answerKg(answers, onboarding.KeyDesiredWeight); ok {
		req.DesiredWeight = &goalsapi.ValueField[float64]{Value: kg}
	}
	if goal, ok := answers.Text(onboarding.KeyGoal); ok {
		req.Goal = &goalsapi.ValueField[string]{Value: goal}
	}
	if level, ok := answers.Text(onboarding.KeyActivityLevel); ok {
		req.ActivityLevel = &goalsapi.ValueField[string]{Value: level}
	}

	if age, ok := answers.Int(onboarding.KeyAge); ok && age > 0 {
		req.Birthdate = &goalsapi.Birthdate{Birthdate: now.AddDate(-age, 0, 0).UTC().Format(time.RFC3339)}
	} else if birth, ok := answers.Date(onboarding.KeyBirthdate); ok {
		req.Birthdate = &goalsapi.Birthdate{Birthdate: birth.UTC().Format(time.RFC3339)}
	}
	return req
}

func answerHeightCm(answers onboarding.Answers) (float64, bool) {
	if m, ok := answers.Measurement(onboarding.KeyHeight); ok {
		if m.Value <= 0 {
			return 0, false
		}
		unit := m.Unit
		if unit == "" {
			unit = "cm"
		}
		cm, base, err := ToMetric(m.Value, unit)
		if err != nil || base != "cm" {
			return 0, false
		}
		return cm, true
	}
	if cm, ok := answers.Number(onboarding.KeyHeight); ok && cm > 0 {
		return cm, true
	}
	feet, okFeet := answers.Number(onboarding.KeyHeightFeet)
	inches, _ := answers.Number(onboarding.KeyHeightInches)
	if okFeet && feet > 0 {
		return FeetInchesToCm(feet, inches), true
	}
	return 0, false
}

func answerKg(answers onboarding.Answers, key string) (float64, bool) {
	m, ok := answers.Measurement(key)
	if !ok {
		n, ok := answers.Number(key)
		return n, ok && n > 0
	}
	if m.Value <= 0 {
		return 0, false
	}
	unit := m.Unit
	if unit == "" {
		unit = "kg"
	}
	kg, base, err := ToMetric(m.Value, unit)
	if err != nil || base != "kg" {
		return 0, false
	}
	return kg, true
}

// SaveGoals is the only path from GeneratedGoals to storage. It copies the
// goals into settings and records them in goal history for today.
func SaveGoals(store *SettingsStore, db *sql.DB, goals model.GeneratedGoals, now time.Time) (model.UserSettings, error) {
	source := goals.Source
	if source == "" {
		source = model.GoalSourceManual
	}
	if err := SetGoal(db, SetGoalInput{
		Calories:      goals.Calories,
		ProteinG:      goals.ProteinG,
		CarbsG:        goals.CarbsG,
		FatG:          goals.FatG,
		Source:        source,
		EffectiveDate: dayKey(now),
	}); err != nil {
		return model.UserSettings{}, fmt.Errorf("save goals: %w", err)
	}
	return store.Update(func(u *model.UserSettings) error {
		u.CalorieGoal = goals.Calories
		u.ProteinGoal = goals.ProteinG
		u.CarbsGoal = goals.CarbsG
		u.FatGoal = goals.FatG
		return nil
	})
}

package onboarding

import (
	"time"

	"github.com/saadjs/caltrack/internal/model"
)

// FromSettings rebuilds an answer set from the stored profile so goals can
// be regenerated. The goal type is inferred from current versus target
// weight. The stored calorie goal is carried only once onboarding is done.
func FromSettings(s model.UserSettings) Answers {
	a := Answers{
		KeyActivityLevel: Text("moderately_active"),
		KeyGoal:          Text(inferGoal(s.CurrentWeightKg, s.TargetWeightKg)),
	}
	if s.Gender != "" {
		a[KeyGender] = Text(s.Gender)
	}
	if s.Age > 0 {
		a[KeyAge] = Number(s.Age)
	}
	if !s.Birthdate.IsZero() {
		a[KeyBirthdate] = Date(s.Birthdate)
	}
	if s.HeightCm > 0 {
		a[KeyHeight] = Measurement{Value: s.HeightCm, Unit: "cm"}
	}
	if s.CurrentWeightKg > 0 {
		a[KeyWeight] = Measurement{Value: s.CurrentWeightKg, Unit: "kg"}
	}
	if s.TargetWeightKg > 0 {
		a[KeyDesiredWeight] = Measurement{Value: s.TargetWeightKg, Unit: "kg"}
	}
	// A fresh profile only carries the default goal, which must not pin
	// the calculation.
	if s.HasCompletedOnboarding && s.CalorieGoal > 0 {
		a[KeyCalorieGoal] = Number(s.CalorieGoal)
	}
	return a
}

func inferGoal(current, target float64) string {
	switch {
	case target <= 0 || current <= 0:
		return "maintain"
	case target < current:
		return "lose_weight"
	case target > current:
		return "gain_weight"
	default:
		return "maintain"
	}
}

// AgeOn returns the age in whole years at now, preferring an explicit age
// answer over a birthdate.
func (a Answers) AgeOn(now time.Time) (int, bool) {
	if age, ok := a.Int(KeyAge); ok && age > 0 {
		return age, true
	}
	birth, ok := a.Date(KeyBirthdate)
	if !ok {
		return 0, false
	}
	return YearsBetween(birth, now), true
}

func YearsBetween(from, to time.Time) int {
	years := to.Year() - from.Year()
	if to.Month() < from.Month() || (to.Month() == from.Month() && to.Day() < from.Day()) {
		years--
	}
	return years
}

package service

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidationError reports a user-entered value outside its accepted range.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Msg)
}

func rangeError(field string, min, max float64, unit string) *ValidationError {
	if unit != "" {
		unit = " " + unit
	}
	return &ValidationError{Field: field, Msg: fmt.Sprintf("must be between %g and %g%s", min, max, unit)}
}

type MacroKind string

const (
	MacroProtein MacroKind = "protein"
	MacroCarbs   MacroKind = "carbs"
	MacroFat     MacroKind = "fat"
)

var macroLimits = map[MacroKind]float64{
	MacroProtein: 500,
	MacroCarbs:   1000,
	MacroFat:     300,
}

func ValidateCalories(value int) error {
	if value < 0 || value > 10000 {
		return rangeError("calories", 0, 10000, "")
	}
	return nil
}

func ValidateMacro(kind MacroKind, grams float64) error {
	limit, ok := macroLimits[kind]
	if !ok {
		return &ValidationError{Field: string(kind), Msg: "is not a macronutrient"}
	}
	if grams < 0 || grams > limit {
		return rangeError(string(kind), 0, limit, "g")
	}
	return nil
}

func ValidateWeight(value float64, unit string) error {
	switch normalizeUnit(unit) {
	case "kg":
		if value < 20 || value > 300 {
			return rangeError("weight", 20, 300, "kg")
		}
	case "lb":
		if value < 44 || value > 660 {
			return rangeError("weight", 44, 660, "lbs")
		}
	default:
		return &ValidationError{Field: "weight", Msg: fmt.Sprintf("has unsupported unit %q (use kg or lbs)", unit)}
	}
	return nil
}

func ValidateHeight(value float64, unit string) error {
	switch normalizeUnit(unit) {
	case "cm":
		if value < 50 || value > 250 {
			return rangeError("height", 50, 250, "cm")
		}
	case "in":
		if value < 20 || value > 100 {
			return rangeError("height", 20, 100, "in")
		}
	default:
		return &ValidationError{Field: "height", Msg: fmt.Sprintf("has unsupported unit %q (use cm or in)", unit)}
	}
	return nil
}

func ValidateAge(age int) error {
	if age < 13 || age > 120 {
		return rangeError("age", 13, 120, "years")
	}
	return nil
}

// ValidateText checks the trimmed length of value in runes.
func ValidateText(field, value string, min, max int) error {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	if n < min {
		if min == 1 {
			return &ValidationError{Field: field, Msg: "is required"}
		}
		return &ValidationError{Field: field, Msg: fmt.Sprintf("must be at least %d characters", min)}
	}
	if n > max {
		return &ValidationError{Field: field, Msg: fmt.Sprintf("must be at most %d characters", max)}
	}
	return nil
}

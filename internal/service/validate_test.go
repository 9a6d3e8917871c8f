package service_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/saadjs/caltrack/internal/service"
)

func TestValidators(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{"calories zero", service.ValidateCalories(0), false},
		{"calories max", service.ValidateCalories(10000), false},
		{"calories over", service.ValidateCalories(10001), true},
		{"calories negative", service.ValidateCalories(-1), true},
		{"protein max", service.ValidateMacro(service.MacroProtein, 500), false},
		{"carbs over", service.ValidateMacro(service.MacroCarbs, 1000.5), true},
		{"fat over", service.ValidateMacro(service.MacroFat, 301), true},
		{"unknown macro", service.ValidateMacro("fiber", 10), true},
		{"weight kg", service.ValidateWeight(70, "kg"), false},
		{"weight kg low", service.ValidateWeight(19.9, "kg"), true},
		{"weight lbs", service.ValidateWeight(150, "lbs"), false},
		{"weight lbs high", service.ValidateWeight(661, "lbs"), true},
		{"weight stone", service.ValidateWeight(11, "st"), true},
		{"height cm", service.ValidateHeight(175, "cm"), false},
		{"height in", service.ValidateHeight(70, "inches"), false},
		{"height in low", service.ValidateHeight(19, "in"), true},
		{"age", service.ValidateAge(30), false},
		{"age young", service.ValidateAge(12), true},
		{"age old", service.ValidateAge(121), true},
		{"text ok", service.ValidateText("name", " Oats ", 1, 100), false},
		{"text empty", service.ValidateText("name", "   ", 1, 100), true},
		{"text long", service.ValidateText("notes", strings.Repeat("é", 11), 0, 10), true},
	}
	for _, tc := range cases {
		if (tc.err != nil) != tc.wantErr {
			t.Fatalf("%s: wantErr=%v, got %v", tc.name, tc.wantErr, tc.err)
		}
	}
}

func TestValidationErrorMessage(t *testing.T) {
	t.Parallel()
	err := service.ValidateWeight(500, "kg")
	var verr *service.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if verr.Field != "weight" || err.Error() != "weight must be between 20 and 300 kg" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if got := service.ValidateText("name", "", 1, 10).Error(); got != "name is required" {
		t.Fatalf("unexpected required message %q", got)
	}
}

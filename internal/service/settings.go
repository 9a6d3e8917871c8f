package service

import (
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/saadjs/caltrack/internal/model"
)

// settingField maps one UserSettings field onto an app_config key. Range
// checks only run with strict set, so stored values always load.
type settingField struct {
	get func(s model.UserSettings) string
	set func(s *model.UserSettings, value string, strict bool) error
}

func intField(ptr func(s *model.UserSettings) *int, validate func(int) error) settingField {
	return settingField{
		get: func(s model.UserSettings) string { return strconv.Itoa(*ptr(&s)) },
		set: func(s *model.UserSettings, value string, strict bool) error {
			v, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return fmt.Errorf("invalid integer %q", value)
			}
			if strict && validate != nil {
				if err := validate(v); err != nil {
					return err
				}
			}
			*ptr(s) = v
			return nil
		},
	}
}

func floatField(ptr func(s *model.UserSettings) *float64, validate func(float64) error) settingField {
	return settingField{
		get: func(s model.UserSettings) string { return strconv.FormatFloat(*ptr(&s), 'f', -1, 64) },
		set: func(s *model.UserSettings, value string, strict bool) error {
			v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil {
				return fmt.Errorf("invalid number %q", value)
			}
			if strict && validate != nil {
				if err := validate(v); err != nil {
					return err
				}
			}
			*ptr(s) = v
			return nil
		},
	}
}

func boolField(ptr func(s *model.UserSettings) *bool) settingField {
	return settingField{
		get: func(s model.UserSettings) string { return strconv.FormatBool(*ptr(&s)) },
		set: func(s *model.UserSettings, value string, strict bool) error {
			v, err := strconv.ParseBool(strings.TrimSpace(value))
			if err != nil {
				return fmt.Errorf("invalid boolean %q", value)
			}
			*ptr(s) = v
			return nil
		},
	}
}

// dateField stores a local day key; the empty string is the zero time.
func dateField(ptr func(s *model.UserSettings) *time.Time) settingField {
	return settingField{
		get: func(s model.UserSettings) string {
			t := *ptr(&s)
			if t.IsZero() {
				return ""
			}
			return dayKey(t)
		},
		set: func(s *model.UserSettings, value string, strict bool) error {
			if strings.TrimSpace(value) == "" {
				*ptr(s) = time.Time{}
				return nil
			}
			t, err := parseDayKey(value, time.Local)
			if err != nil {
				return err
			}
			*ptr(s) = t
			return nil
		},
	}
}

func macroValidator(kind MacroKind) func(float64) error {
	return func(v float64) error { return ValidateMacro(kind, v) }
}

func weightValidator(v float64) error { return ValidateWeight(v, "kg") }

var settingFields = map[string]settingField{
	"has_completed_onboarding": boolField(func(s *model.UserSettings) *bool { return &s.HasCompletedOnboarding }),
	"calorie_goal":             intField(func(s *model.UserSettings) *int { return &s.CalorieGoal }, ValidateCalories),
	"protein_goal":             floatField(func(s *model.UserSettings) *float64 { return &s.ProteinGoal }, macroValidator(MacroProtein)),
	"carbs_goal":               floatField(func(s *model.UserSettings) *float64 { return &s.CarbsGoal }, macroValidator(MacroCarbs)),
	"fat_goal":                 floatField(func(s *model.UserSettings) *float64 { return &s.FatGoal }, macroValidator(MacroFat)),
	"use_metric_units":         boolField(func(s *model.UserSettings) *bool { return &s.UseMetricUnits }),
	"current_weight_kg":        floatField(func(s *model.UserSettings) *float64 { return &s.CurrentWeightKg }, weightValidator),
	"target_weight_kg":         floatField(func(s *model.UserSettings) *float64 { return &s.TargetWeightKg }, weightValidator),
	"height_cm": floatField(func(s *model.UserSettings) *float64 { return &s.HeightCm }, func(v float64) error {
		return ValidateHeight(v, "cm")
	}),
	"last_weight_date": dateField(func(s *model.UserSettings) *time.Time { return &s.LastWeightDate }),
	"gender": {
		get: func(s model.UserSettings) string { return s.Gender },
		set: func(s *model.UserSettings, value string, strict bool) error {
			s.Gender = strings.ToLower(strings.TrimSpace(value))
			return nil
		},
	},
	"age": intField(func(s *model.UserSettings) *int { return &s.Age }, func(v int) error {
		if v == 0 {
			return nil
		}
		return ValidateAge(v)
	}),
	"birthdate":           dateField(func(s *model.UserSettings) *time.Time { return &s.Birthdate }),
	"add_burned_calories": boolField(func(s *model.UserSettings) *bool { return &s.AddBurnedCalories }),
	"rollover_calories":   boolField(func(s *model.UserSettings) *bool { return &s.RolloverCalories }),
	"rollover_last_date":  dateField(func(s *model.UserSettings) *time.Time { return &s.RolloverLastDate }),
	"rollover_amount": intField(func(s *model.UserSettings) *int { return &s.RolloverAmount }, func(v int) error {
		if v < 0 || v > MaxRollover {
			return fmt.Errorf("rollover amount must be between 0 and %d", MaxRollover)
		}
		return nil
	}),
}

// SettingKeys lists every persisted settings key in sorted order.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingFields))
	for k := range settingFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SettingsStore owns UserSettings persistence and change notification.
// Callers construct one per database and share it.
type SettingsStore struct {
	db *sql.DB

	mu     sync.Mutex
	nextID int
	subs   map[int]func(model.UserSettings)
}

func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db, subs: map[int]func(model.UserSettings){}}
}

// Load returns persisted values layered over DefaultUserSettings.
func (s *SettingsStore) Load() (model.UserSettings, error) {
	raw, err := ListConfig(s.db)
	if err != nil {
		return model.UserSettings{}, fmt.Errorf("load settings: %w", err)
	}
	out := model.DefaultUserSettings()
	for key, field := range settingFields {
		value, ok := raw[key]
		if !ok {
			continue
		}
		if err := field.set(&out, value, false); err != nil {
			return model.UserSettings{}, fmt.Errorf("load setting %s: %w", key, err)
		}
	}
	return out, nil
}

// Update applies fn to the current settings, persists every key in one
// transaction and then notifies subscribers with the new value.
func (s *SettingsStore) Update(fn func(*model.UserSettings) error) (model.UserSettings, error) {
	s.mu.Lock()
	current, err := s.Load()
	if err != nil {
		s.mu.Unlock()
		return model.UserSettings{}, err
	}
	if err := fn(&current); err != nil {
		s.mu.Unlock()
		return model.UserSettings{}, err
	}
	err = withTx(s.db, "save settings", func(tx *sql.Tx) error {
		for key, field := range settingFields {
			if err := setConfig(tx, key, field.get(current)); err != nil {
				return err
			}
		}
		return nil
	})
	subs := make([]func(model.UserSettings), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	if err != nil {
		return model.UserSettings{}, err
	}

	for _, notify := range subs {
		notify(current)
	}
	return current, nil
}

// Subscribe registers fn for every successful Update. The returned func
// removes it.
func (s *SettingsStore) Subscribe(fn func(model.UserSettings)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Set parses value for a single settings key and saves it.
func (s *SettingsStore) Set(key, value string) (model.UserSettings, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	field, ok := settingFields[key]
	if !ok {
		return model.UserSettings{}, fmt.Errorf("unknown setting %q", key)
	}
	return s.Update(func(u *model.UserSettings) error {
		if err := field.set(u, value, true); err != nil {
			return fmt.Errorf("setting %s: %w", key, err)
		}
		return nil
	})
}

// Get renders the current value of one key.
func (s *SettingsStore) Get(key string) (string, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	field, ok := settingFields[key]
	if !ok {
		return "", fmt.Errorf("unknown setting %q", key)
	}
	current, err := s.Load()
	if err != nil {
		return "", err
	}
	return field.get(current), nil
}

func (s *SettingsStore) CompleteOnboarding() (model.UserSettings, error) {
	return s.Update(func(u *model.UserSettings) error {
		u.HasCompletedOnboarding = true
		return nil
	})
}

// ResetGoals puts the calorie and macro goals back to their defaults and
// leaves the profile alone.
func (s *SettingsStore) ResetGoals() (model.UserSettings, error) {
	def := model.DefaultUserSettings()
	return s.Update(func(u *model.UserSettings) error {
		u.CalorieGoal = def.CalorieGoal
		u.ProteinGoal = def.ProteinGoal
		u.CarbsGoal = def.CarbsGoal
		u.FatGoal = def.FatGoal
		return nil
	})
}

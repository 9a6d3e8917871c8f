package caltrack

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/saadjs/caltrack/internal/app"
	"github.com/saadjs/caltrack/internal/auth"
	"github.com/saadjs/caltrack/internal/db"
	"github.com/saadjs/caltrack/internal/provider/goalsapi"
	"github.com/saadjs/caltrack/internal/provider/workoutapi"
	"github.com/saadjs/caltrack/internal/service"
)

func withDB(run func(*sql.DB) error) error {
	path, err := resolveDBPath()
	if err != nil {
		return err
	}
	if err := app.EnsureDBDir(path); err != nil {
		return err
	}
	sqldb, err := db.Open(path)
	if err != nil {
		return err
	}
	defer sqldb.Close()

	if err := db.ApplyMigrations(sqldb); err != nil {
		return err
	}
	return run(sqldb)
}

// withStore is withDB plus the settings store over the same handle.
func withStore(run func(*sql.DB, *service.SettingsStore) error) error {
	return withDB(func(sqldb *sql.DB) error {
		return run(sqldb, service.NewSettingsStore(sqldb))
	})
}

func parseUUIDArg(name, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s %q", name, value)
	}
	return id, nil
}

func parseDateOrToday(date string) (time.Time, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return time.Now(), nil
	}
	t, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", date)
	}
	return t, nil
}

func parseDateTimeOrNow(date, timeStr string) (time.Time, error) {
	date = strings.TrimSpace(date)
	timeStr = strings.TrimSpace(timeStr)
	if date == "" && timeStr == "" {
		return time.Now(), nil
	}
	if date == "" {
		return time.Time{}, fmt.Errorf("--date is required when --time is set")
	}
	if timeStr == "" {
		t, err := time.ParseInLocation("2006-01-02", date, time.Local)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", date)
		}
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+timeStr, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date/--time (expected YYYY-MM-DD and HH:MM)")
	}
	return t, nil
}

// parseItemSpec reads "name:calories[:protein:carbs:fat[:portion unit]]".
func parseItemSpec(spec string) (service.MealItemInput, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 2 {
		return service.MealItemInput{}, fmt.Errorf("invalid --item %q (expected name:calories[:protein:carbs:fat[:portion unit]])", spec)
	}
	item := service.MealItemInput{Name: strings.TrimSpace(parts[0])}
	cal, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return service.MealItemInput{}, fmt.Errorf("invalid calories in --item %q", spec)
	}
	item.Calories = cal
	macros := []*float64{&item.ProteinG, &item.CarbsG, &item.FatG}
	for i, dst := range macros {
		idx := i + 2
		if idx >= len(parts) || strings.TrimSpace(parts[idx]) == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[idx]), 64)
		if err != nil {
			return service.MealItemInput{}, fmt.Errorf("invalid macro value %q in --item %q", parts[idx], spec)
		}
		*dst = v
	}
	if len(parts) > 5 {
		fields := strings.Fields(parts[5])
		if len(fields) > 0 {
			portion, err := strconv.ParseFloat(fields[0], 64)
			if err != nil {
				return service.MealItemInput{}, fmt.Errorf("invalid portion in --item %q", spec)
			}
			item.Portion = portion
		}
		if len(fields) > 1 {
			item.Unit = fields[1]
		}
	}
	return item, nil
}

func parseItemSpecs(specs []string) ([]service.MealItemInput, error) {
	items := make([]service.MealItemInput, 0, len(specs))
	for _, spec := range specs {
		item, err := parseItemSpec(spec)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func credentials() auth.Credentials {
	if cfg == nil {
		return auth.Credentials{}
	}
	return auth.Credentials{UserID: cfg.Auth.UserID, Token: cfg.Auth.Token}
}

// apiHTTPClient bounds each HTTP round trip by the request timeout.
func apiHTTPClient() *http.Client {
	timeout := 30 * time.Second
	if cfg != nil && cfg.API.RequestTimeout > 0 {
		timeout = cfg.API.RequestTimeout
	}
	return &http.Client{Timeout: timeout}
}

// resourceTimeout bounds a whole remote exchange.
func resourceTimeout() time.Duration {
	if cfg == nil {
		return 0
	}
	return cfg.API.ResourceTimeout
}

func apiBaseURL() string {
	if cfg == nil {
		return ""
	}
	return cfg.API.BaseURL
}

func goalsClient() *goalsapi.Client {
	creds := credentials()
	return &goalsapi.Client{BaseURL: apiBaseURL(), UserID: creds.UserID, Token: creds.Token, HTTPClient: apiHTTPClient()}
}

func workoutClient() *workoutapi.Client {
	creds := credentials()
	return &workoutapi.Client{BaseURL: apiBaseURL(), UserID: creds.UserID, Token: creds.Token, HTTPClient: apiHTTPClient()}
}

package service_test

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/saadjs/caltrack/internal/db"
	"github.com/saadjs/caltrack/internal/model"
	"github.com/saadjs/caltrack/internal/service"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "caltrack.db")
	sqldb, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return sqldb
}

// fixedNow is a Wednesday, so its week spans 2026-03-08 .. 2026-03-14.
func fixedNow() time.Time {
	return time.Date(2026, 3, 11, 14, 30, 0, 0, time.Local)
}

func saveTestMeal(t *testing.T, sqldb *sql.DB, name string, at time.Time, calories int) model.Meal {
	t.Helper()
	meal, err := service.SaveMeal(sqldb, service.MealInput{
		Name:      name,
		Timestamp: at,
		Items: []service.MealItemInput{
			{Name: name + " item", Calories: calories, ProteinG: float64(calories) / 20, CarbsG: float64(calories) / 10, FatG: float64(calories) / 40},
		},
	})
	if err != nil {
		t.Fatalf("save meal %s: %v", name, err)
	}
	return meal
}

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

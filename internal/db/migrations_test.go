package db_test

import (
	"path/filepath"
	"testing"

	"github.com/saadjs/caltrack/internal/db"
)

func TestApplyMigrationsIdempotentAndSeedsCategories(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "caltrack.db")
	sqldb, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer sqldb.Close()

	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("first apply migrations: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("second apply migrations: %v", err)
	}

	var migrationCount int
	if err := sqldb.QueryRow(`SELECT COUNT(1) FROM schema_migrations`).Scan(&migrationCount); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if migrationCount != 4 {
		t.Fatalf("expected 4 migration versions, got %d", migrationCount)
	}

	for _, table := range []string{"meals", "meal_items", "day_summaries", "exercises", "exercise_sets", "app_config", "goals", "weight_entries"} {
		var n int
		if err := sqldb.QueryRow(`SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n); err != nil {
			t.Fatalf("check table %s: %v", table, err)
		}
		if n != 1 {
			t.Fatalf("expected %s table to exist", table)
		}
	}

	var categoryCount int
	if err := sqldb.QueryRow(`SELECT COUNT(1) FROM meal_categories`).Scan(&categoryCount); err != nil {
		t.Fatalf("count categories: %v", err)
	}
	if categoryCount != 4 {
		t.Fatalf("expected 4 seeded meal categories, got %d", categoryCount)
	}

	var columns int
	if err := sqldb.QueryRow(`SELECT COUNT(1) FROM pragma_table_info('meal_categories')`).Scan(&columns); err != nil {
		t.Fatalf("inspect meal_categories: %v", err)
	}
	if columns != 1 {
		t.Fatalf("expected meal_categories to hold only the name, got %d columns", columns)
	}
	if _, err := sqldb.Exec(`INSERT INTO meals(id, name, timestamp, day, category) VALUES('m1', 'Tea', '2026-01-05T08:00:00Z', '2026-01-05', 'brunch')`); err == nil {
		t.Fatalf("expected unknown category to be rejected")
	}
}

func TestMealItemsCascadeWithMeal(t *testing.T) {
	t.Parallel()

	sqldb, err := db.Open(filepath.Join(t.TempDir(), "caltrack.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer sqldb.Close()
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	if _, err := sqldb.Exec(`INSERT INTO meals(id, name, timestamp, day, category) VALUES('m1', 'Oats', '2026-01-05T08:00:00Z', '2026-01-05', 'breakfast')`); err != nil {
		t.Fatalf("insert meal: %v", err)
	}
	if _, err := sqldb.Exec(`INSERT INTO meal_items(id, meal_id, name, calories, protein_g, carbs_g, fat_g) VALUES('i1', 'm1', 'Oats', 300, 10, 50, 5)`); err != nil {
		t.Fatalf("insert item: %v", err)
	}
	if _, err := sqldb.Exec(`DELETE FROM meals WHERE id = 'm1'`); err != nil {
		t.Fatalf("delete meal: %v", err)
	}
	var items int
	if err := sqldb.QueryRow(`SELECT COUNT(1) FROM meal_items`).Scan(&items); err != nil {
		t.Fatalf("count items: %v", err)
	}
	if items != 0 {
		t.Fatalf("expected items to cascade, got %d", items)
	}
}

package service_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/saadjs/caltrack/internal/db"
	"github.com/saadjs/caltrack/internal/service"
)

func TestRunDoctorDetectsAndFixesDrift(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	defer sqldb.Close()

	now := fixedNow()
	saveTestMeal(t, sqldb, "Lunch", now, 600)
	saveTestMeal(t, sqldb, "Dinner", now.AddDate(0, 0, -1), 700)

	report, err := service.RunDoctor(sqldb, false)
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if !report.Healthy() {
		t.Fatalf("expected healthy db, got %+v", report)
	}

	if _, err := sqldb.Exec(`UPDATE day_summaries SET total_calories = 1, meal_count = 4 WHERE date = ?`, "2026-03-11"); err != nil {
		t.Fatalf("corrupt summary: %v", err)
	}
	if _, err := sqldb.Exec(`DELETE FROM day_summaries WHERE date = ?`, "2026-03-10"); err != nil {
		t.Fatalf("drop summary: %v", err)
	}

	report, err = service.RunDoctor(sqldb, false)
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if report.Healthy() || len(report.Drift) != 2 || report.MissingSummaries != 1 {
		t.Fatalf("expected two drifted days with one missing, got %+v", report)
	}
	if report.Drift[1].StoredCalories != 1 || report.Drift[1].ActualCalories != 600 {
		t.Fatalf("unexpected drift entry %+v", report.Drift[1])
	}

	report, err = service.RunDoctor(sqldb, true)
	if err != nil {
		t.Fatalf("doctor fix: %v", err)
	}
	if report.RebuiltSummaries != 2 {
		t.Fatalf("expected two rebuilt summaries, got %+v", report)
	}

	report, err = service.RunDoctor(sqldb, false)
	if err != nil {
		t.Fatalf("doctor after fix: %v", err)
	}
	if !report.Healthy() {
		t.Fatalf("expected healthy db after fix, got %+v", report)
	}
	s, err := service.FetchDaySummary(sqldb, now)
	if err != nil || s == nil {
		t.Fatalf("fetch summary: %v", err)
	}
	if s.TotalCalories != 600 || s.MealCount != 1 {
		t.Fatalf("unexpected rebuilt summary %+v", s)
	}
}

func TestBackupCreateAndRestore(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	defer sqldb.Close()

	saveTestMeal(t, sqldb, "Oats", fixedNow(), 350)

	dir := t.TempDir()
	backupPath := filepath.Join(dir, "backups", "caltrack-1.db")
	info, err := service.CreateBackup(sqldb, backupPath)
	if err != nil {
		t.Fatalf("create backup: %v", err)
	}
	if info.Checksum == "" || info.SizeBytes == 0 {
		t.Fatalf("unexpected backup info %+v", info)
	}
	if _, err := service.CreateBackup(sqldb, backupPath); err == nil {
		t.Fatalf("expected error when backup already exists")
	}

	list, err := service.ListBackups(filepath.Dir(backupPath))
	if err != nil {
		t.Fatalf("list backups: %v", err)
	}
	if len(list) != 1 || list[0].Checksum != info.Checksum || !list[0].Verified {
		t.Fatalf("unexpected backup list %+v", list)
	}

	target := filepath.Join(dir, "restored.db")
	if err := service.RestoreBackup(backupPath, target, false); err != nil {
		t.Fatalf("restore backup: %v", err)
	}
	if err := service.RestoreBackup(backupPath, target, false); err == nil {
		t.Fatalf("expected error restoring over an existing db without force")
	}

	restored, err := db.Open(target)
	if err != nil {
		t.Fatalf("open restored db: %v", err)
	}
	defer restored.Close()
	meals, err := service.FetchMeals(restored, fixedNow())
	if err != nil {
		t.Fatalf("fetch restored meals: %v", err)
	}
	if len(meals) != 1 || meals[0].Name != "Oats" || meals[0].TotalCalories() != 350 {
		t.Fatalf("unexpected restored meals %+v", meals)
	}
}

func TestRestoreBackupRejectsChecksumMismatch(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	defer sqldb.Close()

	dir := t.TempDir()
	backupPath := filepath.Join(dir, "caltrack.db")
	if _, err := service.CreateBackup(sqldb, backupPath); err != nil {
		t.Fatalf("create backup: %v", err)
	}
	if err := os.WriteFile(backupPath+".sha256", []byte("deadbeef\n"), 0o644); err != nil {
		t.Fatalf("tamper checksum: %v", err)
	}
	if err := service.RestoreBackup(backupPath, filepath.Join(dir, "out.db"), false); !errors.Is(err, service.ErrBackupChecksum) {
		t.Fatalf("expected checksum mismatch error, got %v", err)
	}
	if ok, err := service.VerifyBackup(backupPath); ok || !errors.Is(err, service.ErrBackupChecksum) {
		t.Fatalf("expected verify to fail, got %v %v", ok, err)
	}
	list, err := service.ListBackups(dir)
	if err != nil {
		t.Fatalf("list backups: %v", err)
	}
	if len(list) != 1 || list[0].Verified {
		t.Fatalf("expected tampered backup to be unverified, got %+v", list)
	}
}

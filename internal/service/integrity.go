package service

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

var ErrBackupChecksum = errors.New("backup checksum mismatch")

// BackupInfo describes one backup file. Verified is set when the file still
// matches its recorded checksum.
type BackupInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
	Verified  bool      `json:"verified"`
}

// SummaryDrift is a day whose stored summary disagrees with its meals.
type SummaryDrift struct {
	Date           string `json:"date"`
	StoredCalories int    `json:"stored_calories"`
	ActualCalories int    `json:"actual_calories"`
	StoredMeals    int    `json:"stored_meals"`
	ActualMeals    int    `json:"actual_meals"`
	StoredWorkouts int    `json:"stored_exercises"`
	ActualWorkouts int    `json:"actual_exercises"`
}

type DoctorReport struct {
	OrphanItems       int            `json:"orphan_items"`
	EmptyMeals        int            `json:"empty_meals"`
	MissingSummaries  int            `json:"missing_summaries"`
	Drift             []SummaryDrift `json:"drift,omitempty"`
	RebuiltSummaries  int            `json:"rebuilt_summaries,omitempty"`
	RemovedOrphanRows int            `json:"removed_orphan_rows,omitempty"`
}

func (r DoctorReport) Healthy() bool {
	return r.OrphanItems == 0 && r.EmptyMeals == 0 && r.MissingSummaries == 0 && len(r.Drift) == 0
}

// CreateBackup snapshots the live database with VACUUM INTO so pages still
// in the WAL are included, then writes a .sha256 file next to it.
func CreateBackup(db *sql.DB, outPath string) (BackupInfo, error) {
	if strings.TrimSpace(outPath) == "" {
		return BackupInfo{}, fmt.Errorf("backup output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return BackupInfo{}, fmt.Errorf("create backup directory: %w", err)
	}
	if _, err := os.Stat(outPath); err == nil {
		return BackupInfo{}, fmt.Errorf("backup %s already exists", outPath)
	}
	if _, err := db.Exec(`VACUUM INTO ?`, outPath); err != nil {
		return BackupInfo{}, fmt.Errorf("write backup: %w", err)
	}
	checksum, err := fileSHA256(outPath)
	if err != nil {
		return BackupInfo{}, err
	}
	if err := os.WriteFile(outPath+".sha256", []byte(checksum+"\n"), 0o644); err != nil {
		return BackupInfo{}, fmt.Errorf("write checksum file: %w", err)
	}
	st, err := os.Stat(outPath)
	if err != nil {
		return BackupInfo{}, fmt.Errorf("stat backup: %w", err)
	}
	return BackupInfo{Path: outPath, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size(), Verified: true}, nil
}

// VerifyBackup recomputes a backup's digest and compares it with the
// recorded .sha256 file. A backup without a checksum file reports false.
func VerifyBackup(path string) (bool, error) {
	expected, err := os.ReadFile(path + ".sha256")
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read checksum file: %w", err)
	}
	actual, err := fileSHA256(path)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(string(expected)) != actual {
		return false, fmt.Errorf("%w: %s", ErrBackupChecksum, path)
	}
	return true, nil
}

func RestoreBackup(backupPath, dbPath string, force bool) error {
	if strings.TrimSpace(backupPath) == "" || strings.TrimSpace(dbPath) == "" {
		return fmt.Errorf("backup path and db path are required")
	}
	if !force {
		if _, err := os.Stat(dbPath); err == nil {
			return fmt.Errorf("target db already exists; use --force to overwrite")
		}
	}
	if _, err := VerifyBackup(backupPath); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(dbPath + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove stale %s file: %w", suffix, err)
		}
	}
	return copyFile(backupPath, dbPath)
}

func ListBackups(dir string) ([]BackupInfo, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read backup dir: %w", err)
	}
	out := make([]BackupInfo, 0)
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".db") {
			continue
		}
		full := filepath.Join(dir, f.Name())
		st, err := os.Stat(full)
		if err != nil {
			continue
		}
		checksum := ""
		if b, err := os.ReadFile(full + ".sha256"); err == nil {
			checksum = strings.TrimSpace(string(b))
		}
		verified, _ := VerifyBackup(full)
		out = append(out, BackupInfo{Path: full, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size(), Verified: verified})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// RunDoctor compares every stored day summary with a fresh aggregate of
// that day's meals and exercises. With fix set it deletes orphan items and
// rebuilds every drifted or missing summary.
func RunDoctor(db *sql.DB, fix bool) (DoctorReport, error) {
	report := DoctorReport{}
	if err := db.QueryRow(`SELECT COUNT(1) FROM meal_items i LEFT JOIN meals m ON m.id = i.meal_id WHERE m.id IS NULL`).Scan(&report.OrphanItems); err != nil {
		return report, fmt.Errorf("doctor orphan check: %w", err)
	}
	if err := db.QueryRow(`SELECT COUNT(1) FROM meals m WHERE NOT EXISTS (SELECT 1 FROM meal_items i WHERE i.meal_id = m.id)`).Scan(&report.EmptyMeals); err != nil {
		return report, fmt.Errorf("doctor empty meal check: %w", err)
	}

	rows, err := db.Query(`
WITH actual AS (
  SELECT day,
         SUM(calories) AS calories,
         SUM(meals) AS meals,
         SUM(exercises) AS exercises
  FROM (
    SELECT m.day AS day, COALESCE(SUM(i.calories), 0) AS calories, 1 AS meals, 0 AS exercises
    FROM meals m LEFT JOIN meal_items i ON i.meal_id = m.id
    GROUP BY m.id
    UNION ALL
    SELECT date AS day, 0, 0, 1 FROM exercises
  )
  GROUP BY day
)
SELECT a.day, IFNULL(s.total_calories, -1), IFNULL(s.meal_count, -1), IFNULL(s.exercise_count, -1),
       a.calories, a.meals, a.exercises
FROM actual a LEFT JOIN day_summaries s ON s.date = a.day
UNION ALL
SELECT s.date, s.total_calories, s.meal_count, s.exercise_count, 0, 0, 0
FROM day_summaries s
WHERE s.date NOT IN (SELECT day FROM actual)
  AND (s.total_calories != 0 OR s.meal_count != 0 OR s.exercise_count != 0)
ORDER BY 1 ASC
`)
	if err != nil {
		return report, fmt.Errorf("doctor summary query: %w", err)
	}
	for rows.Next() {
		var d SummaryDrift
		if err := rows.Scan(&d.Date, &d.StoredCalories, &d.StoredMeals, &d.StoredWorkouts, &d.ActualCalories, &d.ActualMeals, &d.ActualWorkouts); err != nil {
			_ = rows.Close()
			return report, fmt.Errorf("doctor summary scan: %w", err)
		}
		switch {
		case d.StoredMeals < 0:
			report.MissingSummaries++
			report.Drift = append(report.Drift, d)
		case d.StoredCalories != d.ActualCalories || d.StoredMeals != d.ActualMeals || d.StoredWorkouts != d.ActualWorkouts:
			report.Drift = append(report.Drift, d)
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return report, fmt.Errorf("doctor summary iterate: %w", err)
	}
	_ = rows.Close()

	if !fix {
		return report, nil
	}
	err = withTx(db, "doctor fix", func(tx *sql.Tx) error {
		res, err := tx.Exec(`DELETE FROM meal_items WHERE meal_id NOT IN (SELECT id FROM meals)`)
		if err != nil {
			return fmt.Errorf("doctor fix orphan items: %w", err)
		}
		n, _ := res.RowsAffected()
		report.RemovedOrphanRows = int(n)
		for _, d := range report.Drift {
			if err := rebuildDaySummaryTx(tx, d.Date); err != nil {
				return err
			}
			report.RebuiltSummaries++
		}
		return nil
	})
	return report, err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync destination file: %w", err)
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

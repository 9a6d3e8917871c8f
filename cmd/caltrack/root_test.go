package caltrack

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/saadjs/caltrack/internal/config"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootHelp(t *testing.T) {
	out, err := runCommand(t, "--help")
	if err != nil {
		t.Fatalf("execute root help: %v", err)
	}
	if out == "" {
		t.Fatalf("expected help output")
	}
}

func TestInitCommandIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "caltrack.db")
	for i := 0; i < 2; i++ {
		if _, err := runCommand(t, "--db", path, "init"); err != nil {
			t.Fatalf("init run %d failed: %v", i+1, err)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "caltrack dev") {
		t.Fatalf("unexpected version output %q", out)
	}
}

func TestMealAndTodayFlow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "caltrack.db")

	out, err := runCommand(t, "--db", path, "meal", "add", "--name", "Lunch", "--item", "Rice:200:4:44:0.4:150 g", "--item", "Chicken:165:31:0:3.6")
	if err != nil {
		t.Fatalf("meal add: %v", err)
	}
	if !strings.Contains(out, "(365 kcal)") {
		t.Fatalf("unexpected meal add output %q", out)
	}

	out, err = runCommand(t, "--db", path, "meal", "list")
	if err != nil {
		t.Fatalf("meal list: %v", err)
	}
	if !strings.Contains(out, "Lunch\t2\t365") {
		t.Fatalf("expected meal in list, got %q", out)
	}

	out, err = runCommand(t, "--db", path, "today")
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	if !strings.Contains(out, "Intake: 365 kcal (1 meals)") || !strings.Contains(out, "Remaining: 1635 kcal") {
		t.Fatalf("unexpected today output %q", out)
	}

	out, err = runCommand(t, "--db", path, "week")
	if err != nil {
		t.Fatalf("week: %v", err)
	}
	if strings.Count(out, "\n") != 8 {
		t.Fatalf("expected header plus seven days, got %q", out)
	}
}

func TestSettingsSetAndGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "caltrack.db")
	if _, err := runCommand(t, "--db", path, "settings", "set", "calorie_goal", "1800"); err != nil {
		t.Fatalf("settings set: %v", err)
	}
	out, err := runCommand(t, "--db", path, "settings", "get", "calorie_goal")
	if err != nil {
		t.Fatalf("settings get: %v", err)
	}
	if strings.TrimSpace(out) != "1800" {
		t.Fatalf("expected 1800, got %q", out)
	}
	if _, err := runCommand(t, "--db", path, "settings", "set", "calorie_goal", "99999"); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestWipeRequiresForce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "caltrack.db")
	if _, err := runCommand(t, "--db", path, "wipe"); err == nil {
		t.Fatalf("expected wipe without --force to fail")
	}
}

func TestParseItemSpec(t *testing.T) {
	item, err := parseItemSpec("Oats:150:5:27:2.5:40 g")
	if err != nil {
		t.Fatalf("parse item: %v", err)
	}
	if item.Name != "Oats" || item.Calories != 150 || item.FatG != 2.5 || item.Portion != 40 || item.Unit != "g" {
		t.Fatalf("unexpected item %+v", item)
	}
	item, err = parseItemSpec("Apple:95")
	if err != nil || item.ProteinG != 0 {
		t.Fatalf("unexpected short item %+v, %v", item, err)
	}
	for _, bad := range []string{"Apple", "Apple:lots", "Apple:95:x"} {
		if _, err := parseItemSpec(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestParseSetSpec(t *testing.T) {
	set, err := parseSetSpec("8x60.5")
	if err != nil || set.Reps != 8 || set.Weight != 60.5 {
		t.Fatalf("unexpected set %+v, %v", set, err)
	}
	if _, err := parseSetSpec("eight"); err == nil {
		t.Fatalf("expected error for malformed set")
	}
}

func TestAPITimeoutsMatchConfig(t *testing.T) {
	prev := cfg
	t.Cleanup(func() { cfg = prev })

	cfg = &config.Config{API: config.APIConfig{RequestTimeout: 5 * time.Second, ResourceTimeout: 45 * time.Second}}
	if got := apiHTTPClient().Timeout; got != 5*time.Second {
		t.Fatalf("expected client timeout from request timeout, got %s", got)
	}
	if got := resourceTimeout(); got != 45*time.Second {
		t.Fatalf("expected exchange timeout from resource timeout, got %s", got)
	}

	cfg = nil
	if got := apiHTTPClient().Timeout; got != 30*time.Second {
		t.Fatalf("expected default client timeout, got %s", got)
	}
}

func TestBackupListAndRestore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "caltrack.db")
	backups := filepath.Join(dir, "snapshots")

	if _, err := runCommand(t, "--db", path, "settings", "set", "calorie_goal", "1700"); err != nil {
		t.Fatalf("settings set: %v", err)
	}
	out, err := runCommand(t, "--db", path, "backup", "--dir", backups)
	if err != nil {
		t.Fatalf("backup: %v", err)
	}
	file := strings.SplitN(strings.TrimSpace(out), "\t", 2)[0]
	if filepath.Dir(file) != backups {
		t.Fatalf("expected backup under %s, got %q", backups, out)
	}

	out, err = runCommand(t, "--db", path, "backup", "list", "--dir", backups)
	if err != nil {
		t.Fatalf("backup list: %v", err)
	}
	if !strings.Contains(out, "\ttrue\t"+file) {
		t.Fatalf("expected verified backup in list, got %q", out)
	}

	if _, err := runCommand(t, "--db", path, "settings", "set", "calorie_goal", "1900"); err != nil {
		t.Fatalf("settings set: %v", err)
	}
	if _, err := runCommand(t, "--db", path, "backup", "restore", file); err == nil {
		t.Fatalf("expected restore over an existing database to need --force")
	}
	out, err = runCommand(t, "--db", path, "backup", "restore", file, "--force")
	if err != nil {
		t.Fatalf("backup restore: %v", err)
	}
	if !strings.Contains(out, "Restored") || strings.Contains(out, "Warning") {
		t.Fatalf("unexpected restore output %q", out)
	}
	out, err = runCommand(t, "--db", path, "settings", "get", "calorie_goal")
	if err != nil {
		t.Fatalf("settings get: %v", err)
	}
	if strings.TrimSpace(out) != "1700" {
		t.Fatalf("expected restored goal 1700, got %q", out)
	}
}

func TestWeightLogListAndChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "caltrack.db")

	if _, err := runCommand(t, "--db", path, "weight", "log", "180", "--unit", "lbs", "--date", "2026-01-02"); err != nil {
		t.Fatalf("weight log: %v", err)
	}
	out, err := runCommand(t, "--db", path, "settings", "weight", "80", "--unit", "kg")
	if err != nil {
		t.Fatalf("settings weight: %v", err)
	}
	if !strings.Contains(out, "Recorded weight 80.0 kg") {
		t.Fatalf("unexpected settings weight output %q", out)
	}

	out, err = runCommand(t, "--db", path, "weight", "list")
	if err != nil {
		t.Fatalf("weight list: %v", err)
	}
	if strings.Count(out, "\n") != 3 || !strings.Contains(out, "\t81.6\tkg\t") {
		t.Fatalf("expected two weigh-ins, got %q", out)
	}

	out, err = runCommand(t, "--db", path, "settings", "get", "current_weight_kg")
	if err != nil {
		t.Fatalf("settings get: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(out), "80") {
		t.Fatalf("expected current weight to follow the newest weigh-in, got %q", out)
	}

	out, err = runCommand(t, "--db", path, "weight", "changes")
	if err != nil {
		t.Fatalf("weight changes: %v", err)
	}
	if !strings.Contains(out, "all\t-1.6\tkg") {
		t.Fatalf("unexpected changes output %q", out)
	}
}

package caltrack

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/saadjs/caltrack/internal/service"
	"github.com/spf13/cobra"
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's intake, credits and goal progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(sqldb *sql.DB, store *service.SettingsStore) error {
			state, err := service.LoadHome(cmd.Context(), sqldb, store, logger, time.Now())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Date: %s\n", state.Date.Format("2006-01-02"))
			fmt.Fprintf(out, "Intake: %d kcal (%d meals)\n", state.Today.TotalCalories, state.Today.MealCount)
			fmt.Fprintf(out, "Burned: %d kcal\n", state.Burned)
			goal := fmt.Sprintf("Goal: %d kcal", state.GoalTotal)
			if state.Adjustments != "" {
				goal += fmt.Sprintf(" (%d base, %s)", state.Settings.CalorieGoal, state.Adjustments)
			}
			fmt.Fprintln(out, goal)
			fmt.Fprintf(out, "Remaining: %d kcal | Progress: %.0f%%\n", state.Remaining, state.Progress*100)
			fmt.Fprintln(out, "NUTRIENT\tCONSUMED\tGOAL\tREMAINING\tSTATUS")
			for _, st := range state.Insights {
				fmt.Fprintf(out, "%s\t%.1f%s\t%.1f%s\t%.1f%s\t%s\n", st.Nutrient, st.Consumed, st.Unit, st.Goal, st.Unit, st.Remaining, st.Unit, statusLabel(st))
			}
			if len(state.RecentMeals) > 0 {
				fmt.Fprintln(out, "TIME\tMEAL\tKCAL")
				for _, m := range state.RecentMeals {
					fmt.Fprintf(out, "%s\t%s\t%d\n", m.Timestamp.Local().Format("15:04"), m.Name, m.TotalCalories())
				}
			}
			return nil
		})
	},
}

func statusLabel(st service.NutritionStatus) string {
	switch {
	case st.IsOverGoal():
		return "over"
	case st.IsAtLimit():
		return "at goal"
	case st.IsCloseToLimit():
		return "close"
	default:
		return "ok"
	}
}

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "Show the current Sunday-to-Saturday week",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(sqldb *sql.DB, store *service.SettingsStore) error {
			state, err := service.LoadHome(cmd.Context(), sqldb, store, logger, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "DAY\tDATE\tKCAL\tGOAL\tOVER\tBAND")
			for _, d := range state.Week {
				day := d.DayName
				if d.IsToday {
					day = strings.ToUpper(day)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\t%d\t%d\t%s\n", day, d.Date.Format("2006-01-02"), d.Consumed, d.Goal, d.OverGoal(), d.Band)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(todayCmd, weekCmd)
}

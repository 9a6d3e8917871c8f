package caltrack

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/saadjs/caltrack/internal/service"
	"github.com/spf13/cobra"
)

var (
	historyFrom      string
	historyTo        string
	historyTolerance float64
	historyJSON      bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Summarize intake and goal adherence over a date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		to, err := parseDateOrToday(historyTo)
		if err != nil {
			return err
		}
		from := to.AddDate(0, 0, -6)
		if strings.TrimSpace(historyFrom) != "" {
			if from, err = time.ParseInLocation("2006-01-02", historyFrom, time.Local); err != nil {
				return fmt.Errorf("invalid --from %q (expected YYYY-MM-DD)", historyFrom)
			}
		}
		return withDB(func(sqldb *sql.DB) error {
			report, err := service.HistoryRange(sqldb, from, to, historyTolerance)
			if err != nil {
				return err
			}
			if historyJSON {
				b, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal history json: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Range: %s to %s\n", report.FromDate, report.ToDate)
			fmt.Fprintf(out, "Days with meals: %d\n", report.DaysWithMeals)
			fmt.Fprintf(out, "Total: %d kcal | P %.1fg | C %.1fg | F %.1fg\n", report.TotalCalories, report.TotalProtein, report.TotalCarbs, report.TotalFat)
			fmt.Fprintf(out, "Average: %.1f kcal/day\n", report.AverageCaloriesPerDay)
			if report.HighestDay != nil {
				fmt.Fprintf(out, "Highest: %s (%d kcal)\n", report.HighestDay.Date.Format("2006-01-02"), report.HighestDay.TotalCalories)
				fmt.Fprintf(out, "Lowest: %s (%d kcal)\n", report.LowestDay.Date.Format("2006-01-02"), report.LowestDay.TotalCalories)
			}
			fmt.Fprintf(out, "Adherence: %d/%d days (%.1f%%), %d without a goal\n", report.Adherence.WithinGoalDays, report.Adherence.EvaluatedDays, report.Adherence.PercentWithin, report.Adherence.SkippedGoalDays)
			if len(report.ByCategory) > 0 {
				fmt.Fprintln(out, "CATEGORY\tMEALS\tKCAL\tP\tC\tF")
				for _, c := range report.ByCategory {
					fmt.Fprintf(out, "%s\t%d\t%d\t%.1f\t%.1f\t%.1f\n", c.Category, c.Meals, c.Calories, c.Protein, c.Carbs, c.Fat)
				}
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVar(&historyFrom, "from", "", "Start date YYYY-MM-DD (default six days before --to)")
	historyCmd.Flags().StringVar(&historyTo, "to", "", "End date YYYY-MM-DD (default today)")
	historyCmd.Flags().Float64Var(&historyTolerance, "tolerance", 0.10, "Macro adherence tolerance as a fraction")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Print the report as JSON")
}

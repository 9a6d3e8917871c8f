package caltrack

import (
	"database/sql"
	"fmt"

	"github.com/saadjs/caltrack/internal/service"
	"github.com/spf13/cobra"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check day summaries against the meals and exercises they aggregate",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			report, err := service.RunDoctor(sqldb, doctorFix)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Orphan items: %d\n", report.OrphanItems)
			fmt.Fprintf(out, "Meals without items: %d\n", report.EmptyMeals)
			fmt.Fprintf(out, "Missing summaries: %d\n", report.MissingSummaries)
			fmt.Fprintf(out, "Drifted summaries: %d\n", len(report.Drift))
			if len(report.Drift) > 0 {
				fmt.Fprintln(out, "DATE\tSTORED_KCAL\tACTUAL_KCAL\tSTORED_MEALS\tACTUAL_MEALS\tSTORED_EX\tACTUAL_EX")
				for _, d := range report.Drift {
					fmt.Fprintf(out, "%s\t%d\t%d\t%d\t%d\t%d\t%d\n", d.Date, d.StoredCalories, d.ActualCalories, d.StoredMeals, d.ActualMeals, d.StoredWorkouts, d.ActualWorkouts)
				}
			}
			if doctorFix {
				fmt.Fprintf(out, "Rebuilt summaries: %d\n", report.RebuiltSummaries)
				fmt.Fprintf(out, "Removed orphan rows: %d\n", report.RemovedOrphanRows)
				// Re-check after fixes so exit status reflects final state.
				report, err = service.RunDoctor(sqldb, false)
				if err != nil {
					return err
				}
			}
			if report.OrphanItems > 0 || report.MissingSummaries > 0 || len(report.Drift) > 0 {
				return fmt.Errorf("doctor found integrity issues")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Remove orphan items and rebuild drifted summaries")
}

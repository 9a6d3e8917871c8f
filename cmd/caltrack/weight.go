package caltrack

import (
	"database/sql"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/saadjs/caltrack/internal/model"
	"github.com/saadjs/caltrack/internal/service"
	"github.com/spf13/cobra"
)

var (
	weightUnit     string
	weightDate     string
	weightTime     string
	weightNote     string
	weightFromDate string
	weightToDate   string
	weightLimit    int
)

var weightCmd = &cobra.Command{
	Use:   "weight",
	Short: "Log body weight and follow its trend",
}

var weightLogCmd = &cobra.Command{
	Use:   "log <value>",
	Short: "Record a weigh-in",
	Args:  cobra.ExactArgs(1),
	RunE:  runWeightLog,
}

// runWeightLog also backs "settings weight".
func runWeightLog(cmd *cobra.Command, args []string) error {
	value, err := strconv.ParseFloat(strings.TrimSpace(args[0]), 64)
	if err != nil {
		return fmt.Errorf("invalid weight %q", args[0])
	}
	at, err := parseDateTimeOrNow(weightDate, weightTime)
	if err != nil {
		return err
	}
	return withStore(func(sqldb *sql.DB, store *service.SettingsStore) error {
		entry, err := service.LogWeight(store, sqldb, service.WeightInput{
			Weight:     value,
			Unit:       weightUnit,
			MeasuredAt: at,
			Note:       weightNote,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Recorded weight %.1f kg (%s)\n", entry.WeightKg, entry.ID)
		return nil
	})
}

var weightListCmd = &cobra.Command{
	Use:   "list",
	Short: "List weigh-ins, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(sqldb *sql.DB, store *service.SettingsStore) error {
			settings, err := store.Load()
			if err != nil {
				return err
			}
			items, err := service.ListWeights(sqldb, service.WeightFilter{FromDate: weightFromDate, ToDate: weightToDate, Limit: weightLimit})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tMEASURED_AT\tWEIGHT\tUNIT\tNOTE")
			for _, it := range items {
				value, unit := displayWeight(it.WeightKg, settings)
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%.1f\t%s\t%s\n", it.ID, it.MeasuredAt.Format("2006-01-02 15:04"), value, unit, it.Note)
			}
			return nil
		})
	},
}

var weightDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a weigh-in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseUUIDArg("weight id", args[0])
		if err != nil {
			return err
		}
		return withStore(func(sqldb *sql.DB, store *service.SettingsStore) error {
			if err := service.DeleteWeight(store, sqldb, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted weight %s\n", id)
			return nil
		})
	},
}

var weightChangesCmd = &cobra.Command{
	Use:   "changes",
	Short: "Show weight change over 3, 7, 14 and 30 days and all time",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(sqldb *sql.DB, store *service.SettingsStore) error {
			settings, err := store.Load()
			if err != nil {
				return err
			}
			history, err := service.WeightHistory(sqldb)
			if err != nil {
				return err
			}
			printWeightChanges(cmd.OutOrStdout(), service.WeightChanges(history, time.Now()), settings)
			return nil
		})
	},
}

func printWeightChanges(w io.Writer, changes []service.WeightChange, settings model.UserSettings) {
	fmt.Fprintln(w, "WINDOW\tCHANGE\tUNIT")
	for _, c := range changes {
		window := "all"
		if c.Days > 0 {
			window = fmt.Sprintf("%dd", c.Days)
		}
		if !c.HasChange {
			fmt.Fprintf(w, "%s\t-\t\n", window)
			continue
		}
		value, unit := displayWeight(c.ChangeKg, settings)
		fmt.Fprintf(w, "%s\t%+.1f\t%s\n", window, value, unit)
	}
}

func displayWeight(kg float64, settings model.UserSettings) (float64, string) {
	if settings.UseMetricUnits {
		return kg, "kg"
	}
	return service.KgToLbs(kg), "lbs"
}

func init() {
	rootCmd.AddCommand(weightCmd)
	weightCmd.AddCommand(weightLogCmd, weightListCmd, weightDeleteCmd, weightChangesCmd)

	weightLogCmd.Flags().StringVar(&weightUnit, "unit", "kg", "Weight unit: kg or lbs")
	weightLogCmd.Flags().StringVar(&weightDate, "date", "", "Date (YYYY-MM-DD), default today")
	weightLogCmd.Flags().StringVar(&weightTime, "time", "", "Time (HH:MM), requires --date")
	weightLogCmd.Flags().StringVar(&weightNote, "note", "", "Optional note")

	weightListCmd.Flags().StringVar(&weightFromDate, "from", "", "Start date (YYYY-MM-DD)")
	weightListCmd.Flags().StringVar(&weightToDate, "to", "", "End date (YYYY-MM-DD)")
	weightListCmd.Flags().IntVar(&weightLimit, "limit", 50, "Maximum rows")
}

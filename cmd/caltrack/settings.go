package caltrack

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/saadjs/caltrack/internal/service"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show and change profile and goal settings",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Show one setting, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(_ *sql.DB, store *service.SettingsStore) error {
			if len(args) == 1 {
				value, err := store.Get(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "KEY\tVALUE")
			for _, key := range service.SettingKeys() {
				value, err := store.Get(key)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", key, value)
			}
			return nil
		})
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(_ *sql.DB, store *service.SettingsStore) error {
			if _, err := store.Set(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", strings.ToLower(strings.TrimSpace(args[0])), args[1])
			return nil
		})
	},
}

var settingsWeightCmd = &cobra.Command{
	Use:   "weight <value>",
	Short: "Record today's body weight",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		weightDate, weightTime = "", ""
		return runWeightLog(cmd, args)
	},
}

var settingsResetGoalsCmd = &cobra.Command{
	Use:   "reset-goals",
	Short: "Restore the default calorie and macro goals",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(_ *sql.DB, store *service.SettingsStore) error {
			s, err := store.ResetGoals()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Goals reset to %d kcal\n", s.CalorieGoal)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd, settingsWeightCmd, settingsResetGoalsCmd)

	settingsWeightCmd.Flags().StringVar(&weightUnit, "unit", "kg", "Weight unit: kg or lbs")
	settingsWeightCmd.Flags().StringVar(&weightNote, "note", "", "Optional note")
}

package caltrack

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/saadjs/caltrack/internal/service"
	"github.com/spf13/cobra"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export meals, exercises, summaries and goals as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			data, err := service.ExportMeals(sqldb, time.Now())
			if err != nil {
				return err
			}
			if strings.TrimSpace(exportOut) == "" || exportOut == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(exportOut, data, 0o644); err != nil {
				return fmt.Errorf("write export file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported data to %s\n", exportOut)
			return nil
		})
	},
}

var wipeForce bool

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete every meal, exercise and day summary",
	Long:  "Delete every meal, exercise and day summary. Settings and goal history are kept.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !wipeForce {
			return fmt.Errorf("refusing to delete data without --force")
		}
		return withDB(func(sqldb *sql.DB) error {
			if err := service.DeleteAllData(sqldb); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted all meals, exercises and summaries")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd, wipeCmd)
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file (default stdout)")
	wipeCmd.Flags().BoolVar(&wipeForce, "force", false, "Confirm deletion")
}

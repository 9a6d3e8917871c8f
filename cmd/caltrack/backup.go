package caltrack

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/saadjs/caltrack/internal/service"
	"github.com/spf13/cobra"
)

var (
	backupOut    string
	backupDir    string
	backupJSON   bool
	restoreForce bool
)

// backupDirFor keeps backups beside the database unless --dir is given.
func backupDirFor(dbFile string) string {
	if backupDir != "" {
		return backupDir
	}
	return filepath.Join(filepath.Dir(dbFile), "backups")
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Snapshot the meal database",
	Long: `Snapshot meals, exercises, day summaries, goals and settings into a
single file with a .sha256 checksum beside it. Without a subcommand a new
backup is written.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveDBPath()
		if err != nil {
			return err
		}
		out := backupOut
		if out == "" {
			out = filepath.Join(backupDirFor(path), "caltrack-"+time.Now().Format("20060102-150405")+".db")
		}
		return withDB(func(sqldb *sql.DB) error {
			info, err := service.CreateBackup(sqldb, out)
			if err != nil {
				return err
			}
			logger.Info("backup written", "path", info.Path, "bytes", info.SizeBytes)
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", info.Path, info.Checksum)
			return nil
		})
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveDBPath()
		if err != nil {
			return err
		}
		items, err := service.ListBackups(backupDirFor(path))
		if err != nil {
			return err
		}
		if backupJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(items)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "CREATED\tSIZE\tVERIFIED\tFILE")
		for _, it := range items {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%t\t%s\n", it.CreatedAt.Format(time.RFC3339), it.SizeBytes, it.Verified, it.Path)
		}
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Replace the database with a verified backup",
	Long: `Replace the database with a backup after checking its checksum. The
restored day summaries are then compared with their meals; run
"caltrack doctor --fix" if any drift is reported.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveDBPath()
		if err != nil {
			return err
		}
		if err := service.RestoreBackup(args[0], path, restoreForce); err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			report, err := service.RunDoctor(sqldb, false)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s\n", args[0])
			if !report.Healthy() {
				fmt.Fprintf(cmd.OutOrStdout(), "Warning: %d day summaries drifted, %d orphan items\n", len(report.Drift), report.OrphanItems)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupListCmd, backupRestoreCmd)

	backupCmd.PersistentFlags().StringVar(&backupDir, "dir", "", "Backup directory (default: backups/ beside the database)")
	backupCmd.Flags().StringVar(&backupOut, "out", "", "Backup file path (overrides --dir)")
	backupListCmd.Flags().BoolVar(&backupJSON, "json", false, "Print backups as JSON")
	backupRestoreCmd.Flags().BoolVar(&restoreForce, "force", false, "Overwrite the existing database")
}

package caltrack

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/saadjs/caltrack/internal/app"
	"github.com/saadjs/caltrack/internal/config"
	"github.com/spf13/cobra"
)

var (
	dbPath string
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "caltrack",
	Short: "caltrack logs meals and exercise against your daily calorie goal",
	Long:  "caltrack is a local-first calorie tracker with per-day summaries, goal generation, burned-calorie and rollover credits, and a small JSON API for widgets.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		logger = app.NewLogger(cfg.Log)
		return nil
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database (overrides CALTRACK_DB_PATH)")
}

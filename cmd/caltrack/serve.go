package caltrack

import (
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/saadjs/caltrack/internal/config"
	"github.com/saadjs/caltrack/internal/server"
	"github.com/saadjs/caltrack/internal/service"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve today's state as JSON for widgets",
	RunE: func(cmd *cobra.Command, args []string) error {
		serverCfg := config.ServerConfig{Addr: serveAddr}
		if serverCfg.Addr == "" && cfg != nil {
			serverCfg = cfg.Server
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return withStore(func(sqldb *sql.DB, store *service.SettingsStore) error {
			return server.New(sqldb, store, serverCfg, logger, nil).Start(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from CALTRACK_ADDR)")
}

package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/stall-admin/internal/config"
	"github.com/spec-kit/stall-admin/internal/observability"
	"github.com/spec-kit/stall-admin/internal/persistence"
)

func newMigrateCommand() *cobra.Command {
	var dsn string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}
	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all up migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dsn == "" {
				return errors.New("a Postgres DSN is required (--dsn or POSTGRES_DSN)")
			}
			logger, err := observability.NewLogger(
				config.LoggerConfig{Level: envOr("LOG_LEVEL", "info")},
				config.AppConfig{Name: "stallctl", Env: "production"},
			)
			if err != nil {
				logger = zap.NewNop()
			}
			defer logger.Sync() //nolint:errcheck
			return persistence.RunMigrations(dsn, logger)
		},
	}
	up.Flags().StringVar(&dsn, "dsn", os.Getenv("POSTGRES_DSN"), "Postgres connection URL")

	cmd.AddCommand(up)
	return cmd
}

package cmd

import (
	"errors"

	"github.com/KarpovAlexandrGo/task-tracker/internal/app"
	"github.com/KarpovAlexandrGo/task-tracker/internal/repo/postgres"
	"github.com/KarpovAlexandrGo/task-tracker/pkg/logger"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status]",
	Short:     "Apply or inspect the Postgres schema migrations",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{string(postgres.MigrateUp), string(postgres.MigrateDown), string(postgres.MigrateStatus)},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Postgres.DSN == "" {
			return errors.New("postgres.dsn is not configured")
		}
		if err := logger.Configure(cfg.Log.Level, cfg.Log.Format); err != nil {
			return err
		}

		pool, err := app.InitDB(cmd.Context(), cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer pool.Close()

		return postgres.Migrate(cmd.Context(), pool, postgres.MigrateCommand(args[0]))
	},
}

package cmd

import (
	"github.com/spf13/cobra"

	config "taskmaster.com/taskmaster/internal/configs"
	"taskmaster.com/taskmaster/internal/logging"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		logger := logging.New(cfg.LogLevel, cfg.LogFormat)

		database, err := config.NewDatabaseClient(cfg.DatabaseDriver, cfg.DatabaseDSN, logging.GormLevel(cfg.IsDevelopment()))
		if err != nil {
			return err
		}
		if sqlDB, err := database.DB(); err == nil {
			defer sqlDB.Close()
		}

		if err := config.Migrate(database); err != nil {
			return err
		}

		logger.WithField("driver", cfg.DatabaseDriver).Info("database schema is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ponta-ta-taro/tralog4/internal/config"
	"github.com/ponta-ta-taro/tralog4/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database tables",
	Long: `Apply the tralog schema to the configured Postgres database.

Every statement is idempotent, running it twice is safe. The database user and
password are read from TRALOG_DB_USER and TRALOG_DB_PASS.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(env, configPath)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost:     cfg.PostgresHost,
			DBPort:     cfg.PostgresPort,
			DBName:     cfg.PostgresDBName,
			DBUser:     os.Getenv("TRALOG_DB_USER"),
			DBPassword: os.Getenv("TRALOG_DB_PASS"),
		})
		if err != nil {
			return fmt.Errorf("db pool: %w", err)
		}
		defer dbPool.Close()

		if err := db.Migrate(ctx, dbPool); err != nil {
			return err
		}

		color.Green("schema applied to %s@%s:%s", cfg.PostgresDBName, cfg.PostgresHost, cfg.PostgresPort)
		return nil
	},
}

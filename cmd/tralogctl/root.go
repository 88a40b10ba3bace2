package main

import (
	"github.com/spf13/cobra"
)

var (
	configPath string
	env        string
)

var rootCmd = &cobra.Command{
	Use:   "tralogctl",
	Short: "Operator tool for the tralog backend",
	Long: `tralogctl runs maintenance tasks against a tralog deployment and computes
workout stats offline from an exported JSON file.

EXAMPLES:

  tralogctl migrate --env production --config ./config.toml
  tralogctl hash-password s3cret
  tralogctl stats weekly --input export.json --week 2024-05-15
  tralogctl stats range --input export.json --from 2024-04-01 --to 2024-04-30`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./config.toml", "path for the TOML config file")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment [prod | production | dev | development]")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(hashPasswordCmd)
	rootCmd.AddCommand(statsCmd)
}

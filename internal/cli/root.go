// Package cli implements the leadrelay commands.
package cli

import (
	"log/slog"

	"github.com/ashureev/leadrelay/internal/config"
	"github.com/ashureev/leadrelay/internal/store"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	dbPath  string
	envFile string
)

// RootCmd is the top-level command. Without a subcommand it runs the server.
var RootCmd = &cobra.Command{
	Use:           "leadrelay",
	Short:         "Lead-qualification chat relay",
	Long:          "Answers website chat visitors, qualifies them as leads and alerts an operator on Telegram.",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE:          runServe,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Alert ledger path (default: $DB_PATH or ./data/leadrelay.db)")
	RootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load before reading configuration")
}

// loadConfig loads the env file, if any, and then the configuration.
func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(envFile); err != nil {
		slog.Info("No .env file found, using environment variables", "path", envFile)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg, nil
}

func openLedger() (*store.SQLiteStore, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return store.NewSQLite(cfg.DBPath)
}

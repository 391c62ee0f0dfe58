package main

import (
	"context"
	"os"

	"canoe-backend/bootstrap"
	"canoe-backend/internal/config"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "canoe-api",
	Short: "Funds, managers and companies API with duplicate-fund detection",
	Long: `canoe-api serves the JSON:API for funds, fund managers and companies,
flags funds that look like duplicates of a sibling fund under the same
manager, and records duplicate warnings for review.

Configuration comes from the environment or a .env file (DATABASE_URL,
REDIS_URL, QUEUE_DRIVER, PORT, LOG_LEVEL, ...).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		appCfg = cfg
		bootstrap.SetupLogger(cfg)
		return nil
	},
}

var appCfg *config.Config

// openContainer wires the full application for commands that serve or consume.
func openContainer(ctx context.Context) (*bootstrap.Container, error) {
	return bootstrap.New(ctx, appCfg)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

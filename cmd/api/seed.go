package main

import (
	"canoe-backend/bootstrap"
	"canoe-backend/internal/infrastructure/database"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo managers, companies and funds",
	Long: `Load the demo data set. Does nothing when any fund manager already
exists, so it is safe to run on every deploy.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := bootstrap.Open(cmd.Context(), appCfg)
		if err != nil {
			return err
		}
		defer c.Close()
		return runSeed(cmd, c)
	},
}

func runSeed(cmd *cobra.Command, c *bootstrap.Container) error {
	seeded, err := database.Seed(cmd.Context(), c.DB)
	if err != nil {
		return err
	}
	if !seeded {
		log.Info().Msg("Database already has data, skipping seed")
		return nil
	}
	log.Info().Msg("Demo data loaded")
	return nil
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

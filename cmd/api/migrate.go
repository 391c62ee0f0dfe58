package main

import (
	"canoe-backend/bootstrap"
	"canoe-backend/internal/infrastructure/database"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := bootstrap.Open(cmd.Context(), appCfg)
		if err != nil {
			return err
		}
		defer c.Close()

		if err := database.AutoMigrate(c.DB); err != nil {
			return err
		}
		log.Info().Int("tables", len(database.Models())).Msg("Database migrated")

		if seed, _ := cmd.Flags().GetBool("seed"); seed {
			return runSeed(cmd, c)
		}
		return nil
	},
}

func init() {
	migrateCmd.Flags().Bool("seed", false, "Load demo data after migrating")
	rootCmd.AddCommand(migrateCmd)
}

package main

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print dependency health as JSON",
	Long: `Check the database, Redis and the notification queue and print the
same payload as GET /health/json. Exits non-zero when any dependency has an issue.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		result := c.Health(cmd.Context())
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
		if result.Status != "ok" {
			return errors.New("dependencies report an issue")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

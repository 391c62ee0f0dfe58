package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"canoe-backend/internal/infrastructure/database"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API. With QUEUE_DRIVER=redis the notification worker and
the stale-reservation scheduler run in the same process unless --no-worker
is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		migrate, _ := cmd.Flags().GetBool("migrate")
		noWorker, _ := cmd.Flags().GetBool("no-worker")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		c, err := openContainer(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		if migrate {
			if err := database.AutoMigrate(c.DB); err != nil {
				return err
			}
			log.Info().Msg("Database migrated")
		}

		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			addr := ":" + appCfg.Port
			log.Info().Str("addr", addr).Msg("Server running")
			return c.App.Listen(addr)
		})

		g.Go(func() error {
			<-gctx.Done()
			log.Info().Msg("Shutting down server")
			return c.App.ShutdownWithTimeout(10 * time.Second)
		})

		if w := c.Worker(); w != nil && !noWorker {
			g.Go(func() error { return w.Run(gctx) })

			s, err := c.Scheduler()
			if err != nil {
				return err
			}
			s.Start()
			g.Go(func() error {
				<-gctx.Done()
				s.Stop()
				return nil
			})
		}

		if err := g.Wait(); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().Bool("migrate", false, "Run database migrations before serving")
	serveCmd.Flags().Bool("no-worker", false, "Do not run the notification worker in this process")
	rootCmd.AddCommand(serveCmd)
}


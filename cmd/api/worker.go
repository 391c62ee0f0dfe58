package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume duplicate notifications from the Redis queue",
	Long: `Run the notification worker and the stale-reservation scheduler without
the HTTP API. Requires QUEUE_DRIVER=redis.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		c, err := openContainer(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		w := c.Worker()
		if w == nil {
			return errors.New("worker needs QUEUE_DRIVER=redis; the sync driver handles notifications in the API process")
		}
		if drain, _ := cmd.Flags().GetBool("drain"); drain {
			n := 0
			for {
				handled, err := w.ProcessNext(ctx)
				if err != nil {
					return err
				}
				if !handled {
					break
				}
				n++
			}
			log.Info().Int("processed", n).Msg("Queue drained")
			return nil
		}

		s, err := c.Scheduler()
		if err != nil {
			return err
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return w.Run(gctx) })
		s.Start()
		g.Go(func() error {
			<-gctx.Done()
			s.Stop()
			return nil
		})
		log.Info().Str("queue", appCfg.QueueName).Msg("Worker running")
		return g.Wait()
	},
}

func init() {
	workerCmd.Flags().Bool("drain", false, "Process every pending notification, then exit")
	rootCmd.AddCommand(workerCmd)
}

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var (
	serveSchedule string
)

func registerServeCommand(root *cobra.Command) {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a world on a cron schedule, ticking and saving its snapshot on every fire",
		RunE: func(cmd *cobra.Command, args []string) error {
			if worldFile == "" {
				return fmt.Errorf("serve requires --state to persist the world between ticks")
			}
			w, err := openWorld()
			if err != nil {
				return err
			}
			logger := newLogger()
			defer logger.Sync()

			c := cron.New()
			_, err = c.AddFunc(serveSchedule, func() {
				w.Tick()
				if err := w.SaveToFile(worldFile); err != nil {
					logger.Sugar().Errorw("failed to save world snapshot", "error", err)
					return
				}
				logger.Sugar().Infow("tick complete", "turn", w.Turn())
			})
			if err != nil {
				return fmt.Errorf("invalid schedule %q: %w", serveSchedule, err)
			}
			c.Start()
			defer c.Stop()

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			<-sig
			return nil
		},
	}
	serveCmd.Flags().StringVar(&serveSchedule, "every", "@every 1m", "cron schedule for automatic ticking")
	serveCmd.PersistentFlags().StringVar(&worldFile, "state", "", "world snapshot file to load and persist")
	root.AddCommand(serveCmd)
}

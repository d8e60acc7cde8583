package main

import (
	"errors"
	"time"

	"github.com/pevans/newsfetch/logger"
	"github.com/pevans/newsfetch/pipeline"
	"github.com/spf13/cobra"
)

// shutdownTimeout bounds how long we wait for an in-flight run on exit.
const shutdownTimeout = 60 * time.Second

func newScheduleCommand(a *app) *cobra.Command {
	var spec string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the full pipeline on a cron schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if spec == "" {
				spec = a.cfg.Schedule
			}
			if spec == "" {
				return errors.New("no schedule configured (set schedule or NEWSFETCH_SCHEDULE)")
			}

			scheduler, err := pipeline.NewScheduler(spec, pipeline.NewRunner(a.log), a.pipeline.DAG(), a.log)
			if err != nil {
				return err
			}
			scheduler.Start(cmd.Context())

			<-cmd.Context().Done()
			a.log.Info("Shutting down gracefully...")

			select {
			case <-scheduler.Stop().Done():
				a.log.Info("Scheduler stopped")
			case <-time.After(shutdownTimeout):
				a.log.Warn("Shutdown timeout exceeded, forcing exit", logger.Duration("timeout", shutdownTimeout))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&spec, "cron", "", "cron expression (overrides the configured schedule)")

	return cmd
}

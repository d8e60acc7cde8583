package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/pevans/newsfetch/api"
	"github.com/pevans/newsfetch/logger"
	"github.com/pevans/newsfetch/pipeline"
	"github.com/spf13/cobra"
)

func newServeCommand(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipeline tasks over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			server := api.NewTaskAPIServer(a.pipeline.DAG(), pipeline.NewRunner(a.log), a.log)
			httpServer := &http.Server{
				Addr:    addr,
				Handler: server.SetupRouter(),
			}

			errChan := make(chan error, 1)
			go func() {
				a.log.Info(fmt.Sprintf("Starting task API server on http://%s/api/v1/tasks", addr), logger.String("addr", addr))
				errChan <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errChan:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			case <-cmd.Context().Done():
			}

			a.log.Info("Shutting down gracefully...")
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return httpServer.Shutdown(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides the configured server.addr)")

	return cmd
}

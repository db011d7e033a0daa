package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the garage API over HTTP",
		Long: `Boot the container and serve HTTP on APP_PORT until interrupted.

Routes:
  POST /api/engine/start   start an engine and park it
  GET  /api/garage         garage state
  GET  /bindings           container bindings
  GET  /health             liveness probe
  GET  /metrics            Prometheus metrics (METRICS_ENABLED)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApplication(opts)
			if err != nil {
				return err
			}
			defer func() { _ = a.Logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := a.Run(ctx); err != nil {
				a.Logger.Error("server stopped", zap.Error(err))
				return err
			}
			return nil
		},
	}
}

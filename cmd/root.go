// Package cmd contains the CLI commands of the garage service.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/km-arc/go-inject/app"
	foundation "github.com/km-arc/go-inject/framework/app"
	"github.com/km-arc/go-inject/framework/config"
)

// options are shared by every command.
type options struct {
	envFiles []string
	noColor  bool
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "goinject",
		Short: "Garage service built on a dependency injection container",
		Long: `goinject runs the garage service and inspects its container.

Example usage:
  goinject serve                  # Serve HTTP on APP_PORT
  goinject graph                  # Validate the container and list its bindings
  goinject graph --env-file .env.production`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, "env files to load (default .env)")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	root.AddCommand(newServeCmd(opts), newGraphCmd(opts))
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// newApplication assembles the garage service without booting it.
func newApplication(opts *options, extra ...foundation.Option) (*foundation.Application, error) {
	cfg := config.Load(opts.envFiles...)
	a, err := foundation.New(cfg, append([]foundation.Option{foundation.WithInspector(app.Catalog())}, extra...)...)
	if err != nil {
		return nil, err
	}
	if err := a.Register(&app.ServiceProvider{}); err != nil {
		return nil, err
	}
	a.Routes(app.Routes)
	return a, nil
}

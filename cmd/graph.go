package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	foundation "github.com/km-arc/go-inject/framework/app"
	"github.com/km-arc/go-inject/framework/console"
)

func newGraphCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Validate the container and list its bindings",
		Long: `Build the container without serving and print every binding with its
scope and dependencies. Exits non-zero listing every violation when the
binding graph has missing dependencies or cycles.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			printer := console.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), !opts.noColor)

			a, err := newApplication(opts, foundation.WithLogger(zap.NewNop()))
			if err != nil {
				printer.Error("%v", err)
				return err
			}
			c, err := a.Boot()
			if err != nil {
				printer.Violations(err)
				return err
			}

			printer.Title("Bindings")
			if err := console.RenderBindings(printer.Out(), c.Bindings()); err != nil {
				return err
			}
			printer.Success("%d binding(s), container %s", len(c.Refs()), c.ID())
			return nil
		},
	}
}

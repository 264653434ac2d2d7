package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/olivierh59500/particle-life-engine/internal/terminal"
)

// TermOptions holds flags for the term command.
type TermOptions struct {
	*RootOptions
	Interval time.Duration
}

// NewTermCommand creates the term command.
func NewTermCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TermOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "term",
		Short: "Run the simulation in the terminal",
		Long: `Draw the simulation as coloured cells in the terminal.

Keys: q or Esc quit, space pause, r new rules. Logs go to stderr, so
redirect it when the terminal is the display: particle-life term 2>sim.log`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, logger, err := newEngine(opts.RootOptions, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			parentCtx := cmd.Context()
			if parentCtx == nil {
				parentCtx = context.Background()
			}
			ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := terminal.New(engine, logger, opts.Interval).Run(ctx); err != nil {
				return WrapExitError(ExitFailure, "terminal renderer stopped", err)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&opts.Interval, "interval", terminal.DefaultInterval, "time between ticks")

	return cmd
}

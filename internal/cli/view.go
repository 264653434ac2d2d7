package cli

import (
	"github.com/spf13/cobra"

	"github.com/olivierh59500/particle-life-engine/internal/viewer"
)

// ViewOptions holds flags for the view command.
type ViewOptions struct {
	*RootOptions
	TPS   int
	Rules string
}

// NewViewCommand creates the view command.
func NewViewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ViewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Open a window and run the simulation",
		Long: `Open an ebiten window that steps the engine once per frame.

Keys: Space pause, N single step, R new rules, Up/Down resize groups,
S/L save/load the rule matrix. Scroll to zoom, drag to pan.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, logger, err := newEngine(opts.RootOptions, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			err = viewer.Run(engine, logger, viewer.Options{TPS: opts.TPS, RulesFile: opts.Rules})
			if err != nil {
				return WrapExitError(ExitFailure, "viewer stopped", err)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.TPS, "tps", 60, "ticks per second")
	cmd.Flags().StringVar(&opts.Rules, "rules", "rules.json", "file used by the S and L keys")

	return cmd
}

package cli

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/olivierh59500/particle-life-engine/internal/particles"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Ticks int
	Out   string
	Rules string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a fixed number of ticks headless",
		Long: `Generate the default groups, apply --ticks steps and write the final
particles as JSON.

Example:
  particle-life run --ticks 500 --seed 7 --out final.json
  particle-life run --ticks 100 --rules saved-rules.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHeadless(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Ticks, "ticks", 100, "number of ticks to apply")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&opts.Rules, "rules", "", "rule matrix JSON to use instead of random rules")

	return cmd
}

func runHeadless(cmd *cobra.Command, opts *RunOptions) error {
	if opts.Ticks < 0 {
		return commandErrorf("--ticks must not be negative, got %d", opts.Ticks)
	}
	engine, logger, err := newEngine(opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	snap, err := engine.Init()
	if err != nil {
		return WrapExitError(ExitFailure, "init failed", err)
	}
	if opts.Rules != "" {
		rm, err := particles.LoadRules(opts.Rules)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load rules", err)
		}
		if err := engine.SetRules(rm); err != nil {
			return WrapExitError(ExitFailure, "failed to set rules", err)
		}
	}

	start := time.Now()
	for i := 0; i < opts.Ticks; i++ {
		if snap, err = engine.Step(); err != nil {
			return WrapExitError(ExitFailure, "step failed", err)
		}
	}
	logger.Info("run complete", "ticks", snap.Tick, "particles", snap.Len(), "elapsed", time.Since(start))

	var w io.Writer = cmd.OutOrStdout()
	if opts.Out != "" {
		f, err := os.Create(opts.Out)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to create output", err)
		}
		defer f.Close()
		w = f
	}
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		return WrapExitError(ExitFailure, "failed to write particles", err)
	}
	return nil
}

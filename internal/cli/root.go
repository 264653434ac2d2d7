// Package cli wires the particle engine to its callers: an HTTP server, an
// ebiten window, a terminal renderer and a headless runner.
package cli

import (
	"github.com/spf13/cobra"
)

// EnvPrefix is prepended to upper-cased flag names for the environment
// fallback, e.g. --group-size reads PARTICLELIFE_GROUP_SIZE.
const EnvPrefix = "PARTICLELIFE_"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose   bool
	LogLevel  string // debug|info|warn|error
	Config    string // YAML file, optional
	Seed      int64
	Width     int
	Height    int
	GroupSize int
}

// NewRootCommand creates the root command for the particle-life CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "particle-life",
		Short: "Particle Life - emergent behaviour from pairwise attraction",
		Long: `Particle Life simulates coloured particle groups that attract or repel
each other according to a rule matrix. Run it in a window, in a terminal,
behind an HTTP API, or headless.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := applyEnv(cmd.Flags()); err != nil {
				return WrapExitError(ExitCommandError, "invalid environment", err)
			}
			return nil
		},
	}

	// Global flags
	pf := cmd.PersistentFlags()
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (same as --log-level debug)")
	pf.StringVar(&opts.LogLevel, "log-level", "info", "log level: debug, info, warn, error")
	pf.StringVar(&opts.Config, "config", "", "path to a YAML config file")
	pf.Int64Var(&opts.Seed, "seed", 0, "random seed (0 seeds from the clock)")
	pf.IntVar(&opts.Width, "width", 0, "simulation width (overrides config)")
	pf.IntVar(&opts.Height, "height", 0, "simulation height (overrides config)")
	pf.IntVar(&opts.GroupSize, "group-size", -1, "particles per group (overrides config)")

	// Add subcommands
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewViewCommand(opts))
	cmd.AddCommand(NewTermCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))

	return cmd
}

package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/olivierh59500/particle-life-engine/internal/particles"
)

// envName maps a flag name to its environment variable.
func envName(flag string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

// applyEnv fills every flag the user did not set from its environment
// variable, giving flag > env > default.
func applyEnv(flags *pflag.FlagSet) error {
	var firstErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed || firstErr != nil {
			return
		}
		v, ok := os.LookupEnv(envName(f.Name))
		if !ok || v == "" {
			return
		}
		if err := flags.Set(f.Name, v); err != nil {
			firstErr = fmt.Errorf("%s: %w", envName(f.Name), err)
		}
	})
	return firstErr
}

// parseLogLevel parses a string log level (case-insensitive). Unknown
// values fall back to info.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newLogger builds the stderr text logger for a command and makes it the
// process default.
func newLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	level := parseLogLevel(opts.LogLevel)
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// loadConfig reads --config if given, then applies the explicit overrides.
func loadConfig(opts *RootOptions) (particles.Config, error) {
	cfg := particles.DefaultConfig()
	if opts.Config != "" {
		var err error
		if cfg, err = particles.LoadConfig(opts.Config); err != nil {
			return particles.Config{}, err
		}
	}
	if opts.Seed != 0 {
		cfg.Seed = opts.Seed
	}
	if opts.Width > 0 {
		cfg.Width = opts.Width
	}
	if opts.Height > 0 {
		cfg.Height = opts.Height
	}
	if opts.GroupSize >= 0 {
		cfg.GroupSize = opts.GroupSize
	}
	if err := cfg.Validate(); err != nil {
		return particles.Config{}, err
	}
	return cfg, nil
}

// newEngine is the shared setup of every command.
func newEngine(opts *RootOptions, logw io.Writer) (*particles.Engine, *slog.Logger, error) {
	logger := newLogger(opts, logw)
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	engine, err := particles.NewEngine(cfg, logger)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to create engine", err)
	}
	logger.Debug("engine ready",
		"width", cfg.Width, "height", cfg.Height,
		"groups", strings.Join(cfg.Groups, ","), "group_size", cfg.GroupSize,
		"spawn", cfg.Spawn, "seed", cfg.Seed)
	return engine, logger, nil
}

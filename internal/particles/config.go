package particles

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Simulation defaults.
const (
	DefaultWidth        = 800
	DefaultHeight       = 600
	InteractionRadius   = 80.0
	Damping             = 0.5
	DefaultGroupSize    = 50
	DefaultMaxGroupSize = 5000
	noiseScale          = 0.01
	noiseAttempts       = 32
	SpawnUniform        = "uniform"
	SpawnNoise          = "noise"
)

// DefaultGroups are the labels generated by Engine.Init and Engine.Resize.
var DefaultGroups = []string{"red", "blue", "green", "yellow"}

// Margin insets the reflecting walls. A particle is bounced when its
// coordinate reaches Low or reaches the extent minus High, on both axes.
// The zero value puts the walls on the edges of the area.
type Margin struct {
	Low  int `yaml:"low"`
	High int `yaml:"high"`
}

// Config holds everything fixed at construction time.
type Config struct {
	Width             int      `yaml:"width"`
	Height            int      `yaml:"height"`
	InteractionRadius float64  `yaml:"interaction_radius"`
	Damping           float64  `yaml:"damping"`
	Margin            Margin   `yaml:"margin"`
	Groups            []string `yaml:"groups"`
	GroupSize         int      `yaml:"group_size"`
	MaxGroupSize      int      `yaml:"max_group_size"`
	// Seed drives every random draw. Zero seeds from the clock.
	Seed  int64  `yaml:"seed"`
	Spawn string `yaml:"spawn"`
}

// DefaultConfig returns the 800x600 area with the classic four colours.
func DefaultConfig() Config {
	return Config{
		Width:             DefaultWidth,
		Height:            DefaultHeight,
		InteractionRadius: InteractionRadius,
		Damping:           Damping,
		Groups:            append([]string(nil), DefaultGroups...),
		GroupSize:         DefaultGroupSize,
		MaxGroupSize:      DefaultMaxGroupSize,
		Spawn:             SpawnUniform,
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig. Keys missing from the
// file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0:
		return newInputError("width", c.Width, "must be positive")
	case c.Height <= 0:
		return newInputError("height", c.Height, "must be positive")
	case !(c.InteractionRadius > 0) || math.IsInf(c.InteractionRadius, 0):
		return newInputError("interaction_radius", c.InteractionRadius, "must be a positive finite number")
	case !(c.Damping > 0 && c.Damping <= 1):
		return newInputError("damping", c.Damping, "must be in (0, 1]")
	case c.Margin.Low < 0 || c.Margin.High < 0:
		return newInputError("margin", c.Margin, "must not be negative")
	case c.Margin.Low+c.Margin.High >= c.Width || c.Margin.Low+c.Margin.High >= c.Height:
		return newInputError("margin", c.Margin, "leaves no room inside the area")
	case c.MaxGroupSize <= 0:
		return newInputError("max_group_size", c.MaxGroupSize, "must be positive")
	case c.GroupSize < 0 || c.GroupSize > c.MaxGroupSize:
		return newInputError("group_size", c.GroupSize, fmt.Sprintf("must be in [0, %d]", c.MaxGroupSize))
	case c.Spawn != SpawnUniform && c.Spawn != SpawnNoise:
		return newInputError("spawn", c.Spawn, "must be uniform or noise")
	}
	seen := make(map[string]struct{}, len(c.Groups))
	for _, g := range c.Groups {
		if g == "" {
			return newInputError("groups", c.Groups, "labels must not be empty")
		}
		if _, dup := seen[g]; dup {
			return newInputError("groups", g, "duplicate label")
		}
		seen[g] = struct{}{}
	}
	return nil
}

package particles

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 600, cfg.Height)
	assert.Equal(t, 80.0, cfg.InteractionRadius)
	assert.Equal(t, 0.5, cfg.Damping)
	assert.Equal(t, Margin{}, cfg.Margin)
	assert.Equal(t, []string{"red", "blue", "green", "yellow"}, cfg.Groups)
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")
	yml := `
width: 1024
margin:
  low: 10
  high: 10
groups: [cyan, magenta]
group_size: 120
seed: 99
spawn: noise
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 1024, cfg.Width)
	assert.Equal(t, 600, cfg.Height, "unset keys keep defaults")
	assert.Equal(t, Margin{Low: 10, High: 10}, cfg.Margin)
	assert.Equal(t, []string{"cyan", "magenta"}, cfg.Groups)
	assert.Equal(t, 120, cfg.GroupSize)
	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, SpawnNoise, cfg.Spawn)
	assert.Equal(t, 0.5, cfg.Damping)
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("width: [1, 2"), 0644))
	_, err = LoadConfig(bad)
	assert.Error(t, err)

	nan := filepath.Join(dir, "nan.yaml")
	require.NoError(t, os.WriteFile(nan, []byte("damping: .nan\ninteraction_radius: .nan\n"), 0644))
	_, err = LoadConfig(nan)
	assert.True(t, IsInputError(err))

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("spawn: spiral\n"), 0644))
	_, err = LoadConfig(invalid)
	assert.True(t, IsInputError(err))
}

func TestConfigValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"zero height":     func(c *Config) { c.Height = 0 },
		"zero radius":     func(c *Config) { c.InteractionRadius = 0 },
		"NaN radius":      func(c *Config) { c.InteractionRadius = math.NaN() },
		"infinite radius": func(c *Config) { c.InteractionRadius = math.Inf(1) },
		"NaN damping":     func(c *Config) { c.Damping = math.NaN() },
		"zero damping":    func(c *Config) { c.Damping = 0 },
		"damping above 1": func(c *Config) { c.Damping = 3 },
		"negative damp":   func(c *Config) { c.Damping = -2 },
		"negative margin": func(c *Config) { c.Margin.Low = -1 },
		"margin too wide": func(c *Config) { c.Margin = Margin{Low: 300, High: 300} },
		"group too large": func(c *Config) { c.GroupSize = c.MaxGroupSize + 1 },
		"empty label":     func(c *Config) { c.Groups = []string{"red", ""} },
		"duplicate label": func(c *Config) { c.Groups = []string{"red", "red"} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, IsInputError(err))
		})
	}
}

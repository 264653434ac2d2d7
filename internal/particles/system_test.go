package particles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Seed = 42
	return cfg
}

func newTestSystem(t *testing.T, cfg Config) *System {
	t.Helper()
	s, err := NewSystem(cfg)
	require.NoError(t, err)
	return s
}

// place installs hand-built groups and a uniform rule g for every pair.
func place(s *System, g float64, groups map[string][]Particle, order ...string) {
	s.order = order
	s.groups = make(map[string][]Particle, len(order))
	for _, label := range order {
		ps := groups[label]
		for i := range ps {
			ps[i].Group = label
		}
		s.groups[label] = ps
	}
	rm := NewRuleMatrix()
	for _, from := range order {
		for _, to := range order {
			rm.Set(from, to, g)
		}
	}
	s.rules = rm
}

func TestGenerateGroups_PositionsInsideArea(t *testing.T) {
	for _, spawn := range []string{SpawnUniform, SpawnNoise} {
		t.Run(spawn, func(t *testing.T) {
			cfg := testConfig()
			cfg.Spawn = spawn
			s := newTestSystem(t, cfg)

			require.NoError(t, s.GenerateGroups(GroupSpec{"red", 300}, GroupSpec{"blue", 0}))

			snap := s.Particles()
			assert.Equal(t, []string{"red", "blue"}, snap.Labels())

			red, ok := snap.Group("red")
			require.True(t, ok)
			require.Len(t, red, 300)
			for _, p := range red {
				assert.GreaterOrEqual(t, p.X, 0)
				assert.Less(t, p.X, cfg.Width)
				assert.GreaterOrEqual(t, p.Y, 0)
				assert.Less(t, p.Y, cfg.Height)
				assert.Equal(t, 0.0, p.VX)
				assert.Equal(t, 0.0, p.VY)
				assert.Equal(t, "red", p.Group)
			}

			blue, ok := snap.Group("blue")
			require.True(t, ok, "zero count still creates the group")
			assert.Empty(t, blue)
		})
	}
}

func TestGenerateGroups_ReplacesExistingGroupInPlace(t *testing.T) {
	s := newTestSystem(t, testConfig())
	require.NoError(t, s.GenerateGroups(GroupSpec{"red", 5}, GroupSpec{"blue", 5}))
	require.NoError(t, s.GenerateGroups(GroupSpec{"red", 7}))

	snap := s.Particles()
	assert.Equal(t, []string{"red", "blue"}, snap.Labels())
	red, _ := snap.Group("red")
	assert.Len(t, red, 7)
}

func TestGenerateGroups_InvalidCountChangesNothing(t *testing.T) {
	s := newTestSystem(t, testConfig())
	require.NoError(t, s.GenerateGroups(GroupSpec{"red", 10}))
	before := s.Particles()

	err := s.GenerateGroups(GroupSpec{"red", 5}, GroupSpec{"blue", -1})
	require.Error(t, err)
	assert.True(t, IsInputError(err))

	err = s.GenerateGroups(GroupSpec{"green", s.cfg.MaxGroupSize + 1})
	assert.True(t, IsInputError(err))

	assert.Equal(t, before, s.Particles())
}

func TestGenerateRules_CoversEveryPair(t *testing.T) {
	s := newTestSystem(t, testConfig())
	labels := []string{"red", "blue", "green", "yellow"}
	require.NoError(t, s.GenerateGroups(Specs(labels, 3)...))
	s.GenerateRules()

	rm := s.Rules()
	assert.Equal(t, labels, rm.Labels())
	for _, from := range labels {
		assert.Equal(t, labels, rm.Columns(from))
		for _, to := range labels {
			g, ok := rm.Get(from, to)
			require.True(t, ok, "%s -> %s", from, to)
			assert.GreaterOrEqual(t, g, -1.0)
			assert.Less(t, g, 1.0)
		}
	}
}

func TestGenerateRules_DiscardsPreviousMatrix(t *testing.T) {
	s := newTestSystem(t, testConfig())
	require.NoError(t, s.GenerateGroups(GroupSpec{"red", 1}))
	s.ReplaceRules(RulesFromMap(map[string]map[string]float64{
		"red":    {"red": 5},
		"purple": {"red": 1},
	}))

	s.GenerateRules()

	rm := s.Rules()
	assert.Equal(t, []string{"red"}, rm.Labels())
	g, _ := rm.Get("red", "red")
	assert.NotEqual(t, 5.0, g)
}

func TestStep_EmptySystem(t *testing.T) {
	s := newTestSystem(t, testConfig())

	require.NoError(t, s.Step())

	assert.True(t, s.Particles().Empty())
	assert.Equal(t, uint64(0), s.Tick())
}

func TestStep_NoForceAtInteractionRadius(t *testing.T) {
	s := newTestSystem(t, testConfig())
	place(s, 0.8, map[string][]Particle{
		"red": {{X: 100, Y: 100}, {X: 180, Y: 100}},
	}, "red")

	require.NoError(t, s.Step())

	for _, p := range s.groups["red"] {
		assert.Equal(t, 0.0, p.VX)
		assert.Equal(t, 0.0, p.VY)
	}
	assert.Equal(t, 100, s.groups["red"][0].X)
	assert.Equal(t, 180, s.groups["red"][1].X)
}

func TestStep_ForceFollowsCoefficientSign(t *testing.T) {
	for _, g := range []float64{0.8, -0.8} {
		s := newTestSystem(t, testConfig())
		place(s, g, map[string][]Particle{
			"red":  {{X: 100, Y: 100}},
			"blue": {{X: 179, Y: 100}},
		}, "red", "blue")

		require.NoError(t, s.Step())

		a := s.groups["red"][0]
		b := s.groups["blue"][0]
		// Velocity is the halved force; along a-b its sign is the sign of g.
		assert.InDelta(t, -g/2, a.VX, 1e-12)
		assert.InDelta(t, g/2, b.VX, 1e-12)
		assert.Equal(t, 0.0, a.VY)
		assert.Greater(t, a.VX*float64(100-179)*g, 0.0)
	}
}

func TestStep_CoincidentParticlesExertNoForce(t *testing.T) {
	s := newTestSystem(t, testConfig())
	place(s, 1, map[string][]Particle{
		"red": {{X: 300, Y: 300}, {X: 300, Y: 300}},
	}, "red")

	require.NoError(t, s.Step())

	for _, p := range s.groups["red"] {
		assert.Equal(t, 0.0, p.VX)
		assert.Equal(t, 0.0, p.VY)
	}
}

func TestStep_ReadsPositionsFromStartOfTick(t *testing.T) {
	s := newTestSystem(t, testConfig())
	// a sits 64 from both b and c; b and c are out of range of each other.
	place(s, -16, map[string][]Particle{
		"red": {{X: 100, Y: 100}, {X: 100, Y: 164}, {X: 164, Y: 100}},
	}, "red")

	require.NoError(t, s.Step())

	a, b, c := s.groups["red"][0], s.groups["red"][1], s.groups["red"][2]
	assert.Equal(t, Particle{X: 108, Y: 108, VX: 8, VY: 8, Group: "red"}, a)
	// b only feels a at its old position, straight above it.
	assert.Equal(t, Particle{X: 100, Y: 156, VX: 0, VY: -8, Group: "red"}, b)
	assert.Equal(t, Particle{X: 156, Y: 100, VX: -8, VY: 0, Group: "red"}, c)
	assert.Equal(t, uint64(1), s.Tick())
}

func TestStep_VelocityTruncatesTowardZero(t *testing.T) {
	s := newTestSystem(t, testConfig())
	place(s, 0, map[string][]Particle{
		"red": {{X: 400, Y: 300, VX: 3.8, VY: -3.8}},
	}, "red")

	require.NoError(t, s.Step())

	p := s.groups["red"][0]
	assert.InDelta(t, 1.9, p.VX, 1e-12)
	assert.InDelta(t, -1.9, p.VY, 1e-12)
	assert.Equal(t, 401, p.X)
	assert.Equal(t, 299, p.Y)
}

func TestStep_ReflectsAtWalls(t *testing.T) {
	s := newTestSystem(t, testConfig())
	place(s, 0, map[string][]Particle{
		"red": {
			{X: 0, Y: 300, VX: -4},
			{X: 400, Y: 300, VX: 6, VY: -6},
			{X: 798, Y: 598, VX: 4, VY: 4},
		},
	}, "red")

	require.NoError(t, s.Step())

	edge, inside, corner := s.groups["red"][0], s.groups["red"][1], s.groups["red"][2]
	assert.Equal(t, -2, edge.X)
	assert.Equal(t, 2.0, edge.VX, "low edge flips vx")
	assert.Equal(t, 0.0, edge.VY)

	assert.Equal(t, 3.0, inside.VX, "interior keeps its direction")
	assert.Equal(t, -3.0, inside.VY)

	assert.Equal(t, -2.0, corner.VX)
	assert.Equal(t, -2.0, corner.VY)
}

func TestStep_ReflectsAtInsetMargins(t *testing.T) {
	cfg := testConfig()
	cfg.Margin = Margin{Low: 10, High: 10}
	s := newTestSystem(t, cfg)
	place(s, 0, map[string][]Particle{
		"red": {
			{X: 12, Y: 300, VX: -6},
			{X: 788, Y: 300, VX: 6},
			{X: 400, Y: 12, VY: -6},
		},
	}, "red")

	require.NoError(t, s.Step())

	assert.Equal(t, 3.0, s.groups["red"][0].VX)
	assert.Equal(t, -3.0, s.groups["red"][1].VX)
	assert.Equal(t, 3.0, s.groups["red"][2].VY)
}

func TestStep_MissingRuleIsReportedBeforeMoving(t *testing.T) {
	s := newTestSystem(t, testConfig())
	require.NoError(t, s.GenerateGroups(GroupSpec{"red", 20}, GroupSpec{"blue", 20}))
	s.ReplaceRules(RulesFromMap(map[string]map[string]float64{"red": {"red": 1}}))
	before := s.Particles()

	err := s.Step()

	require.Error(t, err)
	assert.True(t, IsMissingRuleError(err))
	assert.Contains(t, err.Error(), "blue")
	assert.Equal(t, before, s.Particles())
	assert.Equal(t, uint64(0), s.Tick())
}

func TestStep_EmptyGroupNeedsNoRules(t *testing.T) {
	s := newTestSystem(t, testConfig())
	require.NoError(t, s.GenerateGroups(GroupSpec{"red", 5}, GroupSpec{"blue", 0}))
	s.ReplaceRules(RulesFromMap(map[string]map[string]float64{"red": {"red": 0.1}}))

	assert.NoError(t, s.Step())
}

func TestResizePopulation_ZeroCount(t *testing.T) {
	s := newTestSystem(t, testConfig())
	require.NoError(t, s.GenerateGroups(GroupSpec{"red", 10}, GroupSpec{"violet", 10}))
	labels := []string{"red", "blue", "green"}

	require.NoError(t, s.ResizePopulation(0, labels))

	snap := s.Particles()
	assert.Equal(t, labels, snap.Labels())
	for _, l := range labels {
		ps, ok := snap.Group(l)
		require.True(t, ok)
		assert.Empty(t, ps)
	}
	rm := s.Rules()
	assert.Equal(t, labels, rm.Labels())
	for _, from := range labels {
		assert.Equal(t, labels, rm.Columns(from))
	}
}

func TestResizePopulation_RejectsBadCount(t *testing.T) {
	s := newTestSystem(t, testConfig())
	require.NoError(t, s.ResizePopulation(4, DefaultGroups))
	before, rules := s.Particles(), s.Rules()

	for _, n := range []int{-1, s.cfg.MaxGroupSize + 1} {
		err := s.ResizePopulation(n, DefaultGroups)
		require.Error(t, err)
		assert.True(t, IsInputError(err))
	}

	assert.Equal(t, before, s.Particles())
	assert.Equal(t, rules, s.Rules())
}

func TestReplaceRules_ReadBackUnchanged(t *testing.T) {
	s := newTestSystem(t, testConfig())
	rm := NewRuleMatrix()
	rm.Set("yellow", "red", 3.5)
	rm.Set("yellow", "ghost", -0.125)
	rm.Set("red", "yellow", 0)

	s.ReplaceRules(rm)
	got := s.Rules()

	assert.Equal(t, rm.Labels(), got.Labels())
	assert.Equal(t, rm.Map(), got.Map())
	assert.Equal(t, []string{"red", "ghost"}, got.Columns("yellow"))

	// The system keeps its own copy.
	rm.Set("yellow", "red", 0)
	g, _ := s.Rules().Get("yellow", "red")
	assert.Equal(t, 3.5, g)
}

func TestSnapshot_IsIsolatedFromLiveState(t *testing.T) {
	s := newTestSystem(t, testConfig())
	require.NoError(t, s.GenerateGroups(GroupSpec{"red", 3}))
	s.GenerateRules()

	snap := s.Particles()
	red, _ := snap.Group("red")
	red[0].X = -1000

	live, _ := s.Particles().Group("red")
	assert.NotEqual(t, -1000, live[0].X)
}

func TestSeededSystemsAreReproducible(t *testing.T) {
	run := func() Snapshot {
		s := newTestSystem(t, testConfig())
		require.NoError(t, s.GenerateGroups(Specs(DefaultGroups, 30)...))
		s.GenerateRules()
		for iter := 0; iter < 10; iter++ {
			require.NoError(t, s.Step())
		}
		return s.Particles()
	}
	assert.Equal(t, run(), run())
}

package particles

import (
	"math/rand"
	"time"

	"github.com/aquilax/go-perlin"
)

// System owns every particle group and the rule matrix of one simulation.
// It is not safe for concurrent use; share it through an Engine.
type System struct {
	cfg    Config
	rng    *rand.Rand
	noise  *perlin.Perlin
	order  []string
	groups map[string][]Particle
	rules  RuleMatrix
	tick   uint64
}

// NewSystem creates an empty system. No groups exist until GenerateGroups.
func NewSystem(cfg Config) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	return &System{
		cfg:    cfg,
		rng:    rng,
		noise:  perlin.NewPerlin(2, 2, 3, rng.Int63()),
		groups: make(map[string][]Particle),
		rules:  NewRuleMatrix(),
	}, nil
}

// Config returns the construction parameters.
func (s *System) Config() Config {
	return s.cfg
}

// Tick is the number of ticks applied so far.
func (s *System) Tick() uint64 {
	return s.tick
}

// Empty reports whether no group has been generated yet.
func (s *System) Empty() bool {
	return len(s.order) == 0
}

// GenerateGroups creates Count particles for each spec at random positions
// with zero velocity, replacing any existing group of the same label. Counts
// are checked up front so a bad spec leaves every group as it was.
func (s *System) GenerateGroups(specs ...GroupSpec) error {
	for _, spec := range specs {
		if err := s.checkCount(spec.Count); err != nil {
			return err
		}
		if spec.Label == "" {
			return newInputError("label", spec.Label, "must not be empty")
		}
	}
	for _, spec := range specs {
		group := make([]Particle, spec.Count)
		for i := range group {
			x, y := s.spawn()
			group[i] = Particle{X: x, Y: y, Group: spec.Label}
		}
		if _, ok := s.groups[spec.Label]; !ok {
			s.order = append(s.order, spec.Label)
		}
		s.groups[spec.Label] = group
	}
	return nil
}

func (s *System) checkCount(n int) error {
	if n < 0 || n > s.cfg.MaxGroupSize {
		return newInputError("count", n, "must be between 0 and max_group_size")
	}
	return nil
}

// GenerateRules draws a fresh coefficient in [-1, 1) for every ordered pair
// of current groups, self pairs included, discarding the previous matrix.
func (s *System) GenerateRules() {
	rm := NewRuleMatrix()
	for _, from := range s.order {
		for _, to := range s.order {
			rm.Set(from, to, s.rng.Float64()*2-1)
		}
	}
	s.rules = rm
}

// Particles returns a copy of every group.
func (s *System) Particles() Snapshot {
	return newSnapshot(s.tick, s.order, s.groups)
}

// Rules returns a copy of the rule matrix.
func (s *System) Rules() RuleMatrix {
	return s.rules.Clone()
}

// ReplaceRules installs rm as is. It is not checked against the current
// groups; a gap surfaces as a MissingRuleError on the next Step.
func (s *System) ReplaceRules(rm RuleMatrix) {
	s.rules = rm.Clone()
}

// ResizePopulation drops every group, regenerates each label with count
// particles and draws a new rule matrix for the resulting group set.
func (s *System) ResizePopulation(count int, labels []string) error {
	if err := s.checkCount(count); err != nil {
		return err
	}
	for _, l := range labels {
		if l == "" {
			return newInputError("label", l, "must not be empty")
		}
	}
	s.order = nil
	s.groups = make(map[string][]Particle, len(labels))
	if err := s.GenerateGroups(Specs(labels, count)...); err != nil {
		return err
	}
	s.GenerateRules()
	return nil
}

// spawn picks a start position inside [0, width) x [0, height).
func (s *System) spawn() (int, int) {
	if s.cfg.Spawn == SpawnNoise {
		for iter := 0; iter < noiseAttempts; iter++ {
			x, y := s.rng.Intn(s.cfg.Width), s.rng.Intn(s.cfg.Height)
			// Noise2D is roughly in [-1, 1]; keep the candidate with that density.
			density := (s.noise.Noise2D(float64(x)*noiseScale, float64(y)*noiseScale) + 1) / 2
			if s.rng.Float64() < density {
				return x, y
			}
		}
	}
	return s.rng.Intn(s.cfg.Width), s.rng.Intn(s.cfg.Height)
}

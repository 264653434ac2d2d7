package particles

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Engine is the shared handle callers use to drive one System. Each
// operation holds the engine exclusively from start to finish, so callers
// observe operations in the order the lock was granted and never see a
// half-applied tick.
//
// If an operation panics the engine is poisoned: the panic is returned as a
// *PoisonedError and every later call fails with ErrEngineUnusable until
// Reset builds a fresh System.
type Engine struct {
	mu     sync.Mutex
	cfg    Config
	sys    *System
	poison *PoisonedError
	log    *slog.Logger
}

// NewEngine validates cfg and returns an engine with no groups yet.
func NewEngine(cfg Config, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	sys, err := NewSystem(cfg)
	if err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, sys: sys, log: logger}, nil
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() Config {
	return e.cfg
}

func (e *Engine) do(op string, fn func(*System) error) (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.poison != nil {
		return fmt.Errorf("%s: %w", op, e.poison)
	}
	defer func() {
		if r := recover(); r != nil {
			e.poison = &PoisonedError{Op: op, Cause: r}
			e.log.Error("engine poisoned", "op", op, "panic", r)
			err = e.poison
		}
	}()
	return fn(e.sys)
}

// Init generates the default groups and their rules the first time it is
// called and returns the current particles. Later calls only read.
func (e *Engine) Init() (Snapshot, error) {
	var snap Snapshot
	err := e.do("init", func(s *System) error {
		if s.Empty() {
			if err := s.GenerateGroups(Specs(e.cfg.Groups, e.cfg.GroupSize)...); err != nil {
				return err
			}
			s.GenerateRules()
			e.log.Debug("generated population", "groups", len(e.cfg.Groups), "group_size", e.cfg.GroupSize)
		}
		snap = s.Particles()
		return nil
	})
	return snap, err
}

// Step applies one tick and returns the particles as they are after it.
func (e *Engine) Step() (Snapshot, error) {
	var snap Snapshot
	err := e.do("step", func(s *System) error {
		if err := s.Step(); err != nil {
			return err
		}
		snap = s.Particles()
		return nil
	})
	return snap, err
}

// Particles returns the current particles without stepping.
func (e *Engine) Particles() (Snapshot, error) {
	var snap Snapshot
	err := e.do("particles", func(s *System) error {
		snap = s.Particles()
		return nil
	})
	return snap, err
}

// Rules returns a copy of the rule matrix.
func (e *Engine) Rules() (RuleMatrix, error) {
	var rm RuleMatrix
	err := e.do("rules", func(s *System) error {
		rm = s.Rules()
		return nil
	})
	return rm, err
}

// SetRules replaces the whole rule matrix with rm.
func (e *Engine) SetRules(rm RuleMatrix) error {
	return e.do("set_rules", func(s *System) error {
		s.ReplaceRules(rm)
		e.log.Debug("rules replaced", "rows", rm.Len())
		return nil
	})
}

// RandomizeRules draws a new matrix for the current groups.
func (e *Engine) RandomizeRules() (RuleMatrix, error) {
	var rm RuleMatrix
	err := e.do("randomize_rules", func(s *System) error {
		s.GenerateRules()
		rm = s.Rules()
		return nil
	})
	return rm, err
}

// Resize regenerates every default group with count particles and draws new
// rules. An out of range count is an *InputError and changes nothing.
func (e *Engine) Resize(count int) (Snapshot, error) {
	var snap Snapshot
	err := e.do("resize", func(s *System) error {
		if err := s.ResizePopulation(count, e.cfg.Groups); err != nil {
			return err
		}
		e.log.Debug("population resized", "group_size", count)
		snap = s.Particles()
		return nil
	})
	return snap, err
}

// Reset discards the current system, poisoned or not, and starts over with
// an empty one built from the original configuration.
func (e *Engine) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	sys, err := NewSystem(e.cfg)
	if err != nil {
		return err
	}
	e.sys = sys
	e.poison = nil
	e.log.Info("engine reset")
	return nil
}

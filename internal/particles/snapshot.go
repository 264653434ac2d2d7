package particles

import (
	"bytes"
	"encoding/json"
)

// Snapshot is a point-in-time copy of every group. It shares no memory with
// the live system, so callers may keep or modify it freely.
//
// Tick is the number of completed ticks at the moment the copy was taken.
// It is not part of the JSON form, which is a plain object keyed by group
// label in generation order.
type Snapshot struct {
	Tick   uint64
	order  []string
	groups map[string][]Particle
}

func newSnapshot(tick uint64, order []string, groups map[string][]Particle) Snapshot {
	s := Snapshot{
		Tick:   tick,
		order:  append([]string(nil), order...),
		groups: make(map[string][]Particle, len(order)),
	}
	for _, label := range order {
		s.groups[label] = append([]Particle{}, groups[label]...)
	}
	return s
}

// Labels returns the group labels in generation order.
func (s Snapshot) Labels() []string {
	return append([]string(nil), s.order...)
}

// Group returns the particles of one group and whether the group exists.
func (s Snapshot) Group(label string) ([]Particle, bool) {
	ps, ok := s.groups[label]
	return ps, ok
}

// Len is the total number of particles across all groups.
func (s Snapshot) Len() int {
	n := 0
	for _, ps := range s.groups {
		n += len(ps)
	}
	return n
}

// Empty reports whether the snapshot holds no groups at all.
func (s Snapshot) Empty() bool {
	return len(s.order) == 0
}

// All flattens the snapshot in group order.
func (s Snapshot) All() []Particle {
	out := make([]Particle, 0, s.Len())
	for _, label := range s.order {
		out = append(out, s.groups[label]...)
	}
	return out
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	return writeObject(s.order, func(label string) (any, error) {
		return s.groups[label], nil
	})
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	out := Snapshot{Tick: s.Tick, groups: make(map[string][]Particle)}
	dec := json.NewDecoder(bytes.NewReader(data))
	err := readObject(dec, func(label string, dec *json.Decoder) error {
		ps := []Particle{}
		if err := dec.Decode(&ps); err != nil {
			return err
		}
		if ps == nil {
			ps = []Particle{}
		}
		if _, ok := out.groups[label]; !ok {
			out.order = append(out.order, label)
		}
		out.groups[label] = ps
		return nil
	})
	if err != nil {
		return err
	}
	*s = out
	return nil
}

// Frame is the streaming envelope of a snapshot.
type Frame struct {
	Tick      uint64   `json:"tick"`
	Particles Snapshot `json:"particles"`
}

// NewFrame wraps s with its tick counter.
func NewFrame(s Snapshot) Frame {
	return Frame{Tick: s.Tick, Particles: s}
}

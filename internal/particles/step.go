package particles

import "math"

// Step advances the simulation by one tick.
//
// Every particle is pulled or pushed by every other particle closer than the
// interaction radius, using positions copied before the tick started. The
// accumulated force is added to the velocity and the sum is halved, the
// truncated velocity moves the particle, and a particle that reached a wall
// has that velocity component negated.
//
// A missing coefficient between two populated groups is reported before any
// particle moves. A system with no groups is left as is.
func (s *System) Step() error {
	if s.Empty() {
		return nil
	}
	coeff, err := s.coefficients()
	if err != nil {
		return err
	}

	type body struct {
		x, y  int
		group int
	}
	snapshot := make([]body, 0, s.count())
	for gi, label := range s.order {
		for _, p := range s.groups[label] {
			snapshot = append(snapshot, body{x: p.X, y: p.Y, group: gi})
		}
	}

	radius := s.cfg.InteractionRadius
	damping := s.cfg.Damping
	lowX, highX := s.cfg.Margin.Low, s.cfg.Width-s.cfg.Margin.High
	lowY, highY := s.cfg.Margin.Low, s.cfg.Height-s.cfg.Margin.High

	for ai, label := range s.order {
		row := coeff[ai]
		group := s.groups[label]
		for i := range group {
			a := &group[i]
			var fx, fy float64
			for _, b := range snapshot {
				dx := a.X - b.x
				dy := a.Y - b.y
				d := math.Sqrt(float64(dx*dx + dy*dy))
				if d > 0 && d < radius {
					f := row[b.group] / d
					fx += f * float64(dx)
					fy += f * float64(dy)
				}
			}
			a.VX = (a.VX + fx) * damping
			a.VY = (a.VY + fy) * damping

			a.X += int(a.VX)
			a.Y += int(a.VY)

			if a.X <= lowX || a.X >= highX {
				a.VX = -a.VX
			}
			if a.Y <= lowY || a.Y >= highY {
				a.VY = -a.VY
			}
		}
	}
	s.tick++
	return nil
}

// coefficients resolves the rule matrix into a dense table indexed by group
// position. Only pairs of non-empty groups are required.
func (s *System) coefficients() ([][]float64, error) {
	table := make([][]float64, len(s.order))
	for i, from := range s.order {
		table[i] = make([]float64, len(s.order))
		if len(s.groups[from]) == 0 {
			continue
		}
		for j, to := range s.order {
			if len(s.groups[to]) == 0 {
				continue
			}
			g, ok := s.rules.Get(from, to)
			if !ok {
				return nil, &MissingRuleError{From: from, To: to}
			}
			table[i][j] = g
		}
	}
	return table, nil
}

func (s *System) count() int {
	n := 0
	for _, ps := range s.groups {
		n += len(ps)
	}
	return n
}

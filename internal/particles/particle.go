package particles

// Particle is a single member of a group. The group label never changes after
// generation; position and velocity are rewritten every tick.
type Particle struct {
	X     int     `json:"x"`
	Y     int     `json:"y"`
	VX    float64 `json:"vx"`
	VY    float64 `json:"vy"`
	Group string  `json:"color"`
}

// GroupSpec asks for Count particles labelled Label.
type GroupSpec struct {
	Label string `json:"label" yaml:"label"`
	Count int    `json:"count" yaml:"count"`
}

// Specs builds one GroupSpec per label, all with the same count.
func Specs(labels []string, count int) []GroupSpec {
	out := make([]GroupSpec, len(labels))
	for i, l := range labels {
		out[i] = GroupSpec{Label: l, Count: count}
	}
	return out
}

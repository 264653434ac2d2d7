// Package particles is the particle-life simulation engine: coloured groups
// of particles that attract or repel each other according to a matrix of
// per-group coefficients.
//
// A System holds the state and is driven synchronously. An Engine wraps one
// System behind a mutex for callers on different goroutines, such as the
// HTTP server, the ebiten viewer or the terminal renderer; the engine never
// ticks on its own.
package particles

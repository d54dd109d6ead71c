package control

import "sync"

// Manual passes a level set from outside the simulation loop, such as key
// presses in the live view. It is safe to Set while a run is in progress.
type Manual struct {
	mu sync.Mutex
	u  []float64
}

func NewManual(dim int) *Manual {
	return &Manual{u: make([]float64, dim)}
}

// Set updates the level of input ch. Out of range channels are ignored.
func (m *Manual) Set(ch int, v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ch >= 0 && ch < len(m.u) {
		m.u[ch] = v
	}
}

// Nudge adds delta to input ch and returns the new level.
func (m *Manual) Nudge(ch int, delta float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ch < 0 || ch >= len(m.u) {
		return 0
	}
	m.u[ch] += delta
	return m.u[ch]
}

func (m *Manual) Compute(y []float64, t float64) []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]float64, len(m.u))
	copy(out, m.u)
	return out
}

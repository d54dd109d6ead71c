package metrics

// Energy integrates the squared outputs over time, sum y_i^2 * dt.
type Energy struct {
	name    string
	total   float64
	prevT   float64
	samples int
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(y, u []float64, t float64) {
	if e.samples > 0 {
		dt := t - e.prevT
		for _, v := range y {
			e.total += v * v * dt
		}
	}
	e.prevT = t
	e.samples++
}

func (e *Energy) Value() float64 {
	return e.total
}

func (e *Energy) Reset() {
	e.total = 0
	e.prevT = 0
	e.samples = 0
}

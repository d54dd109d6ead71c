package control

type None struct {
	dim int
}

func NewNone(dim int) *None {
	return &None{
		dim: dim,
	}
}

func (n *None) Compute(y []float64, t float64) []float64 {
	return make([]float64, n.dim)
}

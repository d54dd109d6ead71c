package control

// Feedback is static output feedback: u = K·(Target - y). K has one row per
// input and one column per output; missing targets are zero.
type Feedback struct {
	K      [][]float64
	Target []float64
}

func NewFeedback(k [][]float64, target []float64) *Feedback {
	return &Feedback{K: k, Target: target}
}

// NewUnityFeedback closes a single loop with proportional gain kp.
func NewUnityFeedback(kp, target float64) *Feedback {
	return NewFeedback([][]float64{{kp}}, []float64{target})
}

func (f *Feedback) Compute(y []float64, t float64) []float64 {
	u := make([]float64, len(f.K))
	for i := range u {
		for j := range y {
			target := 0.0
			if j < len(f.Target) {
				target = f.Target[j]
			}
			if j < len(f.K[i]) {
				u[i] += f.K[i][j] * (target - y[j])
			}
		}
	}
	return u
}

package control

// PID drives output 0 toward Target through input 0. Other inputs stay zero.
type PID struct {
	Kp       float64
	Ki       float64
	Kd       float64
	Target   float64
	Inputs   int
	integral float64
	prevErr  float64
	prevT    float64
	first    bool
}

func NewPID(kp, ki, kd, target float64) *PID {
	return &PID{
		Kp:     kp,
		Ki:     ki,
		Kd:     kd,
		Target: target,
		Inputs: 1,
		first:  true,
	}
}

func (p *PID) control(v float64) []float64 {
	n := p.Inputs
	if n < 1 {
		n = 1
	}
	u := make([]float64, n)
	u[0] = v
	return u
}

func (p *PID) Compute(y []float64, t float64) []float64 {
	if len(y) < 1 {
		return p.control(0)
	}

	err := p.Target - y[0]

	if p.first {
		p.prevErr = err
		p.prevT = t
		p.first = false
		return p.control(p.Kp * err)
	}

	dt := t - p.prevT
	if dt > 0 {
		p.integral += err * dt
		derivative := (err - p.prevErr) / dt

		u := p.Kp*err + p.Ki*p.integral + p.Kd*derivative

		p.prevErr = err
		p.prevT = t

		return p.control(u)
	}
	return p.control(p.Kp * err)
}

// Reset clears integral and derivative state
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.first = true
}

// GetParams returns tunable parameters for live adjustment
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp":     p.Kp,
		"Ki":     p.Ki,
		"Kd":     p.Kd,
		"Target": p.Target,
	}
}

// SetParam adjusts a PID parameter
func (p *PID) SetParam(name string, value float64) {
	switch name {
	case "Kp":
		p.Kp = value
	case "Ki":
		p.Ki = value
	case "Kd":
		p.Kd = value
	case "Target":
		p.Target = value
	}
}

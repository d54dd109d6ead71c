// Package control provides closed-loop input sources that compute u from the
// previous output of the simulated system:
//
//   - [PID]: Proportional-Integral-Derivative control of one output
//   - [Feedback]: static output feedback u = K·(r - y)
//   - [Manual]: a level set from outside, e.g. by the live view
//   - [None]: zero input
//
// # Usage
//
//	pid := control.NewPID(2.0, 1.0, 0.05, 1.0) // Kp, Ki, Kd, setpoint
//	s := sim.New(model, pid)
//
// PID exposes GetParams/SetParam so the live view can retune it while it runs.
package control

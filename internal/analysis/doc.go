// Package analysis inspects simulated responses.
//
//   - [PowerSpectrum]: one-sided amplitude spectrum of a sampled signal
//   - [DominantFrequency]: strongest non-DC frequency in Hz
//   - [NewPhasePortrait]: two state variables plotted against each other
//
// # Ringing
//
// For an underdamped second order plant the dominant frequency of the step
// response sits near the damped natural frequency:
//
//	f, _ := analysis.DominantFrequency(result.Output(0), result.Dt)
//	// f ≈ wn*sqrt(1-zeta^2) / (2*pi)
package analysis

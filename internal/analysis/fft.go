package analysis

import (
	"errors"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

var ErrTooShort = errors.New("analysis: need at least two samples")

// PowerSpectrum returns |X_k| for k = 0..n/2 of the mean-removed signal.
// Any length is accepted.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	bins := fft.FFTReal(centered)
	ps := make([]float64, len(bins)/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(bins[i])
	}
	return ps
}

// FrequencyAxis returns the frequency in Hz of every bin of PowerSpectrum for
// n samples spaced dt apart.
func FrequencyAxis(n int, dt float64) []float64 {
	if n < 2 {
		return nil
	}
	freqs := make([]float64, n/2+1)
	for i := range freqs {
		freqs[i] = float64(i) / (float64(n) * dt)
	}
	return freqs
}

// DominantFrequency returns the frequency in Hz of the strongest bin above DC.
func DominantFrequency(data []float64, dt float64) (float64, error) {
	ps := PowerSpectrum(data)
	if len(ps) < 2 {
		return 0, ErrTooShort
	}
	best := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[best] {
			best = i
		}
	}
	return float64(best) / (float64(len(data)) * dt), nil
}

// Package signal implements lag estimation and stuck-sample detection for sampled signals.
package signal

import "gonum.org/v1/gonum/stat"

// Diff returns the successive differences s[i+1]-s[i]. The result has len(s)-1
// elements, or none when s has fewer than two samples.
func Diff(s []float64) []float64 {
	if len(s) < 2 {
		return nil
	}
	out := make([]float64, len(s)-1)
	for i := range out {
		out[i] = s[i+1] - s[i]
	}
	return out
}

// MeanInterval returns the mean sample interval of a time base, or 0 when
// there are fewer than two timestamps.
func MeanInterval(time []float64) float64 {
	dt := Diff(time)
	if len(dt) == 0 {
		return 0
	}
	return stat.Mean(dt, nil)
}

// Rate returns the finite-difference rate dx/dt between consecutive samples.
// Intervals of zero length yield 0 for that step.
func Rate(time, s []float64) ([]float64, error) {
	if len(time) != len(s) {
		return nil, lengthMismatch("time", len(time), "signal", len(s))
	}
	dt := Diff(time)
	dx := Diff(s)
	out := make([]float64, len(dx))
	for i := range dx {
		if dt[i] == 0 {
			continue
		}
		out[i] = dx[i] / dt[i]
	}
	return out, nil
}

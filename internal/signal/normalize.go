// Package signal implements lag estimation and stuck-sample detection for sampled signals.
package signal

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Normalize returns a copy of s shifted to zero mean and scaled to unit L2 norm.
// A constant input has zero norm after centring; the centred (all-zero) copy is
// returned unscaled so that later dot products evaluate to 0 instead of NaN.
func Normalize(s []float64) []float64 {
	out := make([]float64, len(s))
	if len(s) == 0 {
		return out
	}
	copy(out, s)
	floats.AddConst(-stat.Mean(s, nil), out)
	norm := floats.Norm(out, 2)
	if norm == 0 {
		return out
	}
	for i := range out {
		out[i] /= norm
	}
	return out
}

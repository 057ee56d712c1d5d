// Package signal implements lag estimation and stuck-sample detection for sampled signals.
package signal

import "math"

// StuckEpsilon is the absolute step below which two consecutive samples are
// considered identical. It only catches exact or near-exact repeats.
const StuckEpsilon = 1e-17

// StuckSample marks the midpoint between sample Index and Index+1 of a signal
// whose value did not change.
type StuckSample struct {
	Index int     `json:"index" yaml:"index"`
	Time  float64 `json:"time" yaml:"time"`
	Value float64 `json:"value" yaml:"value"`
}

// StuckReport lists the stuck samples found in one signal.
type StuckReport struct {
	Name    string        `json:"name" yaml:"name"`
	Samples []StuckSample `json:"samples" yaml:"samples"`
}

// Count returns the number of stuck samples.
func (r StuckReport) Count() int {
	return len(r.Samples)
}

// DetectStuck reports every i where |s[i+1]-s[i]| < StuckEpsilon.
func DetectStuck(name string, time, s []float64) (StuckReport, error) {
	return DetectStuckThreshold(name, time, s, StuckEpsilon)
}

// DetectStuckThreshold is DetectStuck with a caller-provided threshold. The
// comparison is strict: a step exactly equal to eps is not stuck.
func DetectStuckThreshold(name string, time, s []float64, eps float64) (StuckReport, error) {
	if len(time) != len(s) {
		return StuckReport{}, lengthMismatch("time", len(time), name, len(s))
	}
	report := StuckReport{Name: name, Samples: []StuckSample{}}
	dt := Diff(time)
	dx := Diff(s)
	for i := range dx {
		// Written as !(a < eps) so NaN steps are never reported.
		if !(math.Abs(dx[i]) < eps) {
			continue
		}
		report.Samples = append(report.Samples, StuckSample{
			Index: i,
			Time:  time[i] + 0.5*dt[i],
			Value: s[i] + 0.5*dx[i],
		})
	}
	return report, nil
}

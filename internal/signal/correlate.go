// Package signal implements lag estimation and stuck-sample detection for sampled signals.
package signal

import (
	"fmt"
	"iter"

	"gonum.org/v1/gonum/floats"
)

// Window is a contiguous sample range [Start, End) of a signal.
type Window struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Len returns the number of samples covered by the window.
func (w Window) Len() int {
	return w.End - w.Start
}

// ShiftRange is the half-open interval [Min, Max) of candidate sample shifts.
type ShiftRange struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// DefaultShiftRange searches shifts 0 through 49.
var DefaultShiftRange = ShiftRange{Min: 0, Max: 50}

// CorrelationResult is the outcome of a shift search.
type CorrelationResult struct {
	Shift      int     `json:"shift" yaml:"shift"`
	Score      float64 `json:"score" yaml:"score"`
	TimeOffset float64 `json:"time_offset" yaml:"time_offset"`
}

// EstimateCorrelation finds the shift j in shifts for which the normalized
// window s2[Start+j:End+j] best matches the normalized reference window
// s1[Start:End]. Scores are cosine similarities of the mean-centred windows.
// When several shifts share the maximal score the smallest one wins.
// TimeOffset is Shift multiplied by meanDt.
func EstimateCorrelation(s1, s2 []float64, window Window, shifts ShiftRange, meanDt float64) (CorrelationResult, error) {
	if err := checkBounds(len(s1), len(s2), window, shifts); err != nil {
		return CorrelationResult{}, err
	}
	shift, score := BestShift(scoreShifts(s1, s2, window, shifts))
	return CorrelationResult{
		Shift:      shift,
		Score:      score,
		TimeOffset: float64(shift) * meanDt,
	}, nil
}

// ScoreShifts yields (shift, score) pairs in ascending shift order. The bounds
// are validated before the sequence is returned.
func ScoreShifts(s1, s2 []float64, window Window, shifts ShiftRange) (iter.Seq2[int, float64], error) {
	if err := checkBounds(len(s1), len(s2), window, shifts); err != nil {
		return nil, err
	}
	return scoreShifts(s1, s2, window, shifts), nil
}

// BestShift folds a score sequence to its maximum. A later shift replaces the
// current best only when its score is strictly greater. An empty sequence
// yields (0, 0).
func BestShift(scores iter.Seq2[int, float64]) (int, float64) {
	bestShift, bestScore := 0, 0.0
	first := true
	for shift, score := range scores {
		if first || score > bestScore {
			bestShift, bestScore = shift, score
			first = false
		}
	}
	return bestShift, bestScore
}

func scoreShifts(s1, s2 []float64, window Window, shifts ShiftRange) iter.Seq2[int, float64] {
	return func(yield func(int, float64) bool) {
		ref := Normalize(s1[window.Start:window.End])
		for j := shifts.Min; j < shifts.Max; j++ {
			cand := Normalize(s2[window.Start+j : window.End+j])
			if !yield(j, floats.Dot(ref, cand)) {
				return
			}
		}
	}
}

func checkBounds(n1, n2 int, window Window, shifts ShiftRange) error {
	if n1 != n2 {
		return lengthMismatch("signal1", n1, "signal2", n2)
	}
	if window.Start >= window.End {
		return fmt.Errorf("%w: empty window [%d, %d)", ErrPrecondition, window.Start, window.End)
	}
	if shifts.Min >= shifts.Max {
		return fmt.Errorf("%w: empty shift range [%d, %d)", ErrPrecondition, shifts.Min, shifts.Max)
	}
	if window.Start < 0 || window.End > n1 {
		return fmt.Errorf("%w: window [%d, %d) outside %d samples", ErrPrecondition, window.Start, window.End, n1)
	}
	// Start-Min >= 0 is the documented bound; Start+Min >= 0 additionally keeps
	// negative shifts from slicing before index 0.
	if window.Start-shifts.Min < 0 || window.Start+shifts.Min < 0 {
		return fmt.Errorf("%w: window start %d with min shift %d reads before index 0", ErrPrecondition, window.Start, shifts.Min)
	}
	if window.End+shifts.Max > n1 {
		return fmt.Errorf("%w: window end %d with max shift %d reads past %d samples", ErrPrecondition, window.End, shifts.Max, n1)
	}
	return nil
}

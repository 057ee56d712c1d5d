// Package model defines shared data structures.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/verte-zerg/sinecheck/internal/signal"
)

// Signal column names in a sine-test log.
const (
	SignalCmd = "cmd"
	SignalRef = "ref"
	SignalPos = "pos"
)

// SignalNames lists the analysed columns in file order.
var SignalNames = []string{SignalCmd, SignalRef, SignalPos}

// ErrInvalidPair is returned for malformed "first:second" pair specs.
var ErrInvalidPair = errors.New("invalid signal pair")

// Log holds the aligned columns of one sine-test log.
type Log struct {
	Path  string
	Joint string
	Time  []float64
	Cmd   []float64
	Ref   []float64
	Pos   []float64
}

// Len returns the number of samples.
func (l Log) Len() int {
	return len(l.Time)
}

// Signal returns the named column.
func (l Log) Signal(name string) ([]float64, bool) {
	switch name {
	case SignalCmd:
		return l.Cmd, true
	case SignalRef:
		return l.Ref, true
	case SignalPos:
		return l.Pos, true
	default:
		return nil, false
	}
}

// Pair names the reference signal and the signal searched for a lag.
type Pair struct {
	First  string
	Second string
}

// String renders the pair as "first:second".
func (p Pair) String() string {
	return p.First + ":" + p.Second
}

// DefaultPairs are command-to-reference and command-to-position.
var DefaultPairs = []Pair{
	{First: SignalCmd, Second: SignalRef},
	{First: SignalCmd, Second: SignalPos},
}

// ParsePair parses "cmd:ref" style specs.
func ParsePair(spec string) (Pair, error) {
	first, second, ok := strings.Cut(strings.TrimSpace(spec), ":")
	if !ok {
		return Pair{}, fmt.Errorf("%w %q (expected first:second)", ErrInvalidPair, spec)
	}
	p := Pair{First: strings.TrimSpace(first), Second: strings.TrimSpace(second)}
	for _, name := range []string{p.First, p.Second} {
		if !isSignalName(name) {
			return Pair{}, fmt.Errorf("%w %q (unknown signal %q, use %s)", ErrInvalidPair, spec, name, strings.Join(SignalNames, ", "))
		}
	}
	return p, nil
}

// ParsePairs parses a list of pair specs.
func ParsePairs(specs []string) ([]Pair, error) {
	pairs := make([]Pair, 0, len(specs))
	for _, spec := range specs {
		if strings.TrimSpace(spec) == "" {
			continue
		}
		p, err := ParsePair(spec)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}

func isSignalName(name string) bool {
	for _, n := range SignalNames {
		if n == name {
			return true
		}
	}
	return false
}

// AnalysisConfig defines how a log is analysed.
type AnalysisConfig struct {
	HalfWindow  int
	WindowStart int
	WindowEnd   int
	MinShift    int
	MaxShift    int
	Pairs       []Pair
	Epsilon     float64
}

// PairResult is the lag estimate for one signal pair.
type PairResult struct {
	First      string  `json:"first" yaml:"first"`
	Second     string  `json:"second" yaml:"second"`
	Shift      int     `json:"shift" yaml:"shift"`
	Score      float64 `json:"score" yaml:"score"`
	TimeOffset float64 `json:"time_offset" yaml:"time_offset"`
}

// Label renders the pair as "first->second".
func (r PairResult) Label() string {
	return r.First + "->" + r.Second
}

// StuckSummary is the stuck-sample report of one signal.
type StuckSummary struct {
	Signal  string               `json:"signal" yaml:"signal"`
	Count   int                  `json:"count" yaml:"count"`
	Samples []signal.StuckSample `json:"samples" yaml:"samples"`
}

// Analysis is the complete result for one log.
type Analysis struct {
	LogPath    string            `json:"log_path" yaml:"log_path"`
	Joint      string            `json:"joint,omitempty" yaml:"joint,omitempty"`
	Samples    int               `json:"samples" yaml:"samples"`
	MeanDt     float64           `json:"mean_dt" yaml:"mean_dt"`
	Window     signal.Window     `json:"window" yaml:"window"`
	Shifts     signal.ShiftRange `json:"shifts" yaml:"shifts"`
	Epsilon    float64           `json:"epsilon" yaml:"epsilon"`
	Pairs      []PairResult      `json:"pairs" yaml:"pairs"`
	Stuck      []StuckSummary    `json:"stuck" yaml:"stuck"`
	AnalyzedAt time.Time         `json:"analyzed_at" yaml:"analyzed_at"`
}

// StuckFor returns the stuck summary of the named signal.
func (a Analysis) StuckFor(name string) (StuckSummary, bool) {
	for _, s := range a.Stuck {
		if s.Signal == name {
			return s, true
		}
	}
	return StuckSummary{}, false
}

// HistoryConfig defines filters and options for history output.
type HistoryConfig struct {
	Joint       string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// RunSummary is a stored analysis as listed in the history.
type RunSummary struct {
	RunID      int64
	AnalyzedAt time.Time
	LogPath    string
	Joint      string
	Samples    int
	MeanDt     float64
	Window     signal.Window
	Shifts     signal.ShiftRange
	Epsilon    float64
	Pairs      []PairResult
	Stuck      map[string]int
}

// AnalysisConfig returns the settings the run was analysed with.
func (r RunSummary) AnalysisConfig() AnalysisConfig {
	pairs := make([]Pair, len(r.Pairs))
	for i, p := range r.Pairs {
		pairs[i] = Pair{First: p.First, Second: p.Second}
	}
	return AnalysisConfig{
		WindowStart: r.Window.Start,
		WindowEnd:   r.Window.End,
		MinShift:    r.Shifts.Min,
		MaxShift:    r.Shifts.Max,
		Pairs:       pairs,
		Epsilon:     r.Epsilon,
	}
}

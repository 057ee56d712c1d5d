package model

import (
	"errors"
	"testing"

	"github.com/verte-zerg/sinecheck/internal/signal"
)

func TestParsePair(t *testing.T) {
	p, err := ParsePair(" cmd : pos ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.First != SignalCmd || p.Second != SignalPos {
		t.Fatalf("unexpected pair: %+v", p)
	}
	if p.String() != "cmd:pos" {
		t.Fatalf("unexpected string: %q", p.String())
	}

	for _, spec := range []string{"cmd", "cmd:vel", ":ref"} {
		if _, err := ParsePair(spec); !errors.Is(err, ErrInvalidPair) {
			t.Fatalf("expected ErrInvalidPair for %q, got %v", spec, err)
		}
	}
}

func TestParsePairsSkipsBlank(t *testing.T) {
	pairs, err := ParsePairs([]string{"cmd:ref", "", "ref:pos"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pairs) != 2 || pairs[1].First != SignalRef {
		t.Fatalf("unexpected pairs: %+v", pairs)
	}
	if _, err := ParsePairs([]string{"cmd:ref", "bad"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLogSignal(t *testing.T) {
	log := Log{Cmd: []float64{1}, Ref: []float64{2}, Pos: []float64{3}, Time: []float64{0}}
	for name, want := range map[string]float64{SignalCmd: 1, SignalRef: 2, SignalPos: 3} {
		values, ok := log.Signal(name)
		if !ok || values[0] != want {
			t.Fatalf("%s: got %v %v", name, values, ok)
		}
	}
	if _, ok := log.Signal("time"); ok {
		t.Fatalf("time is not an analysed signal")
	}
	if log.Len() != 1 {
		t.Fatalf("expected 1 sample, got %d", log.Len())
	}
}

func TestRunSummaryAnalysisConfig(t *testing.T) {
	run := RunSummary{
		Window:  signal.Window{Start: 600, End: 1000},
		Shifts:  signal.ShiftRange{Min: 0, Max: 50},
		Epsilon: 1e-6,
		Pairs: []PairResult{
			{First: SignalCmd, Second: SignalRef, Shift: 2},
			{First: SignalCmd, Second: SignalPos, Shift: 8},
		},
	}
	cfg := run.AnalysisConfig()
	if cfg.WindowStart != 600 || cfg.WindowEnd != 1000 {
		t.Fatalf("unexpected window: %d-%d", cfg.WindowStart, cfg.WindowEnd)
	}
	if cfg.MaxShift != 50 || cfg.Epsilon != 1e-6 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(cfg.Pairs) != 2 || cfg.Pairs[1] != (Pair{First: SignalCmd, Second: SignalPos}) {
		t.Fatalf("unexpected pairs: %+v", cfg.Pairs)
	}
}

func TestAnalysisStuckFor(t *testing.T) {
	a := Analysis{Stuck: []StuckSummary{{Signal: SignalPos, Count: 4}}}
	if s, ok := a.StuckFor(SignalPos); !ok || s.Count != 4 {
		t.Fatalf("unexpected stuck summary: %+v %v", s, ok)
	}
	if _, ok := a.StuckFor(SignalCmd); ok {
		t.Fatalf("cmd should be absent")
	}
}

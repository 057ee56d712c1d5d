package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/sinecheck/internal/model"
	"github.com/verte-zerg/sinecheck/internal/signal"
	"github.com/verte-zerg/sinecheck/internal/store"
)

func testRunAnalysis(joint string, at time.Time, offset, score float64) model.Analysis {
	return model.Analysis{
		LogPath: "sine_test_" + joint + ".txt",
		Joint:   joint,
		Samples: 1601,
		MeanDt:  0.005,
		Window:  signal.Window{Start: 600, End: 1000},
		Shifts:  signal.DefaultShiftRange,
		Epsilon: signal.StuckEpsilon,
		Pairs: []model.PairResult{
			{First: "cmd", Second: "ref", Shift: 2, Score: score, TimeOffset: offset},
		},
		Stuck:      []model.StuckSummary{{Signal: "pos", Count: 7}},
		AnalyzedAt: at,
	}
}

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sinecheck.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	log := model.Log{Time: []float64{0, 1}, Cmd: []float64{0, 1}, Ref: []float64{0, 1}, Pos: []float64{0, 1}}
	var ids []int64
	for i := 0; i < 3; i++ {
		at := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		id, err := st.InsertRun(ctx, testRunAnalysis("RSP", at, 0.01, 0.99), log)
		if err != nil {
			t.Fatalf("insert run: %v", err)
		}
		ids = append(ids, id)
	}

	report, err := BuildReport(ctx, st, model.HistoryConfig{Joint: "RSP", Last: 2, CurveWindow: 2})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(report.Runs))
	}
	if report.Runs[0].RunID != ids[1] || report.Runs[1].RunID != ids[2] {
		t.Fatalf("unexpected run ids: %+v", report.Runs)
	}
	if report.CurveWindow != 2 {
		t.Fatalf("expected curve window 2, got %d", report.CurveWindow)
	}
}

func TestRenderHistory(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	report := Report{CurveWindow: 2, GeneratedAt: now}
	for i, offset := range []float64{0.010, 0.015, 0.020} {
		a := testRunAnalysis("RSP", now.Add(-time.Duration(3-i)*time.Hour), offset, 0.9+float64(i)*0.03)
		report.Runs = append(report.Runs, model.RunSummary{
			RunID:      int64(i + 1),
			AnalyzedAt: a.AnalyzedAt,
			LogPath:    a.LogPath,
			Joint:      a.Joint,
			Samples:    a.Samples,
			MeanDt:     a.MeanDt,
			Pairs:      a.Pairs,
			Stuck:      map[string]int{"pos": 7},
		})
	}

	var buf bytes.Buffer
	if err := RenderHistory(&buf, report, 100, false); err != nil {
		t.Fatalf("render history: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"cmd->ref",
		"3 hours ago",
		"1,601",
		"2 / 15.00 ms",
		"0/0/7",
		"Offset trend (ms, moving average of 2)",
		"Lowest correlation",
		"run 1  cmd->ref  score=0.9000",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderHistoryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderHistory(&buf, Report{}, 80, false); err != nil {
		t.Fatalf("render history: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "No runs found." {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestOffsetSeriesCarriesForward(t *testing.T) {
	runs := []model.RunSummary{
		{Pairs: []model.PairResult{{First: "cmd", Second: "pos", TimeOffset: 0.04}}},
		{},
		{Pairs: []model.PairResult{{First: "cmd", Second: "pos", TimeOffset: 0.05}}},
	}
	got := offsetSeries(runs, "cmd->pos")
	want := []float64{40, 40, 50}
	for i := range want {
		if diff := got[i] - want[i]; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("unexpected series: %v", got)
		}
	}
}

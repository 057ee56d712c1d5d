package analysis

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/sinecheck/internal/model"
	"github.com/verte-zerg/sinecheck/internal/signal"
)

func sineLog(n, refLag, posLag int) model.Log {
	at := func(i int) float64 {
		x := float64(i)
		return math.Sin(0.21*x) + 0.3*math.Sin(0.053*x)
	}
	log := model.Log{
		Path:  "sine_test_RSP_0000.txt",
		Joint: "RSP",
		Time:  make([]float64, n),
		Cmd:   make([]float64, n),
		Ref:   make([]float64, n),
		Pos:   make([]float64, n),
	}
	for i := 0; i < n; i++ {
		log.Time[i] = float64(i) * 0.005
		log.Cmd[i] = at(i)
		log.Ref[i] = at(i - refLag)
		log.Pos[i] = at(i - refLag - posLag)
	}
	return log
}

func quietAnalyzer() *Analyzer {
	a := New(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	a.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return a
}

func TestResolveWindow(t *testing.T) {
	t.Parallel()

	assert.Equal(t, signal.Window{Start: 300, End: 700}, ResolveWindow(1000, model.AnalysisConfig{HalfWindow: 200}))
	assert.Equal(t, signal.Window{Start: 300, End: 700}, ResolveWindow(1001, model.AnalysisConfig{}))
	assert.Equal(t, signal.Window{Start: 10, End: 60},
		ResolveWindow(1000, model.AnalysisConfig{HalfWindow: 200, WindowStart: 10, WindowEnd: 60}))
}

func TestRun_RecoversLags(t *testing.T) {
	t.Parallel()

	log := sineLog(1000, 3, 7)
	cfg := DefaultConfig()
	cfg.Pairs = append(cfg.Pairs, model.Pair{First: model.SignalRef, Second: model.SignalPos})

	got, err := quietAnalyzer().Run(context.Background(), log, cfg)
	require.NoError(t, err)

	assert.Equal(t, 1000, got.Samples)
	assert.Equal(t, "RSP", got.Joint)
	assert.InDelta(t, 0.005, got.MeanDt, 1e-12)
	assert.Equal(t, signal.Window{Start: 300, End: 700}, got.Window)
	assert.Equal(t, signal.DefaultShiftRange, got.Shifts)

	require.Len(t, got.Pairs, 3)
	assert.Equal(t, "cmd->ref", got.Pairs[0].Label())
	assert.Equal(t, 3, got.Pairs[0].Shift)
	assert.Equal(t, 10, got.Pairs[1].Shift)
	assert.Equal(t, 7, got.Pairs[2].Shift)
	assert.InDelta(t, 1.0, got.Pairs[0].Score, 1e-9)
	assert.InDelta(t, 0.05, got.Pairs[1].TimeOffset, 1e-9)

	require.Len(t, got.Stuck, 3)
	for _, s := range got.Stuck {
		assert.Zero(t, s.Count, s.Signal)
	}
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), got.AnalyzedAt)
}

func TestRun_DetectsStuckSamples(t *testing.T) {
	t.Parallel()

	log := sineLog(1000, 2, 6)
	log.Pos[500] = log.Pos[499]
	log.Pos[501] = log.Pos[499]

	got, err := quietAnalyzer().Run(context.Background(), log, model.AnalysisConfig{})
	require.NoError(t, err)

	pos, ok := got.StuckFor(model.SignalPos)
	require.True(t, ok)
	assert.Equal(t, 2, pos.Count)
	assert.Equal(t, 499, pos.Samples[0].Index)
	assert.InDelta(t, 499.5*0.005, pos.Samples[0].Time, 1e-12)
}

func TestRun_WindowOutOfRange(t *testing.T) {
	t.Parallel()

	log := sineLog(100, 1, 1)
	_, err := quietAnalyzer().Run(context.Background(), log, model.AnalysisConfig{HalfWindow: 200})
	require.Error(t, err)
	assert.True(t, errors.Is(err, signal.ErrPrecondition))
}

func TestRun_LogsConsoleLines(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	a := New(slog.New(slog.NewTextHandler(&buf, nil)))
	_, err := a.Run(context.Background(), sineLog(1000, 2, 6), DefaultConfig())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "msg=\"read samples\"")
	assert.Contains(t, out, "msg=\"mean dt\"")
	assert.Contains(t, out, "msg=\"max correlation\" pair=cmd->ref shift=2")
	assert.Contains(t, out, "msg=\"small steps\" signal=pos")
}

func TestRun_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := quietAnalyzer().Run(ctx, sineLog(1000, 2, 6), DefaultConfig())
	assert.ErrorIs(t, err, context.Canceled)
}

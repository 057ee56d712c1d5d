package export

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/sinecheck/internal/model"
	"github.com/verte-zerg/sinecheck/internal/signal"
)

func fixture(t *testing.T) (model.Log, model.Analysis) {
	t.Helper()
	n := 120
	log := model.Log{
		Path:  "sine_test_RSP_0002.txt",
		Joint: "RSP",
		Time:  make([]float64, n),
		Cmd:   make([]float64, n),
		Ref:   make([]float64, n),
		Pos:   make([]float64, n),
	}
	for i := 0; i < n; i++ {
		log.Time[i] = float64(i) * 0.005
		log.Cmd[i] = math.Sin(float64(i) * 0.2)
		log.Ref[i] = math.Sin(float64(i-1) * 0.2)
		log.Pos[i] = math.Round(math.Sin(float64(i-4)*0.2)*20) / 20
	}
	stuck, err := signal.DetectStuck(model.SignalPos, log.Time, log.Pos)
	require.NoError(t, err)
	require.Positive(t, stuck.Count())

	return log, model.Analysis{
		LogPath: log.Path,
		Joint:   log.Joint,
		Samples: n,
		MeanDt:  signal.MeanInterval(log.Time),
		Window:  signal.Window{Start: 20, End: 60},
		Shifts:  signal.DefaultShiftRange,
		Epsilon: signal.StuckEpsilon,
		Pairs: []model.PairResult{
			{First: "cmd", Second: "ref", Shift: 1, Score: 0.999, TimeOffset: 0.005},
		},
		Stuck: []model.StuckSummary{
			{Signal: "cmd", Samples: []signal.StuckSample{}},
			{Signal: "ref", Samples: []signal.StuckSample{}},
			{Signal: "pos", Count: stuck.Count(), Samples: stuck.Samples},
		},
		AnalyzedAt: time.Date(2026, 4, 1, 8, 30, 0, 0, time.UTC),
	}
}

func TestWriteHTML(t *testing.T) {
	t.Parallel()

	log, analysis := fixture(t)
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, log, analysis))

	out := buf.String()
	assert.Contains(t, out, "<html")
	assert.Contains(t, out, "Sample interval")
	assert.Contains(t, out, "stuck pos")
	assert.NotContains(t, out, "stuck cmd")
}

func TestWritePNG(t *testing.T) {
	t.Parallel()

	log, analysis := fixture(t)
	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, log, analysis, 320, 240))
	require.Greater(t, buf.Len(), 8)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\n"), buf.Bytes()[:8])
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	_, analysis := fixture(t)
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, analysis))

	var decoded model.Analysis
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, analysis.Window, decoded.Window)
	assert.Equal(t, analysis.Pairs, decoded.Pairs)
	assert.Equal(t, analysis.Stuck[2].Count, decoded.Stuck[2].Count)
	assert.Contains(t, buf.String(), `"time_offset": 0.005`)
}

func TestWriteYAML(t *testing.T) {
	t.Parallel()

	_, analysis := fixture(t)
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, analysis))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "sine_test_RSP_0002.txt", decoded["log_path"])
	assert.Equal(t, 120, decoded["samples"])
	pairs, ok := decoded["pairs"].([]any)
	require.True(t, ok)
	assert.Len(t, pairs, 1)
}

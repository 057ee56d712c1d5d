package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/sinecheck/internal/model"
)

func testAnalysis() model.Analysis {
	return model.Analysis{
		Samples: 1601,
		MeanDt:  0.005,
		Pairs: []model.PairResult{
			{First: "cmd", Second: "ref", Shift: 2, Score: 0.999, TimeOffset: 0.01},
			{First: "cmd", Second: "pos", Shift: 8, Score: 0.98, TimeOffset: 0.04},
		},
		Stuck: []model.StuckSummary{
			{Signal: "cmd", Count: 0},
			{Signal: "pos", Count: 17},
		},
	}
}

func TestObserve(t *testing.T) {
	t.Parallel()

	e, err := NewExporter()
	require.NoError(t, err)
	e.Observe(testAnalysis())

	assert.InDelta(t, 1601, testutil.ToFloat64(e.samples), 0)
	assert.InDelta(t, 0.005, testutil.ToFloat64(e.meanDt), 1e-12)
	assert.InDelta(t, 8, testutil.ToFloat64(e.bestShift.WithLabelValues("cmd->pos")), 0)
	assert.InDelta(t, 0.04, testutil.ToFloat64(e.bestOffset.WithLabelValues("cmd->pos")), 1e-12)
	assert.InDelta(t, 0.999, testutil.ToFloat64(e.bestScore.WithLabelValues("cmd->ref")), 1e-12)
	assert.InDelta(t, 17, testutil.ToFloat64(e.stuckCounts.WithLabelValues("pos")), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(e.bestShift))
}

func TestObserveReplacesPreviousPairs(t *testing.T) {
	t.Parallel()

	e, err := NewExporter()
	require.NoError(t, err)
	e.Observe(testAnalysis())

	next := testAnalysis()
	next.Pairs = next.Pairs[:1]
	e.Observe(next)

	assert.Equal(t, 1, testutil.CollectAndCount(e.bestShift))
	assert.InDelta(t, 2, testutil.ToFloat64(e.analyses), 0)
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()

	e, err := NewExporter()
	require.NoError(t, err)
	e.Observe(testAnalysis())

	path := filepath.Join(t.TempDir(), "sinecheck.prom")
	require.NoError(t, e.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `sinecheck_best_shift_samples{pair="cmd->ref"} 2`)
	assert.Contains(t, out, `sinecheck_stuck_samples{signal="pos"} 17`)
	assert.True(t, strings.Contains(out, "# TYPE sinecheck_samples gauge"))
}

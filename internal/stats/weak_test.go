package stats

import (
	"testing"

	"github.com/verte-zerg/sinecheck/internal/model"
)

func TestSelectWeakRuns(t *testing.T) {
	runs := []model.RunSummary{
		{RunID: 1, Pairs: []model.PairResult{{Score: 0.99}, {Score: 0.95}}},
		{RunID: 2},
		{RunID: 3, Pairs: []model.PairResult{{Score: 0.7}}},
		{RunID: 4, Pairs: []model.PairResult{{Score: 0.95}}},
	}
	got := SelectWeakRuns(runs, 2)
	if len(got) != 2 || got[0].RunID != 3 || got[1].RunID != 1 {
		t.Fatalf("unexpected runs: %+v", got)
	}
	if all := SelectWeakRuns(runs, 0); len(all) != 3 {
		t.Fatalf("expected 3 runs with pairs, got %d", len(all))
	}
	if p := weakestPair(runs[0]); p.Score != 0.95 {
		t.Fatalf("unexpected weakest pair: %+v", p)
	}
}

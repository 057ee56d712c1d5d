package stats

import (
	"testing"

	"github.com/verte-zerg/sinecheck/internal/model"
)

func TestTopPairLabels(t *testing.T) {
	runs := []model.RunSummary{
		{Pairs: []model.PairResult{{First: "cmd", Second: "ref"}, {First: "cmd", Second: "pos"}}},
		{Pairs: []model.PairResult{{First: "cmd", Second: "pos"}}},
		{Pairs: []model.PairResult{{First: "ref", Second: "pos"}, {First: "cmd", Second: "ref"}, {First: "cmd", Second: "pos"}}},
	}
	got := TopPairLabels(runs, 2)
	if len(got) != 2 || got[0] != "cmd->pos" || got[1] != "cmd->ref" {
		t.Fatalf("unexpected labels: %v", got)
	}
	if all := TopPairLabels(runs, 0); len(all) != 3 || all[2] != "ref->pos" {
		t.Fatalf("unexpected labels: %v", all)
	}
	if none := TopPairLabels(nil, 3); none != nil {
		t.Fatalf("expected nil, got %v", none)
	}
}

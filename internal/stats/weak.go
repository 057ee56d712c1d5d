package stats

import (
	"sort"

	"github.com/verte-zerg/sinecheck/internal/model"
)

// SelectWeakRuns returns up to top runs with the lowest pair score, weakest
// first. Runs without pair results are skipped.
func SelectWeakRuns(runs []model.RunSummary, top int) []model.RunSummary {
	candidates := make([]model.RunSummary, 0, len(runs))
	for _, r := range runs {
		if len(r.Pairs) > 0 {
			candidates = append(candidates, r)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		si := minScore(candidates[i])
		sj := minScore(candidates[j])
		if si == sj {
			return candidates[i].RunID < candidates[j].RunID
		}
		return si < sj
	})
	if top > 0 && top < len(candidates) {
		candidates = candidates[:top]
	}
	return candidates
}

func minScore(run model.RunSummary) float64 {
	score := 1.0
	for i, p := range run.Pairs {
		if i == 0 || p.Score < score {
			score = p.Score
		}
	}
	return score
}

func weakestPair(run model.RunSummary) model.PairResult {
	var weakest model.PairResult
	for i, p := range run.Pairs {
		if i == 0 || p.Score < weakest.Score {
			weakest = p
		}
	}
	return weakest
}

package stats

import (
	"sort"

	"github.com/verte-zerg/sinecheck/internal/model"
)

// TopPairLabels returns up to n pair labels ordered by how many runs contain
// them. A non-positive n returns every label.
func TopPairLabels(runs []model.RunSummary, n int) []string {
	if len(runs) == 0 {
		return nil
	}
	counts := map[string]int{}
	for _, r := range runs {
		for _, p := range r.Pairs {
			counts[p.Label()]++
		}
	}
	type item struct {
		label string
		total int
	}
	items := make([]item, 0, len(counts))
	for label, total := range counts {
		items = append(items, item{label: label, total: total})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].total == items[j].total {
			return items[i].label < items[j].label
		}
		return items[i].total > items[j].total
	})
	if n <= 0 || n > len(items) {
		n = len(items)
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, items[i].label)
	}
	return out
}

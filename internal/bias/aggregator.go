// Package bias aggregates anonymized outcome records into demographic and
// location cohorts and evaluates whether a user's cohort shows a notable
// denial pattern. It performs exactly one cohort-matching and threshold
// check: descriptive aggregation with a fixed alert rule, not causal
// inference.
package bias

import (
	"sort"

	"github.com/gaganv007/claimequity-ai/internal/domain"
	"github.com/gaganv007/claimequity-ai/internal/outcome"
)

// CohortAggregate is a derived summary row per (cohort, location) group.
// It has no persisted identity; it is recomputed from the full record set
// on every aggregation request.
//
// DenialCount counts every record in the group regardless of outcome. The
// name is inherited from the stored data contract and kept as-is: the alert
// thresholds were tuned against this count-all semantics.
type CohortAggregate struct {
	Key         domain.GroupKey `json:"key"`
	DenialCount int             `json:"denial_count"`
	SuccessRate float64         `json:"success_rate"`
}

// Aggregate groups records by exact (cohort, location) string equality and
// computes per-group counts and mean outcome. Output preserves first-seen
// group order, which makes repeated aggregation of identical input
// deterministic. An empty record set yields an empty slice: the "no data
// yet" state, not an error.
func Aggregate(records []outcome.Record) []CohortAggregate {
	if len(records) == 0 {
		return nil
	}

	index := make(map[domain.GroupKey]int)
	groups := make([]CohortAggregate, 0)
	sums := make([]float64, 0)

	for _, r := range records {
		key := domain.NewGroupKey(r.Cohort, r.Location)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, CohortAggregate{Key: key})
			sums = append(sums, 0)
		}
		groups[i].DenialCount++
		sums[i] += float64(r.Outcome)
	}

	for i := range groups {
		groups[i].SuccessRate = sums[i] / float64(groups[i].DenialCount)
	}
	return groups
}

// TopByDenialCount returns the n largest groups by record count, descending.
// Ties keep first-seen order (stable sort); only magnitude matters to the
// chart consumer.
func TopByDenialCount(aggs []CohortAggregate, n int) []CohortAggregate {
	sorted := make([]CohortAggregate, len(aggs))
	copy(sorted, aggs)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DenialCount > sorted[j].DenialCount
	})

	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// internal/query/group.go
package query

import (
	"fmt"
	"sort"

	"insight-agents/internal/models"
)

// UnknownGroupKey buckets rows whose group column is missing or null.
const UnknownGroupKey = "unknown"

// DefaultRevenueAggregation is applied when a grouping request carries no
// aggregation map. Revenue is what the business asks about by default.
var DefaultRevenueAggregation = map[string]models.AggOp{
	"receita_bruta":     models.AggSum,
	"receita_bruta_12m": models.AggSum,
}

// GroupBy partitions rows by the key column and aggregates each partition
// independently. Partitions are exhaustive and disjoint; output order is the
// insertion order of each group key's first appearance.
func GroupBy(rows []models.Row, key string, aggs map[string]models.AggOp) []map[string]interface{} {
	if len(aggs) == 0 {
		aggs = DefaultRevenueAggregation
	}

	var order []string
	partitions := make(map[string][]models.Row)

	for _, row := range rows {
		gk := UnknownGroupKey
		if raw, ok := row[key]; ok && raw != nil {
			gk = fmt.Sprintf("%v", raw)
		}
		if _, seen := partitions[gk]; !seen {
			order = append(order, gk)
		}
		partitions[gk] = append(partitions[gk], row)
	}

	results := make([]map[string]interface{}, 0, len(order))
	for _, gk := range order {
		agg := Aggregate(partitions[gk], aggs)
		agg[key] = gk
		results = append(results, agg)
	}
	return results
}

// SortGroups reorders grouped results by one aggregated result key,
// descending when desc is true. Non-numeric entries sort last.
func SortGroups(results []map[string]interface{}, key string, desc bool) {
	sort.SliceStable(results, func(i, j int) bool {
		a, aok := numericValue(results[i][key])
		b, bok := numericValue(results[j][key])
		if aok != bok {
			return aok
		}
		if desc {
			return a > b
		}
		return a < b
	})
}

func numericValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// internal/agents/synonyms.go
package agents

import "insight-agents/internal/models"

// FilterSynonym rewrites a business-vocabulary filter key to a concrete
// column and comparator, e.g. receita_min -> receita_bruta_12m >= value.
type FilterSynonym struct {
	Column string
	Op     models.Comparator
}

// ExpandFilters resolves each agent's filter vocabulary. Keys with a synonym
// are rewritten; everything else passes through and the whitelist check in
// the query builder decides its fate.
func ExpandFilters(filters map[string]models.FilterValue, synonyms map[string]FilterSynonym) map[string]models.FilterValue {
	if len(filters) == 0 {
		return filters
	}

	out := make(map[string]models.FilterValue, len(filters))
	for key, fv := range filters {
		if syn, ok := synonyms[key]; ok {
			out[syn.Column] = models.FilterValue{Op: syn.Op, Value: fv.Value}
			continue
		}
		out[key] = fv
	}
	return out
}

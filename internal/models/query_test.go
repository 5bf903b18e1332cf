// internal/models/query_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescriptorFromParamsFilters(t *testing.T) {
	desc, warnings := DescriptorFromParams(map[string]interface{}{
		"filters": map[string]interface{}{
			"cluster":           "1",
			"receita_bruta_12m": map[string]interface{}{"gte": 1000.0},
		},
	}, TableClients)

	assert.Empty(t, warnings)
	assert.Equal(t, Eq("1"), desc.Filters["cluster"])
	assert.Equal(t, FilterValue{Op: CmpGte, Value: 1000.0}, desc.Filters["receita_bruta_12m"])
}

func TestDescriptorFromParamsDropsUnsupportedComparator(t *testing.T) {
	desc, warnings := DescriptorFromParams(map[string]interface{}{
		"filters": map[string]interface{}{
			"receita_bruta_12m": map[string]interface{}{"between": []interface{}{100.0, 200.0}},
			"cluster":           "2",
		},
	}, TableClients)

	assert.NotContains(t, desc.Filters, "receita_bruta_12m")
	assert.Equal(t, Eq("2"), desc.Filters["cluster"])
	assert.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "receita_bruta_12m")
	assert.Contains(t, warnings[0], "unsupported comparator")
}

func TestDescriptorFromParamsDropsUnknownAggregation(t *testing.T) {
	desc, warnings := DescriptorFromParams(map[string]interface{}{
		"aggregation": map[string]interface{}{
			"receita_bruta_12m": "sum",
			"gm_12m":            "median",
		},
	}, TableClients)

	assert.Equal(t, map[string]AggOp{"receita_bruta_12m": AggSum}, desc.Aggregation)
	assert.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "median")
}

// internal/query/builder_test.go
package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"insight-agents/internal/models"
)

func TestBuildSelectAndFilters(t *testing.T) {
	raw, warnings := Build(models.QueryDescriptor{
		Table:  models.TableClients,
		Fields: []string{"id", "receita_bruta_12m"},
		Filters: map[string]models.FilterValue{
			"cluster":           models.Eq(1),
			"receita_bruta_12m": {Op: models.CmpGte, Value: 1000.0},
		},
		OrderBy: "receita_bruta_12m.desc",
		Limit:   10,
	})

	assert.Empty(t, warnings)
	assert.Equal(t,
		"select=id,receita_bruta_12m&cluster=eq.1&receita_bruta_12m=gte.1000&order=receita_bruta_12m.desc&limit=10",
		raw)
}

func TestBuildDropsUnknownColumnsWithWarnings(t *testing.T) {
	raw, warnings := Build(models.QueryDescriptor{
		Table:  models.TableClients,
		Fields: []string{"no_such_field"},
		Filters: map[string]models.FilterValue{
			"another_bad_column": models.Eq("x"),
		},
	})

	assert.NotContains(t, raw, "no_such_field")
	assert.NotContains(t, raw, "another_bad_column")
	assert.True(t, strings.HasPrefix(raw, "select=*"))
	assert.Len(t, warnings, 2)
}

func TestBuildEmptyDescriptorSelectsAll(t *testing.T) {
	raw, warnings := Build(models.QueryDescriptor{Table: models.TableClusters})

	assert.Equal(t, "select=*", raw)
	assert.Empty(t, warnings)
}

func TestBuildDeterministicFilterOrder(t *testing.T) {
	desc := models.QueryDescriptor{
		Table: models.TableOrders,
		Filters: map[string]models.FilterValue{
			"data":          {Op: models.CmpGte, Value: "2025-01-01"},
			"categoria":     models.Eq("bebidas"),
			"receita_bruta": {Op: models.CmpGt, Value: 0},
		},
	}

	first, _ := Build(desc)
	for i := 0; i < 20; i++ {
		again, _ := Build(desc)
		assert.Equal(t, first, again)
	}
}

func TestBuildZeroValueComparatorMeansEquality(t *testing.T) {
	raw, _ := Build(models.QueryDescriptor{
		Table: models.TableClients,
		Filters: map[string]models.FilterValue{
			"cluster": {Value: 3},
		},
	})

	assert.Contains(t, raw, "cluster=eq.3")
}

func TestFormatScalarAvoidsScientificNotation(t *testing.T) {
	assert.Equal(t, "1000000", formatScalar(1000000.0))
	assert.Equal(t, "45.5", formatScalar(45.5))
	assert.Equal(t, "7", formatScalar(7))
	assert.Equal(t, "true", formatScalar(true))
	assert.Equal(t, "2025-01-01", formatScalar("2025-01-01"))
}

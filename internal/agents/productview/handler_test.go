// internal/agents/productview/handler_test.go
package productview

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insight-agents/internal/common/logger"
	"insight-agents/internal/models"
)

type fakeFetcher struct {
	rows     []models.Row
	err      error
	gotQuery string
}

func (f *fakeFetcher) Fetch(ctx context.Context, table models.Table, rawQuery string) ([]models.Row, error) {
	f.gotQuery = rawQuery
	return f.rows, f.err
}

func (f *fakeFetcher) Configured() bool { return true }

func TestHandleGroupsByCategoryByDefault(t *testing.T) {
	fetcher := &fakeFetcher{rows: []models.Row{
		{"categoria": "bebidas", "receita_bruta": 100.0, "margem_bruta": 40.0},
		{"categoria": "laticinios", "receita_bruta": 300.0, "margem_bruta": 90.0},
		{"categoria": "bebidas", "receita_bruta": 50.0, "margem_bruta": 20.0},
		{"categoria": nil, "receita_bruta": 10.0, "margem_bruta": 5.0},
	}}
	h := NewHandler(DefaultConfig(), fetcher, logger.NewTestLogger(t))

	resp := h.Handle(context.Background(), models.AgentInstruction{})

	require.True(t, resp.Success)
	groups := resp.Data["results"].([]map[string]interface{})
	require.Len(t, groups, 3)

	// Ranked by summed revenue, null category bucketed as "unknown".
	assert.Equal(t, "laticinios", groups[0]["categoria"])
	assert.Equal(t, 300.0, groups[0]["receita_bruta_total"])
	assert.Equal(t, "bebidas", groups[1]["categoria"])
	assert.Equal(t, 150.0, groups[1]["receita_bruta_total"])
	assert.Equal(t, 60.0, groups[1]["margem_bruta_total"])
	assert.Equal(t, "unknown", groups[2]["categoria"])
}

func TestHandleDateRangeFilter(t *testing.T) {
	fetcher := &fakeFetcher{}
	h := NewHandler(DefaultConfig(), fetcher, logger.NewTestLogger(t))

	h.Handle(context.Background(), models.AgentInstruction{
		Query: models.QueryDescriptor{
			Filters: map[string]models.FilterValue{
				"data_inicio": models.Eq("2025-01-01"),
				"categoria":   models.Eq("bebidas"),
			},
		},
	})

	assert.Contains(t, fetcher.gotQuery, "data=gte.2025-01-01")
	assert.Contains(t, fetcher.gotQuery, "categoria=eq.bebidas")
}

func TestHandleExplicitAggregationSkipsGrouping(t *testing.T) {
	fetcher := &fakeFetcher{rows: []models.Row{
		{"receita_bruta": 10.0},
		{"receita_bruta": 20.0},
	}}
	h := NewHandler(DefaultConfig(), fetcher, logger.NewTestLogger(t))

	resp := h.Handle(context.Background(), models.AgentInstruction{
		Query: models.QueryDescriptor{
			Aggregation: map[string]models.AggOp{"receita_bruta": models.AggMax},
		},
	})

	require.True(t, resp.Success)
	results := resp.Data["results"].(map[string]interface{})
	assert.Equal(t, 20.0, results["receita_bruta_maximo"])
}

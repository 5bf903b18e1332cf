// internal/agents/clusterview/handler_test.go
package clusterview

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

func TestHandleEnrichesMissingLabels(t *testing.T) {
	fetcher := &fakeFetcher{rows: []models.Row{
		{"id": 1.0, "gm_total": 900.0},
		{"id": 2.0, "gm_total": 500.0, "label": nil},
		{"id": 3.0, "gm_total": 300.0, "label": "Custom"},
		{"id": 9.0, "gm_total": 10.0},
	}}
	h := NewHandler(DefaultConfig(), fetcher, logger.NewTestLogger(t))

	resp := h.Handle(context.Background(), models.AgentInstruction{})

	require.True(t, resp.Success)
	rows := resp.Data["results"].([]models.Row)
	assert.Equal(t, "Premium", rows[0]["label"])
	assert.Equal(t, "Alto Valor", rows[1]["label"])
	assert.Equal(t, "Custom", rows[2]["label"])
	_, hasLabel := rows[3]["label"]
	assert.False(t, hasLabel)
}

func TestHandleDefaultsToMarginOrder(t *testing.T) {
	fetcher := &fakeFetcher{}
	h := NewHandler(DefaultConfig(), fetcher, logger.NewTestLogger(t))

	h.Handle(context.Background(), models.AgentInstruction{})

	assert.Contains(t, fetcher.gotQuery, "order=gm_total.desc")
	assert.Contains(t, fetcher.gotQuery, "limit=10")
}

func TestHandleClusterFilterVocabulary(t *testing.T) {
	fetcher := &fakeFetcher{}
	h := NewHandler(DefaultConfig(), fetcher, logger.NewTestLogger(t))

	h.Handle(context.Background(), models.AgentInstruction{
		Query: models.QueryDescriptor{
			Filters: map[string]models.FilterValue{
				"clientes_min": models.Eq(100),
				"gm_pct_min":   models.Eq(45.5),
				"tendencia":    {Op: models.CmpGt, Value: 0},
			},
		},
	})

	assert.Contains(t, fetcher.gotQuery, "clientes=gte.100")
	assert.Contains(t, fetcher.gotQuery, "gm_pct_medio=gte.45.5")
	assert.Contains(t, fetcher.gotQuery, "tendencia=gt.0")
}

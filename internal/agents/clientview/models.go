// internal/agents/clientview/models.go
package clientview

import (
	"insight-agents/internal/agents"
	"insight-agents/internal/models"
)

// The client view reads per-client consolidated metrics: one row per client
// with 12-month revenue, margin, contribution margin and activity columns.
const table = models.TableClients

const defaultOrder = "receita_bruta_12m.desc"

// filterSynonyms is the business vocabulary this view accepts on top of raw
// column filters.
var filterSynonyms = map[string]agents.FilterSynonym{
	"receita_min": {Column: "receita_bruta_12m", Op: models.CmpGte},
	"margem_min":  {Column: "gm_pct_12m", Op: models.CmpGte},
	"mcc_min":     {Column: "mcc", Op: models.CmpGte},
}

// internal/agents/saleview/models.go
package saleview

import (
	"insight-agents/internal/agents"
	"insight-agents/internal/models"
)

// The sale view reads order-level rows: one row per order with revenue,
// margin, date and category.
const table = models.TableOrders

const defaultOrder = "data.desc"

var filterSynonyms = map[string]agents.FilterSynonym{
	"receita_min": {Column: "receita_bruta", Op: models.CmpGte},
	"margem_min":  {Column: "margem_bruta", Op: models.CmpGte},
	"data_inicio": {Column: "data", Op: models.CmpGte},
	"data_fim":    {Column: "data", Op: models.CmpLte},
}

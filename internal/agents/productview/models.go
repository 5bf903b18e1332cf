// internal/agents/productview/models.go
package productview

import (
	"insight-agents/internal/agents"
	"insight-agents/internal/models"
)

// The product view reads the same order rows as the sale view but summarizes
// them per category, which is the closest thing to a product dimension the
// data service exposes.
const table = models.TableOrders

const defaultGroupKey = "categoria"

// rankKey orders grouped categories by summed revenue.
const rankKey = "receita_bruta_total"

var filterSynonyms = map[string]agents.FilterSynonym{
	"data_inicio": {Column: "data", Op: models.CmpGte},
	"data_fim":    {Column: "data", Op: models.CmpLte},
	"receita_min": {Column: "receita_bruta", Op: models.CmpGte},
}

// defaultAggregation summarizes each category by revenue and margin.
var defaultAggregation = map[string]models.AggOp{
	"receita_bruta": models.AggSum,
	"margem_bruta":  models.AggSum,
}

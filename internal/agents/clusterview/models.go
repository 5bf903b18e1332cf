// internal/agents/clusterview/models.go
package clusterview

import (
	"insight-agents/internal/agents"
	"insight-agents/internal/models"
)

// The cluster view reads the segment summary table: one row per client
// segment with totals, averages and a trend indicator.
const table = models.TableClusters

const defaultOrder = "gm_total.desc"

var filterSynonyms = map[string]agents.FilterSynonym{
	"gm_pct_min":   {Column: "gm_pct_medio", Op: models.CmpGte},
	"clientes_min": {Column: "clientes", Op: models.CmpGte},
}

// clusterLabels names the segments when the data service returns rows without
// a label column.
var clusterLabels = map[string]string{
	"1": "Premium",
	"2": "Alto Valor",
	"3": "Médio",
	"4": "Baixo",
	"5": "Novos",
}

// internal/models/query.go
package models

import (
	"fmt"
	"strconv"
)

// Table identifies a logical table exposed by the tabular data service.
type Table string

const (
	TableClients       Table = "clientes"
	TableClusters      Table = "clusters"
	TableOrders        Table = "pedidos"
	TableMonthlySeries Table = "monthly_series"
)

// TableFields is the per-table column whitelist. Columns outside the
// whitelist never reach the data service; they are dropped and reported as
// warnings instead of rejected.
var TableFields = map[Table][]string{
	TableClients: {
		"id", "cluster", "pedidos_12m", "recencia_dias",
		"receita_bruta_12m", "receita_liquida_12m", "gm_12m",
		"gm_pct_12m", "mcc", "mcc_pct", "qtde_produtos", "cmv_12m",
	},
	TableClusters: {
		"id", "label", "gm_total", "gm_pct_medio",
		"clientes", "freq_media", "recencia_media",
		"gm_cv", "tendencia", "updated_at",
	},
	TableOrders: {
		"id", "pedido_id", "cliente_id", "data",
		"receita_bruta", "margem_bruta", "categoria",
	},
	TableMonthlySeries: {
		"month", "receita_bruta", "margem_bruta", "receita_liquida", "cmv",
	},
}

// KnownField reports whether col belongs to the table's whitelist.
func KnownField(table Table, col string) bool {
	for _, f := range TableFields[table] {
		if f == col {
			return true
		}
	}
	return false
}

// AggOp is a client-side aggregation operation.
type AggOp string

const (
	AggSum   AggOp = "sum"
	AggAvg   AggOp = "avg"
	AggCount AggOp = "count"
	AggMin   AggOp = "min"
	AggMax   AggOp = "max"
)

// ParseAggOp maps a raw string to a known operation.
func ParseAggOp(s string) (AggOp, bool) {
	switch AggOp(s) {
	case AggSum, AggAvg, AggCount, AggMin, AggMax:
		return AggOp(s), true
	}
	return "", false
}

// Comparator names the relational filter operators understood by the data
// service. The zero value means equality.
type Comparator string

const (
	CmpEq  Comparator = "eq"
	CmpGt  Comparator = "gt"
	CmpLt  Comparator = "lt"
	CmpGte Comparator = "gte"
	CmpLte Comparator = "lte"
)

// FilterValue is one filter clause: a comparator plus its operand.
type FilterValue struct {
	Op    Comparator
	Value interface{}
}

// Eq builds an equality filter.
func Eq(v interface{}) FilterValue { return FilterValue{Op: CmpEq, Value: v} }

// Row is one record returned by the data service. Rows are read-only.
type Row map[string]interface{}

// QueryDescriptor is the structured representation of "what to fetch and how
// to summarize it", validated once at the boundary and passed between the
// classifier, the agents and the query builder.
type QueryDescriptor struct {
	Table       Table                  `json:"table"`
	Fields      []string               `json:"fields,omitempty"`
	Filters     map[string]FilterValue `json:"filters,omitempty"`
	Aggregation map[string]AggOp       `json:"aggregation,omitempty"`
	GroupBy     string                 `json:"group_by,omitempty"`
	OrderBy     string                 `json:"order_by,omitempty"`
	Limit       int                    `json:"limit,omitempty"`
}

// DescriptorFromParams converts the loose parameter map produced by intent
// extraction into a QueryDescriptor. Unknown aggregation operations are
// dropped with a warning; everything else is carried through untouched so the
// per-agent vocabulary can interpret it.
func DescriptorFromParams(params map[string]interface{}, defaultTable Table) (QueryDescriptor, []string) {
	var warnings []string

	desc := QueryDescriptor{
		Table:       defaultTable,
		Filters:     map[string]FilterValue{},
		Aggregation: map[string]AggOp{},
	}
	if params == nil {
		return desc, nil
	}

	if t, ok := params["table"].(string); ok && t != "" {
		desc.Table = normalizeTable(t, defaultTable)
	}

	if raw, ok := params["fields"].([]interface{}); ok {
		for _, f := range raw {
			if s, ok := f.(string); ok {
				desc.Fields = append(desc.Fields, s)
			}
		}
	}

	if raw, ok := params["filters"].(map[string]interface{}); ok {
		for col, v := range raw {
			fv, ok := parseFilterValue(v)
			if !ok {
				warnings = append(warnings, fmt.Sprintf("filter %q with unsupported comparator dropped", col))
				continue
			}
			desc.Filters[col] = fv
		}
	}

	if raw, ok := params["aggregation"].(map[string]interface{}); ok {
		for col, v := range raw {
			opStr, _ := v.(string)
			op, ok := ParseAggOp(opStr)
			if !ok {
				warnings = append(warnings, fmt.Sprintf("unknown aggregation %q for column %q dropped", opStr, col))
				continue
			}
			desc.Aggregation[col] = op
		}
	}

	if g, ok := params["group_by"].(string); ok {
		desc.GroupBy = g
	}
	if o, ok := params["order_by"].(string); ok {
		desc.OrderBy = o
	}
	desc.Limit = intParam(params["limit"])

	return desc, warnings
}

// parseFilterValue accepts either a scalar (equality) or a one-entry
// comparator map such as {"gte": 1000}. A map whose comparator is not
// recognized is rejected rather than stringified into the query.
func parseFilterValue(v interface{}) (FilterValue, bool) {
	if m, ok := v.(map[string]interface{}); ok {
		for op, operand := range m {
			switch Comparator(op) {
			case CmpGt, CmpLt, CmpGte, CmpLte, CmpEq:
				return FilterValue{Op: Comparator(op), Value: operand}, true
			}
		}
		return FilterValue{}, false
	}
	return Eq(v), true
}

// normalizeTable tolerates the table aliases the LLM tends to produce.
func normalizeTable(s string, fallback Table) Table {
	switch s {
	case string(TableClients), "Visão_cliente", "visao_cliente", "cliente":
		return TableClients
	case string(TableClusters), "Visão_cluster", "visao_cluster", "cluster":
		return TableClusters
	case string(TableOrders), "Visão_pedidos", "visao_pedidos", "pedido", "vendas":
		return TableOrders
	case string(TableMonthlySeries), "series", "serie_mensal":
		return TableMonthlySeries
	}
	return fallback
}

func intParam(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i
		}
	}
	return 0
}

// internal/query/builder.go

// Package query turns QueryDescriptors into data service query strings and
// summarizes returned rows client-side. The data service only executes
// selects and filters; every aggregation happens here.
package query

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"insight-agents/internal/models"
)

// Build renders a QueryDescriptor as the query string appended to the data
// service table endpoint. Columns outside the table whitelist are dropped and
// reported in warnings, never rejected. Values pass through unescaped: they
// come from the constrained extraction step, not raw user text.
func Build(desc models.QueryDescriptor) (string, []string) {
	var clauses []string
	var warnings []string

	selected := make([]string, 0, len(desc.Fields))
	for _, f := range desc.Fields {
		if models.KnownField(desc.Table, f) {
			selected = append(selected, f)
		} else {
			warnings = append(warnings, fmt.Sprintf("field %q not in %s whitelist, dropped", f, desc.Table))
		}
	}
	if len(selected) > 0 {
		clauses = append(clauses, "select="+strings.Join(selected, ","))
	} else {
		clauses = append(clauses, "select=*")
	}

	// Sorted filter columns keep the query string deterministic.
	cols := make([]string, 0, len(desc.Filters))
	for col := range desc.Filters {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	for _, col := range cols {
		if !models.KnownField(desc.Table, col) {
			warnings = append(warnings, fmt.Sprintf("filter column %q not in %s whitelist, dropped", col, desc.Table))
			continue
		}
		fv := desc.Filters[col]
		op := fv.Op
		if op == "" {
			op = models.CmpEq
		}
		clauses = append(clauses, fmt.Sprintf("%s=%s.%s", col, op, formatScalar(fv.Value)))
	}

	if desc.OrderBy != "" {
		clauses = append(clauses, "order="+desc.OrderBy)
	}
	if desc.Limit > 0 {
		clauses = append(clauses, "limit="+strconv.Itoa(desc.Limit))
	}

	return strings.Join(clauses, "&"), warnings
}

// formatScalar renders a filter operand without scientific notation for
// whole-number floats, which JSON decoding produces for every number.
func formatScalar(v interface{}) string {
	switch n := v.(type) {
	case float64:
		if n == math.Trunc(n) && math.Abs(n) < 1e15 {
			return strconv.FormatInt(int64(n), 10)
		}
		return strconv.FormatFloat(n, 'f', -1, 64)
	case float32:
		return formatScalar(float64(n))
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case bool:
		return strconv.FormatBool(n)
	case string:
		return n
	default:
		return fmt.Sprintf("%v", v)
	}
}

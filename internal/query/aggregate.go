// internal/query/aggregate.go
package query

import (
	"strconv"

	"github.com/shopspring/decimal"

	"insight-agents/internal/models"
)

// TotalRecordsKey reports the input row count in every aggregation result,
// independent of per-field null filtering.
const TotalRecordsKey = "total_registros"

// Result key suffixes per aggregation operation.
var aggSuffix = map[models.AggOp]string{
	models.AggSum:   "_total",
	models.AggAvg:   "_media",
	models.AggCount: "_count",
	models.AggMin:   "_minimo",
	models.AggMax:   "_maximo",
}

// Aggregate reduces rows to summary scalars per requested field. Missing and
// non-numeric values are skipped; a field with zero eligible values yields 0
// rather than an error, so sparse data never fails a request. Sums are
// computed in decimal arithmetic, which keeps results independent of row
// order, and every value is rounded to 2 decimal places.
func Aggregate(rows []models.Row, aggs map[string]models.AggOp) map[string]interface{} {
	out := make(map[string]interface{}, len(aggs)+1)

	for field, op := range aggs {
		values := collectNumeric(rows, field)
		key := field + aggSuffix[op]

		if op == models.AggCount {
			out[key] = len(values)
			continue
		}
		if len(values) == 0 {
			out[key] = float64(0)
			continue
		}

		var result decimal.Decimal
		switch op {
		case models.AggSum:
			result = decimalSum(values)
		case models.AggAvg:
			result = decimalSum(values).Div(decimal.NewFromInt(int64(len(values))))
		case models.AggMin:
			result = values[0]
			for _, v := range values[1:] {
				if v.LessThan(result) {
					result = v
				}
			}
		case models.AggMax:
			result = values[0]
			for _, v := range values[1:] {
				if v.GreaterThan(result) {
					result = v
				}
			}
		}
		out[key] = result.Round(2).InexactFloat64()
	}

	out[TotalRecordsKey] = len(rows)
	return out
}

func decimalSum(values []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(v)
	}
	return sum
}

// collectNumeric gathers the non-null numeric values of one column, coercing
// string-encoded numbers the way the data service sometimes returns them.
func collectNumeric(rows []models.Row, field string) []decimal.Decimal {
	values := make([]decimal.Decimal, 0, len(rows))
	for _, row := range rows {
		raw, ok := row[field]
		if !ok || raw == nil {
			continue
		}
		if d, ok := coerceNumeric(raw); ok {
			values = append(values, d)
		}
	}
	return values
}

func coerceNumeric(v interface{}) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), true
	case float32:
		return decimal.NewFromFloat32(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case string:
		if _, err := strconv.ParseFloat(n, 64); err != nil {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(n)
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

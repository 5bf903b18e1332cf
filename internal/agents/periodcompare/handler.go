// internal/agents/periodcompare/handler.go

// Package periodcompare answers questions about change over time: how one
// metric moved between two months, whether revenue is growing or shrinking.
package periodcompare

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"insight-agents/internal/agents"
	commonerrors "insight-agents/internal/common/errors"
	"insight-agents/internal/common/logger"
	"insight-agents/internal/common/metrics"
	"insight-agents/internal/models"
	"insight-agents/internal/query"
)

var errInsufficientData = errors.New("at least two periods are required for a comparison")

type Handler struct {
	config  *Config
	fetcher agents.Fetcher
	logger  logger.Logger
}

func NewHandler(config *Config, fetcher agents.Fetcher, log logger.Logger) *Handler {
	return &Handler{
		config:  config,
		fetcher: fetcher,
		logger:  log.With(map[string]interface{}{"agent": string(models.AgentPeriodComparison)}),
	}
}

func (h *Handler) Type() models.AgentType { return models.AgentPeriodComparison }

func (h *Handler) Handle(ctx context.Context, instruction models.AgentInstruction) models.AgentResponse {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	metric := stringParam(instruction.Context, "metric", defaultMetric)
	var warnings []string
	if !models.KnownField(table, metric) {
		warnings = append(warnings, fmt.Sprintf("metric %q not in %s whitelist, using %q", metric, table, defaultMetric))
		metric = defaultMetric
	}

	period1 := stringParam(instruction.Context, "period1", "")
	period2 := stringParam(instruction.Context, "period2", "")

	var p1Data, p2Data models.Row
	var err error
	if period1 == "" || period2 == "" {
		p1Data, p2Data, err = h.fetchLastTwoMonths(ctx, instruction.Query.Filters)
	} else {
		p1Data, err = h.fetchPeriod(ctx, period1, instruction.Query.Filters)
		if err == nil {
			p2Data, err = h.fetchPeriod(ctx, period2, instruction.Query.Filters)
		}
	}
	if err != nil {
		elapsed := time.Since(start).Seconds()
		code := commonerrors.CodeOf(err, commonerrors.ErrCodeDataServiceUnreachable)
		metrics.AgentQueriesFailed.WithLabelValues(string(models.AgentPeriodComparison), string(code)).Inc()
		h.logger.Error("period comparison failed", map[string]interface{}{
			"metric":    metric,
			"error":     err.Error(),
			"retryable": commonerrors.IsRetryable(err),
		})
		return models.FailedResponse(models.AgentPeriodComparison, err.Error(), elapsed)
	}

	cmp := compare(metric, period1, period2, p1Data, p2Data)

	elapsed := time.Since(start).Seconds()
	metrics.AgentQueriesCompleted.WithLabelValues(string(models.AgentPeriodComparison)).Inc()
	metrics.AgentQueryDuration.WithLabelValues(string(models.AgentPeriodComparison)).Observe(elapsed)

	return models.AgentResponse{
		Success: true,
		Agent:   models.AgentPeriodComparison,
		Data: map[string]interface{}{
			"period1_data": p1Data,
			"period2_data": p2Data,
			"comparison":   cmp,
		},
		Metadata: models.ResponseMetadata{
			RowCount:      2,
			ExecutionTime: elapsed,
			QueryInfo: map[string]interface{}{
				"table":   string(table),
				"metric":  metric,
				"period1": cmp.Period1.Period,
				"period2": cmp.Period2.Period,
			},
			Warnings: warnings,
		},
	}
}

// fetchLastTwoMonths resolves the default comparison window: the two most
// recent rows of the monthly series. The newer month is period 2.
func (h *Handler) fetchLastTwoMonths(ctx context.Context, filters map[string]models.FilterValue) (models.Row, models.Row, error) {
	rawQuery, _ := query.Build(models.QueryDescriptor{
		Table:   table,
		Filters: filters,
		OrderBy: "month.desc",
		Limit:   2,
	})

	rows, err := h.fetcher.Fetch(ctx, table, rawQuery)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) < 2 {
		return nil, nil, errInsufficientData
	}
	return rows[1], rows[0], nil
}

// fetchPeriod loads one month's row, summing numeric columns when the data
// service returns more than one row for the period.
func (h *Handler) fetchPeriod(ctx context.Context, period string, filters map[string]models.FilterValue) (models.Row, error) {
	merged := map[string]models.FilterValue{"month": models.Eq(period)}
	for col, fv := range filters {
		merged[col] = fv
	}

	rawQuery, _ := query.Build(models.QueryDescriptor{
		Table:   table,
		Filters: merged,
	})

	rows, err := h.fetcher.Fetch(ctx, table, rawQuery)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data for period %q", period)
	}
	if len(rows) == 1 {
		return rows[0], nil
	}
	return sumRows(rows), nil
}

// sumRows collapses several rows into one by summing numeric columns. The
// first occurrence wins for non-numeric columns.
func sumRows(rows []models.Row) models.Row {
	sums := map[string]decimal.Decimal{}
	out := models.Row{}

	for _, row := range rows {
		for col, raw := range row {
			if d, ok := coerceNumeric(raw); ok {
				sums[col] = sums[col].Add(d)
				continue
			}
			if _, seen := out[col]; !seen {
				out[col] = raw
			}
		}
	}
	for col, d := range sums {
		out[col] = d.Round(2).InexactFloat64()
	}
	return out
}

func compare(metric, period1, period2 string, p1Data, p2Data models.Row) Comparison {
	v1 := numericField(p1Data, metric)
	v2 := numericField(p2Data, metric)

	absolute := v2.Sub(v1)

	var pct decimal.Decimal
	if !v1.IsZero() {
		pct = absolute.Div(v1).Mul(decimal.NewFromInt(100))
	} else if v2.IsPositive() {
		pct = decimal.NewFromInt(100)
	}

	trend := TrendStable
	switch {
	case absolute.IsPositive():
		trend = TrendUp
	case absolute.IsNegative():
		trend = TrendDown
	}

	return Comparison{
		Period1:          PeriodValue{Period: periodName(period1, p1Data), Value: v1.Round(2).InexactFloat64()},
		Period2:          PeriodValue{Period: periodName(period2, p2Data), Value: v2.Round(2).InexactFloat64()},
		AbsoluteChange:   absolute.Round(2).InexactFloat64(),
		PercentageChange: pct.Round(2).InexactFloat64(),
		Trend:            trend,
	}
}

func periodName(requested string, row models.Row) string {
	if requested != "" {
		return requested
	}
	if m, ok := row["month"].(string); ok {
		return m
	}
	return "N/A"
}

func numericField(row models.Row, col string) decimal.Decimal {
	if d, ok := coerceNumeric(row[col]); ok {
		return d
	}
	return decimal.Zero
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
	default:
		return decimal.Zero, false
	}
}

func stringParam(params map[string]interface{}, key, fallback string) string {
	if params == nil {
		return fallback
	}
	if s, ok := params[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

// internal/agents/periodcompare/models.go
package periodcompare

import "insight-agents/internal/models"

// The comparison view reads the monthly consolidated series: one row per
// month with revenue, margin and cost columns.
const table = models.TableMonthlySeries

const defaultMetric = "receita_bruta"

// PeriodValue is one side of a comparison.
type PeriodValue struct {
	Period string  `json:"period"`
	Value  float64 `json:"value"`
}

// Comparison summarizes the change of one metric between two periods.
// Period2 is the more recent side.
type Comparison struct {
	Period1          PeriodValue `json:"period1"`
	Period2          PeriodValue `json:"period2"`
	AbsoluteChange   float64     `json:"absolute_change"`
	PercentageChange float64     `json:"percentage_change"`
	Trend            string      `json:"trend"`
}

const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"
)

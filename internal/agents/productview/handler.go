// internal/agents/productview/handler.go

// Package productview answers questions about category performance: which
// categories sell the most, category revenue and margin over a date range.
package productview

import (
	"context"
	"time"

	"insight-agents/internal/agents"
	commonerrors "insight-agents/internal/common/errors"
	"insight-agents/internal/common/logger"
	"insight-agents/internal/common/metrics"
	"insight-agents/internal/models"
	"insight-agents/internal/query"
)

type Handler struct {
	config  *Config
	fetcher agents.Fetcher
	logger  logger.Logger
}

func NewHandler(config *Config, fetcher agents.Fetcher, log logger.Logger) *Handler {
	return &Handler{
		config:  config,
		fetcher: fetcher,
		logger:  log.With(map[string]interface{}{"agent": string(models.AgentProductView)}),
	}
}

func (h *Handler) Type() models.AgentType { return models.AgentProductView }

func (h *Handler) Handle(ctx context.Context, instruction models.AgentInstruction) models.AgentResponse {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	desc := instruction.Query
	desc.Table = table
	desc.Filters = agents.ExpandFilters(desc.Filters, filterSynonyms)
	if desc.Limit <= 0 {
		desc.Limit = h.config.DefaultLimit
	}
	// This view is inherently grouped: without an explicit request it rolls
	// order rows up per category.
	if desc.GroupBy == "" && len(desc.Aggregation) == 0 {
		desc.GroupBy = defaultGroupKey
		desc.Aggregation = defaultAggregation
	}

	rawQuery, warnings := query.Build(desc)

	rows, err := h.fetcher.Fetch(ctx, desc.Table, rawQuery)
	if err != nil {
		elapsed := time.Since(start).Seconds()
		code := commonerrors.CodeOf(err, commonerrors.ErrCodeDataServiceUnreachable)
		metrics.AgentQueriesFailed.WithLabelValues(string(models.AgentProductView), string(code)).Inc()
		h.logger.Error("product query failed", map[string]interface{}{
			"query":     rawQuery,
			"error":     err.Error(),
			"retryable": commonerrors.IsRetryable(err),
		})
		return models.FailedResponse(models.AgentProductView, err.Error(), elapsed)
	}

	data := map[string]interface{}{}
	switch {
	case desc.GroupBy != "":
		groups := query.GroupBy(rows, desc.GroupBy, desc.Aggregation)
		query.SortGroups(groups, rankKey, true)
		data["results"] = groups
	case len(desc.Aggregation) > 0:
		data["results"] = query.Aggregate(rows, desc.Aggregation)
	default:
		data["results"] = rows
	}

	elapsed := time.Since(start).Seconds()
	metrics.AgentQueriesCompleted.WithLabelValues(string(models.AgentProductView)).Inc()
	metrics.AgentQueryDuration.WithLabelValues(string(models.AgentProductView)).Observe(elapsed)

	return models.AgentResponse{
		Success: true,
		Agent:   models.AgentProductView,
		Data:    data,
		Metadata: models.ResponseMetadata{
			RowCount:      len(rows),
			ExecutionTime: elapsed,
			QueryInfo: map[string]interface{}{
				"table": string(desc.Table),
				"query": rawQuery,
			},
			Warnings: warnings,
		},
	}
}

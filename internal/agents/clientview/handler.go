// internal/agents/clientview/handler.go

// Package clientview answers questions about individual clients: top clients
// by revenue, inactive clients, margin profiles, per-cluster comparisons.
package clientview

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
		logger:  log.With(map[string]interface{}{"agent": string(models.AgentClientView)}),
	}
}

func (h *Handler) Type() models.AgentType { return models.AgentClientView }

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
	if desc.OrderBy == "" && len(desc.Aggregation) == 0 && desc.GroupBy == "" {
		desc.OrderBy = defaultOrder
	}

	rawQuery, warnings := query.Build(desc)

	rows, err := h.fetcher.Fetch(ctx, desc.Table, rawQuery)
	if err != nil {
		elapsed := time.Since(start).Seconds()
		code := commonerrors.CodeOf(err, commonerrors.ErrCodeDataServiceUnreachable)
		metrics.AgentQueriesFailed.WithLabelValues(string(models.AgentClientView), string(code)).Inc()
		h.logger.Error("client query failed", map[string]interface{}{
			"query":     rawQuery,
			"error":     err.Error(),
			"retryable": commonerrors.IsRetryable(err),
		})
		return models.FailedResponse(models.AgentClientView, err.Error(), elapsed)
	}

	data := map[string]interface{}{}
	switch {
	case desc.GroupBy != "":
		data["results"] = query.GroupBy(rows, desc.GroupBy, desc.Aggregation)
	case len(desc.Aggregation) > 0:
		data["results"] = query.Aggregate(rows, desc.Aggregation)
	default:
		data["results"] = rows
	}

	elapsed := time.Since(start).Seconds()
	metrics.AgentQueriesCompleted.WithLabelValues(string(models.AgentClientView)).Inc()
	metrics.AgentQueryDuration.WithLabelValues(string(models.AgentClientView)).Observe(elapsed)

	return models.AgentResponse{
		Success: true,
		Agent:   models.AgentClientView,
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

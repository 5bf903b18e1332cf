// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WebhookRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_requests_total",
			Help: "Total webhook requests received, by outcome",
		},
		[]string{"outcome"},
	)

	AgentQueriesCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_queries_completed_total",
			Help: "Total data queries completed by specialized agent",
		},
		[]string{"agent"},
	)

	AgentQueriesFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_queries_failed_total",
			Help: "Total data queries failed by specialized agent",
		},
		[]string{"agent", "error_code"},
	)

	AgentQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "agent_query_duration_seconds",
			Help: "Duration of agent query handling in seconds",
		},
		[]string{"agent"},
	)

	IntentDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intent_decisions_total",
			Help: "Intent classification decisions by tier and kind",
		},
		[]string{"tier", "kind"},
	)

	LLMCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_calls_total",
			Help: "LLM completion calls by purpose and outcome",
		},
		[]string{"purpose", "outcome"},
	)
)

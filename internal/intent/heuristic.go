// internal/intent/heuristic.go
package intent

import (
	"strings"

	"insight-agents/internal/models"
)

const heuristicConfidence = 0.6

// dataKeywords marks a message as a business data question when any of them
// appear. Vocabulary is Portuguese because that is the operators' language.
var dataKeywords = []string{
	"receita", "margem", "cliente", "cluster", "venda", "vendas",
	"faturamento", "lucro", "mcc", "pedido", "pedidos", "produto",
	"produtos", "categoria", "quanto", "quantos", "quantas", "total",
	"media", "média", "top", "melhor", "pior", "crescimento",
	"tendência", "tendencia", "performance", "desempenho", "dados",
}

var comparisonKeywords = []string{
	"compar", "tendência", "tendencia", "evolução", "evolucao",
	"crescimento", "variação", "variacao", "mês anterior", "mes anterior",
	"mês passado", "mes passado", "período", "periodo", "caiu", "cresceu",
}

var clusterKeywords = []string{"cluster", "segmento", "segmentos", "grupo de clientes"}

var clientKeywords = []string{"cliente", "clientes", "recência", "recencia", "mcc"}

var saleKeywords = []string{"venda", "vendas", "pedido", "pedidos", "faturamento", "receita", "ticket"}

var productKeywords = []string{"produto", "produtos", "categoria", "categorias", "mix"}

// timeKeywords distinguish a comparison across periods from a comparison
// across clusters.
var timeKeywords = []string{"mês", "mes", "trimestre", "ano"}

// ClassifyHeuristic routes a message with keyword matching. Agent precedence
// is fixed: comparison beats cluster beats client beats sale beats product,
// because the later vocabularies overlap the earlier ones. A comparison that
// names clusters but no time period is a cluster question. A data question
// that matches no entity vocabulary yields no agent, and the caller asks for
// clarification.
func ClassifyHeuristic(message string) models.IntentDecision {
	text := strings.ToLower(message)

	if !containsAny(text, dataKeywords) {
		return models.IntentDecision{
			IsDataQuestion: false,
			Confidence:     heuristicConfidence,
			Tier:           models.TierHeuristic,
			Reasoning:      "no business data keywords matched",
		}
	}

	var agent models.AgentType
	switch {
	case containsAny(text, comparisonKeywords):
		if containsAny(text, clusterKeywords) && !containsAny(text, timeKeywords) {
			agent = models.AgentClusterView
		} else {
			agent = models.AgentPeriodComparison
		}
	case containsAny(text, clusterKeywords):
		agent = models.AgentClusterView
	case containsAny(text, clientKeywords):
		agent = models.AgentClientView
	case containsAny(text, saleKeywords):
		agent = models.AgentSaleView
	case containsAny(text, productKeywords):
		agent = models.AgentProductView
	}

	reasoning := "keyword match"
	if agent == "" {
		reasoning = "data keywords matched but no agent vocabulary"
	}

	return models.IntentDecision{
		IsDataQuestion: true,
		TargetAgent:    agent,
		Confidence:     heuristicConfidence,
		Tier:           models.TierHeuristic,
		Parameters:     guessParameters(text),
		Reasoning:      reasoning,
	}
}

// guessParameters extracts the coarse hints the keyword tier can support, in
// the same shape the descriptor parser consumes: the metric to sum, a count
// request, or a top-N ordering.
func guessParameters(text string) map[string]interface{} {
	params := map[string]interface{}{}

	switch {
	case strings.Contains(text, "mcc"):
		params["aggregation"] = map[string]interface{}{"mcc": "sum"}
	case strings.Contains(text, "margem") || strings.Contains(text, "lucro"):
		params["aggregation"] = map[string]interface{}{"gm_12m": "sum"}
	case strings.Contains(text, "receita") || strings.Contains(text, "faturamento"):
		params["aggregation"] = map[string]interface{}{"receita_bruta_12m": "sum"}
	}

	if strings.Contains(text, "quantos") || strings.Contains(text, "quantas") {
		params["aggregation"] = map[string]interface{}{"id": "count"}
	}
	if strings.Contains(text, "top") || strings.Contains(text, "melhor") {
		delete(params, "aggregation")
		params["order_by"] = "receita_bruta_12m.desc"
		params["limit"] = 10
	}

	if len(params) == 0 {
		return nil
	}
	return params
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

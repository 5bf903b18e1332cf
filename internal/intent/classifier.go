// internal/intent/classifier.go

// Package intent decides whether an incoming message is a business data
// question and which query agent should answer it. The model-backed
// classifier is the primary tier; a keyword heuristic covers model outages
// so routing never hard-fails.
package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	commonerrors "insight-agents/internal/common/errors"
	"insight-agents/internal/common/logger"
	"insight-agents/internal/common/metrics"
	"insight-agents/internal/llm"
	"insight-agents/internal/models"
)

const classifierContextTurns = 3

// Completer is the slice of the llm client the classifier needs.
type Completer interface {
	Complete(ctx context.Context, messages []llm.Message, opts llm.Options) (string, error)
	Configured() bool
}

type Classifier struct {
	llm    Completer
	logger logger.Logger
}

func NewClassifier(completer Completer, log logger.Logger) *Classifier {
	return &Classifier{
		llm:    completer,
		logger: log.With(map[string]interface{}{"component": "intent"}),
	}
}

const classifierSystemPrompt = `Você é um roteador de perguntas de negócio para agentes de consulta de dados.

Agentes disponíveis:
- client_view_agent: métricas por cliente (tabela clientes: pedidos_12m, recencia_dias, receita_bruta_12m, receita_liquida_12m, gm_12m, gm_pct_12m, mcc, mcc_pct, qtde_produtos, cmv_12m)
- sale_view_agent: pedidos e faturamento (tabela pedidos: receita_bruta, margem_bruta, data, categoria)
- product_view_agent: desempenho por produto/categoria (tabela pedidos agrupada por categoria)
- cluster_view_agent: segmentos de clientes (tabela clusters: label, gm_total, gm_pct_medio, clientes, tendencia)
- period_comparison_agent: comparação entre períodos e tendências (tabela monthly_series: month, receita_bruta, margem_bruta, receita_liquida, cmv)

Responda SOMENTE com um objeto JSON, sem texto adicional:
{"is_data_question": bool, "target_agent": "<nome do agente ou null>", "confidence": 0.0-1.0, "parameters": {...}, "reasoning": "<curto>"}

Se a mensagem for saudação ou conversa sem dados, use is_data_question=false e target_agent=null.`

type llmDecision struct {
	IsDataQuestion bool                   `json:"is_data_question"`
	TargetAgent    string                 `json:"target_agent"`
	Confidence     float64                `json:"confidence"`
	Parameters     map[string]interface{} `json:"parameters"`
	Reasoning      string                 `json:"reasoning"`
}

// Classify routes a message. The model tier is tried first; any transport or
// parsing failure drops to the heuristic tier instead of failing the request.
func (c *Classifier) Classify(ctx context.Context, message string, history []models.ConversationTurn) models.IntentDecision {
	if c.llm != nil && c.llm.Configured() {
		decision, err := c.classifyWithLLM(ctx, message, history)
		if err == nil {
			metrics.IntentDecisions.WithLabelValues(string(models.TierLLM), decisionKind(decision)).Inc()
			return decision
		}
		c.logger.Warn("model classification failed, using heuristic tier", map[string]interface{}{
			"error": err.Error(),
		})
	}

	decision := ClassifyHeuristic(message)
	metrics.IntentDecisions.WithLabelValues(string(models.TierHeuristic), decisionKind(decision)).Inc()
	return decision
}

func (c *Classifier) classifyWithLLM(ctx context.Context, message string, history []models.ConversationTurn) (models.IntentDecision, error) {
	messages := []llm.Message{{Role: "system", Content: classifierSystemPrompt}}

	start := len(history) - classifierContextTurns
	if start < 0 {
		start = 0
	}
	for _, turn := range history[start:] {
		messages = append(messages, llm.Message{Role: string(turn.Role), Content: turn.Content})
	}
	messages = append(messages, llm.Message{Role: "user", Content: message})

	reply, err := c.llm.Complete(ctx, messages, llm.Options{MaxTokens: 300, Temperature: 0.1})
	if err != nil {
		return models.IntentDecision{}, err
	}

	block, ok := extractJSONBlock(reply)
	if !ok {
		return models.IntentDecision{}, commonerrors.NewLLMMalformedOutputError("no JSON object in classifier reply")
	}

	var parsed llmDecision
	if err := json.Unmarshal([]byte(block), &parsed); err != nil {
		return models.IntentDecision{}, commonerrors.NewLLMMalformedOutputError("decode classifier reply: " + err.Error())
	}

	decision := models.IntentDecision{
		IsDataQuestion: parsed.IsDataQuestion,
		Confidence:     parsed.Confidence,
		Tier:           models.TierLLM,
		Parameters:     parsed.Parameters,
		Reasoning:      parsed.Reasoning,
	}
	if decision.Confidence <= 0 {
		decision.Confidence = 0.7
	}

	if parsed.IsDataQuestion {
		agent, ok := models.ParseAgentType(parsed.TargetAgent)
		if !ok {
			return models.IntentDecision{}, commonerrors.NewLLMMalformedOutputError(fmt.Sprintf("classifier picked unknown agent %q", parsed.TargetAgent))
		}
		decision.TargetAgent = agent
	}

	return decision, nil
}

// extractJSONBlock pulls the substring from the first '{' to the last '}' so
// replies wrapped in prose or markdown fences still parse.
func extractJSONBlock(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func decisionKind(d models.IntentDecision) string {
	if !d.IsDataQuestion {
		return "chat"
	}
	return string(d.TargetAgent)
}

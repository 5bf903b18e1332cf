// internal/orchestrator/orchestrator.go

// Package orchestrator runs the conversation state machine: persist the user
// turn, recover context, classify intent, dispatch to a specialized agent or
// hold plain business chat, synthesize a natural-language answer and persist
// it. Every step is recorded in the processing trace returned to the caller.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"insight-agents/internal/agents"
	commonerrors "insight-agents/internal/common/errors"
	"insight-agents/internal/common/logger"
	"insight-agents/internal/common/metrics"
	"insight-agents/internal/llm"
	"insight-agents/internal/memory"
	"insight-agents/internal/models"
)

// Classifier decides what an inbound message asks for.
type Classifier interface {
	Classify(ctx context.Context, message string, history []models.ConversationTurn) models.IntentDecision
}

// Completer is the slice of the llm client used for chat and synthesis.
type Completer interface {
	Complete(ctx context.Context, messages []llm.Message, opts llm.Options) (string, error)
	Configured() bool
}

// Result is the outcome of one processed message.
type Result struct {
	Response        string
	SessionID       string
	Success         bool
	AgentsUsed      []string
	ProcessingSteps []string
	Metadata        map[string]interface{}
}

type Config struct {
	ContextWindow int
}

type Orchestrator struct {
	config     Config
	classifier Classifier
	registry   *agents.Registry
	llm        Completer
	store      memory.Store
	logger     logger.Logger
}

func New(config Config, classifier Classifier, registry *agents.Registry, completer Completer, store memory.Store, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		config:     config,
		classifier: classifier,
		registry:   registry,
		llm:        completer,
		store:      store,
		logger:     log.With(map[string]interface{}{"component": "orchestrator"}),
	}
}

// Process handles one user message end to end. It never returns an error and
// never panics: failures become an apologetic reply with Success=false, and
// the trace shows where processing stopped.
func (o *Orchestrator) Process(ctx context.Context, sessionID, userMessage string) (result Result) {
	var steps []string

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		o.logger.Error("panic recovered while processing message", map[string]interface{}{
			"sessionId": sessionID,
			"panic":     fmt.Sprint(r),
		})
		steps = append(steps, fmt.Sprintf("erro interno: %v", r))

		if err := o.store.Append(ctx, sessionID, models.ConversationTurn{
			Role:      models.RoleAssistant,
			Content:   internalFaultReply,
			Timestamp: time.Now().UTC(),
			Metadata:  map[string]interface{}{"error": true, "fault": fmt.Sprint(r)},
		}); err != nil {
			o.logger.Warn("failed to persist assistant turn", map[string]interface{}{
				"sessionId": sessionID,
				"error":     err.Error(),
			})
		}

		result = Result{
			Response:        internalFaultReply,
			SessionID:       sessionID,
			Success:         false,
			ProcessingSteps: steps,
		}
	}()

	if err := o.store.Append(ctx, sessionID, models.ConversationTurn{
		Role:      models.RoleUser,
		Content:   userMessage,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		o.logger.Warn("failed to persist user turn", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
		steps = append(steps, "falha ao salvar mensagem")
	} else {
		steps = append(steps, "mensagem salva")
	}

	history, err := o.store.Recent(ctx, sessionID, o.config.ContextWindow)
	if err != nil {
		o.logger.Warn("failed to read history", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
		history = nil
	}
	// The freshly appended user turn is not context for itself.
	if n := len(history); n > 0 && history[n-1].Content == userMessage {
		history = history[:n-1]
	}
	steps = append(steps, fmt.Sprintf("contexto: %d mensagens", len(history)))

	decision := o.classifier.Classify(ctx, userMessage, history)
	steps = append(steps, fmt.Sprintf("intenção: %s (%s)", decisionLabel(decision), decision.Tier))

	var response string
	var agentsUsed []string
	success := true

	switch {
	case !decision.IsDataQuestion:
		response = o.chat(ctx, userMessage, history)
		steps = append(steps, "chat de negócio")

	case decision.TargetAgent == "":
		response = clarificationReply
		steps = append(steps, "nenhum agente identificado")

	default:
		agentResp, agentSteps := o.dispatch(ctx, sessionID, userMessage, decision)
		steps = append(steps, agentSteps...)
		agentsUsed = append(agentsUsed, string(decision.TargetAgent))

		if agentResp.Success {
			response = o.synthesize(ctx, userMessage, agentResp)
			steps = append(steps, "resposta formatada")
		} else {
			response = agentFailureReply
			success = false
		}
	}

	turnMeta := map[string]interface{}{"tier": string(decision.Tier)}
	if !success {
		turnMeta["error"] = true
	}
	if err := o.store.Append(ctx, sessionID, models.ConversationTurn{
		Role:      models.RoleAssistant,
		Content:   response,
		Timestamp: time.Now().UTC(),
		Metadata:  turnMeta,
	}); err != nil {
		o.logger.Warn("failed to persist assistant turn", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
	} else {
		steps = append(steps, "resposta salva")
	}

	return Result{
		Response:        response,
		SessionID:       sessionID,
		Success:         success,
		AgentsUsed:      agentsUsed,
		ProcessingSteps: steps,
		Metadata: map[string]interface{}{
			"intent": decision,
		},
	}
}

func (o *Orchestrator) dispatch(ctx context.Context, sessionID, userMessage string, decision models.IntentDecision) (models.AgentResponse, []string) {
	var steps []string

	agent, ok := o.registry.Get(decision.TargetAgent)
	if !ok {
		err := commonerrors.NewUnknownAgentError(string(decision.TargetAgent))
		steps = append(steps, fmt.Sprintf("agente desconhecido: %s", decision.TargetAgent))
		return models.FailedResponse(decision.TargetAgent, err.Error(), 0), steps
	}

	desc, warnings := models.DescriptorFromParams(decision.Parameters, "")
	for _, w := range warnings {
		o.logger.Warn("parameter dropped", map[string]interface{}{"warning": w})
	}

	instructionCtx := map[string]interface{}{
		"user_question":    userMessage,
		"intent_reasoning": decision.Reasoning,
	}
	for k, v := range decision.Parameters {
		if _, taken := instructionCtx[k]; !taken {
			instructionCtx[k] = v
		}
	}

	steps = append(steps, fmt.Sprintf("roteado para %s", decision.TargetAgent))

	resp := agent.Handle(ctx, models.AgentInstruction{
		Agent:           decision.TargetAgent,
		TaskDescription: "Análise solicitada: " + userMessage,
		Query:           desc,
		Context:         instructionCtx,
		SessionID:       sessionID,
	})

	if resp.Success {
		steps = append(steps, fmt.Sprintf("dados obtidos (%d registros)", resp.Metadata.RowCount))
	} else {
		steps = append(steps, fmt.Sprintf("erro: %s", resp.Error))
	}
	return resp, steps
}

// chat answers non-data conversation with the analyst persona. Without a
// working model the fixed greeting keeps the webhook responsive.
func (o *Orchestrator) chat(ctx context.Context, userMessage string, history []models.ConversationTurn) string {
	messages := []llm.Message{{Role: "system", Content: personaPrompt}}

	start := len(history) - 4
	if start < 0 {
		start = 0
	}
	for _, turn := range history[start:] {
		messages = append(messages, llm.Message{Role: string(turn.Role), Content: turn.Content})
	}
	messages = append(messages, llm.Message{Role: "user", Content: userMessage})

	reply, err := o.llm.Complete(ctx, messages, llm.Options{MaxTokens: 300, Temperature: 0.7})
	if err != nil {
		metrics.LLMCalls.WithLabelValues("chat", "error").Inc()
		o.logger.Warn("chat completion failed", map[string]interface{}{"error": err.Error()})
		return chatFallbackReply
	}
	metrics.LLMCalls.WithLabelValues("chat", "ok").Inc()
	return reply
}

// synthesize renders agent data as an analyst answer. When the model fails,
// the templated fallback surfaces the first meaningful number instead of
// losing the data the agent already fetched.
func (o *Orchestrator) synthesize(ctx context.Context, userMessage string, agentResp models.AgentResponse) string {
	dataJSON, err := json.MarshalIndent(agentResp.Data, "", "  ")
	if err != nil {
		dataJSON = []byte("{}")
	}

	prompt := fmt.Sprintf(synthesisPrompt,
		userMessage,
		string(dataJSON),
		agentResp.Metadata.RowCount,
		agentResp.Metadata.QueryInfo["table"],
	)

	reply, err := o.llm.Complete(ctx, []llm.Message{{Role: "user", Content: prompt}}, llm.Options{
		MaxTokens:   600,
		Temperature: 0.8,
	})
	if err != nil {
		metrics.LLMCalls.WithLabelValues("synthesis", "error").Inc()
		o.logger.Warn("synthesis failed, using template", map[string]interface{}{"error": err.Error()})
		return templateSynthesis(agentResp)
	}
	metrics.LLMCalls.WithLabelValues("synthesis", "ok").Inc()
	return reply
}

// templateSynthesis extracts the first positive numeric value from the agent
// data and wraps it in a fixed sentence.
func templateSynthesis(agentResp models.AgentResponse) string {
	key, value, ok := firstPositiveNumeric(agentResp.Data["results"])
	if !ok {
		return synthesisEmptyReply
	}
	return fmt.Sprintf(
		"📊 Encontrei o dado solicitado: **%s** = **R$ %.2f** (total de %d registros).\n\n%s",
		key, value, agentResp.Metadata.RowCount, synthesisFallbackTail,
	)
}

func firstPositiveNumeric(results interface{}) (string, float64, bool) {
	switch r := results.(type) {
	case map[string]interface{}:
		return scanPositive(r)
	case []models.Row:
		for _, row := range r {
			if k, v, ok := scanPositive(row); ok {
				return k, v, ok
			}
		}
	case []map[string]interface{}:
		for _, row := range r {
			if k, v, ok := scanPositive(row); ok {
				return k, v, ok
			}
		}
	}
	return "", 0, false
}

// scanPositive walks keys in sorted order so the picked value is stable.
func scanPositive(row map[string]interface{}) (string, float64, bool) {
	keys := make([]string, 0, len(row))
	for key := range row {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		switch v := row[key].(type) {
		case float64:
			if v > 0 {
				return key, v, true
			}
		case int:
			if v > 0 {
				return key, float64(v), true
			}
		}
	}
	return "", 0, false
}

func decisionLabel(d models.IntentDecision) string {
	if !d.IsDataQuestion {
		return "conversa"
	}
	if d.TargetAgent == "" {
		return "dados (agente indefinido)"
	}
	return string(d.TargetAgent)
}

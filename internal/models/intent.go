// internal/models/intent.go
package models

// DecisionTier records which classification strategy produced a decision, so
// callers can tell a confident LLM decision from a heuristic guess.
type DecisionTier string

const (
	TierLLM       DecisionTier = "llm"
	TierHeuristic DecisionTier = "heuristic"
)

// IntentDecision is the structured outcome of intent classification for one
// inbound message. Created once, consumed immediately, never persisted.
type IntentDecision struct {
	IsDataQuestion bool                   `json:"is_data_question"`
	TargetAgent    AgentType              `json:"target_agent,omitempty"`
	Confidence     float64                `json:"confidence"`
	Tier           DecisionTier           `json:"tier"`
	Parameters     map[string]interface{} `json:"extracted_parameters,omitempty"`
	Reasoning      string                 `json:"reasoning,omitempty"`
}

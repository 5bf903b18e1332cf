// internal/models/webhook.go
package models

import "time"

// WebhookRequest is the inbound chat payload. Frontends disagree on key
// names, so every known spelling is accepted and normalized via accessors.
type WebhookRequest struct {
	Message      string                 `json:"message,omitempty"`
	UserMessage  string                 `json:"user_message,omitempty"`
	Text         string                 `json:"text,omitempty"`
	Content      string                 `json:"content,omitempty"`
	SessionID    string                 `json:"session_id,omitempty"`
	SessionIDAlt string                 `json:"sessionId,omitempty"`
	UserID       string                 `json:"user_id,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// UserText returns the first non-empty message field.
func (r *WebhookRequest) UserText() string {
	for _, s := range []string{r.UserMessage, r.Message, r.Text, r.Content} {
		if s != "" {
			return s
		}
	}
	return ""
}

// Session returns the session identifier under either spelling.
func (r *WebhookRequest) Session() string {
	if r.SessionID != "" {
		return r.SessionID
	}
	return r.SessionIDAlt
}

// WebhookResponse is the outbound reply for one processed message.
type WebhookResponse struct {
	Response        string                 `json:"response"`
	SessionID       string                 `json:"session_id"`
	Timestamp       time.Time              `json:"timestamp"`
	Success         bool                   `json:"success"`
	AgentsUsed      []AgentType            `json:"agents_used,omitempty"`
	ProcessingSteps []string               `json:"processing_steps,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
}

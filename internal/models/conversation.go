// internal/models/conversation.go
package models

import "time"

// Role is the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ConversationTurn is one message in a session's history. Turns are immutable
// once appended.
type ConversationTurn struct {
	Role      Role                   `json:"role"`
	Content   string                 `json:"content"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// SessionRecord tracks one conversation session. It is touched on every turn
// and expires after the configured idle TTL.
type SessionRecord struct {
	SessionID    string    `json:"session_id"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	TurnCount    int       `json:"turn_count"`
}

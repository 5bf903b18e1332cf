// internal/models/agent.go
package models

// AgentType identifies a specialized query agent.
type AgentType string

const (
	AgentOrchestrator     AgentType = "orchestrator"
	AgentClientView       AgentType = "client_view_agent"
	AgentSaleView         AgentType = "sale_view_agent"
	AgentProductView      AgentType = "product_view_agent"
	AgentClusterView      AgentType = "cluster_view_agent"
	AgentPeriodComparison AgentType = "period_comparison_agent"
	AgentError            AgentType = "error"
)

// ParseAgentType maps the string the classifier produces to an AgentType.
func ParseAgentType(s string) (AgentType, bool) {
	switch AgentType(s) {
	case AgentClientView, AgentSaleView, AgentProductView,
		AgentClusterView, AgentPeriodComparison:
		return AgentType(s), true
	}
	return "", false
}

// AgentInstruction is the structured request handed to a specialized agent.
type AgentInstruction struct {
	Agent           AgentType              `json:"agent_type"`
	TaskDescription string                 `json:"task_description"`
	Query           QueryDescriptor        `json:"query"`
	Context         map[string]interface{} `json:"context,omitempty"`
	SessionID       string                 `json:"session_id"`
}

// ResponseMetadata carries diagnostics about one agent execution.
type ResponseMetadata struct {
	RowCount      int                    `json:"row_count"`
	ExecutionTime float64                `json:"execution_time"` // seconds
	QueryInfo     map[string]interface{} `json:"query_info,omitempty"`
	Warnings      []string               `json:"warnings,omitempty"`
}

// AgentResponse is the uniform reply of every specialized agent. It lives for
// one request/response cycle only.
type AgentResponse struct {
	Success  bool                   `json:"success"`
	Agent    AgentType              `json:"agent_type"`
	Data     map[string]interface{} `json:"data,omitempty"`
	Error    string                 `json:"error,omitempty"`
	Metadata ResponseMetadata       `json:"metadata"`
}

// FailedResponse builds the uniform failure reply. Agents never panic or
// return raw transport errors past this boundary.
func FailedResponse(agent AgentType, errMsg string, elapsed float64) AgentResponse {
	return AgentResponse{
		Success: false,
		Agent:   agent,
		Error:   errMsg,
		Metadata: ResponseMetadata{
			ExecutionTime: elapsed,
		},
	}
}

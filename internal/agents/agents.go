// internal/agents/agents.go

// Package agents defines the contract every specialized query agent fulfills
// and the registry the orchestrator dispatches through. Each agent owns one
// analysis view: a table, a column whitelist and a filter vocabulary.
package agents

import (
	"context"
	"sort"
	"sync"

	"insight-agents/internal/models"
)

// Agent is one specialized query agent.
type Agent interface {
	Type() models.AgentType
	Handle(ctx context.Context, instruction models.AgentInstruction) models.AgentResponse
}

// Fetcher is the slice of the data service client agents depend on.
type Fetcher interface {
	Fetch(ctx context.Context, table models.Table, rawQuery string) ([]models.Row, error)
	Configured() bool
}

// Registry maps agent types to implementations. Registration happens once at
// startup; lookups are concurrent.
type Registry struct {
	mu     sync.RWMutex
	agents map[models.AgentType]Agent
}

func NewRegistry() *Registry {
	return &Registry{agents: make(map[models.AgentType]Agent)}
}

func (r *Registry) Register(agent Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[agent.Type()] = agent
}

func (r *Registry) Get(t models.AgentType) (Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	agent, ok := r.agents[t]
	return agent, ok
}

// Types returns the registered agent types in stable order.
func (r *Registry) Types() []models.AgentType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]models.AgentType, 0, len(r.agents))
	for t := range r.agents {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

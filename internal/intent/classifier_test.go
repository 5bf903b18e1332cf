// internal/intent/classifier_test.go
package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"insight-agents/internal/common/logger"
	"insight-agents/internal/llm"
	"insight-agents/internal/models"
)

type fakeCompleter struct {
	reply      string
	err        error
	configured bool
	gotPrompt  []llm.Message
}

func (f *fakeCompleter) Complete(ctx context.Context, messages []llm.Message, opts llm.Options) (string, error) {
	f.gotPrompt = messages
	return f.reply, f.err
}

func (f *fakeCompleter) Configured() bool { return f.configured }

func TestClassifyUsesLLMDecision(t *testing.T) {
	completer := &fakeCompleter{
		configured: true,
		reply: `Claro, aqui está:
{"is_data_question": true, "target_agent": "cluster_view_agent", "confidence": 0.92, "parameters": {"limit": 5}, "reasoning": "pergunta sobre segmentos"}`,
	}
	c := NewClassifier(completer, logger.NewNoOpLogger())

	decision := c.Classify(context.Background(), "como estão os clusters?", nil)

	assert.True(t, decision.IsDataQuestion)
	assert.Equal(t, models.AgentClusterView, decision.TargetAgent)
	assert.Equal(t, models.TierLLM, decision.Tier)
	assert.InDelta(t, 0.92, decision.Confidence, 0.001)
	assert.Equal(t, float64(5), decision.Parameters["limit"])
}

func TestClassifyDefaultsConfidenceWhenMissing(t *testing.T) {
	completer := &fakeCompleter{
		configured: true,
		reply:      `{"is_data_question": false, "target_agent": null}`,
	}
	c := NewClassifier(completer, logger.NewNoOpLogger())

	decision := c.Classify(context.Background(), "bom dia!", nil)

	assert.False(t, decision.IsDataQuestion)
	assert.Equal(t, models.TierLLM, decision.Tier)
	assert.InDelta(t, 0.7, decision.Confidence, 0.001)
}

func TestClassifyFallsBackOnLLMError(t *testing.T) {
	completer := &fakeCompleter{configured: true, err: errors.New("boom")}
	c := NewClassifier(completer, logger.NewNoOpLogger())

	decision := c.Classify(context.Background(), "quantos clientes temos?", nil)

	assert.True(t, decision.IsDataQuestion)
	assert.Equal(t, models.AgentClientView, decision.TargetAgent)
	assert.Equal(t, models.TierHeuristic, decision.Tier)
}

func TestClassifyFallsBackOnMalformedReply(t *testing.T) {
	completer := &fakeCompleter{configured: true, reply: "não consigo responder em JSON"}
	c := NewClassifier(completer, logger.NewNoOpLogger())

	decision := c.Classify(context.Background(), "qual a receita total?", nil)

	assert.Equal(t, models.TierHeuristic, decision.Tier)
	assert.True(t, decision.IsDataQuestion)
}

func TestClassifyFallsBackOnUnknownAgent(t *testing.T) {
	completer := &fakeCompleter{
		configured: true,
		reply:      `{"is_data_question": true, "target_agent": "galaxy_agent", "confidence": 0.9}`,
	}
	c := NewClassifier(completer, logger.NewNoOpLogger())

	decision := c.Classify(context.Background(), "qual a margem total?", nil)

	assert.Equal(t, models.TierHeuristic, decision.Tier)
}

func TestClassifySkipsUnconfiguredLLM(t *testing.T) {
	completer := &fakeCompleter{configured: false}
	c := NewClassifier(completer, logger.NewNoOpLogger())

	decision := c.Classify(context.Background(), "qual a receita total?", nil)

	assert.Equal(t, models.TierHeuristic, decision.Tier)
	assert.Nil(t, completer.gotPrompt)
}

func TestClassifyIncludesRecentHistoryInPrompt(t *testing.T) {
	completer := &fakeCompleter{
		configured: true,
		reply:      `{"is_data_question": false}`,
	}
	c := NewClassifier(completer, logger.NewNoOpLogger())

	history := []models.ConversationTurn{
		{Role: models.RoleUser, Content: "t1"},
		{Role: models.RoleAssistant, Content: "t2"},
		{Role: models.RoleUser, Content: "t3"},
		{Role: models.RoleAssistant, Content: "t4"},
	}
	c.Classify(context.Background(), "e agora?", history)

	// system prompt + last 3 turns + current message
	assert.Len(t, completer.gotPrompt, 5)
	assert.Equal(t, "t2", completer.gotPrompt[1].Content)
	assert.Equal(t, "e agora?", completer.gotPrompt[4].Content)
}

func TestExtractJSONBlock(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, true},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`, true},
		{"prose around", `ok: {"a":1} fim`, `{"a":1}`, true},
		{"no object", "nada aqui", "", false},
		{"reversed braces", "} {", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractJSONBlock(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

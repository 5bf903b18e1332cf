// internal/server/server_test.go
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insight-agents/internal/common/config"
	"insight-agents/internal/common/logger"
	"insight-agents/internal/memory"
	"insight-agents/internal/models"
	"insight-agents/internal/orchestrator"
)

type fakeProcessor struct {
	result     orchestrator.Result
	gotSession string
	gotMessage string
}

func (f *fakeProcessor) Process(ctx context.Context, sessionID, userMessage string) orchestrator.Result {
	f.gotSession = sessionID
	f.gotMessage = userMessage
	res := f.result
	res.SessionID = sessionID
	return res
}

type stubConfigurable struct{ configured bool }

func (s stubConfigurable) Configured() bool { return s.configured }

func newTestServer(t *testing.T, processor Processor, components Components) *Server {
	t.Helper()

	store := memory.NewInMemoryStore(50, time.Hour)
	if components.MemoryBackend == "" {
		components.MemoryBackend = "in-memory"
	}
	return New(config.ServerConfig{Host: "127.0.0.1", Port: 0}, processor, store, components, logger.NewTestLogger(t))
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestChatEndpoint(t *testing.T) {
	processor := &fakeProcessor{result: orchestrator.Result{
		Response:        "resposta",
		Success:         true,
		AgentsUsed:      []string{"client_view_agent"},
		ProcessingSteps: []string{"mensagem salva"},
	}}
	s := newTestServer(t, processor, Components{
		DataService: stubConfigurable{true},
		LLM:         stubConfigurable{true},
	})

	rec := doRequest(t, s, http.MethodPost, "/webhook/chat",
		`{"message": "qual a receita?", "session_id": "s1"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.WebhookResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "resposta", resp.Response)
	assert.Equal(t, "s1", resp.SessionID)
	assert.True(t, resp.Success)
	assert.Equal(t, []models.AgentType{models.AgentClientView}, resp.AgentsUsed)
	assert.Equal(t, "qual a receita?", processor.gotMessage)
}

func TestChatAcceptsAlternateKeySpellings(t *testing.T) {
	processor := &fakeProcessor{result: orchestrator.Result{Success: true}}
	s := newTestServer(t, processor, Components{})

	rec := doRequest(t, s, http.MethodPost, "/webhook/chat",
		`{"user_message": "oi", "sessionId": "alt-1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "oi", processor.gotMessage)
	assert.Equal(t, "alt-1", processor.gotSession)
}

func TestChatGeneratesSessionWhenMissing(t *testing.T) {
	processor := &fakeProcessor{result: orchestrator.Result{Success: true}}
	s := newTestServer(t, processor, Components{})

	rec := doRequest(t, s, http.MethodPost, "/webhook/chat", `{"message": "oi"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(processor.gotSession, "session_"))
}

func TestChatRejectsPayloadWithoutMessage(t *testing.T) {
	s := newTestServer(t, &fakeProcessor{}, Components{})

	rec := doRequest(t, s, http.MethodPost, "/webhook/chat", `{"session_id": "s1"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_PAYLOAD")
}

func TestChatRejectsMalformedJSON(t *testing.T) {
	s := newTestServer(t, &fakeProcessor{}, Components{})

	rec := doRequest(t, s, http.MethodPost, "/webhook/chat", `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTestEndpointEchoesWithoutProcessing(t *testing.T) {
	processor := &fakeProcessor{}
	s := newTestServer(t, processor, Components{
		DataService: stubConfigurable{true},
		LLM:         stubConfigurable{false},
	})

	rec := doRequest(t, s, http.MethodPost, "/webhook/test",
		`{"message": "ping", "session_id": "s1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, processor.gotMessage)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ping", body["received_message"])
	components := body["components"].(map[string]interface{})
	assert.Equal(t, "configured", components["data_service"])
	assert.Equal(t, "not_configured", components["llm"])
}

func TestHealthDegradedWithoutCredentials(t *testing.T) {
	s := newTestServer(t, &fakeProcessor{}, Components{
		DataService: stubConfigurable{false},
		LLM:         stubConfigurable{true},
	})

	rec := doRequest(t, s, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
}

func TestHealthHealthyWhenConfigured(t *testing.T) {
	s := newTestServer(t, &fakeProcessor{}, Components{
		DataService: stubConfigurable{true},
		LLM:         stubConfigurable{true},
	})

	rec := doRequest(t, s, http.MethodGet, "/health", "")

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestSessionEndpoints(t *testing.T) {
	s := newTestServer(t, &fakeProcessor{result: orchestrator.Result{Success: true}}, Components{})

	require.NoError(t, s.store.Append(context.Background(), "s1", models.ConversationTurn{
		Role:    models.RoleUser,
		Content: "oi",
	}))

	rec := doRequest(t, s, http.MethodGet, "/session/s1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	history := body["history"].([]interface{})
	assert.Len(t, history, 1)

	rec = doRequest(t, s, http.MethodDelete, "/session/s1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/session/s1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCleanupEndpoint(t *testing.T) {
	s := newTestServer(t, &fakeProcessor{}, Components{})

	rec := doRequest(t, s, http.MethodPost, "/admin/cleanup", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(0), body["expired_sessions"])
}

func TestStatsEndpoint(t *testing.T) {
	s := newTestServer(t, &fakeProcessor{}, Components{
		AgentTypes: []string{"client_view_agent", "sale_view_agent"},
	})

	rec := doRequest(t, s, http.MethodGet, "/stats", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "in-memory", body["memory_backend"])
	assert.Len(t, body["agents"], 2)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, &fakeProcessor{}, Components{})

	rec := doRequest(t, s, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

// internal/server/handlers.go
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	commonerrors "insight-agents/internal/common/errors"
	"insight-agents/internal/common/metrics"
	"insight-agents/internal/common/validation"
	"insight-agents/internal/memory"
	"insight-agents/internal/models"
)

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		metrics.WebhookRequests.WithLabelValues("error").Inc()
		s.writeError(w, http.StatusBadRequest, commonerrors.ErrCodeInvalidPayload, "could not read request body")
		return
	}

	req, errs := s.parsePayload(body)
	if len(errs) > 0 {
		metrics.WebhookRequests.WithLabelValues("invalid").Inc()
		s.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  commonerrors.ErrCodeInvalidPayload,
			"errors": errs,
		})
		return
	}

	sessionID := req.Session()
	if sessionID == "" {
		sessionID = "session_" + uuid.NewString()
	}

	result := s.processor.Process(r.Context(), sessionID, req.UserText())

	outcome := "ok"
	if !result.Success {
		outcome = "failed"
	}
	metrics.WebhookRequests.WithLabelValues(outcome).Inc()

	agentsUsed := make([]models.AgentType, 0, len(result.AgentsUsed))
	for _, a := range result.AgentsUsed {
		agentsUsed = append(agentsUsed, models.AgentType(a))
	}

	s.writeJSON(w, http.StatusOK, models.WebhookResponse{
		Response:        result.Response,
		SessionID:       result.SessionID,
		Timestamp:       time.Now().UTC(),
		Success:         result.Success,
		AgentsUsed:      agentsUsed,
		ProcessingSteps: result.ProcessingSteps,
		Metadata:        result.Metadata,
	})
}

// handleTest validates and echoes a payload without touching the model or the
// data service, so integrations can be checked cheaply.
func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, commonerrors.ErrCodeInvalidPayload, "could not read request body")
		return
	}

	req, errs := s.parsePayload(body)
	if len(errs) > 0 {
		s.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  commonerrors.ErrCodeInvalidPayload,
			"errors": errs,
		})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":           "ok",
		"received_message": req.UserText(),
		"session_id":       req.Session(),
		"components":       s.componentStatus(),
		"timestamp":        time.Now().UTC(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	components := s.componentStatus()

	status := "healthy"
	for _, state := range components {
		if state != "configured" && state != "redis" && state != "in-memory" {
			status = "degraded"
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     status,
		"version":    version,
		"components": components,
		"timestamp":  time.Now().UTC(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"uptime_seconds": int(time.Since(s.startedAt).Seconds()),
		"version":        version,
		"agents":         s.components.AgentTypes,
		"memory_backend": s.components.MemoryBackend,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	record, err := s.store.Session(r.Context(), sessionID)
	if errors.Is(err, memory.ErrSessionNotFound) {
		s.writeError(w, http.StatusNotFound, commonerrors.ErrCodeSessionNotFound, "no such session")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, commonerrors.ErrCodeMemoryStoreError, err.Error())
		return
	}

	history, err := s.store.Recent(r.Context(), sessionID, 50)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, commonerrors.ErrCodeMemoryStoreError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"session": record,
		"history": history,
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := s.store.Clear(r.Context(), sessionID); err != nil {
		s.writeError(w, http.StatusInternalServerError, commonerrors.ErrCodeMemoryStoreError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"session_id": sessionID,
	})
}

func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	expired, err := s.store.ExpireIdle(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, commonerrors.ErrCodeMemoryStoreError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"expired_sessions": expired,
	})
}

// parsePayload runs schema validation and decodes the webhook body. A valid
// body with only whitespace message keys still fails with a field error.
func (s *Server) parsePayload(body []byte) (*models.WebhookRequest, []validation.ValidationError) {
	result, err := validation.ValidateWebhookPayload(body)
	if err != nil {
		return nil, []validation.ValidationError{{Field: "(root)", Message: "body is not valid JSON"}}
	}
	if !result.Valid {
		return nil, result.Errors
	}

	var req models.WebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, []validation.ValidationError{{Field: "(root)", Message: "body is not valid JSON"}}
	}
	if req.UserText() == "" {
		return nil, []validation.ValidationError{{Field: "message", Message: "message text is empty"}}
	}
	return &req, nil
}

func (s *Server) componentStatus() map[string]string {
	status := func(c Configurable) string {
		if c != nil && c.Configured() {
			return "configured"
		}
		return "not_configured"
	}
	return map[string]string{
		"data_service": status(s.components.DataService),
		"llm":          status(s.components.LLM),
		"memory":       s.components.MemoryBackend,
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code commonerrors.ErrorCode, message string) {
	s.writeJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": message,
	})
}

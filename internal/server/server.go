// internal/server/server.go

// Package server exposes the webhook and operational HTTP surface. Routing is
// chi; handlers translate between HTTP and the orchestrator, which owns all
// conversation logic.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"insight-agents/internal/common/config"
	"insight-agents/internal/common/logger"
	"insight-agents/internal/memory"
	"insight-agents/internal/orchestrator"
)

const version = "1.0.0"

// Processor is the slice of the orchestrator the server needs.
type Processor interface {
	Process(ctx context.Context, sessionID, userMessage string) orchestrator.Result
}

// Configurable reports whether an upstream client has credentials. Both the
// data service and the llm client satisfy it.
type Configurable interface {
	Configured() bool
}

// Components describes the wiring the health and stats endpoints report on.
type Components struct {
	DataService   Configurable
	LLM           Configurable
	MemoryBackend string
	AgentTypes    []string
}

type Server struct {
	httpServer *http.Server
	router     chi.Router
	processor  Processor
	store      memory.Store
	components Components
	logger     logger.Logger
	startedAt  time.Time
}

func New(cfg config.ServerConfig, processor Processor, store memory.Store, components Components, log logger.Logger) *Server {
	s := &Server{
		processor:  processor,
		store:      store,
		components: components,
		logger:     log.With(map[string]interface{}{"component": "server"}),
		startedAt:  time.Now().UTC(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Post("/webhook/chat", s.handleChat)
	r.Post("/webhook/test", s.handleTest)
	r.Get("/health", s.handleHealth)
	r.Get("/stats", s.handleStats)
	r.Get("/session/{sessionID}", s.handleGetSession)
	r.Delete("/session/{sessionID}", s.handleDeleteSession)
	r.Post("/admin/cleanup", s.handleCleanup)
	r.Handle("/metrics", promhttp.Handler())

	s.router = r
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	}

	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Start() error {
	s.logger.Info("http server listening", map[string]interface{}{
		"address": s.httpServer.Addr,
	})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

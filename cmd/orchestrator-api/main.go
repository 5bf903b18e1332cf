// cmd/orchestrator-api/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"insight-agents/internal/agents"
	"insight-agents/internal/agents/clientview"
	"insight-agents/internal/agents/clusterview"
	"insight-agents/internal/agents/periodcompare"
	"insight-agents/internal/agents/productview"
	"insight-agents/internal/agents/saleview"
	"insight-agents/internal/common/config"
	"insight-agents/internal/common/database"
	"insight-agents/internal/common/logger"
	"insight-agents/internal/dataservice"
	"insight-agents/internal/intent"
	"insight-agents/internal/llm"
	"insight-agents/internal/memory"
	"insight-agents/internal/orchestrator"
	"insight-agents/internal/server"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting orchestrator api",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	ctx := context.Background()

	// --- Conversation store: Redis when reachable, in-process otherwise ---
	maxHistory := cfg.Memory.MaxHistory
	sessionTTL := time.Duration(cfg.Memory.SessionTTL) * time.Second

	var store memory.Store
	memoryBackend := "in-memory"
	if cfg.Database.Redis.Enabled {
		var redisClient *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 5, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Warn("redis unavailable, falling back to in-memory conversation store", zap.Error(err))
		} else {
			defer redisClient.Close()
			store = memory.NewRedisStore(redisClient.Client, maxHistory, sessionTTL)
			memoryBackend = "redis"
			zapLog.Info("redis connected")
		}
	}
	if store == nil {
		store = memory.NewInMemoryStore(maxHistory, sessionTTL)
	}

	// --- Upstream clients ---
	dsClient := dataservice.New(cfg.Supabase, log)
	if !dsClient.Configured() {
		zapLog.Warn("data service credentials missing, agents will fail until configured")
	}

	llmClient := llm.New(cfg.LLM, log)
	if !llmClient.Configured() {
		zapLog.Warn("llm credentials missing, classification falls back to keywords")
	}

	// --- Specialized agents ---
	registry := agents.NewRegistry()

	if agentEnabled(cfg.Agents, "client_view_agent") {
		c := clientview.DefaultConfig()
		applyAgentConfig(cfg.Agents, "client_view_agent", &c.Timeout, &c.DefaultLimit)
		registry.Register(clientview.NewHandler(c, dsClient, log))
	}
	if agentEnabled(cfg.Agents, "sale_view_agent") {
		c := saleview.DefaultConfig()
		applyAgentConfig(cfg.Agents, "sale_view_agent", &c.Timeout, &c.DefaultLimit)
		registry.Register(saleview.NewHandler(c, dsClient, log))
	}
	if agentEnabled(cfg.Agents, "product_view_agent") {
		c := productview.DefaultConfig()
		applyAgentConfig(cfg.Agents, "product_view_agent", &c.Timeout, &c.DefaultLimit)
		registry.Register(productview.NewHandler(c, dsClient, log))
	}
	if agentEnabled(cfg.Agents, "cluster_view_agent") {
		c := clusterview.DefaultConfig()
		applyAgentConfig(cfg.Agents, "cluster_view_agent", &c.Timeout, &c.DefaultLimit)
		registry.Register(clusterview.NewHandler(c, dsClient, log))
	}
	if agentEnabled(cfg.Agents, "period_comparison_agent") {
		c := periodcompare.DefaultConfig()
		var limit int // period comparison has no row limit
		applyAgentConfig(cfg.Agents, "period_comparison_agent", &c.Timeout, &limit)
		registry.Register(periodcompare.NewHandler(c, dsClient, log))
	}

	zapLog.Info("agents registered", zap.Int("count", len(registry.Types())))

	// --- Orchestrator and HTTP surface ---
	classifier := intent.NewClassifier(llmClient, log)
	orch := orchestrator.New(
		orchestrator.Config{ContextWindow: cfg.Memory.ContextWindow},
		classifier, registry, llmClient, store, log,
	)

	agentTypes := make([]string, 0, len(registry.Types()))
	for _, t := range registry.Types() {
		agentTypes = append(agentTypes, string(t))
	}

	srv := server.New(cfg.Server, orch, store, server.Components{
		DataService:   dsClient,
		LLM:           llmClient,
		MemoryBackend: memoryBackend,
		AgentTypes:    agentTypes,
	}, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	case sig := <-sigCh:
		zapLog.Info("shutdown signal received", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("shutdown incomplete", zap.Error(err))
	}
	zapLog.Info("orchestrator api stopped")
}

// agentEnabled treats agents absent from the config map as enabled, so an
// empty config file runs the full set.
func agentEnabled(cfg config.AgentsConfig, name string) bool {
	ac, ok := cfg[name]
	if !ok {
		return true
	}
	return ac.Enabled
}

func applyAgentConfig(cfg config.AgentsConfig, name string, timeout *time.Duration, limit *int) {
	ac, ok := cfg[name]
	if !ok {
		return
	}
	if ac.Timeout > 0 {
		*timeout = time.Duration(ac.Timeout) * time.Millisecond
	}
	if ac.DefaultLimit > 0 {
		*limit = ac.DefaultLimit
	}
}

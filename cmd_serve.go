package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"github.com/xiaot623/gogo/chatapi/internal/adapter/llm"
	"github.com/xiaot623/gogo/chatapi/internal/config"
	"github.com/xiaot623/gogo/chatapi/internal/conversation"
	"github.com/xiaot623/gogo/chatapi/internal/policy"
	"github.com/xiaot623/gogo/chatapi/internal/prompt"
	"github.com/xiaot623/gogo/chatapi/internal/repository"
	"github.com/xiaot623/gogo/chatapi/internal/service"
	transporthttp "github.com/xiaot623/gogo/chatapi/internal/transport/http"
	"github.com/xiaot623/gogo/chatapi/internal/transport/ws"
)

// ServeCmd runs the HTTP and WebSocket server.
type ServeCmd struct {
	Port int `short:"p" help:"Listen port (overrides HTTP_PORT)"`
}

func (s *ServeCmd) Run(cli *CLI) error {
	logger := newLogger(cli.LogLevel)

	// Load configuration
	cfg := config.Load()
	if s.Port > 0 {
		cfg.HTTPPort = s.Port
	}

	logger.Info("starting chat API",
		"port", cfg.HTTPPort,
		"mode", cfg.Mode,
		"deployment", cfg.Azure.Deployment,
		"database", cfg.DatabaseURL,
	)

	// Initialize store
	db, err := repository.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer db.Close()

	// Initialize LLM client. A missing configuration is reported by /health
	// and by each chat request rather than preventing startup.
	llmClient := llm.NewClientOrUnavailable(cfg, logger)

	// Initialize policy engine
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		return fmt.Errorf("failed to initialize policy engine: %w", err)
	}

	systemPrompt, err := prompt.Load(afero.NewOsFs(), cfg.SystemPromptFile, conversation.DefaultSystemPrompt)
	if err != nil {
		return err
	}

	// Initialize service
	svc := service.New(db, llmClient, cfg, policyEngine, systemPrompt, logger)

	// WebSocket channel
	hub := ws.NewHub(logger)
	go hub.Run(ctx)
	wsServer := ws.NewServer(cfg, hub, svc, logger)

	server := transporthttp.NewServer(cfg, svc, wsServer, logger)

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	logger.Info("chat API started", "port", cfg.HTTPPort)

	// Wait for interrupt signal
	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	}

	logger.Info("shutting down chat API")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("failed to shutdown server gracefully", "error", err)
	}

	logger.Info("chat API stopped")
	return nil
}

// Package service implements the chat API's use cases on top of the
// conversation orchestrator, the store and the request policy.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xiaot623/gogo/chatapi/internal/adapter/llm"
	"github.com/xiaot623/gogo/chatapi/internal/config"
	"github.com/xiaot623/gogo/chatapi/internal/conversation"
	"github.com/xiaot623/gogo/chatapi/internal/domain"
	"github.com/xiaot623/gogo/chatapi/internal/policy"
	"github.com/xiaot623/gogo/chatapi/internal/repository"
)

// Channels a message can arrive on. They are passed to the policy.
const (
	ChannelHTTP      = "http"
	ChannelWebSocket = "ws"
	ChannelCLI       = "cli"
)

// DefaultConversationID is used when a conversation request names none.
const DefaultConversationID = "default"

type Service struct {
	store        repository.Store
	llmClient    llm.LLMClient
	orchestrator *conversation.Orchestrator
	config       *config.Config
	policyEngine *policy.Engine
	logger       *slog.Logger
}

// New wires a Service. systemPrompt seeds conversations that do not supply
// their own; an empty value selects conversation.DefaultSystemPrompt.
func New(store repository.Store, llmClient llm.LLMClient, cfg *config.Config, policyEngine *policy.Engine, systemPrompt string, logger *slog.Logger) *Service {
	recorder := &recordingClient{next: llmClient, store: store, logger: logger}
	orch := conversation.NewOrchestrator(conversation.NewRegistry(), recorder, conversation.Options{
		Model:               cfg.Model(),
		Temperature:         cfg.Azure.Temperature,
		DefaultSystemPrompt: systemPrompt,
		Timeout:             cfg.LLMTimeout,
	})
	return &Service{
		store:        store,
		llmClient:    llmClient,
		orchestrator: orch,
		config:       cfg,
		policyEngine: policyEngine,
		logger:       logger,
	}
}

// Model returns the model label reported to callers.
func (s *Service) Model() string {
	return s.orchestrator.Model()
}

// ChatInput is an inbound chat message.
type ChatInput struct {
	ConversationID string
	Message        string
	SystemPrompt   string
	Channel        string
}

// checkPolicy evaluates the message against the request policy.
func (s *Service) checkPolicy(ctx context.Context, in ChatInput) error {
	if s.policyEngine == nil {
		return nil
	}
	channel := in.Channel
	if channel == "" {
		channel = ChannelHTTP
	}
	decision, err := s.policyEngine.Evaluate(ctx, policy.Input{
		Message:        in.Message,
		ConversationID: in.ConversationID,
		Channel:        channel,
		Limits:         policy.Limits{MaxMessageChars: s.config.MaxMessageChars},
	})
	if err != nil {
		return fmt.Errorf("failed to evaluate policy: %w", err)
	}
	if !decision.Allowed {
		s.logger.Info("message rejected by policy", "channel", channel, "reasons", decision.Reasons)
		return &domain.ValidationError{Reason: strings.Join(decision.Reasons, "; ")}
	}
	return nil
}

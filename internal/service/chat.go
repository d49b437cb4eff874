package service

import (
	"context"
	"errors"

	"github.com/xiaot623/gogo/chatapi/internal/domain"
)

// Chat answers a single message without conversation memory.
func (s *Service) Chat(ctx context.Context, in ChatInput) (*domain.ChatReply, error) {
	if err := s.checkPolicy(ctx, in); err != nil {
		return nil, err
	}

	reply, err := s.orchestrator.SimpleExchange(ctx, in.Message, in.SystemPrompt)
	if err != nil {
		s.logFailure("chat", err)
		return nil, err
	}
	return &domain.ChatReply{Response: reply, Model: s.Model()}, nil
}

// ChatStream is the streaming form of Chat. onDelta receives reply fragments
// in order.
func (s *Service) ChatStream(ctx context.Context, in ChatInput, onDelta func(string) error) (*domain.ChatReply, error) {
	if err := s.checkPolicy(ctx, in); err != nil {
		return nil, err
	}

	reply, err := s.orchestrator.StreamSimpleExchange(ctx, in.Message, in.SystemPrompt, onDelta)
	if err != nil {
		s.logFailure("chat stream", err)
		return nil, err
	}
	return &domain.ChatReply{Response: reply, Model: s.Model()}, nil
}

// Converse appends the message to a conversation and returns the reply.
// An empty conversation id selects DefaultConversationID.
func (s *Service) Converse(ctx context.Context, in ChatInput) (*domain.ChatReply, error) {
	if in.ConversationID == "" {
		in.ConversationID = DefaultConversationID
	}
	if err := s.checkPolicy(ctx, in); err != nil {
		return nil, err
	}

	ctx = withConversationID(ctx, in.ConversationID)
	reply, err := s.orchestrator.Exchange(ctx, in.ConversationID, in.Message, in.SystemPrompt)
	if err != nil {
		s.logFailure("conversation", err, "conversation_id", in.ConversationID)
		return nil, err
	}
	return &domain.ChatReply{
		Response:       reply,
		ConversationID: in.ConversationID,
		Model:          s.Model(),
	}, nil
}

// GetConversation returns a snapshot of a conversation.
func (s *Service) GetConversation(ctx context.Context, id string) (*domain.ConversationSnapshot, error) {
	sess, err := s.orchestrator.Registry().Get(id)
	if err != nil {
		return nil, err
	}
	return sess.Snapshot(), nil
}

// DeleteConversation discards a conversation and its history.
func (s *Service) DeleteConversation(ctx context.Context, id string) error {
	if err := s.orchestrator.Registry().Delete(id); err != nil {
		return err
	}
	s.logger.Info("conversation deleted", "conversation_id", id)
	return nil
}

// ListConversations returns the ids of all active conversations.
func (s *Service) ListConversations(ctx context.Context) []string {
	return s.orchestrator.Registry().ListIDs()
}

func (s *Service) logFailure(op string, err error, attrs ...any) {
	var cfgErr *domain.ConfigurationError
	if errors.As(err, &cfgErr) {
		s.logger.Warn(op+" rejected: generation client not configured", append(attrs, "error", err)...)
		return
	}
	s.logger.Error(op+" failed", append(attrs, "error", err)...)
}

package service

import (
	"context"
	"fmt"

	"github.com/xiaot623/gogo/chatapi/internal/domain"
)

const (
	defaultCallsLimit = 50
	maxCallsLimit     = 500
)

// ListGenerationCalls returns recorded generation calls, newest first.
// A non-positive limit selects the default; limits are capped.
func (s *Service) ListGenerationCalls(ctx context.Context, conversationID string, limit int) ([]domain.GenerationCall, error) {
	if limit <= 0 {
		limit = defaultCallsLimit
	}
	if limit > maxCallsLimit {
		limit = maxCallsLimit
	}

	calls, err := s.store.ListGenerationCalls(ctx, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list generation calls: %w", err)
	}
	return calls, nil
}

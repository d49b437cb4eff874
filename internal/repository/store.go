// Package repository defines the storage interface and its SQLite implementation.
package repository

import (
	"context"

	"github.com/xiaot623/gogo/chatapi/internal/domain"
)

// Store defines the interface for data persistence.
type Store interface {
	// Activity operations
	ListActivities(ctx context.Context) ([]domain.Activity, error)
	GetActivity(ctx context.Context, name string) (*domain.Activity, error)
	AddParticipant(ctx context.Context, activityName, email string) (bool, error)
	RemoveParticipant(ctx context.Context, activityName, email string) (bool, error)

	// Generation call log
	CreateGenerationCall(ctx context.Context, call *domain.GenerationCall) error
	ListGenerationCalls(ctx context.Context, conversationID string, limit int) ([]domain.GenerationCall, error)

	// Lifecycle
	Close() error
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

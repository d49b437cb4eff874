package policy

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateDefaultPolicy(t *testing.T) {
	ctx := context.Background()
	engine, err := NewEngine(ctx, DefaultPolicy)
	require.NoError(t, err)

	limits := Limits{MaxMessageChars: 10}

	tests := []struct {
		name    string
		input   Input
		allowed bool
		reasons []string
	}{
		{
			name:    "short message",
			input:   Input{Message: "hello", Channel: "http", Limits: limits},
			allowed: true,
		},
		{
			name:    "long message",
			input:   Input{Message: strings.Repeat("a", 11), Channel: "http", Limits: limits},
			reasons: []string{"message exceeds 10 characters"},
		},
		{
			name:    "whitespace in conversation id",
			input:   Input{Message: "hi", ConversationID: "my chat", Channel: "http", Limits: limits},
			reasons: []string{"conversation_id must not contain whitespace"},
		},
		{
			name:  "both rules",
			input: Input{Message: strings.Repeat("a", 20), ConversationID: "a b", Channel: "ws", Limits: limits},
			reasons: []string{
				"conversation_id must not contain whitespace",
				"message exceeds 10 characters",
			},
		},
		{
			name:    "no limit configured",
			input:   Input{Message: strings.Repeat("a", 100), Channel: "http"},
			allowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := engine.Evaluate(ctx, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, decision.Allowed)
			assert.Equal(t, tt.reasons, decision.Reasons)
		})
	}
}

func TestNewEngineRejectsInvalidPolicy(t *testing.T) {
	_, err := NewEngine(context.Background(), "package chat_policy\n\ndeny[msg] {")
	assert.Error(t, err)
}

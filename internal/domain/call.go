package domain

import "time"

// GenerationCall records one call to the generation provider.
type GenerationCall struct {
	CallID           string    `json:"call_id" db:"call_id"`
	ConversationID   string    `json:"conversation_id,omitempty" db:"conversation_id"`
	Model            string    `json:"model" db:"model"`
	Stream           bool      `json:"stream" db:"stream"`
	LatencyMs        int64     `json:"latency_ms" db:"latency_ms"`
	PromptTokens     int       `json:"prompt_tokens" db:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens" db:"completion_tokens"`
	TotalTokens      int       `json:"total_tokens" db:"total_tokens"`
	Error            string    `json:"error,omitempty" db:"error"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// Package protocol defines the WebSocket message protocol of the conversation channel.
package protocol

// Message types from client to server
const (
	TypeHello   = "hello"
	TypeMessage = "message"
	TypeReset   = "reset"
)

// Message types from server to client
const (
	TypeHelloAck = "hello_ack"
	TypeReply    = "reply"
	TypeResetAck = "reset_ack"
	TypeError    = "error"
)

// BaseMessage contains common fields for all messages.
type BaseMessage struct {
	Type           string `json:"type"`
	Ts             int64  `json:"ts"`
	RequestID      string `json:"request_id,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// HelloMessage binds the connection to a conversation. An empty
// conversation id asks the server to allocate one.
type HelloMessage struct {
	BaseMessage
}

// HelloAckMessage confirms the bound conversation id.
type HelloAckMessage struct {
	BaseMessage
}

// ChatMessage carries a user message for the bound conversation.
type ChatMessage struct {
	BaseMessage
	Content      string `json:"content"`
	SystemPrompt string `json:"system_prompt,omitempty"`
}

// ReplyMessage is broadcast to every connection bound to the conversation.
type ReplyMessage struct {
	BaseMessage
	Content string `json:"content"`
	Model   string `json:"model"`
}

// ResetMessage discards the bound conversation's history.
type ResetMessage struct {
	BaseMessage
}

// ResetAckMessage confirms a reset.
type ResetAckMessage struct {
	BaseMessage
}

// ErrorMessage is sent when a request fails.
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrorCodeInvalidMessage       = "invalid_message"
	ErrorCodeConversationRequired = "conversation_required"
	ErrorCodeInvalidRequest       = "invalid_request"
	ErrorCodeConfiguration        = "configuration_error"
	ErrorCodeGenerationFailed     = "generation_failed"
	ErrorCodeInternalError        = "internal_error"
)

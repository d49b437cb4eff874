package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/xiaot623/gogo/chatapi/internal/adapter/llm"
	"github.com/xiaot623/gogo/chatapi/internal/domain"
	"github.com/xiaot623/gogo/chatapi/internal/repository"
)

type conversationIDKey struct{}

func withConversationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, conversationIDKey{}, id)
}

func conversationIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(conversationIDKey{}).(string)
	return id
}

// recordingClient logs every generation call to the store.
// A failure to record never fails the call itself.
type recordingClient struct {
	next   llm.LLMClient
	store  repository.Store
	logger *slog.Logger
}

func (r *recordingClient) Check() error {
	return r.next.Check()
}

func (r *recordingClient) CreateChatCompletion(ctx context.Context, req *llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	call := r.begin(ctx, req)
	startTime := time.Now()

	resp, err := r.next.CreateChatCompletion(ctx, req)

	call.LatencyMs = time.Since(startTime).Milliseconds()
	if err != nil {
		call.Error = err.Error()
	} else {
		if resp.Model != "" {
			call.Model = resp.Model
		}
		setUsage(call, resp.Usage)
	}
	r.record(ctx, call)

	return resp, err
}

func (r *recordingClient) CreateChatCompletionStream(ctx context.Context, req *llm.ChatCompletionRequest, callback llm.StreamCallback) (*llm.Usage, error) {
	call := r.begin(ctx, req)
	call.Stream = true
	startTime := time.Now()

	var responseModel string

	// Wrap callback to capture model
	wrapperCallback := func(chunk *llm.StreamChunk) error {
		if responseModel == "" && chunk.Model != "" {
			responseModel = chunk.Model
		}
		return callback(chunk)
	}

	usage, err := r.next.CreateChatCompletionStream(ctx, req, wrapperCallback)

	call.LatencyMs = time.Since(startTime).Milliseconds()
	if responseModel != "" {
		call.Model = responseModel
	}
	setUsage(call, usage)
	if err != nil {
		call.Error = err.Error()
	}
	r.record(ctx, call)

	return usage, err
}

func setUsage(call *domain.GenerationCall, u *llm.Usage) {
	if u == nil {
		return
	}
	call.PromptTokens = u.PromptTokens
	call.CompletionTokens = u.CompletionTokens
	call.TotalTokens = u.TotalTokens
}

func (r *recordingClient) begin(ctx context.Context, req *llm.ChatCompletionRequest) *domain.GenerationCall {
	return &domain.GenerationCall{
		CallID:         "gen_" + uuid.New().String()[:8],
		ConversationID: conversationIDFrom(ctx),
		Model:          req.Model,
		CreatedAt:      time.Now(),
	}
}

func (r *recordingClient) record(ctx context.Context, call *domain.GenerationCall) {
	// The call context may already have expired.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := r.store.CreateGenerationCall(ctx, call); err != nil {
		r.logger.Warn("failed to record generation call", "call_id", call.CallID, "error", err)
		return
	}
	r.logger.Debug("generation call recorded",
		"call_id", call.CallID,
		"conversation_id", call.ConversationID,
		"latency_ms", call.LatencyMs,
		"error", call.Error,
	)
}

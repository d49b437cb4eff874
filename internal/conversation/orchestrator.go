package conversation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/xiaot623/gogo/chatapi/internal/adapter/llm"
	"github.com/xiaot623/gogo/chatapi/internal/domain"
)

// DefaultSystemPrompt seeds conversations when the caller supplies none.
const DefaultSystemPrompt = "You are a helpful and friendly assistant."

// Options configures an Orchestrator.
type Options struct {
	Model               string
	Temperature         float64
	DefaultSystemPrompt string
	Timeout             time.Duration
}

// Orchestrator runs exchanges: it resolves a session, sends the accumulated
// turns to the generation client and commits the reply.
type Orchestrator struct {
	registry *Registry
	client   llm.LLMClient
	opts     Options
}

// NewOrchestrator creates an orchestrator over registry and client.
func NewOrchestrator(registry *Registry, client llm.LLMClient, opts Options) *Orchestrator {
	if strings.TrimSpace(opts.DefaultSystemPrompt) == "" {
		opts.DefaultSystemPrompt = DefaultSystemPrompt
	}
	return &Orchestrator{
		registry: registry,
		client:   client,
		opts:     opts,
	}
}

// Model returns the configured model label.
func (o *Orchestrator) Model() string {
	return o.opts.Model
}

// Registry returns the registry the orchestrator writes to.
func (o *Orchestrator) Registry() *Registry {
	return o.registry
}

// Exchange appends userText to the conversation id, generates a reply from
// the full history and commits both turns. A new conversation is seeded with
// systemPrompt, or the default prompt when it is empty. On failure no turns
// are committed.
func (o *Orchestrator) Exchange(ctx context.Context, id, userText, systemPrompt string) (string, error) {
	if err := o.client.Check(); err != nil {
		return "", err
	}

	sess := o.registry.GetOrCreate(id)
	sess.exchangeMu.Lock()
	defer sess.exchangeMu.Unlock()

	history := sess.Turns()
	var pending []domain.Turn
	if len(history) == 0 {
		pending = append(pending, domain.Turn{Role: domain.RoleSystem, Content: o.systemPrompt(systemPrompt)})
	}
	pending = append(pending, domain.Turn{Role: domain.RoleUser, Content: userText})

	reply, err := o.generate(ctx, append(history, pending...))
	if err != nil {
		return "", err
	}

	pending = append(pending, domain.Turn{Role: domain.RoleAssistant, Content: reply})
	sess.appendTurns(o.registry.now(), pending...)
	return reply, nil
}

// SimpleExchange generates a single reply to userText under systemPrompt
// without reading or writing the registry.
func (o *Orchestrator) SimpleExchange(ctx context.Context, userText, systemPrompt string) (string, error) {
	if err := o.client.Check(); err != nil {
		return "", err
	}
	return o.generate(ctx, o.singleTurn(userText, systemPrompt))
}

// StreamSimpleExchange is the streaming form of SimpleExchange. onDelta
// receives each fragment as it arrives; the full reply is returned.
func (o *Orchestrator) StreamSimpleExchange(ctx context.Context, userText, systemPrompt string, onDelta func(string) error) (string, error) {
	if err := o.client.Check(); err != nil {
		return "", err
	}

	ctx, cancel := o.callContext(ctx)
	defer cancel()

	var sb strings.Builder
	_, err := o.client.CreateChatCompletionStream(ctx, o.request(o.singleTurn(userText, systemPrompt)), func(chunk *llm.StreamChunk) error {
		delta := chunk.DeltaContent()
		if delta == "" {
			return nil
		}
		sb.WriteString(delta)
		return onDelta(delta)
	})
	if err != nil {
		return sb.String(), asGenerationError(err)
	}
	return sb.String(), nil
}

func (o *Orchestrator) singleTurn(userText, systemPrompt string) []domain.Turn {
	return []domain.Turn{
		{Role: domain.RoleSystem, Content: o.systemPrompt(systemPrompt)},
		{Role: domain.RoleUser, Content: userText},
	}
}

func (o *Orchestrator) systemPrompt(p string) string {
	if strings.TrimSpace(p) == "" {
		return o.opts.DefaultSystemPrompt
	}
	return p
}

// generate calls the client and returns the reply text as given, including
// an empty reply.
func (o *Orchestrator) generate(ctx context.Context, turns []domain.Turn) (string, error) {
	ctx, cancel := o.callContext(ctx)
	defer cancel()

	resp, err := o.client.CreateChatCompletion(ctx, o.request(turns))
	if err != nil {
		return "", asGenerationError(err)
	}
	return resp.Content(), nil
}

// callContext detaches the call from caller cancellation and applies the
// generation timeout.
func (o *Orchestrator) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithoutCancel(ctx)
	if o.opts.Timeout > 0 {
		return context.WithTimeout(ctx, o.opts.Timeout)
	}
	return context.WithCancel(ctx)
}

func (o *Orchestrator) request(turns []domain.Turn) *llm.ChatCompletionRequest {
	messages := make([]llm.ChatMessage, len(turns))
	for i, t := range turns {
		messages[i] = llm.ChatMessage{Role: string(t.Role), Content: t.Content}
	}
	temperature := o.opts.Temperature
	return &llm.ChatCompletionRequest{
		Model:       o.opts.Model,
		Messages:    messages,
		Temperature: &temperature,
	}
}

func asGenerationError(err error) error {
	var cfgErr *domain.ConfigurationError
	if errors.As(err, &cfgErr) {
		return err
	}
	var genErr *domain.GenerationError
	if errors.As(err, &genErr) {
		return err
	}
	return &domain.GenerationError{Err: err}
}

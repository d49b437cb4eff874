// Package policy evaluates inbound chat messages against a rego policy.
package policy

import (
	"context"
	"fmt"
	"sort"

	"github.com/open-policy-agent/opa/rego"
)

// Input is the document the policy is evaluated against.
type Input struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
	Channel        string `json:"channel"`
	Limits         Limits `json:"limits"`
}

// Limits carries configured bounds into the policy.
type Limits struct {
	MaxMessageChars int `json:"max_message_chars"`
}

// Decision is the outcome of a policy evaluation.
type Decision struct {
	Allowed bool
	Reasons []string
}

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.chat_policy.deny"),
		rego.Module("chat_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate checks input against the policy. The message is allowed when no
// deny rule matches.
func (e *Engine) Evaluate(ctx context.Context, input Input) (Decision, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return Decision{}, fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return Decision{Allowed: true}, nil
	}

	var reasons []string
	switch v := results[0].Expressions[0].Value.(type) {
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				reasons = append(reasons, s)
			} else {
				reasons = append(reasons, fmt.Sprint(item))
			}
		}
	case nil:
	default:
		return Decision{}, fmt.Errorf("unexpected policy result type %T", v)
	}

	sort.Strings(reasons)
	return Decision{Allowed: len(reasons) == 0, Reasons: reasons}, nil
}

// DefaultPolicy is the default policy content.
const DefaultPolicy = `
package chat_policy

deny[msg] {
	input.limits.max_message_chars > 0
	count(input.message) > input.limits.max_message_chars
	msg := sprintf("message exceeds %d characters", [input.limits.max_message_chars])
}

deny[msg] {
	regex.match("\\s", input.conversation_id)
	msg := "conversation_id must not contain whitespace"
}
`

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"

	"github.com/xiaot623/gogo/chatapi/internal/adapter/llm"
	"github.com/xiaot623/gogo/chatapi/internal/config"
	"github.com/xiaot623/gogo/chatapi/internal/conversation"
	"github.com/xiaot623/gogo/chatapi/internal/prompt"
)

// AskCmd sends one message straight to the generation provider.
type AskCmd struct {
	Text         []string `arg:"" help:"The message to send"`
	SystemPrompt string   `short:"s" help:"System prompt"`
	Stream       bool     `help:"Print the reply as it is generated"`
}

func (a *AskCmd) Run(cli *CLI) error {
	logger := newLogger(cli.LogLevel)
	cfg := config.Load()

	client, err := llm.NewLLMClient(cfg, logger)
	if err != nil {
		return err
	}

	defaultPrompt, err := prompt.Load(afero.NewOsFs(), cfg.SystemPromptFile, conversation.DefaultSystemPrompt)
	if err != nil {
		return err
	}

	orch := conversation.NewOrchestrator(conversation.NewRegistry(), client, conversation.Options{
		Model:               cfg.Model(),
		Temperature:         cfg.Azure.Temperature,
		DefaultSystemPrompt: defaultPrompt,
		Timeout:             cfg.LLMTimeout,
	})

	ctx := context.Background()
	text := strings.Join(a.Text, " ")

	if a.Stream {
		_, err := orch.StreamSimpleExchange(ctx, text, a.SystemPrompt, func(delta string) error {
			_, err := fmt.Fprint(os.Stdout, delta)
			return err
		})
		fmt.Println()
		return err
	}

	reply, err := orch.SimpleExchange(ctx, text, a.SystemPrompt)
	if err != nil {
		return err
	}
	fmt.Println(reply)
	return nil
}

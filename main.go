package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// CLI represents the main CLI structure
type CLI struct {
	LogLevel string `env:"LOG_LEVEL" default:"info" help:"Log level (debug, info, warn, error)"`

	Serve ServeCmd `cmd:"" default:"withargs" help:"Run the chat API server (default)"`
	Ask   AskCmd   `cmd:"" help:"Send a single message without conversation memory"`
	Talk  TalkCmd  `cmd:"" help:"Chat with a running server over WebSocket"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("chatapi"),
		kong.Description("Conversational chat API backed by Azure OpenAI"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	err := ctx.Run(&cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

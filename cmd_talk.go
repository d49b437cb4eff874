package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/xiaot623/gogo/chatapi/internal/protocol"
	"github.com/xiaot623/gogo/chatapi/internal/transport/ws"
)

// TalkCmd is an interactive WebSocket client.
type TalkCmd struct {
	Addr           string `default:"ws://localhost:8000/ws" help:"WebSocket server address"`
	ConversationID string `short:"c" help:"Join an existing conversation"`
	SystemPrompt   string `short:"s" help:"System prompt for a new conversation"`
}

func (t *TalkCmd) Run(cli *CLI) error {
	logger := newLogger(cli.LogLevel)

	fmt.Printf("Connecting to %s...\n", t.Addr)

	client, err := ws.Dial(context.Background(), t.Addr)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer client.Close()

	conversationID, err := client.Hello(t.ConversationID)
	if err != nil {
		return err
	}

	fmt.Printf("Conversation: %s\n", conversationID)
	fmt.Println("\nType a message and press Enter to send.")
	fmt.Println("Commands: /reset to clear history, /quit to exit")
	fmt.Println()

	// Start reading messages in background
	go func() {
		for {
			frame, err := client.Next()
			if err != nil {
				logger.Debug("read loop stopped", "error", err)
				return
			}
			switch frame.Type {
			case protocol.TypeReply:
				fmt.Printf("\n[%s] %s\n> ", frame.Model, frame.Content)
			case protocol.TypeResetAck:
				fmt.Print("\nConversation cleared.\n> ")
			case protocol.TypeError:
				fmt.Printf("\nError (%s): %s\n> ", frame.Code, frame.Message)
			default:
				logger.Debug("ignoring message", "type", frame.Type)
			}
		}
	}()

	interrupt := exitOnSignal()
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	systemPrompt := t.SystemPrompt
	for {
		fmt.Print("> ")
		select {
		case <-interrupt:
			fmt.Println("\nInterrupted")
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}

			input := strings.TrimSpace(line)
			switch input {
			case "":
				continue
			case "/quit":
				fmt.Println("Bye!")
				return nil
			case "/reset":
				if err := client.Reset(); err != nil {
					return err
				}
				continue
			}

			if _, err := client.Send(input, systemPrompt); err != nil {
				return fmt.Errorf("send: %w", err)
			}
			// Only a new conversation takes the system prompt.
			systemPrompt = ""
		}
	}
}

// exitOnSignal delivers Ctrl+C and SIGTERM.
func exitOnSignal() <-chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	return ch
}

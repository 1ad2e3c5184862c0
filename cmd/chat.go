package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dispatch/internal/mcpclient"
	"dispatch/pkg/logging"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// chatEndpoint is the dispatch server MCP endpoint the chat session
// connects to.
var chatEndpoint string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive SRE session against a running dispatch server",
	Long: `Starts an interactive session. Each line you type is sent to the
dispatch server as an SRE request; the server spawns a specialist agent,
runs it and prints the formatted response.

Type 'exit' or press Ctrl+D to leave the session.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	logging.InitForCLI(logging.LevelError, io.Discard)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	client := mcpclient.New(mcpclient.Config{Endpoint: chatEndpoint})

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Connecting to dispatch server..."
	s.Start()
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err := client.Connect(connectCtx)
	cancel()
	s.Stop()
	if err != nil {
		return fmt.Errorf("failed to connect to dispatch server at %s: %w", chatEndpoint, err)
	}
	defer client.Close()

	fmt.Printf("Connected to %s. Ask about logs, health, traces, deployments or runbooks.\n\n", chatEndpoint)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          text.FgHiCyan.Sprint("sre> "),
		HistoryFile:     filepath.Join(os.TempDir(), ".dispatch_chat_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline instance: %w", err)
	}
	defer rl.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				continue
			}
		} else if err == io.EOF {
			fmt.Println("Goodbye!")
			return nil
		} else if err != nil {
			return fmt.Errorf("readline error: %w", err)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			fmt.Println("Goodbye!")
			return nil
		}

		if err := runQuery(ctx, client, input); err != nil {
			fmt.Println(text.FgRed.Sprintf("Error: %v", err))
		}
	}
}

// runQuery sends one utterance to the server and prints the response.
func runQuery(ctx context.Context, client *mcpclient.Client, query string) error {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Dispatching agent..."
	s.Start()

	queryCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	result, err := client.CallTool(queryCtx, "sre_query", map[string]interface{}{
		"query": query,
	})
	cancel()
	s.Stop()

	if err != nil {
		return err
	}

	if kind, ok := result["agent_kind"].(string); ok && kind != "" {
		fmt.Println(text.FgHiBlack.Sprintf("[%s • %s]", kind, stringField(result, "agent_id")))
	}
	if response, ok := result["response"].(string); ok && response != "" {
		fmt.Println(response)
	} else {
		return renderJSON(os.Stdout, result)
	}
	fmt.Println()
	return nil
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVar(&chatEndpoint, "endpoint", "http://localhost:8092/mcp", "Dispatch server MCP endpoint")
}

package cmd

import (
	"context"
	"fmt"

	"dispatch/internal/app"

	"github.com/spf13/cobra"
)

// serveDebug enables verbose logging across the application.
var serveDebug bool

// serveSilent suppresses all log output. Useful when dispatch runs with the
// stdio transport, where stdout belongs to the MCP protocol.
var serveSilent bool

// serveConfigPath specifies a custom configuration directory path.
// When set, the default ~/.config/dispatch directory is ignored.
var serveConfigPath string

// serveCmd defines the serve command structure. This is the main command of
// dispatch: it starts the orchestrator and exposes it over MCP.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dispatch orchestrator server",
	Long: `Starts the dispatch orchestrator and exposes it as an MCP server.

The server accepts natural-language SRE requests via the sre_query tool.
Each request spawns a short-lived specialist agent that executes against
the configured tool-executor MCP server and is destroyed after a cooldown
window. Inspection tools (agents_active, agents_completed, agent_get,
agent_stats, agent_history) expose the agent lifecycle registry.

Configuration:
  dispatch loads config.yaml from ~/.config/dispatch by default.
  Use --config-path to load from a different directory. A missing file
  falls back to built-in defaults, so 'dispatch serve' works standalone.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// runServe is the main entry point for the serve command
func runServe(cmd *cobra.Command, args []string) error {
	cfg := app.NewConfig(serveDebug, serveSilent, serveConfigPath)

	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.Run(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable general debug logging")
	serveCmd.Flags().BoolVar(&serveSilent, "silent", false, "Suppress all log output")
	serveCmd.Flags().StringVar(&serveConfigPath, "config-path", "", "Custom configuration directory path")
}

package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the dispatch application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Ephemeral SRE agent orchestrator",
	Long: `dispatch turns natural-language SRE requests into short-lived specialist
agents. Each request spawns exactly one agent (log analysis, health check,
trace analysis, dashboard, deployment, monitoring or runbook), which executes
against an external tool-executor MCP server, reports its findings and is
destroyed after a cooldown window.

The server exposes an MCP interface for queries and lifecycle inspection.
Use 'dispatch serve' to run it, 'dispatch chat' for an interactive session
and 'dispatch agents' to inspect agent lifecycles.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// It initializes and executes the root command, which in turn handles subcommands and flags.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "dispatch version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
}

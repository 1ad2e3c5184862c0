package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"dispatch/internal/mcpclient"
	"dispatch/pkg/logging"
	pkgstrings "dispatch/pkg/strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// agentsEndpoint is the dispatch server MCP endpoint the inspection
// commands connect to.
var agentsEndpoint string

// agentsLimit bounds completed/history listings.
var agentsLimit int

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "Inspect agent lifecycles on a running dispatch server",
	Long: `Inspect the agent lifecycle registry of a running dispatch server.

Subcommands list live agents (including those in cooldown), destroyed
agents with their full event trails, aggregate lifecycle counters and the
recent run history.`,
}

var agentsActiveCmd = &cobra.Command{
	Use:   "active",
	Short: "List agents that are currently alive",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDispatchClient(cmd, func(ctx context.Context, c *mcpclient.Client) error {
			result, err := c.CallTool(ctx, "agents_active", nil)
			if err != nil {
				return err
			}
			return renderAgentTable(cmd.OutOrStdout(), result, "agents")
		})
	},
}

var agentsCompletedCmd = &cobra.Command{
	Use:   "completed",
	Short: "List destroyed agents, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDispatchClient(cmd, func(ctx context.Context, c *mcpclient.Client) error {
			args := map[string]interface{}{}
			if agentsLimit > 0 {
				args["limit"] = agentsLimit
			}
			result, err := c.CallTool(ctx, "agents_completed", args)
			if err != nil {
				return err
			}
			return renderAgentTable(cmd.OutOrStdout(), result, "agents")
		})
	},
}

var agentsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate lifecycle counters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDispatchClient(cmd, func(ctx context.Context, c *mcpclient.Client) error {
			result, err := c.CallTool(ctx, "agent_stats", nil)
			if err != nil {
				return err
			}
			return renderJSON(cmd.OutOrStdout(), result)
		})
	},
}

var agentsHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent orchestration runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDispatchClient(cmd, func(ctx context.Context, c *mcpclient.Client) error {
			args := map[string]interface{}{}
			if agentsLimit > 0 {
				args["limit"] = agentsLimit
			}
			result, err := c.CallTool(ctx, "agent_history", args)
			if err != nil {
				return err
			}
			return renderHistoryTable(cmd.OutOrStdout(), result)
		})
	},
}

var agentsGetCmd = &cobra.Command{
	Use:   "get <agent-id>",
	Short: "Show the full lifecycle record of one agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		agentID := args[0]
		return withDispatchClient(cmd, func(ctx context.Context, c *mcpclient.Client) error {
			result, err := c.CallTool(ctx, "agent_get", map[string]interface{}{
				"agent_id": agentID,
			})
			if err != nil {
				return err
			}
			return renderJSON(cmd.OutOrStdout(), result)
		})
	},
}

// withDispatchClient connects to the dispatch server, runs fn and closes the
// connection. Logging is silenced so command output stays clean.
func withDispatchClient(cmd *cobra.Command, fn func(context.Context, *mcpclient.Client) error) error {
	logging.InitForCLI(logging.LevelError, io.Discard)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := mcpclient.New(mcpclient.Config{Endpoint: agentsEndpoint})
	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to dispatch server at %s: %w", agentsEndpoint, err)
	}
	defer client.Close()

	return fn(ctx, client)
}

func renderAgentTable(out io.Writer, result map[string]interface{}, key string) error {
	records, ok := result[key].([]interface{})
	if !ok || len(records) == 0 {
		fmt.Fprintln(out, text.FgYellow.Sprint("No agents found"))
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"AGENT ID", "KIND", "STATUS", "ACTION", "CREATED", "DURATION"})

	for _, raw := range records {
		record, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		t.AppendRow(table.Row{
			stringField(record, "agent_id"),
			stringField(record, "agent_kind"),
			stringField(record, "status"),
			stringField(record, "action"),
			stringField(record, "created_at"),
			durationField(record, "duration_seconds"),
		})
	}
	t.Render()
	return nil
}

func renderHistoryTable(out io.Writer, result map[string]interface{}) error {
	records, ok := result["runs"].([]interface{})
	if !ok || len(records) == 0 {
		fmt.Fprintln(out, text.FgYellow.Sprint("No runs recorded"))
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"SESSION", "QUERY", "KIND", "ACTION", "STATUS", "DURATION"})

	for _, raw := range records {
		record, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		query := pkgstrings.Truncate(stringField(record, "query"), pkgstrings.DefaultQueryMaxLen)
		t.AppendRow(table.Row{
			stringField(record, "session_id"),
			query,
			stringField(record, "agent_kind"),
			stringField(record, "action"),
			stringField(record, "status"),
			durationField(record, "duration_seconds"),
		})
	}
	t.Render()
	return nil
}

func renderJSON(out io.Writer, result map[string]interface{}) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(data))
	return nil
}

func stringField(record map[string]interface{}, key string) string {
	if v, ok := record[key].(string); ok {
		return v
	}
	return ""
}

func durationField(record map[string]interface{}, key string) string {
	if v, ok := record[key].(float64); ok {
		return fmt.Sprintf("%.2fs", v)
	}
	return ""
}

func init() {
	rootCmd.AddCommand(agentsCmd)
	agentsCmd.AddCommand(agentsActiveCmd)
	agentsCmd.AddCommand(agentsCompletedCmd)
	agentsCmd.AddCommand(agentsStatsCmd)
	agentsCmd.AddCommand(agentsHistoryCmd)
	agentsCmd.AddCommand(agentsGetCmd)

	agentsCmd.PersistentFlags().StringVar(&agentsEndpoint, "endpoint", "http://localhost:8092/mcp", "Dispatch server MCP endpoint")
	agentsCompletedCmd.Flags().IntVar(&agentsLimit, "limit", 0, "Maximum number of records to return")
	agentsHistoryCmd.Flags().IntVar(&agentsLimit, "limit", 0, "Maximum number of runs to return")
}

package server

import (
	"context"
	"encoding/json"
	"fmt"

	"dispatch/internal/orchestrator"
	"dispatch/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

func (s *Server) tools() []mcpserver.ServerTool {
	return []mcpserver.ServerTool{
		{
			Tool: mcp.Tool{
				Name:        "sre_query",
				Description: "Handle a natural-language SRE request. Spawns an ephemeral specialist agent, executes it against the tool executor and returns the formatted response.",
				InputSchema: mcp.ToolInputSchema{
					Type: "object",
					Properties: map[string]interface{}{
						"query": map[string]interface{}{
							"type":        "string",
							"description": "The request to handle, e.g. 'show me recent errors for the payment service'",
						},
					},
					Required: []string{"query"},
				},
			},
			Handler: s.handleQuery,
		},
		{
			Tool: mcp.Tool{
				Name:        "agents_active",
				Description: "List agents that are currently alive, including those in their post-run cooldown window.",
				InputSchema: mcp.ToolInputSchema{
					Type:       "object",
					Properties: map[string]interface{}{},
				},
			},
			Handler: s.handleAgentsActive,
		},
		{
			Tool: mcp.Tool{
				Name:        "agents_completed",
				Description: "List destroyed agents with their full lifecycle records, most recent first.",
				InputSchema: mcp.ToolInputSchema{
					Type: "object",
					Properties: map[string]interface{}{
						"limit": map[string]interface{}{
							"type":        "number",
							"description": "Maximum number of records to return (default: all retained)",
						},
					},
				},
			},
			Handler: s.handleAgentsCompleted,
		},
		{
			Tool: mcp.Tool{
				Name:        "agent_get",
				Description: "Fetch the lifecycle record of a single agent by ID, active or completed.",
				InputSchema: mcp.ToolInputSchema{
					Type: "object",
					Properties: map[string]interface{}{
						"agent_id": map[string]interface{}{
							"type":        "string",
							"description": "The agent identifier, e.g. agent-1a2b3c4d",
						},
					},
					Required: []string{"agent_id"},
				},
			},
			Handler: s.handleAgentGet,
		},
		{
			Tool: mcp.Tool{
				Name:        "agent_stats",
				Description: "Aggregate lifecycle counters: created, destroyed, active, completed retained and pending cooldowns.",
				InputSchema: mcp.ToolInputSchema{
					Type:       "object",
					Properties: map[string]interface{}{},
				},
			},
			Handler: s.handleAgentStats,
		},
		{
			Tool: mcp.Tool{
				Name:        "agent_history",
				Description: "List recent orchestration runs (query, agent kind, action, outcome), most recent first.",
				InputSchema: mcp.ToolInputSchema{
					Type: "object",
					Properties: map[string]interface{}{
						"limit": map[string]interface{}{
							"type":        "number",
							"description": "Maximum number of runs to return (default: all retained)",
						},
					},
				},
			},
			Handler: s.handleAgentHistory,
		},
	}
}

// queryReply is the sre_query tool result payload.
type queryReply struct {
	Response        string `json:"response"`
	SessionID       string `json:"session_id"`
	AgentID         string `json:"agent_id"`
	AgentKind       string `json:"agent_kind"`
	Status          string `json:"status"`
	DurationSeconds float64 `json:"duration_seconds"`
}

func (s *Server) handleQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := req.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments format"), nil
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	logging.Debug("Server", "Received sre_query: %q", query)

	var reply queryReply
	responder := orchestrator.ResponderFunc(func(message, agentKind, sessionID string) error {
		reply.Response = message
		reply.AgentKind = agentKind
		reply.SessionID = sessionID
		return nil
	})

	envelope, err := s.orchestrator.HandleQuery(ctx, query, responder)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Query handling failed: %v", err)), nil
	}

	reply.AgentID = envelope.AgentID
	reply.Status = envelope.Status
	reply.DurationSeconds = envelope.DurationSeconds

	return jsonResult(reply)
}

func (s *Server) handleAgentsActive(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]interface{}{
		"agents": s.registry.GetActive(),
	})
}

func (s *Server) handleAgentsCompleted(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := intArg(req, "limit", 0)
	return jsonResult(map[string]interface{}{
		"agents": s.registry.GetCompleted(limit),
	})
}

func (s *Server) handleAgentGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := req.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments format"), nil
	}

	agentID, ok := args["agent_id"].(string)
	if !ok || agentID == "" {
		return mcp.NewToolResultError("agent_id is required"), nil
	}

	record := s.registry.Get(agentID)
	if record == nil {
		return mcp.NewToolResultError(fmt.Sprintf("Agent '%s' not found", agentID)), nil
	}
	return jsonResult(record)
}

func (s *Server) handleAgentStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats := s.registry.Stats()
	return jsonResult(map[string]interface{}{
		"stats":            stats,
		"pending_cooldown": s.orchestrator.PendingCooldowns(),
	})
}

func (s *Server) handleAgentHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := intArg(req, "limit", 0)
	return jsonResult(map[string]interface{}{
		"runs": s.orchestrator.History(limit),
	})
}

// intArg extracts an optional numeric argument; JSON numbers arrive as
// float64.
func intArg(req mcp.CallToolRequest, name string, fallback int) int {
	args, ok := req.Params.Arguments.(map[string]interface{})
	if !ok {
		return fallback
	}
	if v, ok := args[name].(float64); ok {
		return int(v)
	}
	return fallback
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

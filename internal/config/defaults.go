package config

const (
	// DefaultServerPort is the port the dispatch MCP server binds by default.
	DefaultServerPort = 8092

	// DefaultToolsEndpoint is the tool-executor MCP endpoint used when the
	// configuration does not name one.
	DefaultToolsEndpoint = "http://localhost:8000/mcp"
)

// GetDefaultConfig returns the built-in default configuration.
func GetDefaultConfig() DispatchConfig {
	return DispatchConfig{
		Server: ServerConfig{
			Port:      DefaultServerPort,
			Host:      "localhost",
			Transport: MCPTransportStreamableHTTP,
		},
		Tools: ToolsConfig{
			Endpoint:       DefaultToolsEndpoint,
			Transport:      MCPTransportStreamableHTTP,
			TimeoutSeconds: 120,
		},
		Brain: BrainConfig{
			BaseURL:        "https://api.openai.com/v1",
			Model:          "gpt-4o-mini",
			TimeoutSeconds: 60,
		},
		Orchestrator: OrchestratorConfig{
			CooldownSeconds: 120,
			MaxCompleted:    200,
			MaxHistory:      100,
			DefaultAgent:    "health_agent",
			DefaultAction:   "check_all",
		},
	}
}

package config

const (
	// MCPTransportStreamableHTTP is the streamable HTTP transport.
	MCPTransportStreamableHTTP = "streamable-http"
	// MCPTransportSSE is the Server-Sent Events transport.
	MCPTransportSSE = "sse"
	// MCPTransportStdio is the standard I/O transport.
	MCPTransportStdio = "stdio"
)

// DispatchConfig is the top-level configuration structure for dispatch.
type DispatchConfig struct {
	Server       ServerConfig       `yaml:"server"`
	Tools        ToolsConfig        `yaml:"tools"`
	Brain        BrainConfig        `yaml:"brain"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`
}

// ServerConfig defines how the dispatch MCP server is exposed.
type ServerConfig struct {
	Port      int    `yaml:"port,omitempty"`      // Port for the MCP endpoint (default: 8092)
	Host      string `yaml:"host,omitempty"`      // Host to bind to (default: localhost)
	Transport string `yaml:"transport,omitempty"` // Transport to use (default: streamable-http)
}

// ToolsConfig points dispatch at the external tool-executor MCP server
// that agents call for logs, traces, health and deployment data.
type ToolsConfig struct {
	Endpoint       string `yaml:"endpoint,omitempty"`       // Tool-executor MCP endpoint (default: http://localhost:8000/mcp)
	Transport      string `yaml:"transport,omitempty"`      // streamable-http or sse (default: streamable-http)
	APIKey         string `yaml:"apiKey,omitempty"`         // Sent as X-API-Key; env DISPATCH_TOOLS_API_KEY overrides
	TimeoutSeconds int    `yaml:"timeoutSeconds,omitempty"` // Per-call timeout (default: 120)
}

// BrainConfig configures the LLM used for intent classification and
// response formatting. When no API key is available dispatch falls back
// to keyword-rule classification.
type BrainConfig struct {
	BaseURL        string `yaml:"baseURL,omitempty"`        // OpenAI-compatible API base (default: https://api.openai.com/v1)
	Model          string `yaml:"model,omitempty"`          // Model name (default: gpt-4o-mini)
	APIKey         string `yaml:"apiKey,omitempty"`         // env DISPATCH_BRAIN_API_KEY overrides
	TimeoutSeconds int    `yaml:"timeoutSeconds,omitempty"` // Per-request timeout (default: 60)
}

// OrchestratorConfig tunes agent lifecycle behavior.
type OrchestratorConfig struct {
	CooldownSeconds int    `yaml:"cooldownSeconds,omitempty"` // Delay before a finished agent is destroyed (default: 120)
	MaxCompleted    int    `yaml:"maxCompleted,omitempty"`    // Completed-agent history bound (default: 200)
	MaxHistory      int    `yaml:"maxHistory,omitempty"`      // Run-history bound (default: 100)
	DefaultAgent    string `yaml:"defaultAgent,omitempty"`    // Fallback agent kind (default: health_agent)
	DefaultAction   string `yaml:"defaultAction,omitempty"`   // Fallback action (default: check_all)
}

package mcpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"dispatch/pkg/logging"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

// TransportType selects the MCP transport for the tool-server connection.
type TransportType string

const (
	TransportSSE            TransportType = "sse"
	TransportStreamableHTTP TransportType = "streamable-http"
)

// Config holds the connection settings for a tool-server client.
type Config struct {
	Endpoint  string
	Transport TransportType
	APIKey    string
	Timeout   time.Duration
}

// Client is an MCP client for the operational tool server. It implements
// agents.ToolCaller.
type Client struct {
	endpoint  string
	transport TransportType
	apiKey    string
	timeout   time.Duration

	mu     sync.Mutex
	client client.MCPClient
}

// New creates an unconnected client. Call Connect before CallTool.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	transportType := cfg.Transport
	if transportType == "" {
		transportType = TransportStreamableHTTP
	}
	return &Client{
		endpoint:  cfg.Endpoint,
		transport: transportType,
		apiKey:    cfg.APIKey,
		timeout:   timeout,
	}
}

// Connect establishes the transport and performs the MCP handshake.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return fmt.Errorf("client already connected")
	}

	logging.Info("MCPClient", "Connecting to tool server at %s using %s transport", c.endpoint, c.transport)

	headers := map[string]string{}
	if c.apiKey != "" {
		headers["X-API-Key"] = c.apiKey
	}

	var mcpClient client.MCPClient
	switch c.transport {
	case TransportSSE:
		sseClient, err := client.NewSSEMCPClient(c.endpoint, transport.WithHeaders(headers))
		if err != nil {
			return fmt.Errorf("failed to create SSE client: %w", err)
		}
		if err := sseClient.Start(ctx); err != nil {
			return fmt.Errorf("failed to start SSE client: %w", err)
		}
		mcpClient = sseClient

	case TransportStreamableHTTP:
		httpClient, err := client.NewStreamableHttpClient(c.endpoint, transport.WithHTTPHeaders(headers))
		if err != nil {
			return fmt.Errorf("failed to create streamable-http client: %w", err)
		}
		if err := httpClient.Start(ctx); err != nil {
			return fmt.Errorf("failed to start streamable-http client: %w", err)
		}
		mcpClient = httpClient

	default:
		return fmt.Errorf("unsupported transport type: %s", c.transport)
	}

	if err := c.initialize(ctx, mcpClient); err != nil {
		mcpClient.Close()
		return err
	}

	c.client = mcpClient
	return nil
}

// initialize performs the MCP protocol handshake.
func (c *Client) initialize(ctx context.Context, mcpClient client.MCPClient) error {
	req := mcp.InitializeRequest{
		Params: struct {
			ProtocolVersion string                 `json:"protocolVersion"`
			Capabilities    mcp.ClientCapabilities `json:"capabilities"`
			ClientInfo      mcp.Implementation     `json:"clientInfo"`
		}{
			ProtocolVersion: "2024-11-05",
			ClientInfo: mcp.Implementation{
				Name:    "dispatch",
				Version: "1.0.0",
			},
			Capabilities: mcp.ClientCapabilities{},
		},
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if _, err := mcpClient.Initialize(timeoutCtx, req); err != nil {
		return fmt.Errorf("initialize failed: %w", err)
	}
	return nil
}

// Close shuts the transport down.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}

// CallTool executes one tool on the server and decodes the result into a
// map. Tool-level errors (IsError results) are returned as Go errors so
// agents surface them through their normal failure path.
func (c *Client) CallTool(ctx context.Context, tool string, args map[string]interface{}) (map[string]interface{}, error) {
	c.mu.Lock()
	mcpClient := c.client
	c.mu.Unlock()

	if mcpClient == nil {
		return nil, fmt.Errorf("client not connected")
	}
	if args == nil {
		args = map[string]interface{}{}
	}

	req := mcp.CallToolRequest{
		Params: struct {
			Name      string    `json:"name"`
			Arguments any       `json:"arguments,omitempty"`
			Meta      *mcp.Meta `json:"_meta,omitempty"`
		}{
			Name:      tool,
			Arguments: args,
		},
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := mcpClient.CallTool(timeoutCtx, req)
	if err != nil {
		return nil, fmt.Errorf("tool call %s failed: %w", tool, err)
	}

	text := textContent(result)
	if result.IsError {
		return nil, fmt.Errorf("tool %s returned error: %s", tool, text)
	}

	return decodeResult(text), nil
}

// ListTools returns the names of all tools the server advertises.
func (c *Client) ListTools(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	mcpClient := c.client
	c.mu.Unlock()

	if mcpClient == nil {
		return nil, fmt.Errorf("client not connected")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := mcpClient.ListTools(timeoutCtx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("listing tools failed: %w", err)
	}

	names := make([]string, 0, len(result.Tools))
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	return names, nil
}

// Ping reports whether the server answers a tools/list round trip.
func (c *Client) Ping(ctx context.Context) bool {
	_, err := c.ListTools(ctx)
	return err == nil
}

// textContent concatenates the text parts of a tool result.
func textContent(result *mcp.CallToolResult) string {
	var parts []string
	for _, content := range result.Content {
		if text, ok := mcp.AsTextContent(content); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// decodeResult parses text as a JSON object, wrapping non-object payloads
// so callers always get a map.
func decodeResult(text string) map[string]interface{} {
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(text), &out); err == nil {
		return out
	}
	return map[string]interface{}{"text": text}
}

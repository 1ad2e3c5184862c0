package mcpclient

import (
	"context"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
)

func TestNewDefaults(t *testing.T) {
	c := New(Config{Endpoint: "http://localhost:9000/mcp"})
	assert.Equal(t, TransportStreamableHTTP, c.transport)
	assert.Equal(t, 120*time.Second, c.timeout)
}

func TestCallToolRequiresConnection(t *testing.T) {
	c := New(Config{Endpoint: "http://localhost:9000/mcp"})
	_, err := c.CallTool(context.Background(), "get_system_status", nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not connected")
}

func TestListToolsRequiresConnection(t *testing.T) {
	c := New(Config{Endpoint: "http://localhost:9000/mcp"})
	_, err := c.ListTools(context.Background())
	assert.Error(t, err)
}

func TestDecodeResult(t *testing.T) {
	out := decodeResult(`{"status":"ok","count":3}`)
	assert.Equal(t, "ok", out["status"])
	assert.Equal(t, float64(3), out["count"])

	// Non-object payloads are wrapped so callers always get a map.
	out = decodeResult("plain text result")
	assert.Equal(t, "plain text result", out["text"])

	out = decodeResult(`[1,2,3]`)
	assert.Equal(t, "[1,2,3]", out["text"])
}

func TestTextContent(t *testing.T) {
	result := &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent("first"),
			mcp.NewTextContent("second"),
		},
	}
	assert.Equal(t, "first\nsecond", textContent(result))
}

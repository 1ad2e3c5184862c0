// Package mcpclient connects the agent family to the operational tool
// server over the Model Context Protocol.
//
// Client implements the agents.ToolCaller interface: each tool call is an
// MCP tools/call request, with the JSON text content of the result decoded
// back into a map. The connection supports streamable-http (default) and
// SSE transports and authenticates with an API-key header.
package mcpclient

// Package server exposes dispatch over MCP. The server publishes one
// operational tool, sre_query, which runs a full orchestration cycle for a
// natural-language utterance, plus a set of inspection tools over the agent
// registry and run history (agents_active, agents_completed, agent_get,
// agent_stats, agent_history).
//
// Supported transports are streamable-http (default), SSE and stdio.
package server

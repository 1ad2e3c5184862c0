// Package app bootstraps and runs dispatch. It wires the lifecycle
// registry, event broadcaster, brain, tool-executor client, orchestrator
// and MCP server together from configuration, and owns the serve loop
// including signal-driven graceful shutdown.
//
// The bootstrap follows a two-phase pattern:
//  1. NewApplication: initialize logging, load configuration, construct
//     and wire all services
//  2. Run: start the MCP server and tool-executor connection, then block
//     until the context is cancelled or an interrupt arrives
package app

// Package logging provides a structured logging system for dispatch with
// unified log handling and level filtering.
//
// The package is built on Go's standard slog package. All log entries carry
// a subsystem identifier so logs from different components (Bootstrap,
// Config, Registry, Orchestrator, Agent, Brain, MCPClient, Server) can be
// filtered and categorized by log aggregation tooling.
//
// # Usage
//
//	logging.InitForCLI(logging.LevelInfo, os.Stdout)
//
//	logging.Info("Bootstrap", "Application starting up")
//	logging.Debug("Config", "Loaded configuration from %s", configPath)
//	logging.Warn("Registry", "Completed history at capacity, evicting oldest")
//	logging.Error("MCPClient", err, "Tool call failed: %s", toolName)
//
// The logging system is safe for concurrent use from multiple goroutines.
// Level filtering happens at the handler, so filtered-out messages cost no
// allocation.
package logging

// Package agents implements the ephemeral agent family.
//
// Each operator query spawns exactly one agent. The agent registers itself
// with the lifecycle registry at construction, runs one action through a
// uniform lifecycle wrapper (Run), emits pipeline events to both the
// registry audit trail and the event broadcaster while doing so, and is
// destroyed by the orchestrator after a cooldown window.
//
// Agent kinds form a closed set declared in the kinds table. Each kind
// binds a description, a default action and an execute function that
// dispatches on the requested action and delegates to the injected
// ToolCaller. An unrecognized action for a known kind falls back to that
// kind's default action rather than failing; this best-effort policy keeps
// loosely-phrased operator requests serviceable.
package agents

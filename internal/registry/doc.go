// Package registry tracks the full lifecycle of every ephemeral agent.
//
// The registry is the single source of truth for agent existence: which
// agents are alive right now, what each one has done (a full append-only
// audit trail of pipeline events), and the history of destroyed agents.
//
// A Registry is explicitly constructed and injected into the orchestrator
// and each agent; there is no package-level singleton. All operations are
// internally synchronized and safe for concurrent use from many agents and
// many readers. Operations on unknown agent IDs are benign no-ops so a late
// event from a racing goroutine can never corrupt or resurrect a record
// that has already been moved to history.
package registry

// Package orchestrator implements the per-query control loop tying the
// dispatch core together.
//
// For each operator utterance the orchestrator asks the intent classifier
// which agent kind and action to use (falling back to a configured default
// when classification fails), spawns exactly one ephemeral agent, runs it
// to completion, schedules the agent's destruction after a cooldown window
// and relays the formatted result back to the requester. Queries are
// independent concurrent flows: nothing serializes one utterance behind
// another, and all shared state lives in the internally-synchronized
// registry, broadcaster, cooldown table and run history.
package orchestrator

package events

import (
	"time"

	"github.com/google/uuid"
)

// Phase represents the state of a pipeline step.
type Phase string

const (
	// PhasePending indicates a step that has been announced but not started.
	PhasePending Phase = "pending"

	// PhaseRunning indicates a step that is currently in progress.
	PhaseRunning Phase = "running"

	// PhaseCompleted indicates a step that finished successfully.
	PhaseCompleted Phase = "completed"

	// PhaseError indicates a step that failed.
	PhaseError Phase = "error"
)

// ProgressEvent is one step in an agent's execution pipeline. Events are
// immutable once created; the registry stores its own copy and broadcasts
// carry copies, so consumers may retain them freely.
type ProgressEvent struct {
	// ID uniquely identifies this event.
	ID string `json:"id"`

	// Step is a human-readable description of what is happening.
	Step string `json:"step"`

	// Phase is the step state (pending, running, completed, error).
	Phase Phase `json:"phase"`

	// Detail carries free-text context for the step.
	Detail string `json:"detail,omitempty"`

	// AgentID identifies the agent that emitted the event.
	AgentID string `json:"agent_id"`

	// AgentKind is the kind of the emitting agent.
	AgentKind string `json:"agent_kind"`

	// Timestamp records when the event was created (UTC).
	Timestamp time.Time `json:"timestamp"`
}

// New creates a ProgressEvent with a fresh ID and the current UTC time.
func New(step string, phase Phase, detail, agentID, agentKind string) ProgressEvent {
	return ProgressEvent{
		ID:        uuid.NewString()[:8],
		Step:      step,
		Phase:     phase,
		Detail:    detail,
		AgentID:   agentID,
		AgentKind: agentKind,
		Timestamp: time.Now().UTC(),
	}
}

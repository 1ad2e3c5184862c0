package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"dispatch/internal/events"
	"dispatch/internal/registry"
	"dispatch/pkg/logging"

	"github.com/google/uuid"
)

// ToolCaller performs the actual operational tool calls on behalf of an
// agent. It is implemented by the MCP client integration and by stubs in
// tests.
type ToolCaller interface {
	CallTool(ctx context.Context, tool string, args map[string]interface{}) (map[string]interface{}, error)
}

// Envelope is the uniform result of one agent run. Run always returns a
// well-formed envelope; execution failures surface as Status "error", never
// as a panic or a partially-filled result.
type Envelope struct {
	Status          string                 `json:"status"`
	AgentID         string                 `json:"agent_id"`
	AgentKind       string                 `json:"agent_kind"`
	Action          string                 `json:"action"`
	DurationSeconds float64                `json:"duration_seconds"`
	Data            map[string]interface{} `json:"data,omitempty"`
	Error           string                 `json:"error,omitempty"`
}

// Size returns the serialized size of the envelope in bytes, used for the
// registry's result accounting.
func (e Envelope) Size() int {
	raw, err := json.Marshal(e)
	if err != nil {
		return 0
	}
	return len(raw)
}

// Agent is one ephemeral unit of operator-requested work. An Agent is owned
// by the query that spawned it and is never shared across concurrent
// queries; the orchestrator only retains a read-only reference during the
// cooldown window.
type Agent struct {
	id        string
	kind      Kind
	spec      kindSpec
	createdAt time.Time

	tools       ToolCaller
	registry    *registry.Registry
	broadcaster *events.Broadcaster
}

// Spawn creates an agent of the given kind and registers it with the
// lifecycle registry. The registration records an identity proof (object
// handle, process ID, spawning goroutine) for later inspection.
func Spawn(kind Kind, tools ToolCaller, reg *registry.Registry, broadcaster *events.Broadcaster) (*Agent, error) {
	spec, ok := kinds[kind]
	if !ok {
		return nil, fmt.Errorf("unknown agent kind: %s", kind)
	}

	a := &Agent{
		id:          "agent-" + uuid.NewString()[:8],
		kind:        kind,
		spec:        spec,
		createdAt:   time.Now().UTC(),
		tools:       tools,
		registry:    reg,
		broadcaster: broadcaster,
	}

	handle := uint64(reflect.ValueOf(a).Pointer())
	reg.Register(a.id, string(kind), registry.NewProof(handle))
	return a, nil
}

// ID returns the agent's registry identifier.
func (a *Agent) ID() string {
	return a.id
}

// Kind returns the agent's kind.
func (a *Agent) Kind() Kind {
	return a.kind
}

// Proof rebuilds the identity proof used at registration, for deregistration
// diagnostics.
func (a *Agent) Proof() registry.IdentityProof {
	return registry.NewProof(uint64(reflect.ValueOf(a).Pointer()))
}

// emit records a pipeline event in the registry audit trail and then pushes
// it to the broadcaster. The order matters: observers must never see an
// event the registry history does not also have.
func (a *Agent) emit(step string, phase events.Phase, detail string) {
	event := events.New(step, phase, detail, a.id, string(a.kind))
	a.registry.RecordEvent(a.id, event)
	a.broadcaster.Broadcast(event)
}

// Run executes one action through the uniform lifecycle wrapper. It updates
// the registry, emits the standard pipeline events around the kind-specific
// execute function, and converts any failure (error or panic) into an error
// envelope.
func (a *Agent) Run(ctx context.Context, action string, params map[string]interface{}) Envelope {
	if params == nil {
		params = map[string]interface{}{}
	}
	a.registry.UpdateAction(a.id, action, params)

	a.emit("Analyzing request", events.PhaseCompleted, fmt.Sprintf("Action: %s", action))
	a.emit(fmt.Sprintf("Creating %s", a.spec.description), events.PhaseRunning, fmt.Sprintf("ID: %s", a.id))
	a.emit(fmt.Sprintf("%s active", a.spec.description), events.PhaseCompleted, "")
	a.emit("Connecting to tool executor", events.PhaseRunning, "MCP tool server")

	data, err := a.execute(ctx, action, params)
	if err != nil {
		logging.Error("Agent", err, "Agent %s failed", a.id)
		a.emit(fmt.Sprintf("%s failed", a.spec.description), events.PhaseError, err.Error())
		return Envelope{
			Status:    "error",
			AgentID:   a.id,
			AgentKind: string(a.kind),
			Action:    action,
			Error:     err.Error(),
		}
	}

	raw, _ := json.Marshal(data)
	a.emit("Processing results", events.PhaseCompleted, fmt.Sprintf("Got %d bytes", len(raw)))

	duration := time.Since(a.createdAt).Seconds()
	a.emit(fmt.Sprintf("%s completed", a.spec.description), events.PhaseCompleted,
		fmt.Sprintf("Duration: %.1fs", duration))

	return Envelope{
		Status:          "success",
		AgentID:         a.id,
		AgentKind:       string(a.kind),
		Action:          action,
		DurationSeconds: duration,
		Data:            data,
	}
}

// execute invokes the kind-specific logic, converting panics into errors so
// a misbehaving execute path can never take down the orchestrator loop.
func (a *Agent) execute(ctx context.Context, action string, params map[string]interface{}) (data map[string]interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("agent panic: %v", r)
		}
	}()
	return a.spec.execute(ctx, a, action, params)
}

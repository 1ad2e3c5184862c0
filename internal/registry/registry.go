package registry

import (
	"bytes"
	"os"
	"runtime"
	"sync"
	"time"

	"dispatch/internal/events"
	"dispatch/pkg/logging"
)

// Status describes where an agent is in its lifecycle.
type Status string

const (
	// StatusActive means the agent is registered but has no action assigned yet.
	StatusActive Status = "active"

	// StatusExecuting means the agent is running its assigned action.
	StatusExecuting Status = "executing"

	// StatusDestroyed means the agent finished and was moved to history.
	StatusDestroyed Status = "destroyed"
)

// IdentityProof carries implementation-level evidence of an agent's
// existence: an opaque in-memory handle, the owning process ID and the
// goroutine active at creation. It is diagnostic only and never used for
// record equality.
type IdentityProof struct {
	Handle    uint64 `json:"handle"`
	PID       int    `json:"pid"`
	Goroutine string `json:"goroutine"`
}

// NewProof builds an IdentityProof for the given handle, capturing the
// current process and goroutine.
func NewProof(handle uint64) IdentityProof {
	return IdentityProof{
		Handle:    handle,
		PID:       os.Getpid(),
		Goroutine: goroutineID(),
	}
}

// goroutineID extracts the numeric ID of the calling goroutine from a stack
// header of the form "goroutine 123 [running]:". Diagnostic use only.
func goroutineID() string {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	buf = bytes.TrimPrefix(buf, []byte("goroutine "))
	if i := bytes.IndexByte(buf, ' '); i > 0 {
		return string(buf[:i])
	}
	return "unknown"
}

// Result summarizes the outcome an agent is deregistered with.
type Result struct {
	Status    string `json:"status"`
	SizeBytes int    `json:"size_bytes"`
}

// AgentRecord is the registry's view of one ephemeral agent. Once a record
// is returned from a query method it is a copy owned by the caller.
type AgentRecord struct {
	ID              string                 `json:"agent_id"`
	Kind            string                 `json:"agent_kind"`
	Seq             uint64                 `json:"seq"`
	Proof           IdentityProof          `json:"identity_proof"`
	CreatedAt       time.Time              `json:"created_at"`
	CompletedAt     *time.Time             `json:"completed_at,omitempty"`
	Status          Status                 `json:"status"`
	Action          string                 `json:"action,omitempty"`
	Params          map[string]interface{} `json:"params,omitempty"`
	Events          []events.ProgressEvent `json:"events"`
	ResultStatus    string                 `json:"result_status,omitempty"`
	ResultSizeBytes int                    `json:"result_size_bytes,omitempty"`
	DurationSeconds float64                `json:"duration_seconds,omitempty"`
}

// clone returns a caller-owned copy of the record, including its event slice.
func (r *AgentRecord) clone() AgentRecord {
	out := *r
	out.Events = make([]events.ProgressEvent, len(r.Events))
	copy(out.Events, r.Events)
	if r.CompletedAt != nil {
		completedAt := *r.CompletedAt
		out.CompletedAt = &completedAt
	}
	return out
}

// ActiveSummary is a brief view of one live agent, used in Stats.
type ActiveSummary struct {
	ID        string    `json:"agent_id"`
	Kind      string    `json:"agent_kind"`
	Status    Status    `json:"status"`
	Action    string    `json:"action,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats aggregates lifecycle accounting across the process lifetime.
type Stats struct {
	TotalCreated       uint64          `json:"total_created"`
	TotalDestroyed     uint64          `json:"total_destroyed"`
	CurrentlyActive    int             `json:"currently_active"`
	CompletedInHistory int             `json:"completed_in_history"`
	ActiveAgents       []ActiveSummary `json:"active_agents"`
}

// Registry is the lifecycle registry for ephemeral agents. It keeps a table
// of live agents and a bounded FIFO history of destroyed ones. One Registry
// exists per process, constructed at bootstrap and injected everywhere it
// is needed.
type Registry struct {
	mu             sync.Mutex
	active         map[string]*AgentRecord
	completed      []*AgentRecord
	maxCompleted   int
	totalCreated   uint64
	totalDestroyed uint64
}

// DefaultMaxCompleted bounds the destroyed-agent history when no explicit
// capacity is configured.
const DefaultMaxCompleted = 200

// New creates a registry whose completed history holds at most maxCompleted
// records. Non-positive values fall back to DefaultMaxCompleted.
func New(maxCompleted int) *Registry {
	if maxCompleted <= 0 {
		maxCompleted = DefaultMaxCompleted
	}
	return &Registry{
		active:       make(map[string]*AgentRecord),
		maxCompleted: maxCompleted,
	}
}

// Register creates an active record for a newly spawned agent and returns a
// copy of it. The sequence number backing record uniqueness is monotonic
// for the life of the process.
func (r *Registry) Register(id, kind string, proof IdentityProof) AgentRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.totalCreated++
	record := &AgentRecord{
		ID:        id,
		Kind:      kind,
		Seq:       r.totalCreated,
		Proof:     proof,
		CreatedAt: time.Now().UTC(),
		Status:    StatusActive,
		Events:    []events.ProgressEvent{},
	}
	r.active[id] = record

	logging.Info("Registry", "AGENT CREATED: %s [%s] handle=0x%x pid=%d goroutine=%s",
		id, kind, proof.Handle, proof.PID, proof.Goroutine)
	return record.clone()
}

// RecordEvent appends event to the named agent's audit trail. Unknown or
// already-destroyed agents are a no-op: a late event from a racing
// goroutine must never resurrect a completed record.
func (r *Registry) RecordEvent(agentID string, event events.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record, ok := r.active[agentID]; ok {
		record.Events = append(record.Events, event)
	}
}

// UpdateAction records the action and params the agent is executing and
// moves it to the executing status. No-op if the agent is unknown.
func (r *Registry) UpdateAction(agentID, action string, params map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record, ok := r.active[agentID]; ok {
		record.Action = action
		record.Params = params
		record.Status = StatusExecuting
	}
}

// Deregister removes the agent from the active table, finalizes its record
// and appends it to the completed history, evicting the oldest entry if
// the history is at capacity. It returns the finalized record, or nil if
// the agent was not active (making double deregistration idempotent). The
// supplied proof is compared for diagnostics only.
func (r *Registry) Deregister(agentID string, proof IdentityProof, result Result) *AgentRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.active[agentID]
	if !ok {
		return nil
	}
	delete(r.active, agentID)

	if record.Proof.Handle != proof.Handle {
		logging.Warn("Registry", "Identity proof mismatch on deregister of %s: 0x%x != 0x%x",
			agentID, record.Proof.Handle, proof.Handle)
	}

	r.totalDestroyed++
	completedAt := time.Now().UTC()
	record.CompletedAt = &completedAt
	record.Status = StatusDestroyed
	record.DurationSeconds = completedAt.Sub(record.CreatedAt).Seconds()
	record.ResultStatus = result.Status
	record.ResultSizeBytes = result.SizeBytes

	r.completed = append(r.completed, record)
	if len(r.completed) > r.maxCompleted {
		r.completed = r.completed[1:]
	}

	logging.Info("Registry", "AGENT DESTROYED: %s [%s] duration=%.1fs status=%s",
		agentID, record.Kind, record.DurationSeconds, record.ResultStatus)

	out := record.clone()
	return &out
}

// GetActive returns a snapshot of all currently active records.
func (r *Registry) GetActive() []AgentRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]AgentRecord, 0, len(r.active))
	for _, record := range r.active {
		out = append(out, record.clone())
	}
	return out
}

// GetCompleted returns up to limit destroyed records, most recent first.
func (r *Registry) GetCompleted(limit int) []AgentRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 || limit > len(r.completed) {
		limit = len(r.completed)
	}

	out := make([]AgentRecord, 0, limit)
	for i := len(r.completed) - 1; i >= len(r.completed)-limit; i-- {
		out = append(out, r.completed[i].clone())
	}
	return out
}

// Get returns the record for agentID, checking the active table first and
// the completed history second. Returns nil if the agent is unknown.
func (r *Registry) Get(agentID string) *AgentRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record, ok := r.active[agentID]; ok {
		out := record.clone()
		return &out
	}
	for i := len(r.completed) - 1; i >= 0; i-- {
		if r.completed[i].ID == agentID {
			out := r.completed[i].clone()
			return &out
		}
	}
	return nil
}

// Stats returns lifecycle accounting and a brief summary of each live agent.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	summaries := make([]ActiveSummary, 0, len(r.active))
	for _, record := range r.active {
		summaries = append(summaries, ActiveSummary{
			ID:        record.ID,
			Kind:      record.Kind,
			Status:    record.Status,
			Action:    record.Action,
			CreatedAt: record.CreatedAt,
		})
	}

	return Stats{
		TotalCreated:       r.totalCreated,
		TotalDestroyed:     r.totalDestroyed,
		CurrentlyActive:    len(r.active),
		CompletedInHistory: len(r.completed),
		ActiveAgents:       summaries,
	}
}

package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"dispatch/internal/agents"
	"dispatch/internal/events"
	"dispatch/internal/registry"
	"dispatch/pkg/logging"
	pkgstrings "dispatch/pkg/strings"

	"github.com/google/uuid"
)

// Intent is the routing decision produced by the classifier for one
// operator utterance.
type Intent struct {
	Agent     string                 `json:"agent"`
	Action    string                 `json:"action"`
	Params    map[string]interface{} `json:"params"`
	Reasoning string                 `json:"reasoning"`
}

// Classifier turns an operator utterance into a routing decision. It is
// typically LLM-backed and may fail; the orchestrator recovers by
// substituting the configured default intent.
type Classifier interface {
	Classify(ctx context.Context, utterance string) (Intent, error)
}

// Formatter renders a raw agent result into a human-readable message.
// Failure here degrades to presenting the raw result, never to losing the
// response.
type Formatter interface {
	Format(ctx context.Context, agentKind, action string, raw map[string]interface{}) (string, error)
}

// Responder receives the reply for one query. It is an opaque sink: a chat
// connection, a captured buffer in a synchronous API call, or a test stub.
type Responder interface {
	Respond(message, agentKind, sessionID string) error
}

// ResponderFunc adapts a function to the Responder interface.
type ResponderFunc func(message, agentKind, sessionID string) error

// Respond calls f.
func (f ResponderFunc) Respond(message, agentKind, sessionID string) error {
	return f(message, agentKind, sessionID)
}

// Config holds the collaborators and tunables for an Orchestrator.
type Config struct {
	Registry    *registry.Registry
	Broadcaster *events.Broadcaster
	Classifier  Classifier
	Formatter   Formatter
	Tools       agents.ToolCaller

	// Cooldown is how long a finished agent stays inspectable before it is
	// destroyed. One global setting for the whole process.
	Cooldown time.Duration

	// DefaultKind and DefaultAction route queries whose classification
	// failed or named an unknown kind.
	DefaultKind   agents.Kind
	DefaultAction string

	// MaxHistory bounds the run-history record count.
	MaxHistory int
}

// cooldownEntry keeps a finished agent alive and inspectable until its
// destruction timer fires.
type cooldownEntry struct {
	agent  *agents.Agent
	result agents.Envelope
	timer  *time.Timer
}

// Orchestrator runs operator queries as independent concurrent flows and
// owns the cooldown scheduler for finished agents.
type Orchestrator struct {
	registry    *registry.Registry
	broadcaster *events.Broadcaster
	classifier  Classifier
	formatter   Formatter
	tools       agents.ToolCaller

	cooldown      time.Duration
	defaultKind   agents.Kind
	defaultAction string

	history *runHistory

	mu      sync.Mutex
	pending map[string]*cooldownEntry
}

// DefaultCooldown applies when Config.Cooldown is unset.
const DefaultCooldown = 120 * time.Second

// New creates an orchestrator from cfg, applying defaults for unset
// tunables.
func New(cfg Config) *Orchestrator {
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}
	if cfg.DefaultKind == "" {
		cfg.DefaultKind = agents.KindHealth
	}
	if cfg.DefaultAction == "" {
		cfg.DefaultAction = "check_all"
	}
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = DefaultMaxHistory
	}

	return &Orchestrator{
		registry:      cfg.Registry,
		broadcaster:   cfg.Broadcaster,
		classifier:    cfg.Classifier,
		formatter:     cfg.Formatter,
		tools:         cfg.Tools,
		cooldown:      cfg.Cooldown,
		defaultKind:   cfg.DefaultKind,
		defaultAction: cfg.DefaultAction,
		history:       newRunHistory(cfg.MaxHistory),
		pending:       make(map[string]*cooldownEntry),
	}
}

// Cooldown returns the configured cooldown duration.
func (o *Orchestrator) Cooldown() time.Duration {
	return o.cooldown
}

// History returns up to limit run records, most recent first.
func (o *Orchestrator) History(limit int) []RunRecord {
	return o.history.Snapshot(limit)
}

// HandleQuery runs one operator utterance end to end and sends the reply
// through responder. It returns the agent's result envelope so synchronous
// callers (the query tool) can also surface the raw result.
func (o *Orchestrator) HandleQuery(ctx context.Context, text string, responder Responder) (agents.Envelope, error) {
	sessionID := uuid.NewString()[:8]
	logging.Info("Orchestrator", "[%s] Query: %s", sessionID, text)

	o.broadcastStep(sessionID, "Analyzing user query", events.PhaseRunning, pkgstrings.Truncate(text, 80))

	intent := o.classify(ctx, text)
	o.broadcastStep(sessionID, "Intent classified", events.PhaseCompleted,
		fmt.Sprintf("Agent: %s | Action: %s | %s", intent.Agent, intent.Action, intent.Reasoning))

	agent, err := agents.Spawn(agents.Kind(intent.Agent), o.tools, o.registry, o.broadcaster)
	if err != nil {
		// Unreachable when classify enforced the kind table, kept as a belt
		// for classifier implementations that bypass it.
		return agents.Envelope{}, fmt.Errorf("spawning %s: %w", intent.Agent, err)
	}

	result := agent.Run(ctx, intent.Action, intent.Params)

	o.scheduleDestruction(agent, result)
	o.broadcastFor(agent.ID(), intent.Agent, "Agent available for inspection", events.PhaseCompleted,
		fmt.Sprintf("Inspect agent %s before auto-destruction (%s cooldown)", agent.ID(), o.cooldown))

	o.broadcastFor(agent.ID(), intent.Agent, "Formatting response", events.PhaseRunning, "Summarizing agent results")
	message := o.format(ctx, intent, result)
	o.broadcastFor(agent.ID(), intent.Agent, "Response formatted", events.PhaseCompleted,
		fmt.Sprintf("%d chars", len(message)))

	if err := responder.Respond(message, intent.Agent, sessionID); err != nil {
		logging.Error("Orchestrator", err, "[%s] Failed to deliver response", sessionID)
	}

	o.history.Append(RunRecord{
		SessionID:       sessionID,
		Query:           text,
		AgentKind:       intent.Agent,
		Action:          intent.Action,
		AgentID:         agent.ID(),
		Status:          result.Status,
		DurationSeconds: result.DurationSeconds,
		Timestamp:       time.Now().UTC(),
	})

	o.broadcastStep(sessionID, "Request complete", events.PhaseCompleted,
		fmt.Sprintf("Session %s | %.1fs", sessionID, result.DurationSeconds))

	return result, nil
}

// classify obtains a routing decision, substituting the default intent when
// the classifier fails or names a kind outside the registered table. The
// operator still gets a normal, if generically-routed, response.
func (o *Orchestrator) classify(ctx context.Context, text string) Intent {
	intent, err := o.classifier.Classify(ctx, text)
	if err != nil {
		logging.Warn("Orchestrator", "Classification failed, using default routing: %v", err)
		return o.defaultIntent(fmt.Sprintf("classification failed (%v), defaulting to %s", err, o.defaultKind))
	}
	if !agents.Known(intent.Agent) {
		logging.Warn("Orchestrator", "Classifier chose unknown kind %q, using default routing", intent.Agent)
		return o.defaultIntent(fmt.Sprintf("unknown agent kind %q, defaulting to %s", intent.Agent, o.defaultKind))
	}
	if intent.Action == "" {
		intent.Action = agents.DefaultAction(agents.Kind(intent.Agent))
	}
	return intent
}

func (o *Orchestrator) defaultIntent(reasoning string) Intent {
	return Intent{
		Agent:     string(o.defaultKind),
		Action:    o.defaultAction,
		Params:    map[string]interface{}{},
		Reasoning: reasoning,
	}
}

// format renders the result for the operator, degrading to raw JSON when
// the formatter fails.
func (o *Orchestrator) format(ctx context.Context, intent Intent, result agents.Envelope) string {
	raw := result.Data
	if raw == nil {
		raw = map[string]interface{}{"status": result.Status, "error": result.Error}
	}

	message, err := o.formatter.Format(ctx, intent.Agent, intent.Action, raw)
	if err != nil {
		logging.Warn("Orchestrator", "Formatter failed, presenting raw result: %v", err)
		pretty, marshalErr := json.MarshalIndent(raw, "", "  ")
		if marshalErr != nil {
			return fmt.Sprintf("%v", raw)
		}
		return string(pretty)
	}
	return message
}

// scheduleDestruction retains the agent for the cooldown window and arms
// its destruction timer. Scheduling never blocks the query flow.
func (o *Orchestrator) scheduleDestruction(agent *agents.Agent, result agents.Envelope) {
	entry := &cooldownEntry{agent: agent, result: result}
	entry.timer = time.AfterFunc(o.cooldown, func() {
		o.destroy(agent.ID())
	})

	o.mu.Lock()
	o.pending[agent.ID()] = entry
	o.mu.Unlock()
}

// destroy finalizes one agent: deregister, drop the retained reference and
// broadcast the terminal event. Safe to call once per agent from either the
// timer or Shutdown; the registry makes the second call a no-op.
func (o *Orchestrator) destroy(agentID string) {
	o.mu.Lock()
	entry, ok := o.pending[agentID]
	if ok {
		delete(o.pending, agentID)
	}
	o.mu.Unlock()
	if !ok {
		return
	}

	entry.timer.Stop()
	record := o.registry.Deregister(agentID, entry.agent.Proof(), registry.Result{
		Status:    entry.result.Status,
		SizeBytes: entry.result.Size(),
	})
	if record == nil {
		return
	}

	o.broadcastFor(agentID, string(entry.agent.Kind()),
		fmt.Sprintf("Destroying %s", agents.Description(entry.agent.Kind())), events.PhaseCompleted,
		fmt.Sprintf("Agent %s terminated after %s cooldown", agentID, o.cooldown))
}

// Shutdown destroys all agents still in cooldown. Pending timers are
// disarmed; deregistration is idempotent so a timer that already fired is
// harmless.
func (o *Orchestrator) Shutdown() {
	o.mu.Lock()
	ids := make([]string, 0, len(o.pending))
	for id := range o.pending {
		ids = append(ids, id)
	}
	o.mu.Unlock()

	for _, id := range ids {
		o.destroy(id)
	}
	logging.Info("Orchestrator", "Shutdown complete, %d cooldown agents finalized", len(ids))
}

// PendingCooldowns reports how many finished agents are currently retained.
func (o *Orchestrator) PendingCooldowns() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}

func (o *Orchestrator) broadcastStep(sessionID, step string, phase events.Phase, detail string) {
	o.broadcaster.Broadcast(events.New(step, phase, detail, sessionID, "orchestrator"))
}

func (o *Orchestrator) broadcastFor(agentID, kind, step string, phase events.Phase, detail string) {
	o.broadcaster.Broadcast(events.New(step, phase, detail, agentID, kind))
}

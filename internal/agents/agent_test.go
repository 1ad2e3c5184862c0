package agents

import (
	"context"
	"errors"
	"sync"
	"testing"

	"dispatch/internal/events"
	"dispatch/internal/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTools is a ToolCaller that records calls and returns canned results.
type stubTools struct {
	mu      sync.Mutex
	calls   []string
	result  map[string]interface{}
	err     error
	panicOn string
}

func (s *stubTools) CallTool(ctx context.Context, tool string, args map[string]interface{}) (map[string]interface{}, error) {
	s.mu.Lock()
	s.calls = append(s.calls, tool)
	s.mu.Unlock()
	if s.panicOn == tool {
		panic("tool exploded")
	}
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return map[string]interface{}{"status": "success"}, nil
}

func (s *stubTools) called() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}

// recorder collects broadcast events for assertions.
type recorder struct {
	mu     sync.Mutex
	events []events.ProgressEvent
}

func (r *recorder) Accept(event events.ProgressEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recorder) steps() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Step)
	}
	return out
}

func newHarness() (*registry.Registry, *events.Broadcaster, *recorder) {
	reg := registry.New(50)
	bc := events.NewBroadcaster()
	rec := &recorder{}
	bc.Subscribe(rec)
	return reg, bc, rec
}

func TestSpawnRegistersAgent(t *testing.T) {
	reg, bc, _ := newHarness()

	a, err := Spawn(KindLog, &stubTools{}, reg, bc)
	require.NoError(t, err)

	record := reg.Get(a.ID())
	require.NotNil(t, record)
	assert.Equal(t, string(KindLog), record.Kind)
	assert.Equal(t, registry.StatusActive, record.Status)
	assert.NotZero(t, record.Proof.Handle)
	assert.NotZero(t, record.Proof.PID)
}

func TestSpawnUnknownKind(t *testing.T) {
	reg, bc, _ := newHarness()

	_, err := Spawn(Kind("weather_agent"), &stubTools{}, reg, bc)
	assert.Error(t, err)
	assert.Empty(t, reg.GetActive())
}

func TestRunSuccessEnvelopeAndEventSequence(t *testing.T) {
	reg, bc, rec := newHarness()
	tools := &stubTools{result: map[string]interface{}{"logs": []interface{}{"a", "b"}}}

	a, err := Spawn(KindLog, tools, reg, bc)
	require.NoError(t, err)

	env := a.Run(context.Background(), "get_recent_logs", map[string]interface{}{"limit": 5})

	assert.Equal(t, "success", env.Status)
	assert.Equal(t, a.ID(), env.AgentID)
	assert.Equal(t, string(KindLog), env.AgentKind)
	assert.Equal(t, "get_recent_logs", env.Action)
	assert.GreaterOrEqual(t, env.DurationSeconds, 0.0)
	assert.Equal(t, tools.called(), []string{"get_recent_logs"})

	steps := rec.steps()
	require.GreaterOrEqual(t, len(steps), 7)
	assert.Equal(t, "Analyzing request", steps[0])
	assert.Equal(t, "Creating Log Analysis Agent", steps[1])
	assert.Equal(t, "Log Analysis Agent active", steps[2])
	assert.Equal(t, "Connecting to tool executor", steps[3])
	assert.Equal(t, "Log Analysis Agent completed", steps[len(steps)-1])
	assert.Equal(t, "Processing results", steps[len(steps)-2])

	// Registry status reflects the assigned action.
	record := reg.Get(a.ID())
	require.NotNil(t, record)
	assert.Equal(t, registry.StatusExecuting, record.Status)
	assert.Equal(t, "get_recent_logs", record.Action)
}

func TestRegistryTrailMatchesBroadcastOrder(t *testing.T) {
	reg, bc, rec := newHarness()

	a, err := Spawn(KindHealth, &stubTools{}, reg, bc)
	require.NoError(t, err)

	a.Run(context.Background(), "check_all", nil)

	record := reg.Get(a.ID())
	require.NotNil(t, record)
	require.Len(t, rec.steps(), len(record.Events))
	for i, e := range record.Events {
		assert.Equal(t, e.Step, rec.steps()[i])
		assert.Equal(t, a.ID(), e.AgentID)
	}
}

func TestRunErrorEnvelope(t *testing.T) {
	reg, bc, rec := newHarness()
	tools := &stubTools{err: errors.New("upstream unreachable")}

	a, err := Spawn(KindTrace, tools, reg, bc)
	require.NoError(t, err)

	env := a.Run(context.Background(), "get_recent_traces", nil)

	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "upstream unreachable", env.Error)
	assert.Empty(t, env.Data)

	steps := rec.steps()
	require.NotEmpty(t, steps)
	assert.Equal(t, "Trace Analysis Agent failed", steps[len(steps)-1])

	record := reg.Get(a.ID())
	require.NotNil(t, record)
	last := record.Events[len(record.Events)-1]
	assert.Equal(t, events.PhaseError, last.Phase)
	assert.Equal(t, "upstream unreachable", last.Detail)
}

func TestRunRecoversPanics(t *testing.T) {
	reg, bc, _ := newHarness()
	tools := &stubTools{panicOn: "get_app_status"}

	a, err := Spawn(KindDeployment, tools, reg, bc)
	require.NoError(t, err)

	env := a.Run(context.Background(), "get_app_status", nil)
	assert.Equal(t, "error", env.Status)
	assert.Contains(t, env.Error, "tool exploded")
}

func TestUnknownActionFallsBackToDefault(t *testing.T) {
	tests := []struct {
		kind         Kind
		expectedTool string
	}{
		{KindLog, "get_error_logs"},
		{KindHealth, "get_system_status"},
		{KindTrace, "get_recent_traces"},
		{KindDashboard, "get_sre_dashboard"},
		{KindDeployment, "get_app_status"},
		{KindMonitor, "get_monitoring_status"},
		{KindRunbook, "get_runbook_monitoring_status"},
	}

	for _, test := range tests {
		t.Run(string(test.kind), func(t *testing.T) {
			reg, bc, _ := newHarness()
			tools := &stubTools{}

			a, err := Spawn(test.kind, tools, reg, bc)
			require.NoError(t, err)

			env := a.Run(context.Background(), "do_something_novel", nil)
			assert.Equal(t, "success", env.Status)
			assert.Equal(t, []string{test.expectedTool}, tools.called())
		})
	}
}

func TestHealthCheckAllFansOut(t *testing.T) {
	reg, bc, _ := newHarness()
	tools := &stubTools{}

	a, err := Spawn(KindHealth, tools, reg, bc)
	require.NoError(t, err)

	env := a.Run(context.Background(), "check_all", nil)
	require.Equal(t, "success", env.Status)
	assert.Equal(t, []string{"check_app_health", "check_database_health", "get_system_status"}, tools.called())
	assert.Contains(t, env.Data, "app_health")
	assert.Contains(t, env.Data, "database_health")
	assert.Contains(t, env.Data, "system_status")
}

func TestTraceDetailsRequiresTraceID(t *testing.T) {
	reg, bc, _ := newHarness()

	a, err := Spawn(KindTrace, &stubTools{}, reg, bc)
	require.NoError(t, err)

	env := a.Run(context.Background(), "get_trace_details", nil)
	assert.Equal(t, "error", env.Status)
	assert.Contains(t, env.Error, "trace_id is required")
}

func TestDashboardAssemblesGoldenSignals(t *testing.T) {
	reg, bc, _ := newHarness()
	tools := &stubTools{}

	a, err := Spawn(KindDashboard, tools, reg, bc)
	require.NoError(t, err)

	env := a.Run(context.Background(), "get_dashboard", nil)
	require.Equal(t, "success", env.Status)
	assert.Equal(t, []string{"get_response_times", "get_system_status", "get_failure_analysis", "get_sre_dashboard"}, tools.called())
	assert.Contains(t, env.Data, "dashboard")
	assert.Contains(t, env.Data, "response_times")
}

func TestEnvelopeSize(t *testing.T) {
	env := Envelope{Status: "success", AgentID: "agent-1"}
	assert.Greater(t, env.Size(), 0)
}

func TestKindList(t *testing.T) {
	infos := List()
	require.Len(t, infos, 7)

	// Stable name order.
	for i := 1; i < len(infos); i++ {
		assert.Less(t, infos[i-1].Name, infos[i].Name)
	}

	assert.True(t, Known("log_agent"))
	assert.False(t, Known("weather_agent"))
	assert.Equal(t, "get_error_logs", DefaultAction(KindLog))
	assert.Equal(t, "Log Analysis Agent", Description(KindLog))
}

package registry

import (
	"fmt"
	"sync"
	"testing"

	"dispatch/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAssignsSequentialNumbers(t *testing.T) {
	r := New(10)

	first := r.Register("agent-1", "log", NewProof(0x1))
	second := r.Register("agent-2", "health", NewProof(0x2))

	assert.Equal(t, uint64(1), first.Seq)
	assert.Equal(t, uint64(2), second.Seq)
	assert.Equal(t, StatusActive, first.Status)
	assert.Empty(t, first.Events)
}

func TestConcurrentRegistrationUniqueness(t *testing.T) {
	r := New(10)

	const n = 100
	seqs := make(chan uint64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := r.Register(fmt.Sprintf("agent-%d", i), "log", NewProof(uint64(i)))
			seqs <- rec.Seq
		}(i)
	}
	wg.Wait()
	close(seqs)

	seen := make(map[uint64]bool)
	for seq := range seqs {
		require.False(t, seen[seq], "duplicate sequence number %d", seq)
		seen[seq] = true
	}
	assert.Len(t, seen, n)
	assert.Equal(t, uint64(n), r.Stats().TotalCreated)
}

func TestAuditTrailIsAppendOnlyAndOrdered(t *testing.T) {
	r := New(10)
	r.Register("agent-1", "log", NewProof(0x1))

	steps := []string{"analyzing", "creating", "active", "fetching", "done"}
	for _, step := range steps {
		r.RecordEvent("agent-1", events.New(step, events.PhaseRunning, "", "agent-1", "log"))
	}

	record := r.Deregister("agent-1", NewProof(0x1), Result{Status: "success", SizeBytes: 42})
	require.NotNil(t, record)

	// The completed record carries the exact emitted sequence.
	got := r.Get("agent-1")
	require.NotNil(t, got)
	require.Len(t, got.Events, len(steps))
	for i, step := range steps {
		assert.Equal(t, step, got.Events[i].Step)
	}
}

func TestRecordEventAfterDeregisterIsNoOp(t *testing.T) {
	r := New(10)
	r.Register("agent-1", "log", NewProof(0x1))
	r.Deregister("agent-1", NewProof(0x1), Result{Status: "success"})

	// Late event from a racing goroutine.
	r.RecordEvent("agent-1", events.New("too late", events.PhaseRunning, "", "agent-1", "log"))

	got := r.Get("agent-1")
	require.NotNil(t, got)
	assert.Empty(t, got.Events)
	assert.Equal(t, StatusDestroyed, got.Status)
}

func TestRecordEventUnknownAgentIsNoOp(t *testing.T) {
	r := New(10)
	r.RecordEvent("no-such-agent", events.New("ghost", events.PhaseRunning, "", "no-such-agent", "log"))
	assert.Nil(t, r.Get("no-such-agent"))
}

func TestUpdateAction(t *testing.T) {
	r := New(10)
	r.Register("agent-1", "log", NewProof(0x1))

	r.UpdateAction("agent-1", "get_error_logs", map[string]interface{}{"hours": 24})

	got := r.Get("agent-1")
	require.NotNil(t, got)
	assert.Equal(t, StatusExecuting, got.Status)
	assert.Equal(t, "get_error_logs", got.Action)
	assert.Equal(t, 24, got.Params["hours"])

	// Unknown agent is a no-op, not an error.
	r.UpdateAction("no-such-agent", "x", nil)
}

func TestDeregisterIsIdempotent(t *testing.T) {
	r := New(10)
	r.Register("agent-1", "log", NewProof(0x1))

	first := r.Deregister("agent-1", NewProof(0x1), Result{Status: "success", SizeBytes: 7})
	require.NotNil(t, first)
	assert.Equal(t, StatusDestroyed, first.Status)
	assert.Equal(t, "success", first.ResultStatus)
	assert.Equal(t, 7, first.ResultSizeBytes)
	require.NotNil(t, first.CompletedAt)
	assert.False(t, first.CompletedAt.Before(first.CreatedAt))

	statsAfterFirst := r.Stats()

	second := r.Deregister("agent-1", NewProof(0x1), Result{Status: "success"})
	assert.Nil(t, second)
	assert.Equal(t, statsAfterFirst, r.Stats())
}

func TestActiveAndCompletedAreDisjoint(t *testing.T) {
	r := New(10)
	r.Register("agent-1", "log", NewProof(0x1))
	r.Register("agent-2", "health", NewProof(0x2))
	r.Deregister("agent-1", NewProof(0x1), Result{Status: "success"})

	activeIDs := make(map[string]bool)
	for _, rec := range r.GetActive() {
		activeIDs[rec.ID] = true
	}
	for _, rec := range r.GetCompleted(0) {
		assert.False(t, activeIDs[rec.ID], "agent %s in both views", rec.ID)
	}
	assert.True(t, activeIDs["agent-2"])
	assert.False(t, activeIDs["agent-1"])
}

func TestCompletedHistoryBound(t *testing.T) {
	const capacity = 5
	r := New(capacity)

	for i := 0; i < capacity+3; i++ {
		id := fmt.Sprintf("agent-%d", i)
		r.Register(id, "log", NewProof(uint64(i)))
		r.Deregister(id, NewProof(uint64(i)), Result{Status: "success"})
	}

	completed := r.GetCompleted(0)
	require.Len(t, completed, capacity)

	// Most recent first; the oldest three were evicted.
	assert.Equal(t, "agent-7", completed[0].ID)
	assert.Equal(t, "agent-3", completed[capacity-1].ID)
	assert.Nil(t, r.Get("agent-0"))
	assert.Nil(t, r.Get("agent-2"))
}

func TestGetCompletedLimit(t *testing.T) {
	r := New(10)
	for i := 0; i < 4; i++ {
		id := fmt.Sprintf("agent-%d", i)
		r.Register(id, "log", NewProof(uint64(i)))
		r.Deregister(id, NewProof(uint64(i)), Result{Status: "success"})
	}

	limited := r.GetCompleted(2)
	require.Len(t, limited, 2)
	assert.Equal(t, "agent-3", limited[0].ID)
	assert.Equal(t, "agent-2", limited[1].ID)
}

func TestGetChecksActiveThenCompleted(t *testing.T) {
	r := New(10)
	r.Register("agent-1", "log", NewProof(0x1))

	got := r.Get("agent-1")
	require.NotNil(t, got)
	assert.Equal(t, StatusActive, got.Status)

	r.Deregister("agent-1", NewProof(0x1), Result{Status: "error"})

	got = r.Get("agent-1")
	require.NotNil(t, got)
	assert.Equal(t, StatusDestroyed, got.Status)
	assert.Equal(t, "error", got.ResultStatus)
}

func TestStatsAccounting(t *testing.T) {
	r := New(10)

	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("agent-%d", i)
		r.Register(id, "log", NewProof(uint64(i)))
		r.Deregister(id, NewProof(uint64(i)), Result{Status: "success"})
	}

	stats := r.Stats()
	assert.Equal(t, uint64(5), stats.TotalCreated)
	assert.Equal(t, uint64(5), stats.TotalDestroyed)
	assert.Equal(t, 0, stats.CurrentlyActive)
	assert.Equal(t, 5, stats.CompletedInHistory)
	assert.Empty(t, stats.ActiveAgents)
}

func TestSnapshotsDoNotAliasRegistryState(t *testing.T) {
	r := New(10)
	r.Register("agent-1", "log", NewProof(0x1))
	r.RecordEvent("agent-1", events.New("one", events.PhaseRunning, "", "agent-1", "log"))

	snapshot := r.Get("agent-1")
	require.NotNil(t, snapshot)
	snapshot.Events[0].Step = "mutated"
	snapshot.Events = append(snapshot.Events, events.ProgressEvent{Step: "injected"})

	fresh := r.Get("agent-1")
	require.Len(t, fresh.Events, 1)
	assert.Equal(t, "one", fresh.Events[0].Step)
}

func TestConcurrentEventRecordingAndDeregister(t *testing.T) {
	r := New(100)

	// A deregister racing with record_event must resolve cleanly: events
	// either land before the move or are dropped, never corrupting state.
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("agent-%d", i)
		r.Register(id, "log", NewProof(uint64(i)))

		var wg sync.WaitGroup
		wg.Add(2)
		go func(id string) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				r.RecordEvent(id, events.New("tick", events.PhaseRunning, "", id, "log"))
			}
		}(id)
		go func(id string, i int) {
			defer wg.Done()
			r.Deregister(id, NewProof(uint64(i)), Result{Status: "success"})
		}(id, i)
		wg.Wait()

		got := r.Get(id)
		require.NotNil(t, got)
		assert.Equal(t, StatusDestroyed, got.Status)
		assert.LessOrEqual(t, len(got.Events), 10)
	}
}

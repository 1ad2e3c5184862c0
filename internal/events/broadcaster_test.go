package events

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collector is a test subscriber that records everything it receives.
type collector struct {
	mu     sync.Mutex
	events []ProgressEvent
	fail   bool
}

func (c *collector) Accept(event ProgressEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("connection closed")
	}
	c.events = append(c.events, event)
	return nil
}

func (c *collector) received() []ProgressEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ProgressEvent, len(c.events))
	copy(out, c.events)
	return out
}

func TestBroadcastFanOut(t *testing.T) {
	b := NewBroadcaster()

	first := &collector{}
	second := &collector{}
	b.Subscribe(first)
	b.Subscribe(second)

	ev := New("Fetching logs", PhaseRunning, "", "agent-1", "log")
	b.Broadcast(ev)

	require.Len(t, first.received(), 1)
	require.Len(t, second.received(), 1)
	assert.Equal(t, ev.ID, first.received()[0].ID)
	assert.Equal(t, ev.ID, second.received()[0].ID)
}

func TestFailingSubscriberIsDropped(t *testing.T) {
	b := NewBroadcaster()

	healthy := &collector{}
	broken := &collector{fail: true}
	b.Subscribe(healthy)
	b.Subscribe(broken)

	b.Broadcast(New("step one", PhaseRunning, "", "agent-1", "log"))

	// The broken subscriber must not affect delivery to the healthy one
	// and must be removed from the set.
	require.Len(t, healthy.received(), 1)
	assert.Equal(t, 1, b.SubscriberCount())

	b.Broadcast(New("step two", PhaseCompleted, "", "agent-1", "log"))
	assert.Len(t, healthy.received(), 2)
}

func TestUnsubscribe(t *testing.T) {
	b := NewBroadcaster()

	c := &collector{}
	handle := b.Subscribe(c)
	b.Unsubscribe(handle)

	b.Broadcast(New("ignored", PhaseRunning, "", "agent-1", "log"))
	assert.Empty(t, c.received())
	assert.Equal(t, 0, b.SubscriberCount())

	// Unknown handles are a no-op.
	b.Unsubscribe(999)
}

func TestNoReplayForLateSubscribers(t *testing.T) {
	b := NewBroadcaster()

	b.Broadcast(New("before subscribe", PhaseCompleted, "", "agent-1", "log"))

	late := &collector{}
	b.Subscribe(late)
	assert.Empty(t, late.received())
}

func TestPerSubscriberOrdering(t *testing.T) {
	b := NewBroadcaster()

	c := &collector{}
	b.Subscribe(c)

	steps := []string{"analyzing", "creating", "active", "connecting", "done"}
	for _, step := range steps {
		b.Broadcast(New(step, PhaseRunning, "", "agent-1", "log"))
	}

	got := c.received()
	require.Len(t, got, len(steps))
	for i, step := range steps {
		assert.Equal(t, step, got[i].Step)
	}
}

func TestConcurrentBroadcastAndSubscribe(t *testing.T) {
	b := NewBroadcaster()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			b.Subscribe(&collector{})
		}()
		go func() {
			defer wg.Done()
			b.Broadcast(New("concurrent", PhaseRunning, "", "agent-1", "log"))
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, b.SubscriberCount())
}

package events

import (
	"sync"

	"dispatch/pkg/logging"
)

// Subscriber receives broadcast pipeline events. Accept is called
// synchronously from the broadcasting goroutine, so events from one agent
// arrive in emission order. A non-nil error causes the subscriber to be
// removed from the set.
type Subscriber interface {
	Accept(event ProgressEvent) error
}

// SubscriberFunc adapts a function to the Subscriber interface.
type SubscriberFunc func(event ProgressEvent) error

// Accept calls f(event).
func (f SubscriberFunc) Accept(event ProgressEvent) error {
	return f(event)
}

// Broadcaster fans pipeline events out to all currently-subscribed
// observers. It holds no buffer: observers only see events broadcast while
// they are subscribed.
type Broadcaster struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]Subscriber
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[uint64]Subscriber),
	}
}

// Subscribe registers an observer and returns a handle for Unsubscribe.
func (b *Broadcaster) Subscribe(sub Subscriber) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.subs[b.nextID] = sub
	return b.nextID
}

// Unsubscribe removes the observer registered under handle. Unknown handles
// are ignored.
func (b *Broadcaster) Unsubscribe(handle uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subs, handle)
}

// SubscriberCount returns the number of currently-subscribed observers.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subs)
}

// Broadcast delivers event to every currently-subscribed observer. A
// subscriber whose Accept returns an error is dropped; delivery to the
// remaining subscribers is unaffected.
func (b *Broadcaster) Broadcast(event ProgressEvent) {
	b.mu.RLock()
	snapshot := make(map[uint64]Subscriber, len(b.subs))
	for handle, sub := range b.subs {
		snapshot[handle] = sub
	}
	b.mu.RUnlock()

	var dead []uint64
	for handle, sub := range snapshot {
		if err := sub.Accept(event); err != nil {
			logging.Debug("Events", "Dropping subscriber %d after delivery failure: %v", handle, err)
			dead = append(dead, handle)
		}
	}

	if len(dead) > 0 {
		b.mu.Lock()
		for _, handle := range dead {
			delete(b.subs, handle)
		}
		b.mu.Unlock()
	}
}

package events

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/jwebster45206/npc-engine/pkg/world"
)

const subscriberBuffer = 64

// MemoryBus fans events out to in-process subscribers. Delivery never
// blocks the publisher: a subscriber whose buffer is full misses the event.
type MemoryBus struct {
	mu          sync.RWMutex
	subscribers []chan Event
	closed      bool
	dropped     atomic.Int64
}

var _ world.EventSink = (*MemoryBus)(nil)

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{}
}

// FireEvent delivers a world event to every subscriber.
func (b *MemoryBus) FireEvent(_ context.Context, name string, payload map[string]any) {
	b.Broadcast(NewEvent(EventType(name), payload))
}

// Broadcast delivers an event to every subscriber.
func (b *MemoryBus) Broadcast(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subscribers {
		select {
		case ch <- e:
		default:
			b.dropped.Add(1)
		}
	}
}

// Subscribe returns a channel receiving every event broadcast from now on.
func (b *MemoryBus) Subscribe() <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan Event, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch
	}
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Dropped is how many deliveries were skipped because a subscriber was full.
func (b *MemoryBus) Dropped() int64 {
	return b.dropped.Load()
}

// Close closes every subscriber channel.
func (b *MemoryBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subscribers {
		close(ch)
	}
	b.subscribers = nil
}

// Multi fires each event at every sink in order. Nil sinks are skipped.
func Multi(sinks ...world.EventSink) world.EventSink {
	var live []world.EventSink
	for _, s := range sinks {
		if s != nil {
			live = append(live, s)
		}
	}
	return world.EventSinkFunc(func(ctx context.Context, name string, payload map[string]any) {
		for _, s := range live {
			s.FireEvent(ctx, name, payload)
		}
	})
}

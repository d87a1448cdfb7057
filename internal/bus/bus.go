package bus

import (
	"context"
	"sync"
)

// Publisher is the producer side of the bus.
type Publisher interface {
	Publish(e Event) bool
}

// Mirror receives a copy of every event after the consumer has handled it.
type Mirror interface {
	Mirror(ctx context.Context, e Event) error
	Close() error
}

// Bus is an unbounded queue from any number of producers to one consumer.
// Publish never blocks. Events from one producer keep their order; events from
// different producers may interleave.
type Bus struct {
	mu     sync.Mutex
	queue  []Event
	ready  chan struct{}
	closed bool
}

func New() *Bus {
	return &Bus{ready: make(chan struct{}, 1)}
}

// Publish enqueues e. It returns false once the bus is closed.
func (b *Bus) Publish(e Event) bool {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return false
	}
	b.queue = append(b.queue, e)
	b.mu.Unlock()

	select {
	case b.ready <- struct{}{}:
	default:
	}
	return true
}

// Ready is signalled at least once after events become available.
func (b *Bus) Ready() <-chan struct{} {
	return b.ready
}

// Drain removes and returns everything queued so far.
func (b *Bus) Drain() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queue) == 0 {
		return nil
	}
	events := b.queue
	b.queue = nil
	return events
}

func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

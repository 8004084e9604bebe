package mailbox

import (
	"context"
	"sync"
)

// Mailbox is a single-slot buffer where the latest item always wins.
// It is NOT a queue: triggers arriving while a sweep is running collapse
// into one pending item. Put never blocks; Take blocks until an item is
// available or ctx is done.
type Mailbox[T any] struct {
	mu     sync.Mutex
	item   *T
	notify chan struct{}
}

// New creates an empty mailbox.
func New[T any]() *Mailbox[T] {
	return &Mailbox[T]{notify: make(chan struct{}, 1)}
}

// Put stores an item, replacing any pending one.
// It reports whether an earlier item was overwritten.
func (m *Mailbox[T]) Put(item T) bool {
	m.mu.Lock()
	replaced := m.item != nil
	m.item = &item
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
	return replaced
}

// Take waits for an item and clears the slot.
func (m *Mailbox[T]) Take(ctx context.Context) (T, bool) {
	for {
		if item := m.TryTake(); item != nil {
			return *item, true
		}
		select {
		case <-ctx.Done():
			var zero T
			return zero, false
		case <-m.notify:
		}
	}
}

// TryTake returns the pending item or nil. It never blocks.
func (m *Mailbox[T]) TryTake() *T {
	m.mu.Lock()
	defer m.mu.Unlock()

	item := m.item
	m.item = nil
	return item
}

// Pending reports whether an item is waiting.
func (m *Mailbox[T]) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.item != nil
}

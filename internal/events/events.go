// Package events provides a small multi-listener publish/subscribe bus.
//
// It replaces single mutable callback slots (last registration silently wins)
// with an explicit subscription model: every subscriber gets its own buffered
// channel, and delivery is non-blocking so a stalled consumer can never hold
// up the publisher.
package events

import (
	"log/slog"
	"sync"
)

// defaultBuffer is the per-subscriber channel capacity.
const defaultBuffer = 64

// Bus fans out published values to all current subscribers.
// The zero value is not usable; call New.
type Bus[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan T
	name   string
}

// New returns an empty Bus. name is used only for log context.
func New[T any](name string) *Bus[T] {
	return &Bus[T]{
		subs: make(map[int]chan T),
		name: name,
	}
}

// Subscribe registers a new listener and returns its receive channel together
// with a cancel function. Cancel detaches the listener and closes the channel;
// calling it more than once is safe.
func (b *Bus[T]) Subscribe() (<-chan T, func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	ch := make(chan T, defaultBuffer)
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
			b.mu.Unlock()
		})
	}
	return ch, cancel
}

// Publish delivers v to every subscriber. Delivery is non-blocking: if a
// subscriber's buffer is full the value is dropped for that subscriber.
// Sends happen under the same lock that guards cancel and Close, so a
// concurrent unsubscribe can never expose a closed channel to the sender.
func (b *Bus[T]) Publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- v:
		default:
			slog.Warn("event subscriber buffer full, dropping", "bus", b.name)
		}
	}
}

// Len returns the number of active subscribers.
func (b *Bus[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close detaches and closes all subscriber channels.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
	b.mu.Unlock()
}

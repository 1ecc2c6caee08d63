package pubsub

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultBuffer is the per-subscription queue length used by NewBroker.
const DefaultBuffer = 64

type subscription[T any] struct {
	ch   chan Event[T]
	stop func() bool
}

// Broker fans events out to subscriptions. Publish never blocks; an event
// that does not fit in a subscription's queue is counted as dropped.
type Broker[T any] struct {
	mu      sync.RWMutex
	subs    map[*subscription[T]]struct{}
	closed  bool
	buffer  int
	seq     atomic.Uint64
	dropped atomic.Uint64
}

// NewBroker returns a broker with DefaultBuffer slots per subscription.
func NewBroker[T any]() *Broker[T] {
	return NewBrokerSize[T](DefaultBuffer)
}

// NewBrokerSize returns a broker with n slots per subscription.
func NewBrokerSize[T any](n int) *Broker[T] {
	return &Broker[T]{
		subs:   make(map[*subscription[T]]struct{}),
		buffer: max(n, 1),
	}
}

// Subscribe registers a queue that lives until ctx ends or the broker
// closes. Either way the returned channel is closed.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &subscription[T]{ch: make(chan Event[T], b.buffer)}
	if b.closed {
		close(sub.ch)
		return sub.ch
	}
	b.subs[sub] = struct{}{}
	sub.stop = context.AfterFunc(ctx, func() { b.drop(sub) })
	return sub.ch
}

func (b *Broker[T]) drop(sub *subscription[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub]; ok {
		delete(b.subs, sub)
		close(sub.ch)
	}
}

// Publish stamps payload and offers it to every subscription.
func (b *Broker[T]) Publish(kind Kind, payload T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	ev := Event[T]{Kind: kind, Seq: b.seq.Add(1), At: time.Now(), Payload: payload}
	for sub := range b.subs {
		select {
		case sub.ch <- ev:
		default:
			b.dropped.Add(1)
		}
	}
}

// Close ends every subscription. Later calls do nothing.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for sub := range b.subs {
		sub.stop()
		close(sub.ch)
	}
	clear(b.subs)
}

// Subscribers reports the number of live subscriptions.
func (b *Broker[T]) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Dropped reports how many deliveries were skipped because a queue was full.
func (b *Broker[T]) Dropped() uint64 { return b.dropped.Load() }

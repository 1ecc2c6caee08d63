package pubsub

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Await returns a command that delivers the next event from ch as a
// tea.Msg, or nil once ctx ends or ch closes.
func Await[T any](ctx context.Context, ch <-chan Event[T]) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			return ev
		}
	}
}

// Listener is a long-lived subscription read one event per command. After
// handling an event the model calls Next again to keep receiving.
type Listener[T any] struct {
	ctx    context.Context
	events <-chan Event[T]
}

// Listen subscribes to b for as long as ctx lives.
func Listen[T any](ctx context.Context, b *Broker[T]) *Listener[T] {
	return &Listener[T]{ctx: ctx, events: b.Subscribe(ctx)}
}

// Next waits for the following event. A nil listener yields a nil command.
func (l *Listener[T]) Next() tea.Cmd {
	if l == nil {
		return nil
	}
	return Await(l.ctx, l.events)
}

package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type notice struct {
	picker string
	family string
}

func recv[T any](t *testing.T, ch <-chan Event[T]) Event[T] {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(time.Second):
		require.FailNow(t, "no event delivered")
	}
	return Event[T]{}
}

func TestBroker_DeliversToEverySubscriber(t *testing.T) {
	b := NewBroker[notice]()
	defer b.Close()

	heading := b.Subscribe(context.Background())
	body := b.Subscribe(context.Background())
	require.Equal(t, 2, b.Subscribers())

	b.Publish(FontChanged, notice{picker: "heading", family: "Lato"})

	for _, ch := range []<-chan Event[notice]{heading, body} {
		ev := recv(t, ch)
		require.Equal(t, FontChanged, ev.Kind)
		require.Equal(t, "Lato", ev.Payload.family)
		require.Equal(t, uint64(1), ev.Seq)
		require.False(t, ev.At.IsZero())
	}
}

func TestBroker_SeqCountsPublishes(t *testing.T) {
	b := NewBroker[string]()
	defer b.Close()
	ch := b.Subscribe(context.Background())

	b.Publish(Logged, "one")
	b.Publish(PreviewsDone, "two")

	require.Equal(t, uint64(1), recv(t, ch).Seq)
	second := recv(t, ch)
	require.Equal(t, uint64(2), second.Seq)
	require.Equal(t, PreviewsDone, second.Kind)
}

func TestBroker_CancelEndsSubscription(t *testing.T) {
	b := NewBroker[string]()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := b.Subscribe(ctx)
	cancel()

	require.Eventually(t, func() bool { return b.Subscribers() == 0 }, time.Second, 5*time.Millisecond)
	_, ok := <-ch
	require.False(t, ok)
}

func TestBroker_FullQueueDropsInsteadOfBlocking(t *testing.T) {
	b := NewBrokerSize[int](1)
	defer b.Close()
	ch := b.Subscribe(context.Background())

	done := make(chan struct{})
	go func() {
		for i := range 3 {
			b.Publish(Logged, i)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		require.FailNow(t, "publish blocked on a full queue")
	}

	require.Equal(t, 0, recv(t, ch).Payload)
	require.Equal(t, uint64(2), b.Dropped())
}

func TestBroker_Close(t *testing.T) {
	b := NewBroker[string]()
	ch := b.Subscribe(context.Background())

	b.Close()
	b.Close()

	_, ok := <-ch
	require.False(t, ok)
	require.Zero(t, b.Subscribers())

	late := b.Subscribe(context.Background())
	_, ok = <-late
	require.False(t, ok, "subscribing to a closed broker yields a closed channel")

	require.NotPanics(t, func() { b.Publish(Logged, "after close") })
}

func TestBroker_QueueProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		size := rapid.IntRange(1, 8).Draw(t, "size")
		n := rapid.IntRange(0, 20).Draw(t, "publishes")

		b := NewBrokerSize[int](size)
		defer b.Close()
		ch := b.Subscribe(context.Background())

		for i := range n {
			b.Publish(Logged, i)
		}

		kept := min(n, size)
		for i := range kept {
			ev := <-ch
			if ev.Payload != i || ev.Seq != uint64(i+1) {
				t.Fatalf("event %d: payload %d seq %d", i, ev.Payload, ev.Seq)
			}
		}
		if got := b.Dropped(); got != uint64(n-kept) {
			t.Fatalf("dropped %d, want %d", got, n-kept)
		}
	})
}

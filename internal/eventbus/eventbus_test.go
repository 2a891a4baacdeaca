package eventbus

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, ch <-chan string, n int) []string {
	t.Helper()
	out := make([]string, 0, n)
	for len(out) < n {
		select {
		case s := <-ch:
			out = append(out, s)
		case <-time.After(time.Second):
			t.Fatalf("got %d of %d deliveries: %v", len(out), n, out)
		}
	}
	return out
}

func TestDeliversInPublishOrder(t *testing.T) {
	b := New(zerolog.Nop())
	defer b.Close()

	got := make(chan string, 10)
	record := func(e DomainEvent) { got <- string(e.Type()) }
	b.Subscribe(EventSearchStarted, record)
	b.Subscribe(EventResults, record)
	b.Subscribe(EventSearchEnded, record)

	b.Publish(SearchStartedEvent{})
	b.Publish(ResultsEvent{})
	b.Publish(SearchEndedEvent{})

	assert.Equal(t, []string{"SearchStarted", "Results", "SearchEnded"}, collect(t, got, 3))
}

func TestHandlersRunInSubscriptionOrder(t *testing.T) {
	b := New(zerolog.Nop())
	defer b.Close()

	got := make(chan string, 10)
	b.Subscribe(EventNextPage, func(DomainEvent) { got <- "first" })
	b.Subscribe(EventNextPage, func(DomainEvent) { got <- "second" })

	b.Publish(NextPageEvent{})
	assert.Equal(t, []string{"first", "second"}, collect(t, got, 2))
}

func TestUnsubscribeRemovesOnlyThatHandler(t *testing.T) {
	b := New(zerolog.Nop())
	defer b.Close()

	got := make(chan string, 10)
	unsubA := b.Subscribe(EventNextPage, func(DomainEvent) { got <- "a" })
	b.Subscribe(EventNextPage, func(DomainEvent) { got <- "b" })

	unsubA()
	unsubA() // second call is harmless
	b.Publish(NextPageEvent{})

	assert.Equal(t, []string{"b"}, collect(t, got, 1))
	select {
	case s := <-got:
		t.Fatalf("unexpected delivery %q", s)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHandlerPanicDoesNotStopDispatch(t *testing.T) {
	b := New(zerolog.Nop())
	defer b.Close()

	got := make(chan string, 10)
	b.Subscribe(EventResults, func(DomainEvent) { panic("boom") })
	b.Subscribe(EventResults, func(DomainEvent) { got <- "survived" })

	b.Publish(ResultsEvent{})
	b.Publish(ResultsEvent{})
	assert.Equal(t, []string{"survived", "survived"}, collect(t, got, 2))
}

func TestHandlerMayPublish(t *testing.T) {
	b := New(zerolog.Nop())
	defer b.Close()

	got := make(chan string, 10)
	b.Subscribe(EventNextPage, func(DomainEvent) { b.Publish(SearchStartedEvent{Page: 1}) })
	b.Subscribe(EventSearchStarted, func(e DomainEvent) { got <- string(e.Type()) })

	b.Publish(NextPageEvent{})
	assert.Equal(t, []string{"SearchStarted"}, collect(t, got, 1))
}

func TestPublishAfterCloseIsDropped(t *testing.T) {
	b := New(zerolog.Nop())

	var mu sync.Mutex
	calls := 0
	b.Subscribe(EventResults, func(DomainEvent) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	b.Close()
	b.Close()
	b.Publish(ResultsEvent{})
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 0, calls)
}

package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/albazaar/storefront/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "session", uuid.NewString()),
		Data:            "test data",
	}
}

type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panicWith  any
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newTestHandler("login.completed")
	bus.Subscribe(handler)

	event := newTestEvent("login.completed")
	require.NoError(t, bus.Publish(context.Background(), event))

	require.Len(t, handler.getHandled(), 1)
	assert.Equal(t, event, handler.getHandled()[0])
}

func TestInMemoryEventBus_Publish_MultipleEventsAndHandlers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	first := newTestHandler("order.placed")
	second := newTestHandler("order.placed")
	wildcard := newTestHandler()
	other := newTestHandler("session.invalidated")
	bus.Subscribe(first)
	bus.Subscribe(second)
	bus.Subscribe(wildcard)
	bus.Subscribe(other)

	err := bus.Publish(context.Background(), newTestEvent("order.placed"), newTestEvent("order.placed"))
	require.NoError(t, err)

	assert.Len(t, first.getHandled(), 2)
	assert.Len(t, second.getHandled(), 2)
	assert.Len(t, wildcard.getHandled(), 2)
	assert.Empty(t, other.getHandled())
}

func TestInMemoryEventBus_Publish_HandlerFailureDoesNotStopOthers(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	failing := newTestHandler("order.placed")
	failing.err = errors.New("broker down")
	panicking := newTestHandler("order.placed")
	panicking.panicWith = "boom"
	healthy := newTestHandler("order.placed")
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("order.placed")))

	assert.Len(t, healthy.getHandled(), 1)
	assert.Equal(t, 2, logs.FilterMessage("handler failed to process event").Len())
}

func TestInMemoryEventBus_Publish_SkipsNil(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	handler := newTestHandler()
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), nil))
	assert.Empty(t, handler.getHandled())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newTestHandler("login.completed")
	bus.Subscribe(handler)
	_ = bus.Publish(context.Background(), newTestEvent("login.completed"))
	require.Len(t, handler.getHandled(), 1)

	bus.Unsubscribe(handler)
	_ = bus.Publish(context.Background(), newTestEvent("login.completed"))
	assert.Len(t, handler.getHandled(), 1)
}

func TestInMemoryEventBus_AsyncDispatchDrainsOnStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), WithQueueSize(16))
	handler := newTestHandler("order.placed")
	bus.Subscribe(handler)

	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Start(context.Background()))

	for range 10 {
		require.NoError(t, bus.Publish(context.Background(), newTestEvent("order.placed")))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(ctx))
	assert.Len(t, handler.getHandled(), 10)

	// stopped bus dispatches inline again
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("order.placed")))
	assert.Len(t, handler.getHandled(), 11)
	require.NoError(t, bus.Stop(ctx))
}

func TestInMemoryEventBus_AsyncDetachesRequestContext(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	seen := make(chan error, 1)
	bus.Subscribe(newFuncHandler(func(ctx context.Context, _ shared.DomainEvent) error {
		seen <- ctx.Err()
		return nil
	}))
	require.NoError(t, bus.Start(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, bus.Publish(ctx, newTestEvent("order.placed")))

	select {
	case err := <-seen:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("event not dispatched")
	}
	require.NoError(t, bus.Stop(context.Background()))
}

func TestInMemoryEventBus_StopTimesOut(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	release := make(chan struct{})
	started := make(chan struct{})
	bus.Subscribe(newFuncHandler(func(context.Context, shared.DomainEvent) error {
		close(started)
		<-release
		return nil
	}))
	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("order.placed")))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, bus.Stop(ctx), context.DeadlineExceeded)
	close(release)
}

type funcHandler struct {
	fn func(ctx context.Context, event shared.DomainEvent) error
}

func newFuncHandler(fn func(ctx context.Context, event shared.DomainEvent) error) *funcHandler {
	return &funcHandler{fn: fn}
}

func (h *funcHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	return h.fn(ctx, event)
}

func (h *funcHandler) EventTypes() []string { return nil }

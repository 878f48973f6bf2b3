package event

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const testEventType EventType = "test.event"

func TestEventBus_SubscribeAndPublish(t *testing.T) {
	bus := NewEventBus(prometheus.NewRegistry(), nil)
	defer bus.Stop()

	_, ch := bus.Subscribe(testEventType)
	bus.Publish(testEventType, NewEvent(testEventType, "payload"))

	select {
	case evt := <-ch:
		require.Equal(t, testEventType, evt.Type)
		require.Equal(t, "payload", evt.Data)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestEventBus_SubscribeFunc(t *testing.T) {
	bus := NewEventBus(prometheus.NewRegistry(), nil)
	defer bus.Stop()

	var wg sync.WaitGroup
	wg.Add(1)
	var got Event
	bus.SubscribeFunc(testEventType, func(evt Event) {
		got = evt
		wg.Done()
	})

	bus.Publish(testEventType, NewEvent(testEventType, 42))
	wg.Wait()
	require.Equal(t, 42, got.Data)
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus(prometheus.NewRegistry(), nil)
	defer bus.Stop()

	subId, ch := bus.Subscribe(testEventType)
	bus.Unsubscribe(testEventType, subId)

	_, open := <-ch
	require.False(t, open)

	// Publishing after unsubscribe must not panic.
	bus.Publish(testEventType, NewEvent(testEventType, nil))
}

func TestEventBus_PublishDoesNotBlockOnFullQueue(t *testing.T) {
	bus := NewEventBus(prometheus.NewRegistry(), nil)
	defer bus.Stop()

	_, ch := bus.Subscribe(testEventType)
	for i := 0; i < EventQueueSize+5; i++ {
		bus.Publish(testEventType, NewEvent(testEventType, i))
	}
	// Only the buffered events arrive, the rest were dropped.
	require.Len(t, ch, EventQueueSize)
}

func TestEventBus_TypeIsolation(t *testing.T) {
	bus := NewEventBus(prometheus.NewRegistry(), nil)
	defer bus.Stop()

	_, chA := bus.Subscribe("type.a")
	_, chB := bus.Subscribe("type.b")

	bus.Publish("type.a", NewEvent("type.a", nil))
	require.Len(t, chA, 1)
	require.Len(t, chB, 0)
}

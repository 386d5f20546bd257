package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	bus := NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := bus.Subscribe(ctx, "audit")

	bus.PublishStockDeducted("pearls", 80, 920)

	select {
	case event := <-ch:
		assert.Equal(t, EventStockDeducted, event.Type)
		data, ok := event.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "pearls", data["item_id"])
		assert.False(t, event.OccurredAt.IsZero())
	case <-time.After(time.Second):
		t.Fatal("expected event was not delivered")
	}
}

func TestPublishWithoutSubscribersDoesNotBlock(t *testing.T) {
	bus := NewEventBus()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			bus.PublishOrderCreated("order-1", "PST-1", 5.50)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publishing without subscribers blocked")
	}
}

func TestSlowSubscriberIsSkipped(t *testing.T) {
	bus := NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := bus.Subscribe(ctx, "slow")

	// Overflow the buffer; publishers must never block on the full channel.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			bus.PublishStatusChanged("order-1", "pending", "making")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher blocked on a full subscriber channel")
	}

	// The subscriber still receives the buffered prefix.
	assert.Equal(t, EventOrderStatusChanged, (<-ch).Type)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())

	ch := bus.Subscribe(ctx, "audit")
	cancel()

	select {
	case _, open := <-ch:
		assert.False(t, open, "channel should be closed after unsubscribe")
	case <-time.After(time.Second):
		t.Fatal("channel was not closed after context cancellation")
	}
}

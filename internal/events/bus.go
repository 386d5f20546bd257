package events

import (
	"context"
	"sync"
	"time"
)

// EventType represents the type of audit event
type EventType string

const (
	EventOrderCreated       EventType = "order_created"
	EventOrderStatusChanged EventType = "order_status_changed"
	EventStageAdvanced      EventType = "stage_advanced"
	EventStockDeducted      EventType = "stock_deducted"
	EventStockRestored      EventType = "stock_restored"
	EventStockAdjusted      EventType = "stock_adjusted"
	EventRestoreDropped     EventType = "restore_dropped"
	EventLoyaltyApplied     EventType = "loyalty_applied"
	EventLoyaltyFailed      EventType = "loyalty_failed"
)

// Event carries an audit record. The engine never depends on delivery.
type Event struct {
	Type       EventType   `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// EventBus manages subscriptions and broadcasts audit events
type EventBus struct {
	subscribers map[string]chan Event
	mu          sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[string]chan Event),
	}
}

// Subscribe adds a new subscriber and returns a channel for receiving events
func (eb *EventBus) Subscribe(ctx context.Context, id string) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	// Buffered so a slow consumer never blocks publishers
	ch := make(chan Event, 32)
	eb.subscribers[id] = ch

	go func() {
		<-ctx.Done()
		eb.Unsubscribe(id)
	}()

	return ch
}

// Unsubscribe removes a subscriber
func (eb *EventBus) Unsubscribe(id string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if ch, exists := eb.subscribers[id]; exists {
		close(ch)
		delete(eb.subscribers, id)
	}
}

// Publish sends an event to all subscribers without blocking
func (eb *EventBus) Publish(eventType EventType, data interface{}) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	event := Event{
		Type:       eventType,
		OccurredAt: time.Now(),
		Data:       data,
	}

	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Skip if channel is full (prevents blocking)
		}
	}
}

// PublishOrderCreated publishes an order created event
func (eb *EventBus) PublishOrderCreated(orderID, orderNumber string, finalAmount float64) {
	eb.Publish(EventOrderCreated, map[string]interface{}{
		"order_id":     orderID,
		"order_number": orderNumber,
		"final_amount": finalAmount,
	})
}

// PublishStatusChanged publishes an order status change event
func (eb *EventBus) PublishStatusChanged(orderID, from, to string) {
	eb.Publish(EventOrderStatusChanged, map[string]string{
		"order_id": orderID,
		"from":     from,
		"to":       to,
	})
}

// PublishStageAdvanced publishes a production stage transition event
func (eb *EventBus) PublishStageAdvanced(orderID, from, to string) {
	eb.Publish(EventStageAdvanced, map[string]string{
		"order_id": orderID,
		"from":     from,
		"to":       to,
	})
}

// PublishStockDeducted publishes a stock deduction event
func (eb *EventBus) PublishStockDeducted(itemID string, amount, newStock float64) {
	eb.Publish(EventStockDeducted, map[string]interface{}{
		"item_id":   itemID,
		"amount":    amount,
		"new_stock": newStock,
	})
}

// PublishStockRestored publishes a stock restoration event
func (eb *EventBus) PublishStockRestored(itemID string, amount, newStock float64) {
	eb.Publish(EventStockRestored, map[string]interface{}{
		"item_id":   itemID,
		"amount":    amount,
		"new_stock": newStock,
	})
}

// PublishStockAdjusted publishes a manual stock correction event
func (eb *EventBus) PublishStockAdjusted(itemID string, delta, newStock float64, reason, actorID string) {
	eb.Publish(EventStockAdjusted, map[string]interface{}{
		"item_id":   itemID,
		"delta":     delta,
		"new_stock": newStock,
		"reason":    reason,
		"actor_id":  actorID,
	})
}

// PublishRestoreDropped publishes a restoration that was dropped at the cap
func (eb *EventBus) PublishRestoreDropped(itemID string, requested, applied float64) {
	eb.Publish(EventRestoreDropped, map[string]interface{}{
		"item_id":   itemID,
		"requested": requested,
		"applied":   applied,
	})
}

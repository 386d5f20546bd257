package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/dumu-tech/pearl-street-teahouse/internal/core"
	"github.com/dumu-tech/pearl-street-teahouse/internal/events"
)

// LoyaltyTask carries the membership side effects of a completed order
type LoyaltyTask struct {
	OrderID      string
	OrderNumber  string
	CustomerID   string
	PointsUsed   int
	PointsEarned int
	Spend        float64
}

// LoyaltyWorker applies loyalty side effects asynchronously. Order completion
// is the authoritative outcome; every failure here is logged and swallowed,
// so point totals may lag behind completed orders.
type LoyaltyWorker struct {
	gateway  core.MembershipGateway
	eventBus *events.EventBus
	tasks    chan LoyaltyTask
	stop     chan struct{}
	wg       sync.WaitGroup
}

// NewLoyaltyWorker creates a loyalty worker with the given queue size
func NewLoyaltyWorker(gateway core.MembershipGateway, eventBus *events.EventBus, queueSize int) *LoyaltyWorker {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &LoyaltyWorker{
		gateway:  gateway,
		eventBus: eventBus,
		tasks:    make(chan LoyaltyTask, queueSize),
		stop:     make(chan struct{}),
	}
}

// Start launches the worker goroutine
func (w *LoyaltyWorker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case task := <-w.tasks:
				w.apply(context.Background(), task)
			case <-w.stop:
				return
			}
		}
	}()
}

// Stop shuts the worker down. Queued tasks that have not started are dropped;
// callers accepted that risk when they chose the async boundary.
func (w *LoyaltyWorker) Stop() {
	close(w.stop)
	w.wg.Wait()
}

// Enqueue hands a task to the worker without blocking. A full queue drops the
// task with a log line, matching the best-effort contract.
func (w *LoyaltyWorker) Enqueue(task LoyaltyTask) {
	select {
	case w.tasks <- task:
	default:
		log.Printf("loyalty: queue full, dropping task for order %s", task.OrderID)
	}
}

// apply runs every membership side effect independently so one failure does
// not stop the others.
func (w *LoyaltyWorker) apply(ctx context.Context, task LoyaltyTask) {
	if task.CustomerID == "" {
		return
	}

	var failed bool

	if task.PointsUsed > 0 {
		reason := fmt.Sprintf("redeemed on order %s", task.OrderNumber)
		if err := w.gateway.ApplyPointsDelta(ctx, task.CustomerID, -task.PointsUsed, reason); err != nil {
			log.Printf("loyalty: failed to deduct %d points for customer %s: %v", task.PointsUsed, task.CustomerID, err)
			failed = true
		}
	}

	if err := w.gateway.AddSpend(ctx, task.CustomerID, task.Spend); err != nil {
		log.Printf("loyalty: failed to add spend %.2f for customer %s: %v", task.Spend, task.CustomerID, err)
		failed = true
	}

	if task.PointsEarned > 0 {
		reason := fmt.Sprintf("earned on order %s", task.OrderNumber)
		if err := w.gateway.ApplyPointsDelta(ctx, task.CustomerID, task.PointsEarned, reason); err != nil {
			log.Printf("loyalty: failed to award %d points for customer %s: %v", task.PointsEarned, task.CustomerID, err)
			failed = true
		}
	}

	if err := w.gateway.ReevaluateTier(ctx, task.CustomerID); err != nil {
		log.Printf("loyalty: failed to reevaluate tier for customer %s: %v", task.CustomerID, err)
		failed = true
	}

	if failed {
		w.eventBus.Publish(events.EventLoyaltyFailed, map[string]string{
			"order_id":    task.OrderID,
			"customer_id": task.CustomerID,
		})
		return
	}

	w.eventBus.Publish(events.EventLoyaltyApplied, map[string]interface{}{
		"order_id":      task.OrderID,
		"customer_id":   task.CustomerID,
		"points_used":   task.PointsUsed,
		"points_earned": task.PointsEarned,
		"spend":         task.Spend,
	})
}

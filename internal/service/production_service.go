package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/dumu-tech/pearl-street-teahouse/internal/core"
	"github.com/dumu-tech/pearl-street-teahouse/internal/events"
)

const queueCacheTTL = 15 * time.Second

// ProductionService drives orders through the staged production pipeline:
// stage transitions, staff assignment, priority, queue views and wait-time
// estimation. It exclusively owns productionStage, assignedTo and the stage
// timestamps.
type ProductionService struct {
	orderRepo  core.OrderRepository
	recipes    *RecipeService
	loyalty    *LoyaltyWorker
	eventBus   *events.EventBus
	queueCache core.QueueCache
	locks      *OrderLocks
}

// NewProductionService creates the production scheduler
func NewProductionService(
	orderRepo core.OrderRepository,
	recipes *RecipeService,
	loyalty *LoyaltyWorker,
	eventBus *events.EventBus,
	queueCache core.QueueCache,
	locks *OrderLocks,
) *ProductionService {
	return &ProductionService{
		orderRepo:  orderRepo,
		recipes:    recipes,
		loyalty:    loyalty,
		eventBus:   eventBus,
		queueCache: queueCache,
		locks:      locks,
	}
}

// StartProduction moves a pending order onto the floor: status becomes
// making, the first stage begins, and the wait-time estimate is computed from
// item count and recipe complexity.
func (s *ProductionService) StartProduction(ctx context.Context, orderID, staffID string) (*core.Order, error) {
	lock := s.locks.get(orderID)
	lock.Lock()
	defer lock.Unlock()

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != core.OrderStatusPending || order.ProductionStage != core.StageNotStarted {
		return nil, &core.TransitionError{
			OrderID:   order.ID,
			From:      fmt.Sprintf("%s/%s", order.Status, order.ProductionStage),
			Attempted: fmt.Sprintf("%s/%s", core.OrderStatusMaking, core.StagePreparing),
			Reason:    "production already started",
		}
	}

	// Ingredients may have been consumed by other orders since creation.
	for _, item := range order.Items {
		report, err := s.recipes.CheckAvailability(ctx, item.ProductID, item.Quantity)
		if err != nil {
			return nil, err
		}
		if !report.Available {
			shortage := report.Shortages[0]
			return nil, &core.InsufficientStockError{
				ItemID:    shortage.IngredientID,
				ItemName:  shortage.IngredientName,
				Required:  shortage.Required,
				Available: shortage.Available,
				Unit:      shortage.Unit,
			}
		}
	}

	estimate, err := s.estimateWaitTime(ctx, order)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	order.Status = core.OrderStatusMaking
	order.ProductionStage = core.StagePreparing
	order.MakingStartedAt = &now
	order.AssignedTo = staffID
	order.EstimatedWaitTime = estimate

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("%w: failed to start production for %s: %v", core.ErrInternal, order.ID, err)
	}

	s.eventBus.PublishStageAdvanced(order.ID, string(core.StageNotStarted), string(core.StagePreparing))
	s.invalidateQueue(ctx)
	return order, nil
}

// estimateWaitTime computes minutes from item count and recipe complexity.
func (s *ProductionService) estimateWaitTime(ctx context.Context, order *core.Order) (int, error) {
	complexity := 0
	for _, item := range order.Items {
		count, err := s.recipes.RecipeComplexity(ctx, item.ProductID)
		if err != nil {
			return 0, err
		}
		complexity += count
	}

	estimate := 3*order.TotalQuantity() + complexity
	if estimate < 5 {
		estimate = 5
	}
	return estimate, nil
}

// AdvanceStage moves an order to the stage immediately after its current one.
// Skipping and reversing are rejected. Reaching quality_check stamps
// makingCompletedAt; reaching ready_for_pickup flips the order to ready and
// records the actual wait time.
func (s *ProductionService) AdvanceStage(ctx context.Context, orderID string, target core.ProductionStage, notes string) (*core.Order, error) {
	lock := s.locks.get(orderID)
	lock.Lock()
	defer lock.Unlock()

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != core.OrderStatusMaking {
		return nil, &core.TransitionError{
			OrderID:   order.ID,
			From:      string(order.Status),
			Attempted: string(target),
			Reason:    "stage transitions require an order in making status",
		}
	}

	next := core.NextStage(order.ProductionStage)
	if next == "" || target != next {
		return nil, &core.TransitionError{
			OrderID:   order.ID,
			From:      string(order.ProductionStage),
			Attempted: string(target),
			Reason:    fmt.Sprintf("only the next stage %q is reachable", next),
		}
	}

	previous := order.ProductionStage
	now := time.Now()
	order.ProductionStage = target

	if notes != "" {
		if order.QualityNotes != "" {
			order.QualityNotes = strings.TrimSpace(order.QualityNotes) + "\n"
		}
		order.QualityNotes += notes
	}

	switch target {
	case core.StageQualityCheck:
		order.MakingCompletedAt = &now
	case core.StageReadyForPickup:
		order.Status = core.OrderStatusReady
		order.ReadyAt = &now
		if order.MakingStartedAt != nil {
			order.ActualWaitTime = int(now.Sub(*order.MakingStartedAt).Minutes())
		}
	}

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("%w: failed to advance order %s: %v", core.ErrInternal, order.ID, err)
	}

	s.eventBus.PublishStageAdvanced(order.ID, string(previous), string(target))
	s.invalidateQueue(ctx)
	return order, nil
}

// CompleteOrder hands a ready order over to the customer. Loyalty side
// effects run asynchronously after the completion is durable.
func (s *ProductionService) CompleteOrder(ctx context.Context, orderID, qualityNotes string, rating int) (*core.Order, error) {
	lock := s.locks.get(orderID)
	lock.Lock()
	defer lock.Unlock()

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != core.OrderStatusReady {
		return nil, &core.TransitionError{
			OrderID:   order.ID,
			From:      string(order.Status),
			Attempted: string(core.OrderStatusCompleted),
			Reason:    "only ready orders can be completed",
		}
	}

	now := time.Now()
	order.Status = core.OrderStatusCompleted
	order.CompletedAt = &now
	if qualityNotes != "" {
		if order.QualityNotes != "" {
			order.QualityNotes = strings.TrimSpace(order.QualityNotes) + "\n"
		}
		order.QualityNotes += qualityNotes
	}
	if rating > 0 {
		order.Rating = rating
	}

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("%w: failed to complete order %s: %v", core.ErrInternal, order.ID, err)
	}

	if order.CustomerID != "" {
		s.loyalty.Enqueue(LoyaltyTask{
			OrderID:      order.ID,
			OrderNumber:  order.OrderNumber,
			CustomerID:   order.CustomerID,
			PointsUsed:   order.PointsUsed,
			PointsEarned: order.PointsEarned,
			Spend:        order.FinalAmount,
		})
	}

	s.eventBus.PublishStatusChanged(order.ID, string(core.OrderStatusReady), string(core.OrderStatusCompleted))
	s.invalidateQueue(ctx)
	return order, nil
}

// AssignOrder sets the responsible staff member while the order is pending.
func (s *ProductionService) AssignOrder(ctx context.Context, orderID, staffID string) error {
	lock := s.locks.get(orderID)
	lock.Lock()
	defer lock.Unlock()

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	if order.Status != core.OrderStatusPending {
		return &core.TransitionError{
			OrderID:   order.ID,
			From:      string(order.Status),
			Attempted: "assign",
			Reason:    "orders can only be assigned while pending",
		}
	}

	order.AssignedTo = staffID
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return fmt.Errorf("%w: failed to assign order %s: %v", core.ErrInternal, order.ID, err)
	}

	s.invalidateQueue(ctx)
	return nil
}

// SetPriority changes queue priority; permitted at any time.
func (s *ProductionService) SetPriority(ctx context.Context, orderID string, priority core.OrderPriority) error {
	switch priority {
	case core.PriorityNormal, core.PriorityUrgent, core.PriorityRush:
	default:
		return fmt.Errorf("%w: unknown priority %q", core.ErrInvalidOrder, priority)
	}

	lock := s.locks.get(orderID)
	lock.Lock()
	defer lock.Unlock()

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	order.Priority = priority
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return fmt.Errorf("%w: failed to set priority for order %s: %v", core.ErrInternal, order.ID, err)
	}

	s.invalidateQueue(ctx)
	return nil
}

// GetQueue partitions all non-terminal orders into pending/making/ready and
// overdue buckets. Overdue classification wins over status bucketing. The
// snapshot is served from a short-lived cache between mutations.
func (s *ProductionService) GetQueue(ctx context.Context) (*core.QueueSnapshot, error) {
	if snapshot, err := s.queueCache.Get(ctx); err == nil && snapshot != nil {
		return snapshot, nil
	}

	orders, err := s.orderRepo.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load active orders: %v", core.ErrInternal, err)
	}

	now := time.Now()
	snapshot := &core.QueueSnapshot{GeneratedAt: now}
	for _, order := range orders {
		entry := core.QueueEntry{
			Order:          order,
			Progress:       order.Progress(),
			WaitingMinutes: order.WaitMinutes(now),
		}
		switch {
		case order.IsOverdue(now):
			snapshot.Overdue = append(snapshot.Overdue, entry)
		case order.Status == core.OrderStatusPending:
			snapshot.Pending = append(snapshot.Pending, entry)
		case order.Status == core.OrderStatusMaking:
			snapshot.Making = append(snapshot.Making, entry)
		case order.Status == core.OrderStatusReady:
			snapshot.Ready = append(snapshot.Ready, entry)
		}
	}

	sortQueue(snapshot.Pending)
	sortQueue(snapshot.Making)
	sortQueue(snapshot.Ready)
	sortQueue(snapshot.Overdue)

	if err := s.queueCache.Set(ctx, snapshot, queueCacheTTL); err != nil {
		log.Printf("production: failed to cache queue snapshot: %v", err)
	}

	return snapshot, nil
}

// sortQueue orders a bucket by priority rank, then age.
func sortQueue(entries []core.QueueEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		ri, rj := core.PriorityRank(entries[i].Order.Priority), core.PriorityRank(entries[j].Order.Priority)
		if ri != rj {
			return ri > rj
		}
		return entries[i].Order.CreatedAt.Before(entries[j].Order.CreatedAt)
	})
}

// BatchStart attempts StartProduction for each order independently. Partial
// success is expected: failures are collected per order, never aborting the
// rest of the batch.
func (s *ProductionService) BatchStart(ctx context.Context, orderIDs []string, staffID string) *core.BatchStartResult {
	result := &core.BatchStartResult{}
	for _, orderID := range orderIDs {
		if _, err := s.StartProduction(ctx, orderID, staffID); err != nil {
			log.Printf("production: batch start failed for order %s: %v", orderID, err)
			result.Failed = append(result.Failed, core.BatchStartFailure{
				OrderID: orderID,
				Reason:  err.Error(),
			})
			continue
		}
		result.Started = append(result.Started, orderID)
	}
	return result
}

func (s *ProductionService) invalidateQueue(ctx context.Context) {
	if err := s.queueCache.Invalidate(ctx); err != nil {
		log.Printf("production: failed to invalidate queue cache: %v", err)
	}
}

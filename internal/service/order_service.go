package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/dumu-tech/pearl-street-teahouse/internal/core"
	"github.com/dumu-tech/pearl-street-teahouse/internal/events"
	"github.com/google/uuid"
)

// CreateOrderItemRequest is one requested line of a new order
type CreateOrderItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderRequest is the validated input to order creation. The staff ID
// arrives already authorized; the engine never re-derives permissions.
type CreateOrderRequest struct {
	StaffID    string                   `json:"staff_id"`
	CustomerID string                   `json:"customer_id,omitempty"`
	Notes      string                   `json:"notes,omitempty"`
	Items      []CreateOrderItemRequest `json:"items"`
}

// Validate enforces field-level constraints before any side effect runs.
func (r *CreateOrderRequest) Validate() error {
	if r.StaffID == "" {
		return fmt.Errorf("%w: staff ID is required", core.ErrInvalidOrder)
	}
	if len(r.Items) == 0 {
		return fmt.Errorf("%w: order must contain at least one item", core.ErrInvalidOrder)
	}
	for i, item := range r.Items {
		if item.ProductID == "" {
			return fmt.Errorf("%w: item %d is missing a product ID", core.ErrInvalidOrder, i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: item %d has non-positive quantity", core.ErrInvalidOrder, i)
		}
	}
	return nil
}

// OrderService orchestrates order creation and status transitions, tying the
// pricing calculator, the recipe resolver and the inventory ledger together.
type OrderService struct {
	orderRepo   core.OrderRepository
	productRepo core.ProductRepository
	membership  core.MembershipGateway
	pricing     *PricingService
	inventory   *InventoryService
	loyalty     *LoyaltyWorker
	eventBus    *events.EventBus
	queueCache  core.QueueCache
	locks       *OrderLocks
}

// NewOrderService creates the order orchestrator
func NewOrderService(
	orderRepo core.OrderRepository,
	productRepo core.ProductRepository,
	membership core.MembershipGateway,
	pricing *PricingService,
	inventory *InventoryService,
	loyalty *LoyaltyWorker,
	eventBus *events.EventBus,
	queueCache core.QueueCache,
	locks *OrderLocks,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		membership:  membership,
		pricing:     pricing,
		inventory:   inventory,
		loyalty:     loyalty,
		eventBus:    eventBus,
		queueCache:  queueCache,
		locks:       locks,
	}
}

// CreateOrder prices the requested items, deducts their ingredients from the
// ledger, and persists the order with its line items. The deduction and the
// persisted order stand or fall together: a failed persist triggers a
// compensating restoration.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*core.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	orderID := uuid.New().String()
	items := make([]core.OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		product, err := s.productRepo.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", line.ProductID, err)
		}
		if !product.IsActive {
			return nil, fmt.Errorf("%w: product %q is not available", core.ErrInvalidOrder, product.Name)
		}
		items = append(items, core.OrderItem{
			ID:          uuid.New().String(),
			OrderID:     orderID,
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    line.Quantity,
			Subtotal:    product.Price * float64(line.Quantity),
		})
	}

	var member *core.MemberInfo
	if req.CustomerID != "" {
		info, err := s.membership.GetMemberTierAndPoints(ctx, req.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("failed to load member info for %s: %w", req.CustomerID, err)
		}
		member = info
	}

	calc, err := s.pricing.Calculate(items, member)
	if err != nil {
		return nil, err
	}

	if err := s.inventory.DeductForOrder(ctx, items); err != nil {
		return nil, err
	}

	order := &core.Order{
		ID:              orderID,
		OrderNumber:     s.pricing.OrderNumber(),
		CustomerID:      req.CustomerID,
		StaffID:         req.StaffID,
		TotalAmount:     calc.TotalAmount,
		DiscountAmount:  calc.DiscountAmount,
		FinalAmount:     calc.FinalAmount,
		PointsUsed:      calc.PointsUsed,
		PointsEarned:    calc.PointsEarned,
		Status:          core.OrderStatusPending,
		ProductionStage: core.StageNotStarted,
		Priority:        core.PriorityNormal,
		Notes:           req.Notes,
		CreatedAt:       time.Now(),
		Items:           items,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		// Compensate the deduction so a failed persist leaves no stock change.
		if _, restoreErr := s.inventory.RestoreForOrder(ctx, items); restoreErr != nil {
			log.Printf("orders: failed to compensate deduction for order %s: %v", orderID, restoreErr)
		}
		return nil, fmt.Errorf("%w: failed to persist order: %v", core.ErrInternal, err)
	}

	s.eventBus.PublishOrderCreated(order.ID, order.OrderNumber, order.FinalAmount)
	s.invalidateQueue(ctx)

	return order, nil
}

// GetOrder retrieves an order with its items.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*core.Order, error) {
	return s.orderRepo.GetByID(ctx, orderID)
}

// UpdateStatus transitions an order's status. Completion stamps the order and
// hands loyalty side effects to the async worker; cancellation restores the
// order's ingredients. Transitions out of a terminal state are rejected.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, newStatus core.OrderStatus) (*core.Order, error) {
	lock := s.locks.get(orderID)
	lock.Lock()
	defer lock.Unlock()

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.applyStatus(ctx, order, newStatus); err != nil {
		return nil, err
	}
	return order, nil
}

// CancelOrder cancels an order and appends the reason to its notes.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, reason string) (*core.Order, error) {
	lock := s.locks.get(orderID)
	lock.Lock()
	defer lock.Unlock()

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if reason != "" {
		if order.Notes != "" {
			order.Notes = strings.TrimSpace(order.Notes) + "\n"
		}
		order.Notes += "cancelled: " + reason
	}

	if err := s.applyStatus(ctx, order, core.OrderStatusCancelled); err != nil {
		return nil, err
	}
	return order, nil
}

// applyStatus performs the transition on an order already locked and loaded.
func (s *OrderService) applyStatus(ctx context.Context, order *core.Order, newStatus core.OrderStatus) error {
	switch newStatus {
	case core.OrderStatusPending, core.OrderStatusMaking, core.OrderStatusReady,
		core.OrderStatusCompleted, core.OrderStatusCancelled:
	default:
		return fmt.Errorf("%w: unknown status %q", core.ErrInvalidOrder, newStatus)
	}

	previous := order.Status

	switch newStatus {
	case core.OrderStatusCancelled:
		if order.Status == core.OrderStatusCompleted {
			return fmt.Errorf("%w: order %s", core.ErrAlreadyCompleted, order.ID)
		}
		if order.Status == core.OrderStatusCancelled {
			return &core.TransitionError{
				OrderID:   order.ID,
				From:      string(order.Status),
				Attempted: string(newStatus),
				Reason:    "order is already cancelled",
			}
		}

		warnings, err := s.inventory.RestoreForOrder(ctx, order.Items)
		if err != nil {
			return err
		}
		for _, warning := range warnings {
			log.Printf("orders: restoration dropped for %q on cancel of order %s (requested %.2f)",
				warning.ItemName, order.ID, warning.Requested)
		}
		order.Status = core.OrderStatusCancelled

	case core.OrderStatusCompleted:
		if order.Status.IsTerminal() {
			return &core.TransitionError{
				OrderID:   order.ID,
				From:      string(order.Status),
				Attempted: string(newStatus),
				Reason:    "order is in a terminal state",
			}
		}
		now := time.Now()
		order.Status = core.OrderStatusCompleted
		order.CompletedAt = &now

	default:
		if order.Status.IsTerminal() {
			return &core.TransitionError{
				OrderID:   order.ID,
				From:      string(order.Status),
				Attempted: string(newStatus),
				Reason:    "order is in a terminal state",
			}
		}
		order.Status = newStatus
	}

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return fmt.Errorf("%w: failed to update order %s: %v", core.ErrInternal, order.ID, err)
	}

	// Loyalty is fire-and-forget: the completion above is already durable.
	if newStatus == core.OrderStatusCompleted && order.CustomerID != "" {
		s.loyalty.Enqueue(LoyaltyTask{
			OrderID:      order.ID,
			OrderNumber:  order.OrderNumber,
			CustomerID:   order.CustomerID,
			PointsUsed:   order.PointsUsed,
			PointsEarned: order.PointsEarned,
			Spend:        order.FinalAmount,
		})
	}

	s.eventBus.PublishStatusChanged(order.ID, string(previous), string(order.Status))
	s.invalidateQueue(ctx)
	return nil
}

func (s *OrderService) invalidateQueue(ctx context.Context) {
	if err := s.queueCache.Invalidate(ctx); err != nil {
		log.Printf("orders: failed to invalidate queue cache: %v", err)
	}
}

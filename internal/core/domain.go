package core

import "time"

// OrderStatus represents the overall state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusMaking    OrderStatus = "making"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsTerminal reports whether no further status or stage transitions are permitted.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// ProductionStage represents a step in the physical production pipeline,
// distinct from the order's overall status.
type ProductionStage string

const (
	StageNotStarted     ProductionStage = "not_started"
	StagePreparing      ProductionStage = "preparing"
	StageMixing         ProductionStage = "mixing"
	StageFinishing      ProductionStage = "finishing"
	StageQualityCheck   ProductionStage = "quality_check"
	StageReadyForPickup ProductionStage = "ready_for_pickup"
)

// ProductionStages is the ordered pipeline. Transitions move strictly forward,
// one stage at a time.
var ProductionStages = []ProductionStage{
	StageNotStarted,
	StagePreparing,
	StageMixing,
	StageFinishing,
	StageQualityCheck,
	StageReadyForPickup,
}

// NextStage returns the stage immediately after s, or "" if s is the last
// stage or unknown.
func NextStage(s ProductionStage) ProductionStage {
	for i, stage := range ProductionStages {
		if stage == s && i+1 < len(ProductionStages) {
			return ProductionStages[i+1]
		}
	}
	return ""
}

// StageProgress returns the completion percentage for a production stage.
func StageProgress(s ProductionStage) int {
	for i, stage := range ProductionStages {
		if stage == s {
			return i * 100 / (len(ProductionStages) - 1)
		}
	}
	return 0
}

// OrderPriority determines ordering within the production queue
type OrderPriority string

const (
	PriorityNormal OrderPriority = "normal"
	PriorityUrgent OrderPriority = "urgent"
	PriorityRush   OrderPriority = "rush"
)

// PriorityRank maps a priority to its sort weight (higher is served first).
func PriorityRank(p OrderPriority) int {
	switch p {
	case PriorityRush:
		return 2
	case PriorityUrgent:
		return 1
	default:
		return 0
	}
}

// MemberTier is a customer's loyalty level determining their discount rate
type MemberTier string

const (
	TierNone     MemberTier = "none"
	TierBronze   MemberTier = "bronze"
	TierSilver   MemberTier = "silver"
	TierGold     MemberTier = "gold"
	TierPlatinum MemberTier = "platinum"
)

// MemberInfo is the narrow view of a customer the engine needs at order time
type MemberInfo struct {
	Tier            MemberTier `json:"tier"`
	AvailablePoints int        `json:"available_points"`
}

// Product is the catalog snapshot the engine reads (catalog CRUD is external)
type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
	IsActive bool    `json:"is_active"`
}

// InventoryItem is a tracked ingredient. CurrentStock is mutated exclusively
// through the inventory ledger.
type InventoryItem struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Category     string     `json:"category"`
	Unit         string     `json:"unit"`
	CurrentStock float64    `json:"current_stock"`
	MinStock     float64    `json:"min_stock"`
	MaxStock     float64    `json:"max_stock"`
	UnitCost     float64    `json:"unit_cost"`
	ExpiryDate   *time.Time `json:"expiry_date,omitempty"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// RestoreCapFactor bounds restorations: stock never grows past MaxStock * 1.5.
const RestoreCapFactor = 1.5

// RestoreCap returns the upper bound a restoration may bring stock to.
func (i *InventoryItem) RestoreCap() float64 {
	return i.MaxStock * RestoreCapFactor
}

// Recipe is a (product, ingredient) edge: how much of an ingredient one unit
// of the product consumes.
type Recipe struct {
	ID              string  `json:"id"`
	ProductID       string  `json:"product_id"`
	IngredientID    string  `json:"ingredient_id"`
	Quantity        float64 `json:"quantity"`
	Unit            string  `json:"unit"`
	UsagePercentage float64 `json:"usage_percentage"`
	IsRequired      bool    `json:"is_required"`
	SortOrder       int     `json:"sort_order"`
}

// AdjustedQuantity is the nominal quantity scaled by the usage percentage.
func (r *Recipe) AdjustedQuantity() float64 {
	return r.Quantity * r.UsagePercentage / 100
}

// IngredientRequirement is one line of a resolved recipe: how much of an
// ingredient an order line needs in total.
type IngredientRequirement struct {
	IngredientID string  `json:"ingredient_id"`
	Amount       float64 `json:"amount"`
	Unit         string  `json:"unit"`
}

// Shortage describes one insufficient ingredient in an availability report
type Shortage struct {
	IngredientID   string  `json:"ingredient_id"`
	IngredientName string  `json:"ingredient_name"`
	Required       float64 `json:"required"`
	Available      float64 `json:"available"`
	Unit           string  `json:"unit"`
}

// AvailabilityReport flags whether a product can be made in the requested
// quantity without mutating any stock.
type AvailabilityReport struct {
	ProductID string     `json:"product_id"`
	Quantity  int        `json:"quantity"`
	Available bool       `json:"available"`
	Shortages []Shortage `json:"shortages,omitempty"`
}

// RestoreWarning surfaces a restoration that was dropped because it would
// push stock past the restore cap.
type RestoreWarning struct {
	ItemID    string  `json:"item_id"`
	ItemName  string  `json:"item_name"`
	Requested float64 `json:"requested"`
	Applied   float64 `json:"applied"`
}

// Order is the aggregate root of the fulfillment engine. Orders are never
// deleted; only status and stage evolve.
type Order struct {
	ID                string          `json:"id"`
	OrderNumber       string          `json:"order_number"`
	CustomerID        string          `json:"customer_id,omitempty"`
	StaffID           string          `json:"staff_id"`
	TotalAmount       float64         `json:"total_amount"`
	DiscountAmount    float64         `json:"discount_amount"`
	FinalAmount       float64         `json:"final_amount"`
	PointsUsed        int             `json:"points_used"`
	PointsEarned      int             `json:"points_earned"`
	Status            OrderStatus     `json:"status"`
	ProductionStage   ProductionStage `json:"production_stage"`
	Priority          OrderPriority   `json:"priority"`
	AssignedTo        string          `json:"assigned_to,omitempty"`
	EstimatedWaitTime int             `json:"estimated_wait_time"` // minutes
	ActualWaitTime    int             `json:"actual_wait_time"`    // minutes
	Notes             string          `json:"notes,omitempty"`
	QualityNotes      string          `json:"quality_notes,omitempty"`
	Rating            int             `json:"rating,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	MakingStartedAt   *time.Time      `json:"making_started_at,omitempty"`
	MakingCompletedAt *time.Time      `json:"making_completed_at,omitempty"`
	ReadyAt           *time.Time      `json:"ready_at,omitempty"`
	CompletedAt       *time.Time      `json:"completed_at,omitempty"`
	Items             []OrderItem     `json:"items"`
}

// DefaultEstimatedWait applies when an order was never given an estimate.
const DefaultEstimatedWait = 10 * time.Minute

// IsOverdue reports whether the order has exceeded its estimated wait time
// and is not yet in a terminal state.
func (o *Order) IsOverdue(now time.Time) bool {
	if o.Status.IsTerminal() {
		return false
	}
	estimate := DefaultEstimatedWait
	if o.EstimatedWaitTime > 0 {
		estimate = time.Duration(o.EstimatedWaitTime) * time.Minute
	}
	return now.After(o.CreatedAt.Add(estimate))
}

// WaitMinutes returns how long the order has been waiting since creation.
func (o *Order) WaitMinutes(now time.Time) int {
	return int(now.Sub(o.CreatedAt).Minutes())
}

// Progress returns the production completion percentage derived from the stage.
func (o *Order) Progress() int {
	return StageProgress(o.ProductionStage)
}

// TotalQuantity sums the quantities of all line items.
func (o *Order) TotalQuantity() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// OrderItem is a single line of an order, snapshotting the product's name and
// price at order time. Immutable after creation.
type OrderItem struct {
	ID          string  `json:"id"`
	OrderID     string  `json:"order_id"`
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
	Subtotal    float64 `json:"subtotal"`
}

// CalculationResult is the ephemeral output of the pricing calculator, copied
// into the order at creation.
type CalculationResult struct {
	Subtotal       float64 `json:"subtotal"`
	TotalAmount    float64 `json:"total_amount"`
	MemberDiscount float64 `json:"member_discount"`
	PointsDiscount float64 `json:"points_discount"`
	DiscountAmount float64 `json:"discount_amount"`
	FinalAmount    float64 `json:"final_amount"`
	PointsEarned   int     `json:"points_earned"`
	PointsUsed     int     `json:"points_used"`
}

// QueueEntry pairs an order with the figures the production floor reads off
// the queue board: stage completion and time waited so far.
type QueueEntry struct {
	Order          *Order `json:"order"`
	Progress       int    `json:"progress"`
	WaitingMinutes int    `json:"waiting_minutes"`
}

// QueueSnapshot partitions all non-terminal orders for the production floor.
// Overdue classification takes precedence over status bucketing.
type QueueSnapshot struct {
	Pending     []QueueEntry `json:"pending"`
	Making      []QueueEntry `json:"making"`
	Ready       []QueueEntry `json:"ready"`
	Overdue     []QueueEntry `json:"overdue"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// BatchStartFailure records one order that could not be started in a batch
type BatchStartFailure struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

// BatchStartResult aggregates the partial outcome of a batch start
type BatchStartResult struct {
	Started []string            `json:"started"`
	Failed  []BatchStartFailure `json:"failed"`
}

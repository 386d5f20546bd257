package core

import (
	"context"
	"time"
)

// InventoryRepository defines the interface for ingredient persistence.
// Stock writes are only ever issued by the inventory ledger.
type InventoryRepository interface {
	GetByID(ctx context.Context, id string) (*InventoryItem, error)
	GetByIDs(ctx context.Context, ids []string) ([]*InventoryItem, error)
	GetAll(ctx context.Context) ([]*InventoryItem, error)
	Create(ctx context.Context, item *InventoryItem) error
	UpdateStock(ctx context.Context, id string, newStock float64) error
	// UpdateStockBatch applies every stock write in a single transaction.
	UpdateStockBatch(ctx context.Context, newStocks map[string]float64) error
	GetLowStock(ctx context.Context) ([]*InventoryItem, error)
	GetOverstock(ctx context.Context) ([]*InventoryItem, error)
	GetExpiring(ctx context.Context, within time.Duration) ([]*InventoryItem, error)
}

// RecipeRepository reads the (product, ingredient) edges maintained by
// catalog management.
type RecipeRepository interface {
	GetByProductID(ctx context.Context, productID string) ([]*Recipe, error)
}

// ProductRepository is the narrow catalog read contract the engine consumes
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*Product, error)
}

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// Create persists the order and its items atomically.
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	Update(ctx context.Context, order *Order) error
	// GetActive returns all orders not yet completed or cancelled.
	GetActive(ctx context.Context) ([]*Order, error)
}

// MembershipGateway is the loyalty contract consumed from the external
// membership subsystem. Point and tier persistence is not the engine's.
type MembershipGateway interface {
	GetMemberTierAndPoints(ctx context.Context, customerID string) (*MemberInfo, error)
	ApplyPointsDelta(ctx context.Context, customerID string, delta int, reason string) error
	AddSpend(ctx context.Context, customerID string, amount float64) error
	ReevaluateTier(ctx context.Context, customerID string) error
}

// QueueCache holds short-lived production queue snapshots
type QueueCache interface {
	Get(ctx context.Context) (*QueueSnapshot, error)
	Set(ctx context.Context, snapshot *QueueSnapshot, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

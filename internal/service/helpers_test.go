package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dumu-tech/pearl-street-teahouse/internal/core"
	"github.com/dumu-tech/pearl-street-teahouse/internal/events"
)

// timing bounds for assert.Eventually on async loyalty effects
const (
	waitFor = 2 * time.Second
	tick    = 10 * time.Millisecond
)

// memInventoryRepo is an in-memory InventoryRepository safe for concurrent use
type memInventoryRepo struct {
	mu    sync.Mutex
	items map[string]*core.InventoryItem

	failBatch bool // force UpdateStockBatch to fail
}

func newMemInventoryRepo(items ...*core.InventoryItem) *memInventoryRepo {
	repo := &memInventoryRepo{items: make(map[string]*core.InventoryItem)}
	for _, item := range items {
		copied := *item
		repo.items[item.ID] = &copied
	}
	return repo
}

func (r *memInventoryRepo) GetByID(ctx context.Context, id string) (*core.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("inventory item %s: %w", id, core.ErrNotFound)
	}
	copied := *item
	return &copied, nil
}

func (r *memInventoryRepo) GetByIDs(ctx context.Context, ids []string) ([]*core.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*core.InventoryItem, 0, len(ids))
	for _, id := range ids {
		if item, ok := r.items[id]; ok {
			copied := *item
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *memInventoryRepo) GetAll(ctx context.Context) ([]*core.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*core.InventoryItem, 0, len(r.items))
	for _, item := range r.items {
		copied := *item
		result = append(result, &copied)
	}
	return result, nil
}

func (r *memInventoryRepo) Create(ctx context.Context, item *core.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *memInventoryRepo) UpdateStock(ctx context.Context, id string, newStock float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return fmt.Errorf("inventory item %s: %w", id, core.ErrNotFound)
	}
	item.CurrentStock = newStock
	return nil
}

func (r *memInventoryRepo) UpdateStockBatch(ctx context.Context, newStocks map[string]float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failBatch {
		return fmt.Errorf("simulated batch write failure")
	}
	for id := range newStocks {
		if _, ok := r.items[id]; !ok {
			return fmt.Errorf("inventory item %s: %w", id, core.ErrNotFound)
		}
	}
	for id, newStock := range newStocks {
		r.items[id].CurrentStock = newStock
	}
	return nil
}

func (r *memInventoryRepo) GetLowStock(ctx context.Context) ([]*core.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*core.InventoryItem
	for _, item := range r.items {
		if item.IsActive && item.CurrentStock <= item.MinStock {
			copied := *item
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *memInventoryRepo) GetOverstock(ctx context.Context) ([]*core.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*core.InventoryItem
	for _, item := range r.items {
		if item.IsActive && item.CurrentStock >= item.MaxStock {
			copied := *item
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *memInventoryRepo) GetExpiring(ctx context.Context, within time.Duration) ([]*core.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := time.Now().Add(within)
	var result []*core.InventoryItem
	for _, item := range r.items {
		if item.IsActive && item.ExpiryDate != nil && item.ExpiryDate.Before(cutoff) {
			copied := *item
			result = append(result, &copied)
		}
	}
	return result, nil
}

// stock reads the current level of an item directly
func (r *memInventoryRepo) stock(id string) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[id].CurrentStock
}

// memRecipeRepo is an in-memory RecipeRepository
type memRecipeRepo struct {
	recipes map[string][]*core.Recipe // productID -> edges
}

func newMemRecipeRepo() *memRecipeRepo {
	return &memRecipeRepo{recipes: make(map[string][]*core.Recipe)}
}

func (r *memRecipeRepo) add(recipe *core.Recipe) {
	r.recipes[recipe.ProductID] = append(r.recipes[recipe.ProductID], recipe)
}

func (r *memRecipeRepo) GetByProductID(ctx context.Context, productID string) ([]*core.Recipe, error) {
	return r.recipes[productID], nil
}

// memProductRepo is an in-memory ProductRepository
type memProductRepo struct {
	products map[string]*core.Product
}

func newMemProductRepo(products ...*core.Product) *memProductRepo {
	repo := &memProductRepo{products: make(map[string]*core.Product)}
	for _, p := range products {
		repo.products[p.ID] = p
	}
	return repo
}

func (r *memProductRepo) GetByID(ctx context.Context, id string) (*core.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, core.ErrNotFound)
	}
	return product, nil
}

// memOrderRepo is an in-memory OrderRepository
type memOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*core.Order

	failCreate bool // force Create to fail
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[string]*core.Order)}
}

func (r *memOrderRepo) Create(ctx context.Context, order *core.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return fmt.Errorf("simulated persistence failure")
	}
	copied := *order
	r.orders[order.ID] = &copied
	return nil
}

func (r *memOrderRepo) GetByID(ctx context.Context, id string) (*core.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, core.ErrNotFound)
	}
	copied := *order
	return &copied, nil
}

func (r *memOrderRepo) Update(ctx context.Context, order *core.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.ID]; !ok {
		return fmt.Errorf("order %s: %w", order.ID, core.ErrNotFound)
	}
	copied := *order
	r.orders[order.ID] = &copied
	return nil
}

func (r *memOrderRepo) GetActive(ctx context.Context) ([]*core.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*core.Order
	for _, order := range r.orders {
		if !order.Status.IsTerminal() {
			copied := *order
			result = append(result, &copied)
		}
	}
	return result, nil
}

// fakeMembership records MembershipGateway calls and can fail on demand
type fakeMembership struct {
	mu     sync.Mutex
	tier   core.MemberTier
	points int

	deltas   []int
	spends   []float64
	reevals  int
	failNext bool
}

func (g *fakeMembership) GetMemberTierAndPoints(ctx context.Context, customerID string) (*core.MemberInfo, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return &core.MemberInfo{Tier: g.tier, AvailablePoints: g.points}, nil
}

func (g *fakeMembership) ApplyPointsDelta(ctx context.Context, customerID string, delta int, reason string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failNext {
		g.failNext = false
		return fmt.Errorf("simulated membership outage")
	}
	g.deltas = append(g.deltas, delta)
	return nil
}

func (g *fakeMembership) AddSpend(ctx context.Context, customerID string, amount float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.spends = append(g.spends, amount)
	return nil
}

func (g *fakeMembership) ReevaluateTier(ctx context.Context, customerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reevals++
	return nil
}

// memQueueCache is an in-memory QueueCache that tracks invalidations
type memQueueCache struct {
	mu            sync.Mutex
	snapshot      *core.QueueSnapshot
	invalidations int
	sets          int
}

func (c *memQueueCache) Get(ctx context.Context) (*core.QueueSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot == nil {
		return nil, fmt.Errorf("queue snapshot: %w", core.ErrNotFound)
	}
	return c.snapshot, nil
}

func (c *memQueueCache) Set(ctx context.Context, snapshot *core.QueueSnapshot, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = snapshot
	c.sets++
	return nil
}

func (c *memQueueCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = nil
	c.invalidations++
	return nil
}

// fixture wires a full service graph over the in-memory fakes
type fixture struct {
	inventoryRepo *memInventoryRepo
	recipeRepo    *memRecipeRepo
	productRepo   *memProductRepo
	orderRepo     *memOrderRepo
	membership    *fakeMembership
	queueCache    *memQueueCache

	recipes    *RecipeService
	inventory  *InventoryService
	pricing    *PricingService
	loyalty    *LoyaltyWorker
	orders     *OrderService
	production *ProductionService
}

func newFixture(items ...*core.InventoryItem) *fixture {
	f := &fixture{
		inventoryRepo: newMemInventoryRepo(items...),
		recipeRepo:    newMemRecipeRepo(),
		productRepo:   newMemProductRepo(),
		orderRepo:     newMemOrderRepo(),
		membership:    &fakeMembership{tier: core.TierNone},
		queueCache:    &memQueueCache{},
	}

	eventBus := events.NewEventBus()
	locks := NewOrderLocks()

	f.recipes = NewRecipeService(f.recipeRepo, f.inventoryRepo)
	f.inventory = NewInventoryService(f.inventoryRepo, f.recipes, eventBus)
	f.pricing = NewPricingService(DefaultDiscountConfig())
	f.loyalty = NewLoyaltyWorker(f.membership, eventBus, 16)
	f.orders = NewOrderService(
		f.orderRepo, f.productRepo, f.membership,
		f.pricing, f.inventory, f.loyalty,
		eventBus, f.queueCache, locks,
	)
	f.production = NewProductionService(
		f.orderRepo, f.recipes, f.loyalty,
		eventBus, f.queueCache, locks,
	)
	return f
}

// addProduct registers a product with a one-ingredient-per-edge recipe
func (f *fixture) addProduct(id, name string, price float64, edges ...*core.Recipe) {
	f.productRepo.products[id] = &core.Product{
		ID: id, Name: name, Price: price, Category: "Milk Tea", IsActive: true,
	}
	for _, edge := range edges {
		edge.ProductID = id
		f.recipeRepo.add(edge)
	}
}

func activeItem(id, name string, stock, min, max float64) *core.InventoryItem {
	return &core.InventoryItem{
		ID: id, Name: name, Category: "Tea", Unit: "g",
		CurrentStock: stock, MinStock: min, MaxStock: max,
		IsActive: true, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
}

func edge(ingredientID string, quantity float64) *core.Recipe {
	return &core.Recipe{
		ID: ingredientID + "-edge", IngredientID: ingredientID,
		Quantity: quantity, Unit: "g", UsagePercentage: 100, IsRequired: true,
	}
}

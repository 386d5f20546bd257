package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/dumu-tech/pearl-street-teahouse/internal/core"
	"github.com/dumu-tech/pearl-street-teahouse/internal/events"
)

// InventoryService is the ledger: the only component that mutates ingredient
// stock. Every deduct/restore/adjust on an item is serialized through a
// per-item mutex; multi-ingredient batches acquire their locks in sorted
// order so two concurrent orders can never deadlock.
type InventoryService struct {
	repo     core.InventoryRepository
	recipes  *RecipeService
	eventBus *events.EventBus
	locks    *lockTable
}

// NewInventoryService creates the inventory ledger
func NewInventoryService(repo core.InventoryRepository, recipes *RecipeService, eventBus *events.EventBus) *InventoryService {
	return &InventoryService{
		repo:     repo,
		recipes:  recipes,
		eventBus: eventBus,
		locks:    newLockTable(),
	}
}

// Deduct atomically subtracts amount from an item's stock and returns the new
// level. Fails fast on missing, inactive or insufficient items; never blocks
// on contention beyond the per-item critical section.
func (s *InventoryService) Deduct(ctx context.Context, itemID string, amount float64) (float64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: deduction amount must be positive", core.ErrInvalidOrder)
	}

	lock := s.locks.get(itemID)
	lock.Lock()
	defer lock.Unlock()

	item, err := s.loadActive(ctx, itemID)
	if err != nil {
		return 0, err
	}

	if item.CurrentStock < amount {
		return 0, &core.InsufficientStockError{
			ItemID:    item.ID,
			ItemName:  item.Name,
			Required:  amount,
			Available: item.CurrentStock,
			Unit:      item.Unit,
		}
	}

	newStock := item.CurrentStock - amount
	if err := s.repo.UpdateStock(ctx, item.ID, newStock); err != nil {
		return 0, fmt.Errorf("%w: failed to persist deduction for %s: %v", core.ErrInternal, item.ID, err)
	}

	s.eventBus.PublishStockDeducted(item.ID, amount, newStock)
	return newStock, nil
}

// Restore adds amount back to an item's stock. A restoration that would push
// stock past MaxStock*1.5 is dropped for that item; the drop is surfaced as a
// warning and an audit event rather than an error.
func (s *InventoryService) Restore(ctx context.Context, itemID string, amount float64) (float64, *core.RestoreWarning, error) {
	if amount <= 0 {
		return 0, nil, fmt.Errorf("%w: restoration amount must be positive", core.ErrInvalidOrder)
	}

	lock := s.locks.get(itemID)
	lock.Lock()
	defer lock.Unlock()

	item, err := s.loadActive(ctx, itemID)
	if err != nil {
		return 0, nil, err
	}

	newStock, warning := restoredStock(item, amount)
	if warning != nil {
		s.eventBus.PublishRestoreDropped(item.ID, warning.Requested, warning.Applied)
		if warning.Applied == 0 {
			return item.CurrentStock, warning, nil
		}
	}

	if err := s.repo.UpdateStock(ctx, item.ID, newStock); err != nil {
		return 0, nil, fmt.Errorf("%w: failed to persist restoration for %s: %v", core.ErrInternal, item.ID, err)
	}

	s.eventBus.PublishStockRestored(item.ID, newStock-item.CurrentStock, newStock)
	return newStock, warning, nil
}

// restoredStock computes the post-restoration stock level. A restoration
// whose result would exceed the cap is dropped entirely for the item.
func restoredStock(item *core.InventoryItem, amount float64) (float64, *core.RestoreWarning) {
	newStock := item.CurrentStock + amount
	if newStock <= item.RestoreCap() {
		return newStock, nil
	}
	return item.CurrentStock, &core.RestoreWarning{
		ItemID:    item.ID,
		ItemName:  item.Name,
		Requested: amount,
		Applied:   0,
	}
}

// Adjust applies a signed manual correction. Unlike restorations, an
// adjustment that would leave stock negative or above MaxStock is rejected.
func (s *InventoryService) Adjust(ctx context.Context, itemID string, delta float64, reason, actorID string) (float64, error) {
	lock := s.locks.get(itemID)
	lock.Lock()
	defer lock.Unlock()

	item, err := s.loadActive(ctx, itemID)
	if err != nil {
		return 0, err
	}

	newStock := item.CurrentStock + delta
	if newStock < 0 || newStock > item.MaxStock {
		return 0, &core.AdjustmentError{
			ItemID:    item.ID,
			ItemName:  item.Name,
			Current:   item.CurrentStock,
			Delta:     delta,
			Resulting: newStock,
			MaxStock:  item.MaxStock,
		}
	}

	if err := s.repo.UpdateStock(ctx, item.ID, newStock); err != nil {
		return 0, fmt.Errorf("%w: failed to persist adjustment for %s: %v", core.ErrInternal, item.ID, err)
	}

	s.eventBus.PublishStockAdjusted(item.ID, delta, newStock, reason, actorID)
	return newStock, nil
}

// DeductForOrder resolves every line item's recipe, aggregates the required
// amount per ingredient across the whole order, and applies the batch
// all-or-nothing: if any ingredient is insufficient, no stock changes.
func (s *InventoryService) DeductForOrder(ctx context.Context, items []core.OrderItem) error {
	ids, amounts, units, err := s.aggregateRequirements(ctx, items)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	// Deterministic lock order prevents deadlock between concurrent
	// multi-ingredient orders.
	for _, id := range ids {
		lock := s.locks.get(id)
		lock.Lock()
		defer lock.Unlock()
	}

	loaded, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("%w: failed to load ingredients: %v", core.ErrInternal, err)
	}
	byID := make(map[string]*core.InventoryItem, len(loaded))
	for _, item := range loaded {
		byID[item.ID] = item
	}

	newStocks := make(map[string]float64, len(ids))
	for _, id := range ids {
		item, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: ingredient %s", core.ErrNotFound, id)
		}
		if !item.IsActive {
			return fmt.Errorf("%w: ingredient %q (%s)", core.ErrItemInactive, item.Name, item.ID)
		}
		if item.CurrentStock < amounts[id] {
			return &core.InsufficientStockError{
				ItemID:    item.ID,
				ItemName:  item.Name,
				Required:  amounts[id],
				Available: item.CurrentStock,
				Unit:      units[id],
			}
		}
		newStocks[id] = item.CurrentStock - amounts[id]
	}

	if err := s.repo.UpdateStockBatch(ctx, newStocks); err != nil {
		return fmt.Errorf("%w: failed to persist order deduction: %v", core.ErrInternal, err)
	}

	for _, id := range ids {
		s.eventBus.PublishStockDeducted(id, amounts[id], newStocks[id])
	}
	return nil
}

// RestoreForOrder reverses an order's deduction, aggregating per ingredient
// like DeductForOrder. Items whose restoration would exceed the cap are
// dropped and reported as warnings; the rest of the batch still applies.
func (s *InventoryService) RestoreForOrder(ctx context.Context, items []core.OrderItem) ([]core.RestoreWarning, error) {
	ids, amounts, _, err := s.aggregateRequirements(ctx, items)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	for _, id := range ids {
		lock := s.locks.get(id)
		lock.Lock()
		defer lock.Unlock()
	}

	loaded, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load ingredients: %v", core.ErrInternal, err)
	}
	byID := make(map[string]*core.InventoryItem, len(loaded))
	for _, item := range loaded {
		byID[item.ID] = item
	}

	var warnings []core.RestoreWarning
	newStocks := make(map[string]float64)
	for _, id := range ids {
		item, ok := byID[id]
		if !ok || !item.IsActive {
			// An ingredient deactivated since the order was created cannot
			// receive its restoration; skip it rather than failing the batch.
			log.Printf("inventory: skipping restoration for unavailable ingredient %s", id)
			continue
		}
		newStock, warning := restoredStock(item, amounts[id])
		if warning != nil {
			warnings = append(warnings, *warning)
			s.eventBus.PublishRestoreDropped(item.ID, warning.Requested, warning.Applied)
			continue
		}
		newStocks[id] = newStock
	}

	if len(newStocks) > 0 {
		if err := s.repo.UpdateStockBatch(ctx, newStocks); err != nil {
			return warnings, fmt.Errorf("%w: failed to persist order restoration: %v", core.ErrInternal, err)
		}
		for id, newStock := range newStocks {
			s.eventBus.PublishStockRestored(id, amounts[id], newStock)
		}
	}

	return warnings, nil
}

// aggregateRequirements resolves recipes for every line item and sums the
// required amount per ingredient, returning ingredient IDs in sorted order.
func (s *InventoryService) aggregateRequirements(ctx context.Context, items []core.OrderItem) ([]string, map[string]float64, map[string]string, error) {
	amounts := make(map[string]float64)
	units := make(map[string]string)

	for _, item := range items {
		requirements, err := s.recipes.RequiredIngredients(ctx, item.ProductID, item.Quantity)
		if err != nil {
			return nil, nil, nil, err
		}
		for _, req := range requirements {
			amounts[req.IngredientID] += req.Amount
			units[req.IngredientID] = req.Unit
		}
	}

	ids := make([]string, 0, len(amounts))
	for id := range amounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids, amounts, units, nil
}

// loadActive fetches an item and rejects missing or soft-deleted ones.
func (s *InventoryService) loadActive(ctx context.Context, itemID string) (*core.InventoryItem, error) {
	item, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.IsActive {
		return nil, fmt.Errorf("%w: %q (%s)", core.ErrItemInactive, item.Name, item.ID)
	}
	return item, nil
}

// GetLowStock returns active items at or below their minimum stock level.
func (s *InventoryService) GetLowStock(ctx context.Context) ([]*core.InventoryItem, error) {
	return s.repo.GetLowStock(ctx)
}

// GetOverstock returns active items at or above their maximum stock level.
func (s *InventoryService) GetOverstock(ctx context.Context) ([]*core.InventoryItem, error) {
	return s.repo.GetOverstock(ctx)
}

// GetExpiring returns active items whose expiry date falls within the window.
func (s *InventoryService) GetExpiring(ctx context.Context, within time.Duration) ([]*core.InventoryItem, error) {
	return s.repo.GetExpiring(ctx, within)
}

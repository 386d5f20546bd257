package service

import (
	"context"
	"sync"
	"testing"

	"github.com/dumu-tech/pearl-street-teahouse/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeduct(t *testing.T) {
	ctx := context.Background()

	t.Run("reduces stock", func(t *testing.T) {
		f := newFixture(activeItem("pearls", "Tapioca Pearls", 100, 10, 200))

		newStock, err := f.inventory.Deduct(ctx, "pearls", 30)
		require.NoError(t, err)
		assert.Equal(t, 70.0, newStock)
		assert.Equal(t, 70.0, f.inventoryRepo.stock("pearls"))
	})

	t.Run("insufficient stock leaves level unchanged", func(t *testing.T) {
		f := newFixture(activeItem("pearls", "Tapioca Pearls", 20, 10, 200))

		_, err := f.inventory.Deduct(ctx, "pearls", 25)
		require.Error(t, err)

		var stockErr *core.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, "pearls", stockErr.ItemID)
		assert.Equal(t, 25.0, stockErr.Required)
		assert.Equal(t, 20.0, stockErr.Available)
		assert.Equal(t, 20.0, f.inventoryRepo.stock("pearls"))
	})

	t.Run("exact stock is allowed", func(t *testing.T) {
		f := newFixture(activeItem("pearls", "Tapioca Pearls", 20, 10, 200))

		newStock, err := f.inventory.Deduct(ctx, "pearls", 20)
		require.NoError(t, err)
		assert.Equal(t, 0.0, newStock)
	})

	t.Run("inactive item is rejected", func(t *testing.T) {
		item := activeItem("pearls", "Tapioca Pearls", 100, 10, 200)
		item.IsActive = false
		f := newFixture(item)

		_, err := f.inventory.Deduct(ctx, "pearls", 10)
		assert.ErrorIs(t, err, core.ErrItemInactive)
	})

	t.Run("unknown item", func(t *testing.T) {
		f := newFixture()
		_, err := f.inventory.Deduct(ctx, "missing", 10)
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		f := newFixture(activeItem("pearls", "Tapioca Pearls", 100, 10, 200))
		_, err := f.inventory.Deduct(ctx, "pearls", 0)
		assert.ErrorIs(t, err, core.ErrInvalidOrder)
	})
}

func TestRestore(t *testing.T) {
	ctx := context.Background()

	t.Run("adds stock back", func(t *testing.T) {
		f := newFixture(activeItem("milk", "Whole Milk", 50, 10, 200))

		newStock, warning, err := f.inventory.Restore(ctx, "milk", 40)
		require.NoError(t, err)
		assert.Nil(t, warning)
		assert.Equal(t, 90.0, newStock)
	})

	t.Run("restore up to the cap is applied", func(t *testing.T) {
		// cap = 200 * 1.5 = 300
		f := newFixture(activeItem("milk", "Whole Milk", 250, 10, 200))

		newStock, warning, err := f.inventory.Restore(ctx, "milk", 50)
		require.NoError(t, err)
		assert.Nil(t, warning)
		assert.Equal(t, 300.0, newStock)
	})

	t.Run("restore past the cap is dropped entirely", func(t *testing.T) {
		f := newFixture(activeItem("milk", "Whole Milk", 250, 10, 200))

		newStock, warning, err := f.inventory.Restore(ctx, "milk", 60)
		require.NoError(t, err)
		require.NotNil(t, warning)
		assert.Equal(t, 60.0, warning.Requested)
		assert.Equal(t, 0.0, warning.Applied)
		assert.Equal(t, 250.0, newStock, "a dropped restoration must not change stock")
		assert.Equal(t, 250.0, f.inventoryRepo.stock("milk"))
	})
}

func TestAdjust(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		stock     float64
		delta     float64
		wantStock float64
		wantErr   bool
	}{
		{name: "positive delta", stock: 50, delta: 25, wantStock: 75},
		{name: "negative delta", stock: 50, delta: -25, wantStock: 25},
		{name: "to zero", stock: 50, delta: -50, wantStock: 0},
		{name: "to max", stock: 50, delta: 150, wantStock: 200},
		{name: "below zero rejected", stock: 50, delta: -51, wantErr: true},
		{name: "above max rejected", stock: 50, delta: 151, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(activeItem("sugar", "Cane Sugar Syrup", tt.stock, 10, 200))

			newStock, err := f.inventory.Adjust(ctx, "sugar", tt.delta, "stocktake", "staff-1")
			if tt.wantErr {
				var adjustErr *core.AdjustmentError
				require.ErrorAs(t, err, &adjustErr)
				assert.Equal(t, tt.stock, f.inventoryRepo.stock("sugar"), "rejected adjustment must not change stock")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStock, newStock)
		})
	}
}

func TestDeductForOrderAllOrNothing(t *testing.T) {
	ctx := context.Background()

	f := newFixture(
		activeItem("pearls", "Tapioca Pearls", 5000, 100, 10000),
		activeItem("tea", "Black Tea Leaves", 1000, 50, 2000),
	)
	// Both products consume pearls; combined requirement exceeds stock.
	f.addProduct("classic", "Classic Pearl Milk Tea", 5.50, edge("pearls", 2000), edge("tea", 12))
	f.addProduct("brown-sugar", "Brown Sugar Boba Latte", 6.50, edge("pearls", 4000))

	order := []core.OrderItem{
		{ProductID: "classic", Quantity: 1},
		{ProductID: "brown-sugar", Quantity: 1},
	}

	err := f.inventory.DeductForOrder(ctx, order)
	require.Error(t, err)

	var stockErr *core.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "pearls", stockErr.ItemID)
	assert.Equal(t, 6000.0, stockErr.Required)
	assert.Equal(t, 5000.0, stockErr.Available)

	// No partial deduction: every ingredient keeps its original level.
	assert.Equal(t, 5000.0, f.inventoryRepo.stock("pearls"))
	assert.Equal(t, 1000.0, f.inventoryRepo.stock("tea"))
}

func TestDeductForOrderAggregatesAcrossLines(t *testing.T) {
	ctx := context.Background()

	f := newFixture(
		activeItem("pearls", "Tapioca Pearls", 1000, 100, 10000),
		activeItem("milk", "Whole Milk", 1000, 100, 10000),
	)
	f.addProduct("classic", "Classic Pearl Milk Tea", 5.50, edge("pearls", 80), edge("milk", 150))

	order := []core.OrderItem{{ProductID: "classic", Quantity: 3}}

	require.NoError(t, f.inventory.DeductForOrder(ctx, order))
	assert.Equal(t, 1000.0-240, f.inventoryRepo.stock("pearls"))
	assert.Equal(t, 1000.0-450, f.inventoryRepo.stock("milk"))
}

func TestDeductForOrderUsagePercentage(t *testing.T) {
	ctx := context.Background()

	f := newFixture(activeItem("syrup", "Cane Sugar Syrup", 100, 10, 500))
	f.addProduct("classic", "Classic Pearl Milk Tea", 5.50, &core.Recipe{
		ID: "syrup-edge", IngredientID: "syrup",
		Quantity: 30, Unit: "ml", UsagePercentage: 50, IsRequired: true,
	})

	require.NoError(t, f.inventory.DeductForOrder(ctx, []core.OrderItem{{ProductID: "classic", Quantity: 2}}))
	// adjusted quantity 30 * 50% = 15 per unit, 30 for two units
	assert.Equal(t, 70.0, f.inventoryRepo.stock("syrup"))
}

func TestDeductForOrderProductWithoutRecipe(t *testing.T) {
	ctx := context.Background()

	f := newFixture()
	f.addProduct("gift-card", "Gift Card", 25.00)

	// No recipe means no inventory impact, not an error.
	require.NoError(t, f.inventory.DeductForOrder(ctx, []core.OrderItem{{ProductID: "gift-card", Quantity: 1}}))
}

func TestRestoreForOrderDropsOnlyCappedItems(t *testing.T) {
	ctx := context.Background()

	f := newFixture(
		activeItem("pearls", "Tapioca Pearls", 100, 10, 200),
		activeItem("milk", "Whole Milk", 295, 10, 200), // cap 300
	)
	f.addProduct("classic", "Classic Pearl Milk Tea", 5.50, edge("pearls", 50), edge("milk", 10))

	warnings, err := f.inventory.RestoreForOrder(ctx, []core.OrderItem{{ProductID: "classic", Quantity: 1}})
	require.NoError(t, err)

	require.Len(t, warnings, 1)
	assert.Equal(t, "milk", warnings[0].ItemID)
	assert.Equal(t, 10.0, warnings[0].Requested)
	assert.Equal(t, 0.0, warnings[0].Applied)

	// pearls restored, milk untouched
	assert.Equal(t, 150.0, f.inventoryRepo.stock("pearls"))
	assert.Equal(t, 295.0, f.inventoryRepo.stock("milk"))
}

func TestDeductConcurrentOrders(t *testing.T) {
	ctx := context.Background()

	f := newFixture(activeItem("pearls", "Tapioca Pearls", 1000, 10, 5000))
	f.addProduct("classic", "Classic Pearl Milk Tea", 5.50, edge("pearls", 10))

	order := []core.OrderItem{{ProductID: "classic", Quantity: 1}}

	var wg sync.WaitGroup
	errs := make([]error, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.inventory.DeductForOrder(ctx, order)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "order %d", i)
	}
	assert.Equal(t, 0.0, f.inventoryRepo.stock("pearls"), "100 concurrent deductions of 10 from 1000")
}

func TestDeductConcurrentOversubscribed(t *testing.T) {
	ctx := context.Background()

	// Only 5 of the 20 concurrent orders can be satisfied.
	f := newFixture(activeItem("matcha", "Matcha Powder", 50, 5, 500))
	f.addProduct("latte", "Matcha Oat Latte", 6.75, edge("matcha", 10))

	order := []core.OrderItem{{ProductID: "latte", Quantity: 1}}

	var wg sync.WaitGroup
	errs := make([]error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.inventory.DeductForOrder(ctx, order)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, core.IsInsufficientStock(err))
		}
	}
	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 0.0, f.inventoryRepo.stock("matcha"), "stock never goes negative")
}

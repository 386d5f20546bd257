package service

import (
	"context"
	"testing"

	"github.com/dumu-tech/pearl-street-teahouse/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequiredIngredients(t *testing.T) {
	ctx := context.Background()

	f := newFixture(
		activeItem("pearls", "Tapioca Pearls", 1000, 100, 5000),
		activeItem("syrup", "Cane Sugar Syrup", 500, 50, 2000),
	)
	f.addProduct("classic", "Classic Pearl Milk Tea", 5.50,
		edge("pearls", 80),
		&core.Recipe{
			ID: "syrup-edge", IngredientID: "syrup",
			Quantity: 30, Unit: "ml", UsagePercentage: 75, IsRequired: true,
		},
	)

	requirements, err := f.recipes.RequiredIngredients(ctx, "classic", 2)
	require.NoError(t, err)
	require.Len(t, requirements, 2)

	assert.Equal(t, "pearls", requirements[0].IngredientID)
	assert.Equal(t, 160.0, requirements[0].Amount)

	// 30 * 75% = 22.5 per unit
	assert.Equal(t, "syrup", requirements[1].IngredientID)
	assert.Equal(t, 45.0, requirements[1].Amount)
}

func TestRequiredIngredientsEmptyRecipe(t *testing.T) {
	f := newFixture()
	f.addProduct("gift-card", "Gift Card", 25.00)

	requirements, err := f.recipes.RequiredIngredients(context.Background(), "gift-card", 1)
	require.NoError(t, err)
	assert.Empty(t, requirements)
}

func TestRequiredIngredientsInvalidQuantity(t *testing.T) {
	f := newFixture()
	_, err := f.recipes.RequiredIngredients(context.Background(), "classic", 0)
	assert.ErrorIs(t, err, core.ErrInvalidOrder)
}

func TestRecipeComplexity(t *testing.T) {
	f := newFixture(
		activeItem("pearls", "Tapioca Pearls", 1000, 100, 5000),
		activeItem("tea", "Black Tea Leaves", 500, 50, 2000),
	)
	f.addProduct("classic", "Classic Pearl Milk Tea", 5.50, edge("pearls", 80), edge("tea", 12))
	f.addProduct("water", "Hot Water", 0.50)

	count, err := f.recipes.RecipeComplexity(context.Background(), "classic")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = f.recipes.RecipeComplexity(context.Background(), "water")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCheckAvailability(t *testing.T) {
	ctx := context.Background()

	t.Run("sufficient stock", func(t *testing.T) {
		f := newFixture(activeItem("pearls", "Tapioca Pearls", 1000, 100, 5000))
		f.addProduct("classic", "Classic Pearl Milk Tea", 5.50, edge("pearls", 80))

		report, err := f.recipes.CheckAvailability(ctx, "classic", 10)
		require.NoError(t, err)
		assert.True(t, report.Available)
		assert.Empty(t, report.Shortages)

		// Checking never mutates stock.
		assert.Equal(t, 1000.0, f.inventoryRepo.stock("pearls"))
	})

	t.Run("shortage reports amounts", func(t *testing.T) {
		f := newFixture(activeItem("pearls", "Tapioca Pearls", 100, 10, 5000))
		f.addProduct("classic", "Classic Pearl Milk Tea", 5.50, edge("pearls", 80))

		report, err := f.recipes.CheckAvailability(ctx, "classic", 2)
		require.NoError(t, err)
		assert.False(t, report.Available)
		require.Len(t, report.Shortages, 1)
		assert.Equal(t, "pearls", report.Shortages[0].IngredientID)
		assert.Equal(t, 160.0, report.Shortages[0].Required)
		assert.Equal(t, 100.0, report.Shortages[0].Available)
	})

	t.Run("inactive ingredient counts as zero stock", func(t *testing.T) {
		item := activeItem("pearls", "Tapioca Pearls", 1000, 100, 5000)
		item.IsActive = false
		f := newFixture(item)
		f.addProduct("classic", "Classic Pearl Milk Tea", 5.50, edge("pearls", 80))

		report, err := f.recipes.CheckAvailability(ctx, "classic", 1)
		require.NoError(t, err)
		assert.False(t, report.Available)
		require.Len(t, report.Shortages, 1)
		assert.Equal(t, 0.0, report.Shortages[0].Available)
	})

	t.Run("missing required ingredient is a shortage", func(t *testing.T) {
		f := newFixture()
		f.addProduct("classic", "Classic Pearl Milk Tea", 5.50, edge("ghost", 80))

		report, err := f.recipes.CheckAvailability(ctx, "classic", 1)
		require.NoError(t, err)
		assert.False(t, report.Available)
		require.Len(t, report.Shortages, 1)
		assert.Equal(t, "ghost", report.Shortages[0].IngredientID)
		assert.Equal(t, 0.0, report.Shortages[0].Available)
	})

	t.Run("missing optional ingredient is ignored", func(t *testing.T) {
		f := newFixture()
		f.addProduct("classic", "Classic Pearl Milk Tea", 5.50, &core.Recipe{
			ID: "ghost-edge", IngredientID: "ghost",
			Quantity: 80, Unit: "g", UsagePercentage: 100, IsRequired: false,
		})

		report, err := f.recipes.CheckAvailability(ctx, "classic", 1)
		require.NoError(t, err)
		assert.True(t, report.Available)
	})
}

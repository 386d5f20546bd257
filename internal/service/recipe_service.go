package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dumu-tech/pearl-street-teahouse/internal/core"
)

// RecipeService resolves a product and quantity into the ingredients it
// consumes. Recipes are maintained by catalog management; the engine only
// reads them.
type RecipeService struct {
	recipeRepo    core.RecipeRepository
	inventoryRepo core.InventoryRepository
}

// NewRecipeService creates a new recipe resolver
func NewRecipeService(recipeRepo core.RecipeRepository, inventoryRepo core.InventoryRepository) *RecipeService {
	return &RecipeService{
		recipeRepo:    recipeRepo,
		inventoryRepo: inventoryRepo,
	}
}

// RequiredIngredients maps a product and quantity to the ingredient amounts
// it consumes. A product with no recipe yields an empty list: it simply has
// no inventory impact.
func (s *RecipeService) RequiredIngredients(ctx context.Context, productID string, quantity int) ([]core.IngredientRequirement, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", core.ErrInvalidOrder)
	}

	recipes, err := s.recipeRepo.GetByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recipe for product %s: %w", productID, err)
	}

	requirements := make([]core.IngredientRequirement, 0, len(recipes))
	for _, recipe := range recipes {
		requirements = append(requirements, core.IngredientRequirement{
			IngredientID: recipe.IngredientID,
			Amount:       recipe.AdjustedQuantity() * float64(quantity),
			Unit:         recipe.Unit,
		})
	}

	return requirements, nil
}

// RecipeComplexity returns the number of recipe edges for a product, used by
// the production scheduler's wait-time estimate.
func (s *RecipeService) RecipeComplexity(ctx context.Context, productID string) (int, error) {
	recipes, err := s.recipeRepo.GetByProductID(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve recipe for product %s: %w", productID, err)
	}
	return len(recipes), nil
}

// CheckAvailability cross-references current stock against the product's
// recipe without mutating anything. Missing or inactive ingredients count as
// shortages when the recipe edge is required.
func (s *RecipeService) CheckAvailability(ctx context.Context, productID string, quantity int) (*core.AvailabilityReport, error) {
	requirements, err := s.RequiredIngredients(ctx, productID, quantity)
	if err != nil {
		return nil, err
	}

	report := &core.AvailabilityReport{
		ProductID: productID,
		Quantity:  quantity,
		Available: true,
	}

	recipes, err := s.recipeRepo.GetByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recipe for product %s: %w", productID, err)
	}
	required := make(map[string]bool, len(recipes))
	for _, recipe := range recipes {
		required[recipe.IngredientID] = recipe.IsRequired
	}

	for _, req := range requirements {
		item, err := s.inventoryRepo.GetByID(ctx, req.IngredientID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				if required[req.IngredientID] {
					report.Available = false
					report.Shortages = append(report.Shortages, core.Shortage{
						IngredientID: req.IngredientID,
						Required:     req.Amount,
						Available:    0,
						Unit:         req.Unit,
					})
				}
				continue
			}
			return nil, fmt.Errorf("failed to load ingredient %s: %w", req.IngredientID, err)
		}

		available := item.CurrentStock
		if !item.IsActive {
			available = 0
		}
		if available < req.Amount {
			report.Available = false
			report.Shortages = append(report.Shortages, core.Shortage{
				IngredientID:   item.ID,
				IngredientName: item.Name,
				Required:       req.Amount,
				Available:      available,
				Unit:           req.Unit,
			})
		}
	}

	return report, nil
}

package main

import (
	"context"
	"encoding/json"
	"log"

	pgrepo "github.com/dumu-tech/pearl-street-teahouse/internal/adapters/postgres"
	"github.com/dumu-tech/pearl-street-teahouse/internal/config"
	"github.com/dumu-tech/pearl-street-teahouse/internal/core"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// IngredientSeed represents an inventory item in the seed data JSON
type IngredientSeed struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Unit     string  `json:"unit"`
	Stock    float64 `json:"stock"`
	MinStock float64 `json:"min_stock"`
	MaxStock float64 `json:"max_stock"`
	UnitCost float64 `json:"unit_cost"`
}

// ProductSeed represents a menu product with its recipe in the seed data JSON
type ProductSeed struct {
	Name     string       `json:"name"`
	Price    float64      `json:"price"`
	Category string       `json:"category"`
	Recipe   []RecipeSeed `json:"recipe"`
}

// RecipeSeed links a product to an ingredient by name
type RecipeSeed struct {
	Ingredient string  `json:"ingredient"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
	Usage      float64 `json:"usage,omitempty"`
	Optional   bool    `json:"optional,omitempty"`
}

// IngredientData holds the inventory items to be seeded
var IngredientData = []byte(`[
  { "name": "Black Tea Leaves", "category": "Tea", "unit": "g", "stock": 5000, "min_stock": 500, "max_stock": 10000, "unit_cost": 0.04 },
  { "name": "Jasmine Green Tea Leaves", "category": "Tea", "unit": "g", "stock": 4000, "min_stock": 400, "max_stock": 8000, "unit_cost": 0.06 },
  { "name": "Oolong Tea Leaves", "category": "Tea", "unit": "g", "stock": 3000, "min_stock": 300, "max_stock": 6000, "unit_cost": 0.08 },
  { "name": "Tapioca Pearls", "category": "Topping", "unit": "g", "stock": 8000, "min_stock": 1000, "max_stock": 15000, "unit_cost": 0.01 },
  { "name": "Grass Jelly", "category": "Topping", "unit": "g", "stock": 3000, "min_stock": 500, "max_stock": 6000, "unit_cost": 0.02 },
  { "name": "Red Bean Paste", "category": "Topping", "unit": "g", "stock": 2500, "min_stock": 400, "max_stock": 5000, "unit_cost": 0.03 },
  { "name": "Popping Boba (Mango)", "category": "Topping", "unit": "g", "stock": 2000, "min_stock": 300, "max_stock": 4000, "unit_cost": 0.04 },
  { "name": "Whole Milk", "category": "Dairy", "unit": "ml", "stock": 20000, "min_stock": 3000, "max_stock": 40000, "unit_cost": 0.002 },
  { "name": "Oat Milk", "category": "Dairy", "unit": "ml", "stock": 10000, "min_stock": 2000, "max_stock": 20000, "unit_cost": 0.004 },
  { "name": "Condensed Milk", "category": "Dairy", "unit": "ml", "stock": 5000, "min_stock": 800, "max_stock": 10000, "unit_cost": 0.006 },
  { "name": "Cane Sugar Syrup", "category": "Sweetener", "unit": "ml", "stock": 8000, "min_stock": 1000, "max_stock": 15000, "unit_cost": 0.003 },
  { "name": "Brown Sugar Syrup", "category": "Sweetener", "unit": "ml", "stock": 6000, "min_stock": 800, "max_stock": 12000, "unit_cost": 0.005 },
  { "name": "Honey", "category": "Sweetener", "unit": "ml", "stock": 3000, "min_stock": 400, "max_stock": 6000, "unit_cost": 0.012 },
  { "name": "Taro Powder", "category": "Flavor", "unit": "g", "stock": 4000, "min_stock": 500, "max_stock": 8000, "unit_cost": 0.02 },
  { "name": "Matcha Powder", "category": "Flavor", "unit": "g", "stock": 2000, "min_stock": 300, "max_stock": 4000, "unit_cost": 0.15 },
  { "name": "Mango Puree", "category": "Flavor", "unit": "ml", "stock": 5000, "min_stock": 800, "max_stock": 10000, "unit_cost": 0.008 },
  { "name": "Passion Fruit Syrup", "category": "Flavor", "unit": "ml", "stock": 4000, "min_stock": 600, "max_stock": 8000, "unit_cost": 0.007 },
  { "name": "Lemon Juice", "category": "Flavor", "unit": "ml", "stock": 3000, "min_stock": 500, "max_stock": 6000, "unit_cost": 0.005 },
  { "name": "Ice", "category": "Base", "unit": "g", "stock": 50000, "min_stock": 5000, "max_stock": 100000, "unit_cost": 0.0002 },
  { "name": "Crystal Boba", "category": "Topping", "unit": "g", "stock": 1500, "min_stock": 300, "max_stock": 3000, "unit_cost": 0.05 }
]`)

// ProductData holds the menu products and their recipes to be seeded
var ProductData = []byte(`[
  {
    "name": "Classic Pearl Milk Tea", "price": 5.50, "category": "Milk Tea",
    "recipe": [
      { "ingredient": "Black Tea Leaves", "quantity": 12, "unit": "g" },
      { "ingredient": "Whole Milk", "quantity": 150, "unit": "ml" },
      { "ingredient": "Tapioca Pearls", "quantity": 80, "unit": "g" },
      { "ingredient": "Cane Sugar Syrup", "quantity": 30, "unit": "ml", "usage": 75 },
      { "ingredient": "Ice", "quantity": 120, "unit": "g", "optional": true }
    ]
  },
  {
    "name": "Brown Sugar Boba Latte", "price": 6.50, "category": "Milk Tea",
    "recipe": [
      { "ingredient": "Whole Milk", "quantity": 220, "unit": "ml" },
      { "ingredient": "Tapioca Pearls", "quantity": 100, "unit": "g" },
      { "ingredient": "Brown Sugar Syrup", "quantity": 45, "unit": "ml" },
      { "ingredient": "Ice", "quantity": 100, "unit": "g", "optional": true }
    ]
  },
  {
    "name": "Taro Milk Tea", "price": 6.00, "category": "Milk Tea",
    "recipe": [
      { "ingredient": "Jasmine Green Tea Leaves", "quantity": 10, "unit": "g" },
      { "ingredient": "Taro Powder", "quantity": 35, "unit": "g" },
      { "ingredient": "Whole Milk", "quantity": 160, "unit": "ml" },
      { "ingredient": "Tapioca Pearls", "quantity": 80, "unit": "g", "optional": true },
      { "ingredient": "Ice", "quantity": 120, "unit": "g", "optional": true }
    ]
  },
  {
    "name": "Matcha Oat Latte", "price": 6.75, "category": "Specialty",
    "recipe": [
      { "ingredient": "Matcha Powder", "quantity": 6, "unit": "g" },
      { "ingredient": "Oat Milk", "quantity": 220, "unit": "ml" },
      { "ingredient": "Honey", "quantity": 20, "unit": "ml", "usage": 80 },
      { "ingredient": "Ice", "quantity": 100, "unit": "g", "optional": true }
    ]
  },
  {
    "name": "Mango Passion Fruit Tea", "price": 5.75, "category": "Fruit Tea",
    "recipe": [
      { "ingredient": "Jasmine Green Tea Leaves", "quantity": 10, "unit": "g" },
      { "ingredient": "Mango Puree", "quantity": 60, "unit": "ml" },
      { "ingredient": "Passion Fruit Syrup", "quantity": 25, "unit": "ml" },
      { "ingredient": "Popping Boba (Mango)", "quantity": 60, "unit": "g", "optional": true },
      { "ingredient": "Ice", "quantity": 150, "unit": "g" }
    ]
  },
  {
    "name": "Honey Lemon Oolong", "price": 5.25, "category": "Fruit Tea",
    "recipe": [
      { "ingredient": "Oolong Tea Leaves", "quantity": 12, "unit": "g" },
      { "ingredient": "Honey", "quantity": 25, "unit": "ml" },
      { "ingredient": "Lemon Juice", "quantity": 20, "unit": "ml" },
      { "ingredient": "Ice", "quantity": 150, "unit": "g" }
    ]
  },
  {
    "name": "Grass Jelly Milk Tea", "price": 6.00, "category": "Milk Tea",
    "recipe": [
      { "ingredient": "Black Tea Leaves", "quantity": 12, "unit": "g" },
      { "ingredient": "Whole Milk", "quantity": 150, "unit": "ml" },
      { "ingredient": "Grass Jelly", "quantity": 90, "unit": "g" },
      { "ingredient": "Condensed Milk", "quantity": 20, "unit": "ml", "usage": 60 },
      { "ingredient": "Ice", "quantity": 120, "unit": "g", "optional": true }
    ]
  },
  {
    "name": "Red Bean Matcha Crush", "price": 7.00, "category": "Specialty",
    "recipe": [
      { "ingredient": "Matcha Powder", "quantity": 6, "unit": "g" },
      { "ingredient": "Whole Milk", "quantity": 180, "unit": "ml" },
      { "ingredient": "Red Bean Paste", "quantity": 70, "unit": "g" },
      { "ingredient": "Crystal Boba", "quantity": 50, "unit": "g", "optional": true },
      { "ingredient": "Ice", "quantity": 140, "unit": "g" }
    ]
  }
]`)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.DBURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()

	ingredientIDs := seedIngredients(ctx, db)
	seedProducts(ctx, db, ingredientIDs)
}

// seedIngredients upserts inventory items by name and returns name -> id
func seedIngredients(ctx context.Context, db *gorm.DB) map[string]string {
	var ingredients []IngredientSeed
	if err := json.Unmarshal(IngredientData, &ingredients); err != nil {
		log.Fatalf("Failed to parse ingredient data: %v", err)
	}

	ids := make(map[string]string, len(ingredients))
	inserted := 0
	updated := 0

	for _, ing := range ingredients {
		var existingID string
		result := db.WithContext(ctx).Table("inventory_items").
			Select("id").
			Where("name = ?", ing.Name).
			Limit(1).
			Scan(&existingID)

		if result.Error != nil && result.Error != gorm.ErrRecordNotFound {
			log.Fatalf("Failed to check existing ingredient %s: %v", ing.Name, result.Error)
		}

		if existingID != "" {
			if err := db.WithContext(ctx).Table("inventory_items").
				Where("id = ?", existingID).
				Updates(map[string]interface{}{
					"current_stock": ing.Stock,
					"min_stock":     ing.MinStock,
					"max_stock":     ing.MaxStock,
					"unit_cost":     ing.UnitCost,
					"updated_at":    gorm.Expr("CURRENT_TIMESTAMP"),
				}).Error; err != nil {
				log.Fatalf("Failed to update ingredient %s: %v", ing.Name, err)
			}
			ids[ing.Name] = existingID
			updated++
			continue
		}

		id := uuid.New().String()
		if err := db.WithContext(ctx).Table("inventory_items").Create(map[string]interface{}{
			"id":            id,
			"name":          ing.Name,
			"category":      ing.Category,
			"unit":          ing.Unit,
			"current_stock": ing.Stock,
			"min_stock":     ing.MinStock,
			"max_stock":     ing.MaxStock,
			"unit_cost":     ing.UnitCost,
			"is_active":     true,
		}).Error; err != nil {
			log.Fatalf("Failed to insert ingredient %s: %v", ing.Name, err)
		}
		ids[ing.Name] = id
		inserted++
	}

	log.Printf("Ingredients seeded: %d inserted, %d updated", inserted, updated)
	return ids
}

// seedProducts upserts products by name and rewrites their recipes
func seedProducts(ctx context.Context, db *gorm.DB, ingredientIDs map[string]string) {
	var products []ProductSeed
	if err := json.Unmarshal(ProductData, &products); err != nil {
		log.Fatalf("Failed to parse product data: %v", err)
	}

	inserted := 0
	updated := 0

	for _, prod := range products {
		var productID string
		result := db.WithContext(ctx).Table("products").
			Select("id").
			Where("name = ?", prod.Name).
			Limit(1).
			Scan(&productID)

		if result.Error != nil && result.Error != gorm.ErrRecordNotFound {
			log.Fatalf("Failed to check existing product %s: %v", prod.Name, result.Error)
		}

		if productID != "" {
			if err := db.WithContext(ctx).Table("products").
				Where("id = ?", productID).
				Updates(map[string]interface{}{
					"price":    prod.Price,
					"category": prod.Category,
				}).Error; err != nil {
				log.Fatalf("Failed to update product %s: %v", prod.Name, err)
			}
			updated++
		} else {
			productID = uuid.New().String()
			if err := db.WithContext(ctx).Table("products").Create(map[string]interface{}{
				"id":        productID,
				"name":      prod.Name,
				"price":     prod.Price,
				"category":  prod.Category,
				"is_active": true,
			}).Error; err != nil {
				log.Fatalf("Failed to insert product %s: %v", prod.Name, err)
			}
			inserted++
		}

		// Rewrite the recipe edges for this product
		if err := db.WithContext(ctx).
			Exec("DELETE FROM recipes WHERE product_id = ?", productID).Error; err != nil {
			log.Fatalf("Failed to clear recipe for %s: %v", prod.Name, err)
		}

		for i, edge := range prod.Recipe {
			ingredientID, ok := ingredientIDs[edge.Ingredient]
			if !ok {
				log.Fatalf("Product %s references unknown ingredient %s", prod.Name, edge.Ingredient)
			}

			usage := edge.Usage
			if usage == 0 {
				usage = 100
			}

			model := pgrepo.RecipeModelFromDomain(&core.Recipe{
				ID:              uuid.New().String(),
				ProductID:       productID,
				IngredientID:    ingredientID,
				Quantity:        edge.Quantity,
				Unit:            edge.Unit,
				UsagePercentage: usage,
				IsRequired:      !edge.Optional,
				SortOrder:       i,
			})
			if err := db.WithContext(ctx).Create(model).Error; err != nil {
				log.Fatalf("Failed to insert recipe edge for %s: %v", prod.Name, err)
			}
		}
	}

	log.Printf("Products seeded: %d inserted, %d updated", inserted, updated)
}

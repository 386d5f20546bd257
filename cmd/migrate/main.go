package main

import (
	"log"

	"github.com/dumu-tech/pearl-street-teahouse/internal/adapters/postgres"
	"github.com/dumu-tech/pearl-street-teahouse/internal/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	repo, err := postgres.NewRepository(cfg.DBURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("✓ Database connection established")

	db := repo.DB()

	// uuid_generate_v4 defaults require the extension
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		log.Fatalf("Failed to create uuid-ossp extension: %v", err)
	}

	if err := db.AutoMigrate(
		&postgres.InventoryItemModel{},
		&postgres.ProductModel{},
		&postgres.RecipeModel{},
		&postgres.OrderModel{},
		&postgres.OrderItemModel{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("✓ Migrations applied")
}

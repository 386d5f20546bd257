package main

import (
	"context"
	"log"
	"time"

	httpAdapter "github.com/dumu-tech/pearl-street-teahouse/internal/adapters/http"
	"github.com/dumu-tech/pearl-street-teahouse/internal/adapters/membership"
	"github.com/dumu-tech/pearl-street-teahouse/internal/adapters/postgres"
	redisRepo "github.com/dumu-tech/pearl-street-teahouse/internal/adapters/redis"
	"github.com/dumu-tech/pearl-street-teahouse/internal/config"
	"github.com/dumu-tech/pearl-street-teahouse/internal/events"
	"github.com/dumu-tech/pearl-street-teahouse/internal/middleware"
	"github.com/dumu-tech/pearl-street-teahouse/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to Redis
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to parse Redis URL: %v", err)
	}

	if cfg.RedisPassword != "" {
		redisOpts.Password = cfg.RedisPassword
	}

	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	// Ping Redis to verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	log.Println("✓ Redis connection established")

	// Connect to PostgreSQL
	dbpool, err := pgxpool.New(ctx, cfg.DBURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer dbpool.Close()

	// Ping PostgreSQL to verify connection
	if err := dbpool.Ping(ctx); err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	log.Println("✓ PostgreSQL connection established")

	// Initialize repositories using GORM
	postgresRepo, err := postgres.NewRepository(cfg.DBURL)
	if err != nil {
		log.Fatalf("Failed to initialize postgres repository: %v", err)
	}

	// Initialize Redis-backed queue cache
	queueCache := redisRepo.NewRepository(rdb)

	// Initialize event bus and audit log subscriber
	eventBus := events.NewEventBus()
	go func() {
		auditCh := eventBus.Subscribe(context.Background(), "audit-log")
		for event := range auditCh {
			log.Printf("[audit] %s: %+v", event.Type, event.Data)
		}
	}()

	// Membership client (external loyalty subsystem)
	membershipClient := membership.NewClient(cfg.MembershipBaseURL, cfg.MembershipToken)

	// Loyalty worker applies point deltas off the order path
	loyaltyWorker := service.NewLoyaltyWorker(membershipClient, eventBus, cfg.LoyaltyQueueSize)
	loyaltyWorker.Start()
	defer loyaltyWorker.Stop()

	// Shared per-order lock table for the order and production services
	orderLocks := service.NewOrderLocks()

	recipeService := service.NewRecipeService(
		postgresRepo.RecipeRepository(),
		postgresRepo.InventoryRepository(),
	)
	inventoryService := service.NewInventoryService(
		postgresRepo.InventoryRepository(),
		recipeService,
		eventBus,
	)
	pricingService := service.NewPricingService(service.DefaultDiscountConfig())
	orderService := service.NewOrderService(
		postgresRepo.OrderRepository(),
		postgresRepo.ProductRepository(),
		membershipClient,
		pricingService,
		inventoryService,
		loyaltyWorker,
		eventBus,
		queueCache,
		orderLocks,
	)
	productionService := service.NewProductionService(
		postgresRepo.OrderRepository(),
		recipeService,
		loyaltyWorker,
		eventBus,
		queueCache,
		orderLocks,
	)

	// Initialize HTTP Handler
	httpHandler := httpAdapter.NewHandler(
		orderService,
		productionService,
		inventoryService,
		recipeService,
	)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Pearl Street Teahouse API",
		ServerHeader: "Fiber",
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())

	// Health check route
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"project": "pearl-street-teahouse",
		})
	})

	// All API routes require an authenticated staff identity
	app.Use("/api", middleware.AuthMiddleware(cfg.JWTSecret))
	httpHandler.RegisterRoutes(app)

	log.Printf("Starting server on port %s (env: %s)", cfg.AppPort, cfg.AppEnv)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

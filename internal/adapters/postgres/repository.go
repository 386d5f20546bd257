package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dumu-tech/pearl-street-teahouse/internal/core"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Repository implements InventoryRepository, RecipeRepository,
// ProductRepository and OrderRepository using GORM with the pgx driver
type Repository struct {
	db                  *gorm.DB
	inventoryRepository *inventoryRepository
	recipeRepository    *recipeRepository
	productRepository   *productRepository
	orderRepository     *orderRepository
}

// inventoryRepository implements InventoryRepository methods
type inventoryRepository struct {
	*Repository
}

// recipeRepository implements RecipeRepository methods
type recipeRepository struct {
	*Repository
}

// productRepository implements ProductRepository methods
type productRepository struct {
	*Repository
}

// orderRepository implements OrderRepository methods
type orderRepository struct {
	*Repository
}

// NewRepository creates a new Postgres repository instance
func NewRepository(dbURL string) (*Repository, error) {
	db, err := gorm.Open(postgres.Open(dbURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repo := &Repository{db: db}
	repo.inventoryRepository = &inventoryRepository{Repository: repo}
	repo.recipeRepository = &recipeRepository{Repository: repo}
	repo.productRepository = &productRepository{Repository: repo}
	repo.orderRepository = &orderRepository{Repository: repo}
	return repo, nil
}

// DB exposes the underlying gorm handle for migrations and seeding.
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// InventoryRepository returns the InventoryRepository interface implementation
func (r *Repository) InventoryRepository() core.InventoryRepository {
	return r.inventoryRepository
}

// RecipeRepository returns the RecipeRepository interface implementation
func (r *Repository) RecipeRepository() core.RecipeRepository {
	return r.recipeRepository
}

// ProductRepository returns the ProductRepository interface implementation
func (r *Repository) ProductRepository() core.ProductRepository {
	return r.productRepository
}

// OrderRepository returns the OrderRepository interface implementation
func (r *Repository) OrderRepository() core.OrderRepository {
	return r.orderRepository
}

// InventoryRepository implementation

// GetByID retrieves an inventory item by its ID
func (r *inventoryRepository) GetByID(ctx context.Context, id string) (*core.InventoryItem, error) {
	var itemModel InventoryItemModel
	if err := r.db.WithContext(ctx).Table("inventory_items").Where("id = ?", id).First(&itemModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("inventory item %s: %w", id, core.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get inventory item: %w", err)
	}
	return itemModel.ToDomain(), nil
}

// GetByIDs retrieves multiple inventory items in one query
func (r *inventoryRepository) GetByIDs(ctx context.Context, ids []string) ([]*core.InventoryItem, error) {
	var itemModels []InventoryItemModel
	if err := r.db.WithContext(ctx).Table("inventory_items").
		Where("id IN ?", ids).
		Find(&itemModels).Error; err != nil {
		return nil, fmt.Errorf("failed to get inventory items: %w", err)
	}

	items := make([]*core.InventoryItem, len(itemModels))
	for i, im := range itemModels {
		items[i] = im.ToDomain()
	}
	return items, nil
}

// GetAll retrieves all active inventory items
func (r *inventoryRepository) GetAll(ctx context.Context) ([]*core.InventoryItem, error) {
	var itemModels []InventoryItemModel
	if err := r.db.WithContext(ctx).Table("inventory_items").
		Where("is_active = ?", true).
		Order("category, name").
		Find(&itemModels).Error; err != nil {
		return nil, fmt.Errorf("failed to get inventory items: %w", err)
	}

	items := make([]*core.InventoryItem, len(itemModels))
	for i, im := range itemModels {
		items[i] = im.ToDomain()
	}
	return items, nil
}

// Create persists a new inventory item
func (r *inventoryRepository) Create(ctx context.Context, item *core.InventoryItem) error {
	itemModel := InventoryItemModelFromDomain(item)
	if err := r.db.WithContext(ctx).Table("inventory_items").Create(itemModel).Error; err != nil {
		return fmt.Errorf("failed to create inventory item: %w", err)
	}
	return nil
}

// UpdateStock writes a new stock level for one item
func (r *inventoryRepository) UpdateStock(ctx context.Context, id string, newStock float64) error {
	result := r.db.WithContext(ctx).Table("inventory_items").
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_stock": newStock,
			"updated_at":    gorm.Expr("CURRENT_TIMESTAMP"),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("inventory item %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// UpdateStockBatch applies every stock write in a single transaction so a
// multi-ingredient deduction is all-or-nothing at the storage layer too.
func (r *inventoryRepository) UpdateStockBatch(ctx context.Context, newStocks map[string]float64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, newStock := range newStocks {
			result := tx.Table("inventory_items").
				Where("id = ?", id).
				Updates(map[string]interface{}{
					"current_stock": newStock,
					"updated_at":    gorm.Expr("CURRENT_TIMESTAMP"),
				})
			if result.Error != nil {
				return fmt.Errorf("failed to update stock for %s: %w", id, result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("inventory item %s: %w", id, core.ErrNotFound)
			}
		}
		return nil
	})
}

// GetLowStock retrieves active items at or below their minimum level
func (r *inventoryRepository) GetLowStock(ctx context.Context) ([]*core.InventoryItem, error) {
	var itemModels []InventoryItemModel
	if err := r.db.WithContext(ctx).Table("inventory_items").
		Where("is_active = ? AND current_stock <= min_stock", true).
		Order("current_stock / NULLIF(min_stock, 0)").
		Find(&itemModels).Error; err != nil {
		return nil, fmt.Errorf("failed to get low stock items: %w", err)
	}

	items := make([]*core.InventoryItem, len(itemModels))
	for i, im := range itemModels {
		items[i] = im.ToDomain()
	}
	return items, nil
}

// GetOverstock retrieves active items at or above their maximum level
func (r *inventoryRepository) GetOverstock(ctx context.Context) ([]*core.InventoryItem, error) {
	var itemModels []InventoryItemModel
	if err := r.db.WithContext(ctx).Table("inventory_items").
		Where("is_active = ? AND current_stock >= max_stock", true).
		Order("name").
		Find(&itemModels).Error; err != nil {
		return nil, fmt.Errorf("failed to get overstock items: %w", err)
	}

	items := make([]*core.InventoryItem, len(itemModels))
	for i, im := range itemModels {
		items[i] = im.ToDomain()
	}
	return items, nil
}

// GetExpiring retrieves active items expiring within the window
func (r *inventoryRepository) GetExpiring(ctx context.Context, within time.Duration) ([]*core.InventoryItem, error) {
	cutoff := time.Now().Add(within)
	var itemModels []InventoryItemModel
	if err := r.db.WithContext(ctx).Table("inventory_items").
		Where("is_active = ? AND expiry_date IS NOT NULL AND expiry_date <= ?", true, cutoff).
		Order("expiry_date").
		Find(&itemModels).Error; err != nil {
		return nil, fmt.Errorf("failed to get expiring items: %w", err)
	}

	items := make([]*core.InventoryItem, len(itemModels))
	for i, im := range itemModels {
		items[i] = im.ToDomain()
	}
	return items, nil
}

// RecipeRepository implementation

// GetByProductID retrieves a product's recipe edges in their defined order
func (r *recipeRepository) GetByProductID(ctx context.Context, productID string) ([]*core.Recipe, error) {
	var recipeModels []RecipeModel
	if err := r.db.WithContext(ctx).Table("recipes").
		Where("product_id = ?", productID).
		Order("sort_order, id").
		Find(&recipeModels).Error; err != nil {
		return nil, fmt.Errorf("failed to get recipes for product %s: %w", productID, err)
	}

	recipes := make([]*core.Recipe, len(recipeModels))
	for i, rm := range recipeModels {
		recipes[i] = rm.ToDomain()
	}
	return recipes, nil
}

// ProductRepository implementation

// GetByID retrieves a product by its ID
func (r *productRepository) GetByID(ctx context.Context, id string) (*core.Product, error) {
	var productModel ProductModel
	if err := r.db.WithContext(ctx).Table("products").Where("id = ?", id).First(&productModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %s: %w", id, core.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return productModel.ToDomain(), nil
}

// OrderRepository implementation

// Create persists a new order with its items in a transaction
func (r *orderRepository) Create(ctx context.Context, order *core.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orderModel := OrderModelFromDomain(order)
		if err := tx.Table("orders").Create(orderModel).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, item := range order.Items {
			itemModel := OrderItemModelFromDomain(&item)
			itemModel.OrderID = orderModel.ID
			if err := tx.Table("order_items").Create(itemModel).Error; err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
		}

		return nil
	})
}

// fetchOrderItems retrieves the line items for one order
func (r *orderRepository) fetchOrderItems(ctx context.Context, orderID string) ([]core.OrderItem, error) {
	var itemModels []OrderItemModel
	if err := r.db.WithContext(ctx).Table("order_items").
		Where("order_id = ?", orderID).
		Find(&itemModels).Error; err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}

	items := make([]core.OrderItem, len(itemModels))
	for i, im := range itemModels {
		items[i] = *im.ToDomain()
	}
	return items, nil
}

// GetByID retrieves an order by its ID with all items
func (r *orderRepository) GetByID(ctx context.Context, id string) (*core.Order, error) {
	var orderModel OrderModel
	if err := r.db.WithContext(ctx).Table("orders").Where("id = ?", id).First(&orderModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s: %w", id, core.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	items, err := r.fetchOrderItems(ctx, id)
	if err != nil {
		return nil, err
	}

	order := orderModel.ToDomain()
	order.Items = items
	return order, nil
}

// Update persists the mutable fields of an order. Line items are immutable
// after creation and are never rewritten here.
func (r *orderRepository) Update(ctx context.Context, order *core.Order) error {
	orderModel := OrderModelFromDomain(order)
	result := r.db.WithContext(ctx).Table("orders").
		Where("id = ?", order.ID).
		Updates(map[string]interface{}{
			"status":              orderModel.Status,
			"production_stage":    orderModel.ProductionStage,
			"priority":            orderModel.Priority,
			"assigned_to":         orderModel.AssignedTo,
			"estimated_wait_time": orderModel.EstimatedWaitTime,
			"actual_wait_time":    orderModel.ActualWaitTime,
			"notes":               orderModel.Notes,
			"quality_notes":       orderModel.QualityNotes,
			"rating":              orderModel.Rating,
			"making_started_at":   orderModel.MakingStartedAt,
			"making_completed_at": orderModel.MakingCompletedAt,
			"ready_at":            orderModel.ReadyAt,
			"completed_at":        orderModel.CompletedAt,
			"updated_at":          gorm.Expr("CURRENT_TIMESTAMP"),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update order: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("order %s: %w", order.ID, core.ErrNotFound)
	}
	return nil
}

// GetActive retrieves all orders not yet completed or cancelled
func (r *orderRepository) GetActive(ctx context.Context) ([]*core.Order, error) {
	terminal := []string{string(core.OrderStatusCompleted), string(core.OrderStatusCancelled)}

	var orderModels []OrderModel
	if err := r.db.WithContext(ctx).Table("orders").
		Where("status NOT IN ?", terminal).
		Order("created_at").
		Find(&orderModels).Error; err != nil {
		return nil, fmt.Errorf("failed to get active orders: %w", err)
	}

	orders := make([]*core.Order, len(orderModels))
	for i, om := range orderModels {
		order := om.ToDomain()

		items, err := r.fetchOrderItems(ctx, om.ID)
		if err != nil {
			return nil, err
		}
		order.Items = items

		orders[i] = order
	}

	return orders, nil
}

// Database Models (with GORM tags)

// InventoryItemModel represents the inventory_items table structure
type InventoryItemModel struct {
	ID           string       `gorm:"column:id;type:uuid;primaryKey;default:uuid_generate_v4()"`
	Name         string       `gorm:"column:name;type:varchar(255);not null"`
	Category     string       `gorm:"column:category;type:varchar(100)"`
	Unit         string       `gorm:"column:unit;type:varchar(20);not null"`
	CurrentStock float64      `gorm:"column:current_stock;type:decimal(12,3);not null;default:0"`
	MinStock     float64      `gorm:"column:min_stock;type:decimal(12,3);not null;default:0"`
	MaxStock     float64      `gorm:"column:max_stock;type:decimal(12,3);not null;default:0"`
	UnitCost     float64      `gorm:"column:unit_cost;type:decimal(10,2);not null;default:0"`
	ExpiryDate   sql.NullTime `gorm:"column:expiry_date;type:timestamp"`
	IsActive     bool         `gorm:"column:is_active;type:boolean;not null;default:true"`
	CreatedAt    time.Time    `gorm:"column:created_at;type:timestamp;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time    `gorm:"column:updated_at;type:timestamp;not null;default:CURRENT_TIMESTAMP"`
}

func (InventoryItemModel) TableName() string {
	return "inventory_items"
}

// ToDomain converts InventoryItemModel to core.InventoryItem
func (m *InventoryItemModel) ToDomain() *core.InventoryItem {
	item := &core.InventoryItem{
		ID:           m.ID,
		Name:         m.Name,
		Category:     m.Category,
		Unit:         m.Unit,
		CurrentStock: m.CurrentStock,
		MinStock:     m.MinStock,
		MaxStock:     m.MaxStock,
		UnitCost:     m.UnitCost,
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}

	if m.ExpiryDate.Valid {
		t := m.ExpiryDate.Time
		item.ExpiryDate = &t
	}

	return item
}

// InventoryItemModelFromDomain creates InventoryItemModel from core.InventoryItem
func InventoryItemModelFromDomain(item *core.InventoryItem) *InventoryItemModel {
	expiry := sql.NullTime{}
	if item.ExpiryDate != nil {
		expiry = sql.NullTime{Time: *item.ExpiryDate, Valid: true}
	}

	return &InventoryItemModel{
		ID:           item.ID,
		Name:         item.Name,
		Category:     item.Category,
		Unit:         item.Unit,
		CurrentStock: item.CurrentStock,
		MinStock:     item.MinStock,
		MaxStock:     item.MaxStock,
		UnitCost:     item.UnitCost,
		ExpiryDate:   expiry,
		IsActive:     item.IsActive,
		CreatedAt:    item.CreatedAt,
	}
}

// RecipeModel represents the recipes table structure
type RecipeModel struct {
	ID              string  `gorm:"column:id;type:uuid;primaryKey;default:uuid_generate_v4()"`
	ProductID       string  `gorm:"column:product_id;type:uuid;not null;index"`
	IngredientID    string  `gorm:"column:ingredient_id;type:uuid;not null;index"`
	Quantity        float64 `gorm:"column:quantity;type:decimal(12,3);not null"`
	Unit            string  `gorm:"column:unit;type:varchar(20);not null"`
	UsagePercentage float64 `gorm:"column:usage_percentage;type:decimal(5,2);not null;default:100"`
	IsRequired      bool    `gorm:"column:is_required;type:boolean;not null;default:true"`
	SortOrder       int     `gorm:"column:sort_order;type:integer;not null;default:0"`
}

func (RecipeModel) TableName() string {
	return "recipes"
}

// ToDomain converts RecipeModel to core.Recipe
func (m *RecipeModel) ToDomain() *core.Recipe {
	return &core.Recipe{
		ID:              m.ID,
		ProductID:       m.ProductID,
		IngredientID:    m.IngredientID,
		Quantity:        m.Quantity,
		Unit:            m.Unit,
		UsagePercentage: m.UsagePercentage,
		IsRequired:      m.IsRequired,
		SortOrder:       m.SortOrder,
	}
}

// RecipeModelFromDomain creates RecipeModel from core.Recipe
func RecipeModelFromDomain(recipe *core.Recipe) *RecipeModel {
	return &RecipeModel{
		ID:              recipe.ID,
		ProductID:       recipe.ProductID,
		IngredientID:    recipe.IngredientID,
		Quantity:        recipe.Quantity,
		Unit:            recipe.Unit,
		UsagePercentage: recipe.UsagePercentage,
		IsRequired:      recipe.IsRequired,
		SortOrder:       recipe.SortOrder,
	}
}

// ProductModel represents the products table structure
type ProductModel struct {
	ID       string  `gorm:"column:id;type:uuid;primaryKey;default:uuid_generate_v4()"`
	Name     string  `gorm:"column:name;type:varchar(255);not null"`
	Price    float64 `gorm:"column:price;type:decimal(10,2);not null"`
	Category string  `gorm:"column:category;type:varchar(100);not null"`
	IsActive bool    `gorm:"column:is_active;type:boolean;not null;default:true"`
}

func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts ProductModel to core.Product
func (m *ProductModel) ToDomain() *core.Product {
	return &core.Product{
		ID:       m.ID,
		Name:     m.Name,
		Price:    m.Price,
		Category: m.Category,
		IsActive: m.IsActive,
	}
}

// OrderModel represents the orders table structure
type OrderModel struct {
	ID                string         `gorm:"column:id;type:uuid;primaryKey;default:uuid_generate_v4()"`
	OrderNumber       string         `gorm:"column:order_number;type:varchar(40);not null;uniqueIndex"`
	CustomerID        sql.NullString `gorm:"column:customer_id;type:uuid"`
	StaffID           string         `gorm:"column:staff_id;type:uuid;not null"`
	TotalAmount       float64        `gorm:"column:total_amount;type:decimal(10,2);not null"`
	DiscountAmount    float64        `gorm:"column:discount_amount;type:decimal(10,2);not null;default:0"`
	FinalAmount       float64        `gorm:"column:final_amount;type:decimal(10,2);not null"`
	PointsUsed        int            `gorm:"column:points_used;type:integer;not null;default:0"`
	PointsEarned      int            `gorm:"column:points_earned;type:integer;not null;default:0"`
	Status            string         `gorm:"column:status;type:varchar(20);not null;default:'pending';index"`
	ProductionStage   string         `gorm:"column:production_stage;type:varchar(30);not null;default:'not_started'"`
	Priority          string         `gorm:"column:priority;type:varchar(10);not null;default:'normal'"`
	AssignedTo        sql.NullString `gorm:"column:assigned_to;type:uuid"`
	EstimatedWaitTime int            `gorm:"column:estimated_wait_time;type:integer;not null;default:0"`
	ActualWaitTime    int            `gorm:"column:actual_wait_time;type:integer;not null;default:0"`
	Notes             string         `gorm:"column:notes;type:text"`
	QualityNotes      string         `gorm:"column:quality_notes;type:text"`
	Rating            int            `gorm:"column:rating;type:integer;not null;default:0"`
	MakingStartedAt   sql.NullTime   `gorm:"column:making_started_at;type:timestamp"`
	MakingCompletedAt sql.NullTime   `gorm:"column:making_completed_at;type:timestamp"`
	ReadyAt           sql.NullTime   `gorm:"column:ready_at;type:timestamp"`
	CompletedAt       sql.NullTime   `gorm:"column:completed_at;type:timestamp"`
	CreatedAt         time.Time      `gorm:"column:created_at;type:timestamp;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time      `gorm:"column:updated_at;type:timestamp;not null;default:CURRENT_TIMESTAMP"`
}

func (OrderModel) TableName() string {
	return "orders"
}

// OrderModelFromDomain creates OrderModel from core.Order
func OrderModelFromDomain(order *core.Order) *OrderModel {
	return &OrderModel{
		ID:                order.ID,
		OrderNumber:       order.OrderNumber,
		CustomerID:        nullString(order.CustomerID),
		StaffID:           order.StaffID,
		TotalAmount:       order.TotalAmount,
		DiscountAmount:    order.DiscountAmount,
		FinalAmount:       order.FinalAmount,
		PointsUsed:        order.PointsUsed,
		PointsEarned:      order.PointsEarned,
		Status:            string(order.Status),
		ProductionStage:   string(order.ProductionStage),
		Priority:          string(order.Priority),
		AssignedTo:        nullString(order.AssignedTo),
		EstimatedWaitTime: order.EstimatedWaitTime,
		ActualWaitTime:    order.ActualWaitTime,
		Notes:             order.Notes,
		QualityNotes:      order.QualityNotes,
		Rating:            order.Rating,
		MakingStartedAt:   nullTime(order.MakingStartedAt),
		MakingCompletedAt: nullTime(order.MakingCompletedAt),
		ReadyAt:           nullTime(order.ReadyAt),
		CompletedAt:       nullTime(order.CompletedAt),
		CreatedAt:         order.CreatedAt,
	}
}

// ToDomain converts OrderModel to core.Order
func (m *OrderModel) ToDomain() *core.Order {
	return &core.Order{
		ID:                m.ID,
		OrderNumber:       m.OrderNumber,
		CustomerID:        stringValue(m.CustomerID),
		StaffID:           m.StaffID,
		TotalAmount:       m.TotalAmount,
		DiscountAmount:    m.DiscountAmount,
		FinalAmount:       m.FinalAmount,
		PointsUsed:        m.PointsUsed,
		PointsEarned:      m.PointsEarned,
		Status:            core.OrderStatus(m.Status),
		ProductionStage:   core.ProductionStage(m.ProductionStage),
		Priority:          core.OrderPriority(m.Priority),
		AssignedTo:        stringValue(m.AssignedTo),
		EstimatedWaitTime: m.EstimatedWaitTime,
		ActualWaitTime:    m.ActualWaitTime,
		Notes:             m.Notes,
		QualityNotes:      m.QualityNotes,
		Rating:            m.Rating,
		MakingStartedAt:   timePtr(m.MakingStartedAt),
		MakingCompletedAt: timePtr(m.MakingCompletedAt),
		ReadyAt:           timePtr(m.ReadyAt),
		CompletedAt:       timePtr(m.CompletedAt),
		CreatedAt:         m.CreatedAt,
		Items:             []core.OrderItem{}, // Populated separately
	}
}

// OrderItemModel represents the order_items table structure
type OrderItemModel struct {
	ID          string  `gorm:"column:id;type:uuid;primaryKey;default:uuid_generate_v4()"`
	OrderID     string  `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID   string  `gorm:"column:product_id;type:uuid;not null"`
	ProductName string  `gorm:"column:product_name;type:varchar(255);not null"`
	UnitPrice   float64 `gorm:"column:unit_price;type:decimal(10,2);not null"`
	Quantity    int     `gorm:"column:quantity;type:integer;not null"`
	Subtotal    float64 `gorm:"column:subtotal;type:decimal(10,2);not null"`
}

func (OrderItemModel) TableName() string {
	return "order_items"
}

// OrderItemModelFromDomain creates OrderItemModel from core.OrderItem
func OrderItemModelFromDomain(item *core.OrderItem) *OrderItemModel {
	return &OrderItemModel{
		ID:          item.ID,
		OrderID:     item.OrderID,
		ProductID:   item.ProductID,
		ProductName: item.ProductName,
		UnitPrice:   item.UnitPrice,
		Quantity:    item.Quantity,
		Subtotal:    item.Subtotal,
	}
}

// ToDomain converts OrderItemModel to core.OrderItem
func (m *OrderItemModel) ToDomain() *core.OrderItem {
	return &core.OrderItem{
		ID:          m.ID,
		OrderID:     m.OrderID,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		UnitPrice:   m.UnitPrice,
		Quantity:    m.Quantity,
		Subtotal:    m.Subtotal,
	}
}

func nullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func stringValue(value sql.NullString) string {
	if value.Valid {
		return value.String
	}
	return ""
}

func nullTime(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *value, Valid: true}
}

func timePtr(value sql.NullTime) *time.Time {
	if value.Valid {
		t := value.Time
		return &t
	}
	return nil
}

package http

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/dumu-tech/pearl-street-teahouse/internal/core"
	"github.com/dumu-tech/pearl-street-teahouse/internal/service"
	"github.com/gofiber/fiber/v2"
)

// Handler exposes the order, production and inventory operations over HTTP
type Handler struct {
	orders     *service.OrderService
	production *service.ProductionService
	inventory  *service.InventoryService
	recipes    *service.RecipeService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	orders *service.OrderService,
	production *service.ProductionService,
	inventory *service.InventoryService,
	recipes *service.RecipeService,
) *Handler {
	return &Handler{
		orders:     orders,
		production: production,
		inventory:  inventory,
		recipes:    recipes,
	}
}

// RegisterRoutes mounts all API routes on the app
func (h *Handler) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	orders := api.Group("/orders")
	orders.Post("/", h.CreateOrder)
	orders.Get("/:id", h.GetOrder)
	orders.Patch("/:id/status", h.UpdateOrderStatus)
	orders.Post("/:id/cancel", h.CancelOrder)

	production := api.Group("/production")
	production.Post("/orders/:id/start", h.StartProduction)
	production.Post("/orders/:id/advance", h.AdvanceStage)
	production.Post("/orders/:id/complete", h.CompleteOrder)
	production.Post("/orders/:id/assign", h.AssignOrder)
	production.Post("/orders/:id/priority", h.SetPriority)
	production.Post("/batch-start", h.BatchStart)
	production.Get("/queue", h.GetQueue)

	inventory := api.Group("/inventory")
	inventory.Post("/:id/adjust", h.AdjustStock)
	inventory.Get("/low-stock", h.GetLowStock)
	inventory.Get("/overstock", h.GetOverstock)
	inventory.Get("/expiring", h.GetExpiring)
	inventory.Get("/report", h.InventoryReport)

	api.Get("/products/:id/availability", h.CheckAvailability)
}

// CreateOrder handles POST /api/v1/orders
func (h *Handler) CreateOrder(c *fiber.Ctx) error {
	var req service.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.StaffID == "" {
		req.StaffID = staffIDFromContext(c)
	}

	order, err := h.orders.CreateOrder(c.Context(), req)
	if err != nil {
		return sendError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(order)
}

// GetOrder handles GET /api/v1/orders/:id
func (h *Handler) GetOrder(c *fiber.Ctx) error {
	order, err := h.orders.GetOrder(c.Context(), c.Params("id"))
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(order)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus handles PATCH /api/v1/orders/:id/status
func (h *Handler) UpdateOrderStatus(c *fiber.Ctx) error {
	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Status == "" {
		return badRequest(c, "status is required")
	}

	order, err := h.orders.UpdateStatus(c.Context(), c.Params("id"), core.OrderStatus(req.Status))
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(order)
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

// CancelOrder handles POST /api/v1/orders/:id/cancel
func (h *Handler) CancelOrder(c *fiber.Ctx) error {
	var req cancelOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	order, err := h.orders.CancelOrder(c.Context(), c.Params("id"), req.Reason)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(order)
}

type startProductionRequest struct {
	StaffID string `json:"staff_id"`
}

// StartProduction handles POST /api/v1/production/orders/:id/start
func (h *Handler) StartProduction(c *fiber.Ctx) error {
	var req startProductionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.StaffID == "" {
		req.StaffID = staffIDFromContext(c)
	}

	order, err := h.production.StartProduction(c.Context(), c.Params("id"), req.StaffID)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(order)
}

type advanceStageRequest struct {
	Stage string `json:"stage"`
	Notes string `json:"notes,omitempty"`
}

// AdvanceStage handles POST /api/v1/production/orders/:id/advance
func (h *Handler) AdvanceStage(c *fiber.Ctx) error {
	var req advanceStageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Stage == "" {
		return badRequest(c, "stage is required")
	}

	order, err := h.production.AdvanceStage(c.Context(), c.Params("id"), core.ProductionStage(req.Stage), req.Notes)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(order)
}

type completeOrderRequest struct {
	QualityNotes string `json:"quality_notes,omitempty"`
	Rating       int    `json:"rating,omitempty"`
}

// CompleteOrder handles POST /api/v1/production/orders/:id/complete
func (h *Handler) CompleteOrder(c *fiber.Ctx) error {
	var req completeOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	order, err := h.production.CompleteOrder(c.Context(), c.Params("id"), req.QualityNotes, req.Rating)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(order)
}

type assignOrderRequest struct {
	StaffID string `json:"staff_id"`
}

// AssignOrder handles POST /api/v1/production/orders/:id/assign
func (h *Handler) AssignOrder(c *fiber.Ctx) error {
	var req assignOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.StaffID == "" {
		return badRequest(c, "staff_id is required")
	}

	if err := h.production.AssignOrder(c.Context(), c.Params("id"), req.StaffID); err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{"status": "assigned"})
}

type setPriorityRequest struct {
	Priority string `json:"priority"`
}

// SetPriority handles POST /api/v1/production/orders/:id/priority
func (h *Handler) SetPriority(c *fiber.Ctx) error {
	var req setPriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := h.production.SetPriority(c.Context(), c.Params("id"), core.OrderPriority(req.Priority)); err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{"status": "updated"})
}

type batchStartRequest struct {
	OrderIDs []string `json:"order_ids"`
	StaffID  string   `json:"staff_id"`
}

// BatchStart handles POST /api/v1/production/batch-start
func (h *Handler) BatchStart(c *fiber.Ctx) error {
	var req batchStartRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if len(req.OrderIDs) == 0 {
		return badRequest(c, "order_ids is required")
	}
	if req.StaffID == "" {
		req.StaffID = staffIDFromContext(c)
	}

	result := h.production.BatchStart(c.Context(), req.OrderIDs, req.StaffID)
	return c.JSON(result)
}

// GetQueue handles GET /api/v1/production/queue
func (h *Handler) GetQueue(c *fiber.Ctx) error {
	queue, err := h.production.GetQueue(c.Context())
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(queue)
}

type adjustStockRequest struct {
	Delta  float64 `json:"delta"`
	Reason string  `json:"reason"`
}

// AdjustStock handles POST /api/v1/inventory/:id/adjust
func (h *Handler) AdjustStock(c *fiber.Ctx) error {
	var req adjustStockRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	newStock, err := h.inventory.Adjust(c.Context(), c.Params("id"), req.Delta, req.Reason, staffIDFromContext(c))
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{"item_id": c.Params("id"), "current_stock": newStock})
}

// GetLowStock handles GET /api/v1/inventory/low-stock
func (h *Handler) GetLowStock(c *fiber.Ctx) error {
	items, err := h.inventory.GetLowStock(c.Context())
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(items)
}

// GetOverstock handles GET /api/v1/inventory/overstock
func (h *Handler) GetOverstock(c *fiber.Ctx) error {
	items, err := h.inventory.GetOverstock(c.Context())
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(items)
}

// GetExpiring handles GET /api/v1/inventory/expiring?days=N
func (h *Handler) GetExpiring(c *fiber.Ctx) error {
	days := c.QueryInt("days", 7)
	if days <= 0 {
		return badRequest(c, "days must be positive")
	}

	items, err := h.inventory.GetExpiring(c.Context(), time.Duration(days)*24*time.Hour)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(items)
}

// InventoryReport handles GET /api/v1/inventory/report and returns a PDF
func (h *Handler) InventoryReport(c *fiber.Ctx) error {
	days := c.QueryInt("days", 7)
	if days <= 0 {
		return badRequest(c, "days must be positive")
	}

	pdfBytes, filename, err := h.inventory.GenerateInventoryStatusReportPDF(c.Context(), days)
	if err != nil {
		return sendError(c, err)
	}

	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(pdfBytes)
}

// CheckAvailability handles GET /api/v1/products/:id/availability?quantity=N
func (h *Handler) CheckAvailability(c *fiber.Ctx) error {
	quantity := c.QueryInt("quantity", 1)
	if quantity <= 0 {
		return badRequest(c, "quantity must be positive")
	}

	report, err := h.recipes.CheckAvailability(c.Context(), c.Params("id"), quantity)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(report)
}

// staffIDFromContext reads the staff identity the auth middleware stored
func staffIDFromContext(c *fiber.Ctx) string {
	if id, ok := c.Locals("staff_id").(string); ok {
		return id
	}
	return ""
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": message})
}

// sendError maps domain errors onto HTTP status codes
func sendError(c *fiber.Ctx, err error) error {
	var (
		stockErr      *core.InsufficientStockError
		transitionErr *core.TransitionError
	)

	switch {
	case errors.Is(err, core.ErrNotFound):
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, core.ErrInvalidOrder):
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case core.IsInvalidAdjustment(err):
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &stockErr):
		return c.Status(http.StatusConflict).JSON(fiber.Map{
			"error":     stockErr.Error(),
			"item_id":   stockErr.ItemID,
			"required":  stockErr.Required,
			"available": stockErr.Available,
		})
	case errors.As(err, &transitionErr):
		return c.Status(http.StatusConflict).JSON(fiber.Map{"error": transitionErr.Error()})
	case errors.Is(err, core.ErrAlreadyCompleted):
		return c.Status(http.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, core.ErrItemInactive):
		return c.Status(http.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Printf("internal error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
}

package handlers

import (
	"fmt"

	"lavanderia/internal/middleware"
	"lavanderia/internal/models"
	"lavanderia/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the order routes. The router must already require
// authentication.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Post("/:id/cancel", h.HandleCancelOrder)
	orderRoutes.Patch("/:id/status", middleware.RequireRole(models.RoleAdmin, models.RoleOperator), h.HandleUpdateOrderStatus)
	orderRoutes.Delete("/:id", middleware.RequireRole(models.RoleAdmin), h.HandleDeactivateOrder)
}

// CreateOrderRequest is the body of POST /orders. Any price sent by the client
// is ignored.
type CreateOrderRequest struct {
	CustomerID   string           `json:"customer_id" validate:"omitempty,max=36"`
	ServiceID    string           `json:"service_id" validate:"required"`
	Detail       models.Selection `json:"detail"`
	Observations string           `json:"observations" validate:"max=1000"`
}

// UpdateStatusRequest is the body of PATCH /orders/:id/status.
type UpdateStatusRequest struct {
	Status  string `json:"status" validate:"required"`
	Version *int   `json:"version" validate:"omitempty,min=1"`
}

// HandleGetOrders lists the caller's orders; staff see every active order.
// ?status= filters by status.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrders(c.UserContext(), middleware.ActorFrom(c), c.Query("status"))
	if err != nil {
		return respondError(c, err, "Could not retrieve orders")
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.service.GetOrder(c.UserContext(), middleware.ActorFrom(c), orderID)
	if err != nil {
		return respondError(c, err, fmt.Sprintf("Could not retrieve order %s", orderID))
	}
	return c.JSON(order)
}

// HandleCreateOrder creates a new order.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	actor := middleware.ActorFrom(c)
	order, err := h.service.CreateOrder(c.UserContext(), actor, services.CreateOrderInput{
		CustomerID:   req.CustomerID,
		ServiceID:    req.ServiceID,
		Detail:       req.Detail,
		Observations: req.Observations,
	})
	if err != nil {
		return respondError(c, err, "Could not create order")
	}

	log.Info().Str("order_id", order.ID).Str("customer_id", order.CustomerID).
		Str("estimated_price", order.EstimatedPrice.StringFixed(2)).Msg("order created")
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleUpdateOrderStatus updates the status of an existing order.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var req UpdateStatusRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	orderID := c.Params("id")
	order, err := h.service.UpdateStatus(c.UserContext(), middleware.ActorFrom(c), orderID, services.UpdateStatusInput{
		Status:  req.Status,
		Version: req.Version,
	})
	if err != nil {
		return respondError(c, err, fmt.Sprintf("Could not update status of order %s", orderID))
	}

	log.Info().Str("order_id", order.ID).Str("status", string(order.Status)).Msg("order status updated")
	return c.JSON(order)
}

// HandleCancelOrder cancels an order that has not been started yet.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.service.CancelOrder(c.UserContext(), middleware.ActorFrom(c), orderID)
	if err != nil {
		return respondError(c, err, fmt.Sprintf("Could not cancel order %s", orderID))
	}
	return c.JSON(order)
}

// HandleDeactivateOrder hides an order from listings and reports.
func (h *OrderHandler) HandleDeactivateOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")
	if err := h.service.DeactivateOrder(c.UserContext(), middleware.ActorFrom(c), orderID); err != nil {
		return respondError(c, err, fmt.Sprintf("Could not delete order %s", orderID))
	}
	return c.SendStatus(fiber.StatusNoContent)
}

package handlers

import (
	"encoding/json"

	"lavanderia/internal/middleware"
	"lavanderia/internal/models"
	"lavanderia/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// ServiceHandler handles HTTP requests for the service catalog.
type ServiceHandler struct {
	catalog  *services.CatalogService
	validate *validator.Validate
}

// NewServiceHandler creates a new ServiceHandler.
func NewServiceHandler(catalog *services.CatalogService) *ServiceHandler {
	return &ServiceHandler{
		catalog:  catalog,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the catalog routes. The router must already require
// authentication.
func (h *ServiceHandler) RegisterRoutes(router fiber.Router) {
	serviceRoutes := router.Group("/services")
	serviceRoutes.Get("/", h.HandleGetServices)
	serviceRoutes.Get("/:id", h.HandleGetService)
	serviceRoutes.Post("/:id/quote", h.HandleQuote)

	adminOnly := middleware.RequireRole(models.RoleAdmin)
	serviceRoutes.Post("/", adminOnly, h.HandleCreateService)
	serviceRoutes.Put("/:id", adminOnly, h.HandleUpdateService)
	serviceRoutes.Patch("/:id/active", adminOnly, h.HandleSetActive)
}

// ServiceRequest is the body of create and update requests. Pricing is the
// payload of the variant named by pricing_model.
type ServiceRequest struct {
	Name         string              `json:"name" validate:"required,max=100"`
	Description  string              `json:"description"`
	PricingModel models.PricingModel `json:"pricing_model" validate:"required,oneof=fixedPackageWithAddons multiCategoryOptions singleOption"`
	Pricing      json.RawMessage     `json:"pricing" validate:"required"`
}

func (r ServiceRequest) input() services.ServiceInput {
	return services.ServiceInput{
		Name:         r.Name,
		Description:  r.Description,
		PricingModel: r.PricingModel,
		Pricing:      r.Pricing,
	}
}

// ActiveRequest toggles the active flag of a resource.
type ActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// HandleGetServices lists the catalog. Staff may add ?all=true to include
// inactive services.
func (h *ServiceHandler) HandleGetServices(c *fiber.Ctx) error {
	includeInactive := c.QueryBool("all") && middleware.ActorFrom(c).Role.IsStaff()
	list, err := h.catalog.ListServices(c.UserContext(), includeInactive)
	if err != nil {
		return respondError(c, err, "Could not retrieve services")
	}
	return c.JSON(list)
}

// HandleGetService returns one service. Inactive services are only visible to staff.
func (h *ServiceHandler) HandleGetService(c *fiber.Ctx) error {
	svc, err := h.catalog.GetService(c.UserContext(), c.Params("id"), middleware.ActorFrom(c).Role.IsStaff())
	if err != nil {
		return respondError(c, err, "Could not retrieve service")
	}
	return c.JSON(svc)
}

// HandleQuote prices a selection without placing an order.
func (h *ServiceHandler) HandleQuote(c *fiber.Ctx) error {
	var sel models.Selection
	if err := c.BodyParser(&sel); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	serviceID := c.Params("id")
	price, err := h.catalog.Quote(c.UserContext(), serviceID, sel)
	if err != nil {
		return respondError(c, err, "Could not price selection")
	}
	return c.JSON(fiber.Map{
		"service_id":      serviceID,
		"estimated_price": price,
	})
}

// HandleCreateService adds a service to the catalog.
func (h *ServiceHandler) HandleCreateService(c *fiber.Ctx) error {
	var req ServiceRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	svc, err := h.catalog.CreateService(c.UserContext(), req.input())
	if err != nil {
		return respondError(c, err, "Could not create service")
	}

	log.Info().Str("service_id", svc.ID).Str("pricing_model", string(svc.PricingModel)).Msg("service created")
	return c.Status(fiber.StatusCreated).JSON(svc)
}

// HandleUpdateService replaces the definition of a service.
func (h *ServiceHandler) HandleUpdateService(c *fiber.Ctx) error {
	var req ServiceRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	svc, err := h.catalog.UpdateService(c.UserContext(), c.Params("id"), req.input())
	if err != nil {
		return respondError(c, err, "Could not update service")
	}
	return c.JSON(svc)
}

// HandleSetActive activates or deactivates a service.
func (h *ServiceHandler) HandleSetActive(c *fiber.Ctx) error {
	var req ActiveRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	svc, err := h.catalog.SetServiceActive(c.UserContext(), c.Params("id"), *req.Active)
	if err != nil {
		return respondError(c, err, "Could not update service")
	}
	log.Info().Str("service_id", svc.ID).Bool("active", svc.Active).Msg("service availability changed")
	return c.JSON(svc)
}

package handlers

import (
	"fmt"
	"strconv"
	"time"

	"lavanderia/internal/middleware"
	"lavanderia/internal/models"
	"lavanderia/internal/reports"
	"lavanderia/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ReportHandler serves the administrator dashboard.
type ReportHandler struct {
	reports *services.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// RegisterRoutes registers the admin-only report routes. The router must
// already require authentication.
func (h *ReportHandler) RegisterRoutes(router fiber.Router) {
	reportRoutes := router.Group("/reports", middleware.RequireRole(models.RoleAdmin))
	reportRoutes.Get("/summary", h.HandleSummary)
	reportRoutes.Get("/orders-by-status", h.HandleOrdersByStatus)
	reportRoutes.Get("/revenue", h.HandleRevenue)
	reportRoutes.Get("/popular-services", h.HandlePopularServices)
	reportRoutes.Get("/clients", h.HandleClients)
}

func (h *ReportHandler) HandleSummary(c *fiber.Ctx) error {
	summary, err := h.reports.Summary(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not build summary")
	}
	return c.JSON(summary)
}

// HandleOrdersByStatus accepts optional ?from= and ?to= dates.
func (h *ReportHandler) HandleOrdersByStatus(c *fiber.Ctx) error {
	filter, err := dateRange(c)
	if err != nil {
		return respondError(c, err, "Invalid date range")
	}
	breakdown, err := h.reports.OrdersByStatus(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err, "Could not build orders by status report")
	}
	return c.JSON(breakdown)
}

// HandleRevenue accepts optional ?from= and ?to= dates.
func (h *ReportHandler) HandleRevenue(c *fiber.Ctx) error {
	filter, err := dateRange(c)
	if err != nil {
		return respondError(c, err, "Invalid date range")
	}
	revenue, err := h.reports.Revenue(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err, "Could not build revenue report")
	}
	return c.JSON(revenue)
}

// HandlePopularServices accepts an optional ?limit= between 1 and 50.
func (h *ReportHandler) HandlePopularServices(c *fiber.Ctx) error {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return respondError(c, fmt.Errorf("%w: %q", services.ErrInvalidLimit, raw), "Invalid limit")
		}
		limit = n
		if limit == 0 {
			return respondError(c, services.ErrInvalidLimit, "Invalid limit")
		}
	}
	stats, err := h.reports.PopularServices(c.UserContext(), limit)
	if err != nil {
		return respondError(c, err, "Could not build popular services report")
	}
	return c.JSON(stats)
}

func (h *ReportHandler) HandleClients(c *fiber.Ctx) error {
	report, err := h.reports.ClientStats(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not build client report")
	}
	return c.JSON(report)
}

// dateRange reads ?from= and ?to= as YYYY-MM-DD or RFC 3339. A date-only to
// covers the whole day.
func dateRange(c *fiber.Ctx) (reports.DateFilter, error) {
	var filter reports.DateFilter
	if raw := c.Query("from"); raw != "" {
		t, _, err := parseDate(raw)
		if err != nil {
			return filter, fmt.Errorf("%w: from: %v", reports.ErrInvalidDateRange, err)
		}
		filter.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, dateOnly, err := parseDate(raw)
		if err != nil {
			return filter, fmt.Errorf("%w: to: %v", reports.ErrInvalidDateRange, err)
		}
		filter.To = &t
		filter.WholeDayTo = dateOnly
	}
	return filter, nil
}

func parseDate(raw string) (t time.Time, dateOnly bool, err error) {
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, true, nil
	}
	t, err = time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("expected YYYY-MM-DD or RFC 3339, got %q", raw)
	}
	return t.UTC(), false, nil
}

// Package server assembles the Fiber application and its routes.
package server

import (
	"time"

	"lavanderia/internal/handlers"
	"lavanderia/internal/middleware"
	"lavanderia/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func() error

// Deps are the services the HTTP layer is built on.
type Deps struct {
	Auth    *services.AuthService
	Orders  *services.OrderService
	Catalog *services.CatalogService
	Users   *services.UserService
	Reports *services.ReportService

	// Checks are reported by /health under their key.
	Checks map[string]HealthCheck
	// AccessLog enables Fiber's request logger.
	AccessLog bool
}

// New builds the Fiber app with every route registered.
func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "lavanderia",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	app.Use(recover.New())
	if d.AccessLog {
		app.Use(logger.New())
	}

	app.Get("/health", healthHandler(d.Checks))

	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(d.Auth).RegisterRoutes(apiV1)

	protected := apiV1.Group("", middleware.AuthRequired(d.Auth))
	handlers.NewUserHandler(d.Users).RegisterRoutes(protected)
	handlers.NewServiceHandler(d.Catalog).RegisterRoutes(protected)
	handlers.NewOrderHandler(d.Orders).RegisterRoutes(protected)
	handlers.NewReportHandler(d.Reports).RegisterRoutes(protected)

	return app
}

func healthHandler(checks map[string]HealthCheck) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := fiber.StatusOK
		deps := fiber.Map{}
		for name, check := range checks {
			if err := check(); err != nil {
				deps[name] = err.Error()
				status = fiber.StatusServiceUnavailable
				continue
			}
			deps[name] = "ok"
		}

		state := "healthy"
		if status != fiber.StatusOK {
			state = "degraded"
		}
		return c.Status(status).JSON(fiber.Map{
			"status":       state,
			"time":         time.Now().Format(time.RFC3339),
			"dependencies": deps,
		})
	}
}

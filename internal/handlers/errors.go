package handlers

import (
	"errors"
	"fmt"

	"lavanderia/internal/orderstatus"
	"lavanderia/internal/pricing"
	"lavanderia/internal/reports"
	"lavanderia/internal/repositories"
	"lavanderia/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, repositories.ErrVersionConflict),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrLastAdmin):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrForbidden),
		errors.Is(err, services.ErrSelfModification),
		errors.Is(err, services.ErrInactiveAccount):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidLimit),
		errors.Is(err, services.ErrServiceUnavailable),
		errors.Is(err, pricing.ErrUnsupportedPricingModel),
		errors.Is(err, pricing.ErrInvalidPricing),
		errors.Is(err, pricing.ErrInvalidSelection),
		errors.Is(err, orderstatus.ErrInvalidStatus),
		errors.Is(err, orderstatus.ErrInvalidTransition),
		errors.Is(err, reports.ErrInvalidDateRange):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// respondError writes the standard error body. Only unexpected failures are
// logged at error level.
func respondError(c *fiber.Ctx, err error, message string) error {
	status := statusFor(err)
	event := log.Debug()
	if status == fiber.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).Str("method", c.Method()).Str("path", c.Path()).Int("status", status).Msg(message)

	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

// bind parses the JSON body into req and runs struct validation on it. When ok
// is false the 400 response has already been written and err is its result.
func bind(c *fiber.Ctx, validate *validator.Validate, req interface{}) (ok bool, err error) {
	if err := c.BodyParser(req); err != nil {
		log.Debug().Err(err).Str("path", c.Path()).Msg("error parsing request body")
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := validate.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Validation failed",
				"error":   err.Error(),
			})
		}
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}
	return true, nil
}

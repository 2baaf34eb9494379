package middleware

import (
	"errors"
	"strings"

	"lavanderia/internal/models"
	"lavanderia/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Keys under which AuthRequired stores the current user in the Fiber context.
const (
	LocalUserID = "user_id"
	LocalRole   = "role"
)

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		user, err := authService.Authenticate(c.UserContext(), parts[1])
		switch {
		case errors.Is(err, services.ErrInvalidToken):
			log.Debug().Err(err).Str("path", c.Path()).Msg("JWT validation failed")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		case errors.Is(err, services.ErrInactiveAccount):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Account is disabled",
				"error":   err.Error(),
			})
		case err != nil:
			log.Error().Err(err).Str("path", c.Path()).Msg("failed to load authenticated user")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not authenticate request",
			})
		}

		// the stored role wins over the one signed into the token
		c.Locals(LocalUserID, user.ID)
		c.Locals(LocalRole, user.Role)

		return c.Next()
	}
}

// RequireRole lets the request through only for the given roles. It must run
// after AuthRequired.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(LocalRole).(models.Role)
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "You do not have permission to perform this action",
			"error":   services.ErrForbidden.Error(),
		})
	}
}

// ActorFrom returns the authenticated user stored by AuthRequired.
func ActorFrom(c *fiber.Ctx) services.Actor {
	id, _ := c.Locals(LocalUserID).(string)
	role, _ := c.Locals(LocalRole).(models.Role)
	return services.Actor{ID: id, Role: role}
}

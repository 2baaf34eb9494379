package handlers

import (
	"strconv"

	"lavanderia/internal/middleware"
	"lavanderia/internal/models"
	"lavanderia/internal/repositories"
	"lavanderia/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// UserHandler handles the profile and account administration endpoints.
type UserHandler struct {
	users    *services.UserService
	validate *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{
		users:    users,
		validate: validator.New(),
	}
}

// RegisterRoutes registers /me and the admin-only /users routes. The router
// must already require authentication.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/me", h.HandleGetMe)
	router.Patch("/me", h.HandleUpdateMe)

	userRoutes := router.Group("/users", middleware.RequireRole(models.RoleAdmin))
	userRoutes.Get("/", h.HandleListUsers)
	userRoutes.Post("/", h.HandleCreateUser)
	userRoutes.Get("/:id", h.HandleGetUser)
	userRoutes.Patch("/:id", h.HandleUpdateUser)
	userRoutes.Patch("/:id/role", h.HandleSetRole)
	userRoutes.Patch("/:id/active", h.HandleSetActive)
}

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	Name     string      `json:"name" validate:"required,max=100"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=6"`
	Role     models.Role `json:"role" validate:"required,oneof=customer admin operator"`
	Phone    string      `json:"phone" validate:"omitempty,max=30"`
	Address  string      `json:"address" validate:"omitempty,max=255"`
}

// ProfileRequest carries partial profile changes.
type ProfileRequest struct {
	Name    *string `json:"name" validate:"omitempty,max=100"`
	Phone   *string `json:"phone" validate:"omitempty,max=30"`
	Address *string `json:"address" validate:"omitempty,max=255"`
}

// RoleRequest is the body of PATCH /users/:id/role.
type RoleRequest struct {
	Role models.Role `json:"role" validate:"required,oneof=customer admin operator"`
}

func (h *UserHandler) HandleGetMe(c *fiber.Ctx) error {
	actor := middleware.ActorFrom(c)
	user, err := h.users.GetUser(c.UserContext(), actor, actor.ID)
	if err != nil {
		return respondError(c, err, "Could not retrieve profile")
	}
	return c.JSON(user)
}

func (h *UserHandler) HandleUpdateMe(c *fiber.Ctx) error {
	actor := middleware.ActorFrom(c)
	return h.updateProfile(c, actor, actor.ID)
}

// HandleListUsers lists accounts, optionally filtered by ?role= and ?active=.
func (h *UserHandler) HandleListUsers(c *fiber.Ctx) error {
	filter := repositories.UserFilter{}
	if role := c.Query("role"); role != "" {
		filter.Role = models.Role(role)
		if !filter.Role.Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid role filter",
				"error":   "role must be customer, admin or operator",
			})
		}
	}
	if active := c.Query("active"); active != "" {
		v, err := strconv.ParseBool(active)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid active filter",
				"error":   err.Error(),
			})
		}
		filter.Active = &v
	}

	users, err := h.users.ListUsers(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err, "Could not retrieve users")
	}
	return c.JSON(users)
}

func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	user, err := h.users.CreateUser(c.UserContext(), services.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		return respondError(c, err, "Could not create user")
	}

	log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user created by administrator")
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	user, err := h.users.GetUser(c.UserContext(), middleware.ActorFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve user")
	}
	return c.JSON(user)
}

func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	return h.updateProfile(c, middleware.ActorFrom(c), c.Params("id"))
}

func (h *UserHandler) HandleSetRole(c *fiber.Ctx) error {
	var req RoleRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	actor := middleware.ActorFrom(c)
	user, err := h.users.SetRole(c.UserContext(), actor, c.Params("id"), req.Role)
	if err != nil {
		return respondError(c, err, "Could not change role")
	}
	log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Str("changed_by", actor.ID).Msg("user role changed")
	return c.JSON(user)
}

func (h *UserHandler) HandleSetActive(c *fiber.Ctx) error {
	var req ActiveRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	actor := middleware.ActorFrom(c)
	user, err := h.users.SetActive(c.UserContext(), actor, c.Params("id"), *req.Active)
	if err != nil {
		return respondError(c, err, "Could not change account status")
	}
	log.Info().Str("user_id", user.ID).Bool("active", user.Active).Str("changed_by", actor.ID).Msg("account status changed")
	return c.JSON(user)
}

func (h *UserHandler) updateProfile(c *fiber.Ctx, actor services.Actor, id string) error {
	var req ProfileRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	user, err := h.users.UpdateProfile(c.UserContext(), actor, id, services.ProfileInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		return respondError(c, err, "Could not update profile")
	}
	return c.JSON(user)
}

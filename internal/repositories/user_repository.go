package repositories

import (
	"context"

	"lavanderia/internal/models"
)

// UserFilter narrows user listings. Zero values match everything.
type UserFilter struct {
	Role   models.Role
	Active *bool
}

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, filter UserFilter) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	// UpdateUnlessLastAdmin saves user unless that leaves no active admin,
	// in which case it returns ErrLastActiveAdmin and changes nothing.
	UpdateUnlessLastAdmin(ctx context.Context, user *models.User) error
	CountActiveByRole(ctx context.Context, role models.Role) (int64, error)
}

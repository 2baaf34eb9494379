package repositories

import (
	"context"

	"lavanderia/internal/models"
)

// OrderFilter narrows order listings. Zero values match everything.
type OrderFilter struct {
	CustomerID string
	Status     models.OrderStatus
}

// OrderRepository defines the interface for order data access. Only active
// orders are visible through it.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	// UpdateStatus writes status only if the stored version still equals
	// fromVersion, and bumps the version. Returns ErrVersionConflict otherwise.
	UpdateStatus(ctx context.Context, id string, fromVersion int, status models.OrderStatus) error
	Deactivate(ctx context.Context, id string) error
}

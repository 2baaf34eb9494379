package repositories

import (
	"context"

	"lavanderia/internal/models"
)

// ServiceRepository defines the interface for catalog data access.
// Services are never deleted, only deactivated.
type ServiceRepository interface {
	GetAll(ctx context.Context, includeInactive bool) ([]models.Service, error)
	GetByID(ctx context.Context, id string) (*models.Service, error)
	Create(ctx context.Context, service *models.Service) error
	Update(ctx context.Context, service *models.Service) error
	SetActive(ctx context.Context, id string, active bool) error
	CountActive(ctx context.Context) (int64, error)
}

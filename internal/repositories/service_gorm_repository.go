package repositories

import (
	"context"
	"errors"
	"fmt"

	"lavanderia/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMServiceRepository is a GORM implementation of ServiceRepository.
type GORMServiceRepository struct {
	db *gorm.DB
}

// NewGORMServiceRepository creates a new instance of GORMServiceRepository.
func NewGORMServiceRepository(db *gorm.DB) *GORMServiceRepository {
	return &GORMServiceRepository{
		db: db,
	}
}

// GetAll retrieves the catalog ordered by name.
func (r *GORMServiceRepository) GetAll(ctx context.Context, includeInactive bool) ([]models.Service, error) {
	q := r.db.WithContext(ctx)
	if !includeInactive {
		q = q.Where("active = ?", true)
	}
	var services []models.Service
	if err := q.Order("name ASC").Find(&services).Error; err != nil {
		return nil, fmt.Errorf("failed to get services: %w", err)
	}
	return services, nil
}

// GetByID retrieves a single service by its ID, active or not.
func (r *GORMServiceRepository) GetByID(ctx context.Context, id string) (*models.Service, error) {
	var service models.Service
	if err := r.db.WithContext(ctx).First(&service, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("service with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get service by ID %s: %w", id, err)
	}
	return &service, nil
}

// Create creates a new service in the database.
func (r *GORMServiceRepository) Create(ctx context.Context, service *models.Service) error {
	if service.ID == "" {
		service.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(service).Error; err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	return nil
}

// Update overwrites the name, description and pricing of an existing service.
func (r *GORMServiceRepository) Update(ctx context.Context, service *models.Service) error {
	res := r.db.WithContext(ctx).Model(service).
		Select("name", "description", "pricing_model", "pricing").
		Updates(service)
	if res.Error != nil {
		return fmt.Errorf("failed to update service: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("service with ID %s: %w", service.ID, ErrNotFound)
	}
	return nil
}

// SetActive flips the availability of a service.
func (r *GORMServiceRepository) SetActive(ctx context.Context, id string, active bool) error {
	res := r.db.WithContext(ctx).Model(&models.Service{}).Where("id = ?", id).Update("active", active)
	if res.Error != nil {
		return fmt.Errorf("failed to update service %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("service with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

// CountActive counts services customers can order.
func (r *GORMServiceRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Service{}).Where("active = ?", true).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count services: %w", err)
	}
	return n, nil
}

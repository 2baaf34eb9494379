package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"lavanderia/internal/models"
	"lavanderia/internal/pricing"
	"lavanderia/internal/repositories"

	"github.com/shopspring/decimal"
)

// ServiceInput describes a catalog entry as submitted by an administrator.
type ServiceInput struct {
	Name         string
	Description  string
	PricingModel models.PricingModel
	Pricing      json.RawMessage
}

// CatalogService handles business logic related to the service catalog.
type CatalogService struct {
	repo repositories.ServiceRepository
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(repo repositories.ServiceRepository) *CatalogService {
	return &CatalogService{
		repo: repo,
	}
}

// ListServices returns the catalog. Inactive services are only listed on request.
func (s *CatalogService) ListServices(ctx context.Context, includeInactive bool) ([]models.Service, error) {
	return s.repo.GetAll(ctx, includeInactive)
}

// GetService returns a service. Inactive services look missing unless includeInactive.
func (s *CatalogService) GetService(ctx context.Context, id string, includeInactive bool) (*models.Service, error) {
	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !svc.Active && !includeInactive {
		return nil, fmt.Errorf("service with ID %s: %w", id, repositories.ErrNotFound)
	}
	return svc, nil
}

// CreateService validates the pricing definition and stores an active service.
func (s *CatalogService) CreateService(ctx context.Context, in ServiceInput) (*models.Service, error) {
	svc := &models.Service{Active: true}
	if err := applyServiceInput(svc, in); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

// UpdateService replaces name, description and pricing of a service.
func (s *CatalogService) UpdateService(ctx context.Context, id string, in ServiceInput) (*models.Service, error) {
	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyServiceInput(svc, in); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

// SetServiceActive activates or deactivates a service.
func (s *CatalogService) SetServiceActive(ctx context.Context, id string, active bool) (*models.Service, error) {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Quote prices a selection without creating an order.
func (s *CatalogService) Quote(ctx context.Context, id string, sel models.Selection) (decimal.Decimal, error) {
	svc, err := s.GetService(ctx, id, false)
	if err != nil {
		return decimal.Zero, err
	}
	return pricing.Compute(svc, sel)
}

func applyServiceInput(svc *models.Service, in ServiceInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	scheme, err := pricing.Parse(in.PricingModel, in.Pricing)
	if err != nil {
		return err
	}
	model, raw, err := pricing.Encode(scheme)
	if err != nil {
		return err
	}
	svc.Name = name
	svc.Description = strings.TrimSpace(in.Description)
	svc.PricingModel = model
	svc.Pricing = raw
	return nil
}

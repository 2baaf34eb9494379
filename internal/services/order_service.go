package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lavanderia/internal/models"
	"lavanderia/internal/orderstatus"
	"lavanderia/internal/pricing"
	"lavanderia/internal/repositories"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Routing keys of the events published by OrderService.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// EventPublisher sends order events to the message broker.
type EventPublisher interface {
	Publish(routingKey string, payload interface{}) error
}

// OrderEvent is the body of every order event.
type OrderEvent struct {
	Type           string             `json:"type"`
	OrderID        string             `json:"order_id"`
	CustomerID     string             `json:"customer_id"`
	ServiceID      string             `json:"service_id"`
	Status         models.OrderStatus `json:"status"`
	PreviousStatus models.OrderStatus `json:"previous_status,omitempty"`
	EstimatedPrice decimal.Decimal    `json:"estimated_price"`
	ChangedBy      string             `json:"changed_by"`
	OccurredAt     time.Time          `json:"occurred_at"`
}

// CreateOrderInput is what a customer (or an admin on their behalf) submits.
type CreateOrderInput struct {
	CustomerID   string
	ServiceID    string
	Detail       models.Selection
	Observations string
}

// UpdateStatusInput carries the target status and, optionally, the version the
// caller last saw.
type UpdateStatusInput struct {
	Status  string
	Version *int
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	serviceRepo repositories.ServiceRepository
	userRepo    repositories.UserRepository
	publisher   EventPublisher
}

// NewOrderService creates a new OrderService. publisher may be nil.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	serviceRepo repositories.ServiceRepository,
	userRepo repositories.UserRepository,
	publisher EventPublisher,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		serviceRepo: serviceRepo,
		userRepo:    userRepo,
		publisher:   publisher,
	}
}

// ListOrders returns the caller's orders, or every order for staff.
func (s *OrderService) ListOrders(ctx context.Context, actor Actor, status string) ([]models.Order, error) {
	filter := repositories.OrderFilter{}
	if status != "" {
		parsed, err := orderstatus.Parse(status)
		if err != nil {
			return nil, err
		}
		filter.Status = parsed
	}
	if !actor.Role.IsStaff() {
		filter.CustomerID = actor.ID
	}
	return s.orderRepo.List(ctx, filter)
}

// GetOrder returns a single order the caller is allowed to see.
func (s *OrderService) GetOrder(ctx context.Context, actor Actor, id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := canAccess(actor, order); err != nil {
		return nil, err
	}
	return order, nil
}

// CreateOrder prices the selection against the live service definition and
// stores a new pending order. Client-side prices are never trusted.
func (s *OrderService) CreateOrder(ctx context.Context, actor Actor, in CreateOrderInput) (*models.Order, error) {
	customerID, err := s.resolveCustomer(ctx, actor, in.CustomerID)
	if err != nil {
		return nil, err
	}

	svc, err := s.serviceRepo.GetByID(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}
	if !svc.Active {
		return nil, fmt.Errorf("%w: %s", ErrServiceUnavailable, svc.Name)
	}

	price, err := pricing.Compute(svc, in.Detail)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		CustomerID:     customerID,
		Service:        models.ServiceSnapshot{ID: svc.ID, Name: svc.Name},
		Detail:         datatypes.NewJSONType(in.Detail),
		Observations:   in.Observations,
		EstimatedPrice: price,
		Status:         orderstatus.Initial,
		Active:         true,
		Version:        1,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order in repository: %w", err)
	}

	s.publish(EventOrderCreated, order, "", actor)
	return order, nil
}

// UpdateStatus moves an order to a new status if the caller's role allows it.
// The write is a compare-and-swap on the order version.
func (s *OrderService) UpdateStatus(ctx context.Context, actor Actor, id string, in UpdateStatusInput) (*models.Order, error) {
	next, err := orderstatus.Parse(in.Status)
	if err != nil {
		return nil, err
	}

	order, err := s.GetOrder(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if in.Version != nil && *in.Version != order.Version {
		return nil, fmt.Errorf("order %s is at version %d, not %d: %w",
			id, order.Version, *in.Version, repositories.ErrVersionConflict)
	}
	if err := orderstatus.ValidateTransition(order.Status, next, actor.Role); err != nil {
		return nil, err
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, order.Version, next); err != nil {
		return nil, err
	}
	previous := order.Status

	updated, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order %s: %w", id, err)
	}
	s.publish(EventOrderStatusChanged, updated, previous, actor)
	return updated, nil
}

// CancelOrder is the customer-facing shortcut for moving an order to cancelled.
func (s *OrderService) CancelOrder(ctx context.Context, actor Actor, id string) (*models.Order, error) {
	return s.UpdateStatus(ctx, actor, id, UpdateStatusInput{Status: string(models.StatusCancelled)})
}

// DeactivateOrder hides an order from listings and reports. Admin only.
func (s *OrderService) DeactivateOrder(ctx context.Context, actor Actor, id string) error {
	if actor.Role != models.RoleAdmin {
		return ErrForbidden
	}
	return s.orderRepo.Deactivate(ctx, id)
}

func (s *OrderService) resolveCustomer(ctx context.Context, actor Actor, requested string) (string, error) {
	switch actor.Role {
	case models.RoleCustomer:
		if requested != "" && requested != actor.ID {
			return "", fmt.Errorf("%w: customers can only order for themselves", ErrForbidden)
		}
		return actor.ID, nil
	case models.RoleAdmin:
		if requested == "" {
			return "", fmt.Errorf("%w: customer_id is required when ordering on behalf of a customer", ErrInvalidInput)
		}
		customer, err := s.userRepo.GetByID(ctx, requested)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return "", fmt.Errorf("%w: customer %s does not exist", ErrInvalidInput, requested)
			}
			return "", err
		}
		if customer.Role != models.RoleCustomer || !customer.Active {
			return "", fmt.Errorf("%w: %s is not an active customer", ErrInvalidInput, requested)
		}
		return customer.ID, nil
	default:
		return "", fmt.Errorf("%w: %s cannot place orders", ErrForbidden, actor.Role)
	}
}

func canAccess(actor Actor, order *models.Order) error {
	if actor.Role.IsStaff() || order.CustomerID == actor.ID {
		return nil
	}
	return fmt.Errorf("%w: order %s belongs to another customer", ErrForbidden, order.ID)
}

// publish is best effort: a broker outage must not fail the request.
func (s *OrderService) publish(eventType string, order *models.Order, previous models.OrderStatus, actor Actor) {
	if s.publisher == nil {
		log.Debug().Str("order_id", order.ID).Msg("event publisher not configured, skipping " + eventType)
		return
	}
	event := OrderEvent{
		Type:           eventType,
		OrderID:        order.ID,
		CustomerID:     order.CustomerID,
		ServiceID:      order.Service.ID,
		Status:         order.Status,
		PreviousStatus: previous,
		EstimatedPrice: order.EstimatedPrice,
		ChangedBy:      actor.ID,
		OccurredAt:     time.Now().UTC(),
	}
	if err := s.publisher.Publish(eventType, event); err != nil {
		log.Warn().Err(err).Str("order_id", order.ID).Str("event", eventType).Msg("failed to publish order event")
		return
	}
	log.Debug().Str("order_id", order.ID).Str("event", eventType).Msg("published order event")
}

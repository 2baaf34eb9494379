// Package notifications consumes order events and tells customers about them.
// Delivery is a structured log line; there is no mail or SMS gateway.
package notifications

import (
	"encoding/json"
	"fmt"

	"lavanderia/internal/models"
	"lavanderia/internal/services"

	"github.com/rs/zerolog"
	amqp "github.com/streadway/amqp"
)

// Notifier handles deliveries from the order events queue.
type Notifier struct {
	logger zerolog.Logger
}

func NewNotifier(logger zerolog.Logger) *Notifier {
	return &Notifier{logger: logger.With().Str("component", "notifier").Logger()}
}

// HandleDelivery decodes an order event and emits the customer notification.
// Undecodable bodies are reported as errors so the consumer drops them.
func (n *Notifier) HandleDelivery(msg amqp.Delivery) error {
	var event services.OrderEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return fmt.Errorf("invalid order event body: %w", err)
	}
	if event.OrderID == "" || event.CustomerID == "" {
		return fmt.Errorf("order event %q is missing order or customer id", msg.RoutingKey)
	}

	n.logger.Info().
		Str("event", event.Type).
		Str("order_id", event.OrderID).
		Str("customer_id", event.CustomerID).
		Str("status", string(event.Status)).
		Msg(Describe(event))
	return nil
}

// Describe renders the text a customer would receive for event.
func Describe(event services.OrderEvent) string {
	switch event.Type {
	case services.EventOrderCreated:
		return fmt.Sprintf("Order %s received, estimated price %s", event.OrderID, event.EstimatedPrice.StringFixed(2))
	case services.EventOrderStatusChanged:
		return fmt.Sprintf("Order %s is now %s", event.OrderID, statusLabel(event.Status))
	}
	return fmt.Sprintf("Order %s updated", event.OrderID)
}

func statusLabel(s models.OrderStatus) string {
	switch s {
	case models.StatusPending:
		return "pending"
	case models.StatusInProgress:
		return "in progress"
	case models.StatusFinished:
		return "ready for pickup"
	case models.StatusDelivered:
		return "delivered"
	case models.StatusCancelled:
		return "cancelled"
	}
	return string(s)
}

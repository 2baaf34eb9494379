// Package orderstatus decides which order status changes each role may perform.
package orderstatus

import (
	"errors"
	"fmt"
	"strings"

	"lavanderia/internal/models"
)

var (
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// All lists the known statuses in lifecycle order.
var All = []models.OrderStatus{
	models.StatusPending,
	models.StatusInProgress,
	models.StatusFinished,
	models.StatusDelivered,
	models.StatusCancelled,
}

// Initial is the status every new order starts in.
const Initial = models.StatusPending

type edge struct {
	from, to models.OrderStatus
}

// allowed is the transition allow-list per role. Staff may currently move an
// order between any two statuses, including back out of cancelled; tighten by
// editing staffEdges.
var allowed = map[models.Role]map[edge]bool{
	models.RoleAdmin:    staffEdges(),
	models.RoleOperator: staffEdges(),
	models.RoleCustomer: {
		{models.StatusPending, models.StatusCancelled}: true,
	},
}

func staffEdges() map[edge]bool {
	edges := make(map[edge]bool, len(All)*len(All))
	for _, from := range All {
		for _, to := range All {
			edges[edge{from, to}] = true
		}
	}
	return edges
}

// Valid reports whether s is a known status.
func Valid(s models.OrderStatus) bool {
	for _, known := range All {
		if s == known {
			return true
		}
	}
	return false
}

// Parse normalizes user input into a known status.
func Parse(s string) (models.OrderStatus, error) {
	status := models.OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	if !Valid(status) {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return status, nil
}

// ValidateTransition returns nil when role may move an order from current to next.
func ValidateTransition(current, next models.OrderStatus, role models.Role) error {
	if !Valid(current) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, current)
	}
	if !Valid(next) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, next)
	}

	edges, ok := allowed[role]
	if !ok {
		return fmt.Errorf("%w: role %q may not change order status", ErrInvalidTransition, role)
	}
	if edges[edge{current, next}] {
		return nil
	}
	if role == models.RoleCustomer {
		return fmt.Errorf("%w: customers can only cancel orders that are still %s (order is %s)",
			ErrInvalidTransition, models.StatusPending, current)
	}
	return fmt.Errorf("%w: %s cannot move an order from %s to %s", ErrInvalidTransition, role, current, next)
}

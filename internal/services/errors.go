package services

import (
	"errors"

	"lavanderia/internal/models"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrForbidden          = errors.New("operation not allowed for this user")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveAccount    = errors.New("account is disabled")
	ErrInvalidToken       = errors.New("invalid token")
	ErrLastAdmin          = errors.New("cannot remove the last active administrator")
	ErrSelfModification   = errors.New("administrators cannot demote or deactivate their own account")
	ErrServiceUnavailable = errors.New("service is not available")
	ErrInvalidLimit       = errors.New("limit must be between 1 and 50")
)

// Actor is the authenticated user performing an operation.
type Actor struct {
	ID   string
	Role models.Role
}

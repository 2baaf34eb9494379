package repositories

import "errors"

var (
	ErrNotFound        = errors.New("record not found")
	ErrVersionConflict = errors.New("record was modified concurrently")
	// ErrLastActiveAdmin is returned when an update would leave no active administrator.
	ErrLastActiveAdmin = errors.New("update would leave no active administrator")
)

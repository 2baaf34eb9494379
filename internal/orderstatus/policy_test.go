package orderstatus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lavanderia/internal/models"
	"lavanderia/internal/orderstatus"
)

func TestValidateTransition_Customer(t *testing.T) {
	assert.NoError(t, orderstatus.ValidateTransition(models.StatusPending, models.StatusCancelled, models.RoleCustomer))

	for _, from := range orderstatus.All {
		for _, to := range orderstatus.All {
			if from == models.StatusPending && to == models.StatusCancelled {
				continue
			}
			err := orderstatus.ValidateTransition(from, to, models.RoleCustomer)
			assert.ErrorIs(t, err, orderstatus.ErrInvalidTransition, "%s -> %s", from, to)
		}
	}

	err := orderstatus.ValidateTransition(models.StatusInProgress, models.StatusCancelled, models.RoleCustomer)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "customers can only cancel")
}

func TestValidateTransition_StaffIsPermissive(t *testing.T) {
	for _, role := range []models.Role{models.RoleAdmin, models.RoleOperator} {
		for _, from := range orderstatus.All {
			for _, to := range orderstatus.All {
				assert.NoError(t, orderstatus.ValidateTransition(from, to, role), "%s: %s -> %s", role, from, to)
			}
		}
	}
}

func TestValidateTransition_UnknownStatusComesFirst(t *testing.T) {
	err := orderstatus.ValidateTransition("received", models.StatusCancelled, models.RoleCustomer)
	assert.ErrorIs(t, err, orderstatus.ErrInvalidStatus)

	err = orderstatus.ValidateTransition(models.StatusPending, "lost", models.RoleAdmin)
	assert.ErrorIs(t, err, orderstatus.ErrInvalidStatus)
	assert.NotErrorIs(t, err, orderstatus.ErrInvalidTransition)
}

func TestValidateTransition_UnknownRole(t *testing.T) {
	err := orderstatus.ValidateTransition(models.StatusPending, models.StatusCancelled, "guest")
	assert.ErrorIs(t, err, orderstatus.ErrInvalidTransition)
}

func TestParse(t *testing.T) {
	s, err := orderstatus.Parse("  In_Progress ")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, s)

	_, err = orderstatus.Parse("received")
	assert.ErrorIs(t, err, orderstatus.ErrInvalidStatus)
}

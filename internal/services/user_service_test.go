package services_test

import (
	"context"
	"fmt"
	"testing"

	"lavanderia/internal/models"
	"lavanderia/internal/repositories"
	"lavanderia/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserService_GetUser(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	userService := services.NewUserService(mockRepo)

	mockRepo.On("GetByID", mock.Anything, "cust-1").Return(&models.User{ID: "cust-1", Role: models.RoleCustomer}, nil)

	user, err := userService.GetUser(ctx, customer, "cust-1")
	require.NoError(t, err)
	assert.Equal(t, "cust-1", user.ID)

	_, err = userService.GetUser(ctx, customer, "cust-2")
	assert.ErrorIs(t, err, services.ErrForbidden)

	// operators manage orders, not accounts
	_, err = userService.GetUser(ctx, operator, "cust-1")
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = userService.GetUser(ctx, admin, "cust-1")
	assert.NoError(t, err)
}

func TestUserService_CreateUser(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	userService := services.NewUserService(mockRepo)

	mockRepo.On("GetByEmail", mock.Anything, "op@example.com").Return(nil, notFound("op@example.com"))
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.Role == models.RoleOperator && u.Active
	})).Return(nil).Once()

	user, err := userService.CreateUser(ctx, services.CreateUserInput{
		Name: "Op", Email: "OP@example.com", Password: "secret123", Role: models.RoleOperator,
	})
	require.NoError(t, err)
	assert.Equal(t, "op@example.com", user.Email)

	_, err = userService.CreateUser(ctx, services.CreateUserInput{
		Name: "X", Email: "x@example.com", Password: "secret123", Role: "root",
	})
	assert.ErrorIs(t, err, services.ErrInvalidInput)
	mockRepo.AssertExpectations(t)
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	userService := services.NewUserService(mockRepo)

	mockRepo.On("GetByID", mock.Anything, "cust-1").
		Return(&models.User{ID: "cust-1", Name: "Ana", Phone: "111", Role: models.RoleCustomer}, nil)
	mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

	phone := " 222 "
	user, err := userService.UpdateProfile(ctx, customer, "cust-1", services.ProfileInput{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Ana", user.Name)
	assert.Equal(t, "222", user.Phone)

	blank := "  "
	_, err = userService.UpdateProfile(ctx, customer, "cust-1", services.ProfileInput{Name: &blank})
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	_, err = userService.UpdateProfile(ctx, customer, "cust-2", services.ProfileInput{Phone: &phone})
	assert.ErrorIs(t, err, services.ErrForbidden)
}

func TestUserService_SetRole(t *testing.T) {
	ctx := context.Background()

	t.Run("promote customer", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		userService := services.NewUserService(mockRepo)
		mockRepo.On("GetByID", mock.Anything, "cust-1").
			Return(&models.User{ID: "cust-1", Role: models.RoleCustomer, Active: true}, nil)
		mockRepo.On("Update", mock.Anything, mock.Anything).Return(nil).Once()

		user, err := userService.SetRole(ctx, admin, "cust-1", models.RoleOperator)
		require.NoError(t, err)
		assert.Equal(t, models.RoleOperator, user.Role)
		mockRepo.AssertNotCalled(t, "UpdateUnlessLastAdmin", mock.Anything, mock.Anything)
	})

	t.Run("only admins", func(t *testing.T) {
		userService := services.NewUserService(new(MockUserRepository))
		_, err := userService.SetRole(ctx, operator, "cust-1", models.RoleAdmin)
		assert.ErrorIs(t, err, services.ErrForbidden)
	})

	t.Run("unknown role", func(t *testing.T) {
		userService := services.NewUserService(new(MockUserRepository))
		_, err := userService.SetRole(ctx, admin, "cust-1", "superuser")
		assert.ErrorIs(t, err, services.ErrInvalidInput)
	})

	t.Run("self demotion", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		userService := services.NewUserService(mockRepo)
		mockRepo.On("GetByID", mock.Anything, "admin-1").
			Return(&models.User{ID: "admin-1", Role: models.RoleAdmin, Active: true}, nil)

		_, err := userService.SetRole(ctx, admin, "admin-1", models.RoleCustomer)
		assert.ErrorIs(t, err, services.ErrSelfModification)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("last admin", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		userService := services.NewUserService(mockRepo)
		mockRepo.On("GetByID", mock.Anything, "admin-2").
			Return(&models.User{ID: "admin-2", Role: models.RoleAdmin, Active: true}, nil)
		mockRepo.On("UpdateUnlessLastAdmin", mock.Anything, mock.Anything).
			Return(fmt.Errorf("user with ID admin-2: %w", repositories.ErrLastActiveAdmin)).Once()

		_, err := userService.SetRole(ctx, admin, "admin-2", models.RoleOperator)
		assert.ErrorIs(t, err, services.ErrLastAdmin)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("one of several admins", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		userService := services.NewUserService(mockRepo)
		mockRepo.On("GetByID", mock.Anything, "admin-2").
			Return(&models.User{ID: "admin-2", Role: models.RoleAdmin, Active: true}, nil)
		mockRepo.On("UpdateUnlessLastAdmin", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			return u.ID == "admin-2" && u.Role == models.RoleOperator
		})).Return(nil).Once()

		user, err := userService.SetRole(ctx, admin, "admin-2", models.RoleOperator)
		require.NoError(t, err)
		assert.Equal(t, models.RoleOperator, user.Role)
		mockRepo.AssertExpectations(t)
	})
}

func TestUserService_SetActive(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	userService := services.NewUserService(mockRepo)

	mockRepo.On("GetByID", mock.Anything, "admin-1").
		Return(&models.User{ID: "admin-1", Role: models.RoleAdmin, Active: true}, nil)
	_, err := userService.SetActive(ctx, admin, "admin-1", false)
	assert.ErrorIs(t, err, services.ErrSelfModification)

	mockRepo.On("GetByID", mock.Anything, "cust-9").Return(nil, notFound("user cust-9"))
	_, err = userService.SetActive(ctx, admin, "cust-9", false)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	mockRepo.On("GetByID", mock.Anything, "cust-1").
		Return(&models.User{ID: "cust-1", Role: models.RoleCustomer, Active: true}, nil)
	mockRepo.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	user, err := userService.SetActive(ctx, admin, "cust-1", false)
	require.NoError(t, err)
	assert.False(t, user.Active)
}

func TestUserService_ListUsers(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := services.NewUserService(mockRepo)
	active := true
	filter := repositories.UserFilter{Role: models.RoleCustomer, Active: &active}

	mockRepo.On("List", mock.Anything, filter).Return([]models.User{{ID: "cust-1"}}, nil).Once()
	users, err := userService.ListUsers(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	mockRepo.AssertExpectations(t)
}

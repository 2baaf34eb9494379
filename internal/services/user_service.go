package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lavanderia/internal/models"
	"lavanderia/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

// CreateUserInput is used by administrators to open any kind of account.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
	Phone    string
	Address  string
}

// ProfileInput carries partial profile changes; nil fields are left alone.
type ProfileInput struct {
	Name    *string
	Phone   *string
	Address *string
}

// UserService handles account administration.
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// ListUsers returns the users matching filter.
func (s *UserService) ListUsers(ctx context.Context, filter repositories.UserFilter) ([]models.User, error) {
	return s.userRepo.List(ctx, filter)
}

// GetUser returns one user; customers may only read themselves.
func (s *UserService) GetUser(ctx context.Context, actor Actor, id string) (*models.User, error) {
	if actor.Role != models.RoleAdmin && actor.ID != id {
		return nil, ErrForbidden
	}
	return s.userRepo.GetByID(ctx, id)
}

// CreateUser opens an account with any role.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	return createAccount(ctx, s.userRepo, in)
}

// UpdateProfile changes contact data of the caller, or of anyone for an admin.
func (s *UserService) UpdateProfile(ctx context.Context, actor Actor, id string, in ProfileInput) (*models.User, error) {
	user, err := s.GetUser(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
		user.Name = name
	}
	if in.Phone != nil {
		user.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Address != nil {
		user.Address = strings.TrimSpace(*in.Address)
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetRole changes the role of a user. Admin only.
func (s *UserService) SetRole(ctx context.Context, actor Actor, id string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	return s.modify(ctx, actor, id, func(u *models.User) { u.Role = role })
}

// SetActive enables or disables an account. Admin only.
func (s *UserService) SetActive(ctx context.Context, actor Actor, id string, active bool) (*models.User, error) {
	return s.modify(ctx, actor, id, func(u *models.User) { u.Active = active })
}

// modify applies change and refuses to leave the system without an active admin.
func (s *UserService) modify(ctx context.Context, actor Actor, id string, change func(*models.User)) (*models.User, error) {
	if actor.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	wasActiveAdmin := user.Role == models.RoleAdmin && user.Active
	change(user)
	losesAdmin := wasActiveAdmin && (user.Role != models.RoleAdmin || !user.Active)

	if !losesAdmin {
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}

	if user.ID == actor.ID {
		return nil, ErrSelfModification
	}
	// the admin count and the write share one transaction in the repository
	if err := s.userRepo.UpdateUnlessLastAdmin(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrLastActiveAdmin) {
			return nil, ErrLastAdmin
		}
		return nil, err
	}
	return user, nil
}

func createAccount(ctx context.Context, repo repositories.UserRepository, in CreateUserInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if email == "" || name == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrInvalidInput)
	}
	if !in.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, in.Role)
	}

	existing, err := repo.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrEmailTaken, email)
	}
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: string(hashedPassword),
		Role:     in.Role,
		Active:   true,
		Phone:    strings.TrimSpace(in.Phone),
		Address:  strings.TrimSpace(in.Address),
	}
	if err := repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

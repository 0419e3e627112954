package adapters

import (
	"context"

	adminModels "eventgate/internal/admin/models"
	authModels "eventgate/internal/auth/models"
	"eventgate/internal/domain"
)

// AuthUserCreator is the slice of the auth service that creates accounts.
type AuthUserCreator interface {
	CreateUser(ctx context.Context, req authModels.CreateUserRequest) (*domain.User, error)
}

// UserCreatorAdapter lets the admin service create accounts through auth, so
// hashing and duplicate-email rules live in one place.
type UserCreatorAdapter struct {
	auth AuthUserCreator
}

func NewUserCreatorAdapter(auth AuthUserCreator) *UserCreatorAdapter {
	return &UserCreatorAdapter{auth: auth}
}

func (a *UserCreatorAdapter) CreateUser(ctx context.Context, req adminModels.CreateUserRequest) (*domain.User, error) {
	return a.auth.CreateUser(ctx, authModels.CreateUserRequest{
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		Role:        req.Role,
		Perks:       req.Perks,
		EventAccess: req.EventAccess,
		IsActive:    req.IsActive,
	})
}

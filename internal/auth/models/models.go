package models

import (
	"time"

	"eventgate/internal/domain"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the public self-registration body. Role is always user.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// CreateUserRequest is used by admins and by first-run setup.
type CreateUserRequest struct {
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Perks       []string `json:"perks"`
	EventAccess []string `json:"eventAccess"`
	IsActive    *bool    `json:"isActive"`
}

// Session is an issued session token.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type LoginResult struct {
	Principal *domain.Principal
	Session   Session
}

// PrincipalView is the JSON rendering of a principal.
type PrincipalView struct {
	ID          string      `json:"id"`
	Email       string      `json:"email"`
	Name        string      `json:"name"`
	Role        domain.Role `json:"role"`
	Perks       []string    `json:"perks"`
	EventAccess []string    `json:"eventAccess"`
	IsActive    bool        `json:"isActive"`
}

func NewPrincipalView(p *domain.Principal) PrincipalView {
	return PrincipalView{
		ID:          p.ID,
		Email:       p.Email,
		Name:        p.Name,
		Role:        p.Role,
		Perks:       p.Perks.Sorted(),
		EventAccess: p.EventAccess.Sorted(),
		IsActive:    p.IsActive,
	}
}

type LoginResponse struct {
	User      PrincipalView `json:"user"`
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
}

// Profile is a user record plus their recent check-ins.
type Profile struct {
	User       domain.UserView          `json:"user"`
	AccessLogs []*domain.AccessLogEntry `json:"accessLogs"`
}

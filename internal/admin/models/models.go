package models

import (
	"strings"

	"eventgate/internal/domain"
	dErrors "eventgate/pkg/domain-errors"
	"eventgate/pkg/email"
	"eventgate/pkg/platform/audit"
	pstrings "eventgate/pkg/platform/strings"
)

const (
	MaxNameLength  = 200
	MaxListEntries = 500
	minPassword    = 6
)

// CreateUserRequest is the admin account creation body. Unlike self
// registration it may set any role and the initial perks.
type CreateUserRequest struct {
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Perks       []string `json:"perks"`
	EventAccess []string `json:"eventAccess"`
	IsActive    *bool    `json:"isActive"`
}

func (r *CreateUserRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
	r.Perks = pstrings.DedupeAndTrim(r.Perks)
	r.EventAccess = pstrings.DedupeAndTrim(r.EventAccess)
}

func (r *CreateUserRequest) Validate() error {
	if r.Email == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "email and password are required")
	}
	if !email.Valid(r.Email) {
		return dErrors.New(dErrors.CodeValidation, "invalid email format")
	}
	if len(r.Password) < minPassword {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 6 characters")
	}
	if len(r.Name) > MaxNameLength {
		return dErrors.New(dErrors.CodeValidation, "name is too long")
	}
	if r.Role != "" {
		if _, ok := domain.ParseRole(r.Role); !ok {
			return dErrors.New(dErrors.CodeValidation, "role must be one of admin, staff, user")
		}
	}
	if len(r.Perks) > MaxListEntries || len(r.EventAccess) > MaxListEntries {
		return dErrors.New(dErrors.CodeValidation, "too many list entries")
	}
	return nil
}

// UpdateUserRequest is a partial update. Omitted fields are unchanged; an
// empty list clears the corresponding attribute.
type UpdateUserRequest struct {
	Email       *string  `json:"email"`
	Name        *string  `json:"name"`
	Password    *string  `json:"password"`
	Role        *string  `json:"role"`
	Perks       []string `json:"perks"`
	EventAccess []string `json:"eventAccess"`
	IsActive    *bool    `json:"isActive"`
}

func (r *UpdateUserRequest) Normalize() {
	if r.Email != nil {
		v := strings.ToLower(strings.TrimSpace(*r.Email))
		r.Email = &v
	}
	if r.Name != nil {
		v := strings.TrimSpace(*r.Name)
		r.Name = &v
	}
	if r.Role != nil {
		v := strings.ToLower(strings.TrimSpace(*r.Role))
		r.Role = &v
	}
	if r.Perks != nil {
		r.Perks = pstrings.DedupeAndTrim(r.Perks)
	}
	if r.EventAccess != nil {
		r.EventAccess = pstrings.DedupeAndTrim(r.EventAccess)
	}
}

func (r *UpdateUserRequest) Validate() error {
	if r.Email != nil && !email.Valid(*r.Email) {
		return dErrors.New(dErrors.CodeValidation, "invalid email format")
	}
	if r.Name != nil && (*r.Name == "" || len(*r.Name) > MaxNameLength) {
		return dErrors.New(dErrors.CodeValidation, "name must be between 1 and 200 characters")
	}
	if r.Password != nil && len(*r.Password) < minPassword {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 6 characters")
	}
	if r.Role != nil {
		if _, ok := domain.ParseRole(*r.Role); !ok {
			return dErrors.New(dErrors.CodeValidation, "role must be one of admin, staff, user")
		}
	}
	if len(r.Perks) > MaxListEntries || len(r.EventAccess) > MaxListEntries {
		return dErrors.New(dErrors.CodeValidation, "too many list entries")
	}
	return nil
}

// Empty reports whether the request changes nothing.
func (r *UpdateUserRequest) Empty() bool {
	return r.Email == nil && r.Name == nil && r.Password == nil && r.Role == nil &&
		r.Perks == nil && r.EventAccess == nil && r.IsActive == nil
}

// UsersListResponse wraps the user listing.
type UsersListResponse struct {
	Users []domain.UserView `json:"users"`
	Total int               `json:"total"`
}

func NewUsersListResponse(users []*domain.User) UsersListResponse {
	views := make([]domain.UserView, 0, len(users))
	for _, u := range users {
		views = append(views, u.View())
	}
	return UsersListResponse{Users: views, Total: len(views)}
}

type AuditResponse struct {
	Events []audit.Event `json:"events"`
	Total  int           `json:"total"`
}

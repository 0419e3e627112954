package domain

import (
	"slices"
	"strings"
	"time"
)

// Role is a single flat authorization tier. Roles do not inherit from one
// another: an admin does not satisfy a staff requirement.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
	RoleUser  Role = "user"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleUser:
		return true
	}
	return false
}

// ParseRole normalises and validates a role string.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.IsValid()
}

// User is the stored account record. PasswordHash never leaves the service
// layer; handlers render Principal or UserView instead.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"password"`
	Role         Role      `json:"role"`
	Perks        []string  `json:"perks"`
	EventAccess  []string  `json:"eventAccess"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Principal returns the authenticated identity for u, stripped of the password.
func (u *User) Principal() *Principal {
	return &Principal{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		Perks:       NewSet(u.Perks...),
		EventAccess: NewSet(u.EventAccess...),
		IsActive:    u.IsActive,
	}
}

// View returns the password-free representation of u.
func (u *User) View() UserView {
	return UserView{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		Perks:       nonNil(u.Perks),
		EventAccess: nonNil(u.EventAccess),
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
	}
}

// UserView is a User without its password hash.
type UserView struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Role        Role      `json:"role"`
	Perks       []string  `json:"perks"`
	EventAccess []string  `json:"eventAccess"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Principal is the identity the authorization engine reasons about. It is
// built at login and mirrored into the session token, so a perk revoked after
// login stays effective until the token expires.
type Principal struct {
	ID          string
	Email       string
	Name        string
	Role        Role
	Perks       Set
	EventAccess Set
	IsActive    bool
}

// Set is a string set. The zero value is an empty set and safe to read.
type Set map[string]struct{}

func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		s[v] = struct{}{}
	}
	return s
}

func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Intersects reports whether s and other share at least one element.
func (s Set) Intersects(other Set) bool {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}
	for v := range small {
		if large.Has(v) {
			return true
		}
	}
	return false
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

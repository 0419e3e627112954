// Package password hashes and verifies account passwords with bcrypt.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	dErrors "eventgate/pkg/domain-errors"
)

// MinLength is the shortest accepted password.
const MinLength = 6

// ErrMismatch is returned by Verify when the password does not match.
var ErrMismatch = errors.New("password mismatch")

// dummyHash lets Verify spend bcrypt time for unknown accounts.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("eventgate-dummy-password"), bcrypt.MinCost)

type Hasher struct {
	cost int
}

// NewHasher returns a hasher with the given bcrypt cost; 0 means the default.
func NewHasher(cost int) *Hasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash creates a bcrypt hash of plain.
func (h *Hasher) Hash(plain string) (string, error) {
	if len(plain) < MinLength {
		return "", dErrors.New(dErrors.CodeValidation, fmt.Sprintf("password must be at least %d characters", MinLength))
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeValidation, "password is too long")
		}
		return "", fmt.Errorf("could not hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify checks plain against a bcrypt hash. It returns ErrMismatch for a
// wrong password and a wrapped error for a corrupt hash.
func (h *Hasher) Verify(plain, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatch
		}
		return fmt.Errorf("could not verify password: %w", err)
	}
	return nil
}

// Burn runs a comparison against a fixed hash so a lookup miss costs about
// as much as a wrong password.
func (h *Hasher) Burn(plain string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plain))
}

package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "eventgate/pkg/domain-errors"
)

// Claims is the session token payload. Authorization attributes are copied in
// at issuance so request handling needs no store lookup; they go stale until
// the token is reissued.
type Claims struct {
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Perks       []string `json:"perks"`
	EventAccess []string `json:"eventAccess"`
	IsActive    bool     `json:"isActive"`
	jwt.RegisteredClaims
}

// SessionSubject is the identity data mirrored into a token.
type SessionSubject struct {
	UserID      string
	Email       string
	Name        string
	Role        string
	Perks       []string
	EventAccess []string
	IsActive    bool
}

// JWTService handles session token creation and validation.
type JWTService struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
	now        func() time.Time
}

type Option func(*JWTService)

// WithClock overrides the issuance clock. Validation uses the jwt library's
// clock, so tokens issued in the past are seen as expired.
func WithClock(now func() time.Time) Option {
	return func(s *JWTService) {
		s.now = now
	}
}

func NewJWTService(signingKey, issuer string, ttl time.Duration, opts ...Option) *JWTService {
	s := &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		ttl:        ttl,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL is the lifetime of issued tokens.
func (s *JWTService) TTL() time.Duration {
	return s.ttl
}

func (s *JWTService) GenerateSessionToken(subject SessionSubject) (string, time.Time, error) {
	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email:       subject.Email,
		Name:        subject.Name,
		Role:        subject.Role,
		Perks:       nonNil(subject.Perks),
		EventAccess: nonNil(subject.EventAccess),
		IsActive:    subject.IsActive,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.UserID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// SessionSubject reconstructs the mirrored identity from validated claims.
func (c *Claims) SessionSubject() SessionSubject {
	return SessionSubject{
		UserID:      c.Subject,
		Email:       c.Email,
		Name:        c.Name,
		Role:        c.Role,
		Perks:       c.Perks,
		EventAccess: c.EventAccess,
		IsActive:    c.IsActive,
	}
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"eventgate/internal/auth"
	"eventgate/internal/auth/models"
	"eventgate/internal/auth/password"
	"eventgate/internal/domain"
	jwttoken "eventgate/internal/jwt_token"
	"eventgate/internal/platform/metrics"
	"eventgate/internal/storage"
	dErrors "eventgate/pkg/domain-errors"
	"eventgate/pkg/email"
	"eventgate/pkg/platform/audit"
	"eventgate/pkg/platform/sentinel"
	pstrings "eventgate/pkg/platform/strings"
	"eventgate/pkg/requestcontext"
)

type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsWithRole(ctx context.Context, role domain.Role) (bool, error)
}

type AccessLogReader interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.AccessLogEntry, error)
}

type TokenService interface {
	GenerateSessionToken(subject jwttoken.SessionSubject) (string, time.Time, error)
	ValidateToken(token string) (*jwttoken.Claims, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) error
	Burn(plain string)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service authenticates credentials, issues and resolves session tokens and
// creates accounts.
type Service struct {
	users          UserStore
	accessLogs     AccessLogReader
	tokens         TokenService
	hasher         PasswordHasher
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	logger         *slog.Logger
	tracer         trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) { s.auditPublisher = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithAccessLogs enables Profile.
func WithAccessLogs(r AccessLogReader) Option {
	return func(s *Service) { s.accessLogs = r }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

func New(users UserStore, tokens TokenService, hasher PasswordHasher, opts ...Option) *Service {
	s := &Service{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		logger: slog.New(slog.DiscardHandler),
		tracer: otel.Tracer("eventgate/internal/auth/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Authenticate checks credentials. Failures are reported in a fixed order:
// unknown email, inactive account, wrong password.
func (s *Service) Authenticate(ctx context.Context, emailAddr, plain string) (*domain.Principal, error) {
	ctx, span := s.tracer.Start(ctx, "auth.Authenticate")
	defer span.End()

	emailAddr = storage.NormalizeEmail(emailAddr)
	user, err := s.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.hasher.Burn(plain)
			return nil, s.authFailed(ctx, span, emailAddr, "", auth.ReasonNotFound)
		}
		span.SetStatus(codes.Error, "user lookup failed")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}
	if !user.IsActive {
		return nil, s.authFailed(ctx, span, emailAddr, user.ID, auth.ReasonInactive)
	}
	if err := s.hasher.Verify(plain, user.PasswordHash); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return nil, s.authFailed(ctx, span, emailAddr, user.ID, auth.ReasonBadCredential)
		}
		span.SetStatus(codes.Error, "password verification failed")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify password")
	}

	span.SetAttributes(attribute.String("user.id", user.ID), attribute.String("user.role", string(user.Role)))
	s.metrics.RecordLogin("success")
	s.logAudit(ctx, audit.EventLoginSucceeded, user.ID, "email", user.Email)
	return user.Principal(), nil
}

func (s *Service) authFailed(ctx context.Context, span trace.Span, emailAddr, userID string, reason auth.Reason) error {
	span.SetAttributes(attribute.String("auth.failure_reason", string(reason)))
	span.SetStatus(codes.Error, string(reason))
	s.metrics.RecordLogin(string(reason))
	s.logger.WarnContext(ctx, "authentication failed",
		"reason", reason,
		"user_id", userID,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.Event{
		Action:  string(audit.EventAuthFailed),
		UserID:  userID,
		Subject: emailAddr,
		Email:   emailAddr,
		Reason:  string(reason),
	})
	return auth.NewError(reason, nil)
}

// IssueSession signs a token mirroring p's authorization attributes.
func (s *Service) IssueSession(ctx context.Context, p *domain.Principal) (models.Session, error) {
	token, expiresAt, err := s.tokens.GenerateSessionToken(jwttoken.SessionSubject{
		UserID:      p.ID,
		Email:       p.Email,
		Name:        p.Name,
		Role:        string(p.Role),
		Perks:       p.Perks.Sorted(),
		EventAccess: p.EventAccess.Sorted(),
		IsActive:    p.IsActive,
	})
	if err != nil {
		return models.Session{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session")
	}
	s.logAudit(ctx, audit.EventSessionIssued, p.ID)
	return models.Session{Token: token, ExpiresAt: expiresAt}, nil
}

// Login is Authenticate followed by IssueSession.
func (s *Service) Login(ctx context.Context, emailAddr, plain string) (*models.LoginResult, error) {
	p, err := s.Authenticate(ctx, emailAddr, plain)
	if err != nil {
		return nil, err
	}
	session, err := s.IssueSession(ctx, p)
	if err != nil {
		return nil, err
	}
	return &models.LoginResult{Principal: p, Session: session}, nil
}

// ResolveSession turns a token back into a principal without touching the
// store. Changes made to the user after issuance are not visible until the
// next login.
func (s *Service) ResolveSession(_ context.Context, token string) (*domain.Principal, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, auth.NewError(auth.ReasonInvalidToken, err)
	}
	role, ok := domain.ParseRole(claims.Role)
	if !ok {
		return nil, auth.NewError(auth.ReasonInvalidToken, errors.New("unknown role claim"))
	}
	return &domain.Principal{
		ID:          claims.Subject,
		Email:       claims.Email,
		Name:        claims.Name,
		Role:        role,
		Perks:       domain.NewSet(claims.Perks...),
		EventAccess: domain.NewSet(claims.EventAccess...),
		IsActive:    claims.IsActive,
	}, nil
}

// Register creates a self-service account with role user.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*domain.User, error) {
	user, err := s.createUser(ctx, models.CreateUserRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     string(domain.RoleUser),
	})
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, audit.EventUserRegistered, user.ID, "email", user.Email)
	return user, nil
}

// CreateUser creates an account with any role. Callers must be admins.
func (s *Service) CreateUser(ctx context.Context, req models.CreateUserRequest) (*domain.User, error) {
	user, err := s.createUser(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, audit.EventUserCreated, user.ID, "email", user.Email, "role", string(user.Role))
	return user, nil
}

// BootstrapAdmin creates the first admin. It fails with CodeConflict once any
// admin exists.
func (s *Service) BootstrapAdmin(ctx context.Context, req models.CreateUserRequest) (*domain.User, error) {
	exists, err := s.users.ExistsWithRole(ctx, domain.RoleAdmin)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check for admins")
	}
	if exists {
		return nil, dErrors.New(dErrors.CodeConflict, "setup already completed")
	}
	req.Role = string(domain.RoleAdmin)
	req.IsActive = nil
	user, err := s.createUser(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, audit.EventAdminBootstrap, user.ID, "email", user.Email)
	return user, nil
}

func (s *Service) createUser(ctx context.Context, req models.CreateUserRequest) (*domain.User, error) {
	addr := storage.NormalizeEmail(req.Email)
	if addr == "" || req.Password == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "email and password are required")
	}
	if !email.Valid(addr) {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid email format")
	}
	if len(req.Password) < password.MinLength {
		return nil, dErrors.New(dErrors.CodeValidation, "password must be at least 6 characters")
	}
	role := domain.RoleUser
	if req.Role != "" {
		r, ok := domain.ParseRole(req.Role)
		if !ok {
			return nil, dErrors.New(dErrors.CodeValidation, "role must be one of admin, staff, user")
		}
		role = r
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = email.DeriveNameFromEmail(addr)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeValidation) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	now := requestcontext.Now(ctx)
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        addr,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		Perks:        pstrings.DedupeAndTrim(req.Perks),
		EventAccess:  pstrings.DedupeAndTrim(req.EventAccess),
		IsActive:     active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "user already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}
	s.metrics.IncrementUsersCreated()
	return user, nil
}

// Profile loads the user record and their latest check-ins concurrently.
func (s *Service) Profile(ctx context.Context, userID string, logLimit int) (*models.Profile, error) {
	var (
		user *domain.User
		logs []*domain.AccessLogEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.users.FindByID(gctx, userID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "user not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
		}
		user = u
		return nil
	})
	g.Go(func() error {
		if s.accessLogs == nil {
			return nil
		}
		l, err := s.accessLogs.ListByUser(gctx, userID, logLimit)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load access logs")
		}
		logs = l
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []*domain.AccessLogEntry{}
	}
	return &models.Profile{User: user.View(), AccessLogs: logs}, nil
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, userID string, attributes ...any) {
	args := append([]any{"user_id", userID}, attributes...)
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		args = append(args, "request_id", requestID)
	}
	args = append(args, "event", string(event), "log_type", "audit")
	s.logger.InfoContext(ctx, string(event), args...)

	e := audit.Event{Action: string(event), UserID: userID, Subject: userID}
	for i := 0; i+1 < len(attributes); i += 2 {
		if k, _ := attributes[i].(string); k == "email" {
			e.Email, _ = attributes[i+1].(string)
		}
	}
	s.emit(ctx, e)
}

func (s *Service) emit(ctx context.Context, e audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	e.IP = requestcontext.ClientIP(ctx)
	e.Device = requestcontext.DeviceName(ctx)
	e.RequestID = requestcontext.RequestID(ctx)
	if err := s.auditPublisher.Emit(ctx, e); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "error", err, "action", e.Action)
	}
}

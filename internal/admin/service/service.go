package service

import (
	"context"
	"errors"
	"log/slog"

	"eventgate/internal/admin/models"
	"eventgate/internal/domain"
	"eventgate/internal/storage"
	dErrors "eventgate/pkg/domain-errors"
	"eventgate/pkg/platform/audit"
	"eventgate/pkg/platform/sentinel"
	"eventgate/pkg/requestcontext"
)

type UserStore interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, id string, upd storage.UserUpdate) (*domain.User, error)
	Delete(ctx context.Context, id string) (*domain.User, error)
}

// UserCreator creates accounts with hashing and duplicate checks applied.
type UserCreator interface {
	CreateUser(ctx context.Context, req models.CreateUserRequest) (*domain.User, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// AuditLog reads back what the publisher stored.
type AuditLog interface {
	ListByUser(ctx context.Context, userID string) ([]audit.Event, error)
	ListRecent(ctx context.Context, limit int) ([]audit.Event, error)
}

// Audit listing bounds.
const (
	DefaultAuditLimit = 50
	MaxAuditLimit     = 500
)

// Service manages accounts on behalf of admins. Updates are last-write-wins.
type Service struct {
	users          UserStore
	creator        UserCreator
	hasher         PasswordHasher
	auditPublisher AuditPublisher
	auditLog       AuditLog
	logger         *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) { s.auditPublisher = p }
}

// WithAuditLog enables the audit trail queries. Without it they return no
// events.
func WithAuditLog(l AuditLog) Option {
	return func(s *Service) { s.auditLog = l }
}

func New(users UserStore, creator UserCreator, hasher PasswordHasher, opts ...Option) *Service {
	s := &Service{
		users:   users,
		creator: creator,
		hasher:  hasher,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	return users, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err)
	}
	return user, nil
}

func (s *Service) CreateUser(ctx context.Context, req models.CreateUserRequest) (*domain.User, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.creator.CreateUser(ctx, req)
}

// UpdateUser applies a partial update. A new password is hashed before it
// reaches the store.
func (s *Service) UpdateUser(ctx context.Context, id string, req models.UpdateUserRequest) (*domain.User, error) {
	if id == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "user ID required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Empty() {
		return nil, dErrors.New(dErrors.CodeValidation, "no fields to update")
	}

	upd := storage.UserUpdate{
		Email:       req.Email,
		Name:        req.Name,
		Perks:       req.Perks,
		EventAccess: req.EventAccess,
		IsActive:    req.IsActive,
		UpdatedAt:   requestcontext.Now(ctx),
	}
	if req.Role != nil {
		role, _ := domain.ParseRole(*req.Role)
		upd.Role = &role
	}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeValidation) {
				return nil, err
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
		}
		upd.PasswordHash = &hash
	}

	user, err := s.users.Update(ctx, id, upd)
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "email already in use")
		}
		return nil, lookupErr(err)
	}
	s.logAudit(ctx, audit.EventUserUpdated, user, "fields", updatedFields(req))
	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	if id == "" {
		return dErrors.New(dErrors.CodeBadRequest, "user ID required")
	}
	user, err := s.users.Delete(ctx, id)
	if err != nil {
		return lookupErr(err)
	}
	s.logAudit(ctx, audit.EventUserDeleted, user)
	return nil
}

// RecentAudit returns the newest audit events across all users. limit is
// clamped to (0, MaxAuditLimit]; zero or negative means DefaultAuditLimit.
func (s *Service) RecentAudit(ctx context.Context, limit int) ([]audit.Event, error) {
	if limit <= 0 {
		limit = DefaultAuditLimit
	}
	limit = min(limit, MaxAuditLimit)
	if s.auditLog == nil {
		return []audit.Event{}, nil
	}
	events, err := s.auditLog.ListRecent(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read audit log")
	}
	return events, nil
}

// UserAudit returns one user's audit trail, oldest first. Deleted users keep
// their trail, so the user record is not consulted.
func (s *Service) UserAudit(ctx context.Context, userID string) ([]audit.Event, error) {
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "user ID required")
	}
	if s.auditLog == nil {
		return []audit.Event{}, nil
	}
	events, err := s.auditLog.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read audit log")
	}
	if events == nil {
		events = []audit.Event{}
	}
	return events, nil
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, user *domain.User, attributes ...any) {
	actor := requestcontext.UserID(ctx)
	args := append([]any{"user_id", user.ID, "email", user.Email, "actor_id", actor}, attributes...)
	args = append(args, "request_id", requestcontext.RequestID(ctx), "event", string(event), "log_type", "audit")
	s.logger.InfoContext(ctx, string(event), args...)

	if s.auditPublisher == nil {
		return
	}
	e := audit.Event{
		Action:    string(event),
		UserID:    user.ID,
		Subject:   user.ID,
		Email:     user.Email,
		ActorID:   actor,
		IP:        requestcontext.ClientIP(ctx),
		Device:    requestcontext.DeviceName(ctx),
		RequestID: requestcontext.RequestID(ctx),
	}
	if err := s.auditPublisher.Emit(ctx, e); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "error", err, "action", e.Action)
	}
}

func lookupErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to access user")
}

func updatedFields(req models.UpdateUserRequest) []string {
	var fields []string
	if req.Email != nil {
		fields = append(fields, "email")
	}
	if req.Name != nil {
		fields = append(fields, "name")
	}
	if req.Password != nil {
		fields = append(fields, "password")
	}
	if req.Role != nil {
		fields = append(fields, "role")
	}
	if req.Perks != nil {
		fields = append(fields, "perks")
	}
	if req.EventAccess != nil {
		fields = append(fields, "eventAccess")
	}
	if req.IsActive != nil {
		fields = append(fields, "isActive")
	}
	return fields
}

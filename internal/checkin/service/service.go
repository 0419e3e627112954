package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"eventgate/internal/checkin/metrics"
	"eventgate/internal/checkin/models"
	"eventgate/internal/checkin/qr"
	"eventgate/internal/decision"
	"eventgate/internal/domain"
	dErrors "eventgate/pkg/domain-errors"
	"eventgate/pkg/platform/audit"
	"eventgate/pkg/platform/sentinel"
	"eventgate/pkg/requestcontext"
)

type EventStore interface {
	FindByID(ctx context.Context, id string) (*domain.Event, error)
}

type UserStore interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

type AccessLogStore interface {
	Append(ctx context.Context, e *domain.AccessLogEntry) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.AccessLogEntry, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service validates scanned attendee codes against live event state and
// records every verified attempt.
type Service struct {
	events         EventStore
	users          UserStore
	logs           AccessLogStore
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	logger         *slog.Logger
	tracer         trace.Tracer
	qrSize         int
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

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithQRSize overrides the rendered image edge in pixels.
func WithQRSize(px int) Option {
	return func(s *Service) { s.qrSize = px }
}

func New(events EventStore, users UserStore, logs AccessLogStore, opts ...Option) *Service {
	s := &Service{
		events: events,
		users:  users,
		logs:   logs,
		logger: slog.New(slog.DiscardHandler),
		tracer: otel.Tracer("eventgate/internal/checkin/service"),
		qrSize: qr.DefaultSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterAccess checks payload in at eventID on behalf of scanner.
//
// Scanner, payload and event failures end the scan Denied without a log
// entry. Once the event is found exactly one AccessLogEntry is appended,
// whatever the outcome. Repeated scans of the same code are each logged.
// Expected denials are returned in the result; the error is reserved for
// store failures and carries CodeInternal.
func (s *Service) RegisterAccess(ctx context.Context, scanner *domain.Principal, payload []byte, eventID string) (*models.AccessResult, error) {
	ctx, span := s.tracer.Start(ctx, "checkin.RegisterAccess",
		trace.WithAttributes(attribute.String("event.id", eventID)))
	defer span.End()

	result := &models.AccessResult{State: models.StateScanned, EventID: eventID}
	scannerID := ""
	if scanner != nil {
		scannerID = scanner.ID
	}

	if !decision.CanEnterRole(scanner, domain.RoleAdmin) {
		return s.reject(ctx, span, result, scannerID, decision.ReasonUnauthorized), nil
	}

	p, err := qr.Parse(payload)
	if err != nil {
		return s.reject(ctx, span, result, scannerID, decision.ReasonMalformedPayload), nil
	}
	result.UserID = p.UserID
	result.State = models.StateVerifying
	span.SetAttributes(attribute.String("user.id", p.UserID))

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return s.reject(ctx, span, result, scannerID, decision.ReasonEventNotFound), nil
		}
		return nil, s.fail(span, err, "failed to load event")
	}
	result.EventName = event.Name

	now := requestcontext.Now(ctx)
	d, err := s.verify(ctx, p.UserID, event, now)
	if err != nil {
		return nil, s.fail(span, err, "failed to load attendee")
	}

	status := domain.AccessDenied
	if d.Allowed {
		status = domain.AccessSuccess
	}
	entry := &domain.AccessLogEntry{
		ID:        uuid.NewString(),
		UserID:    p.UserID,
		EventID:   event.ID,
		EventName: event.Name,
		Timestamp: now,
		Status:    status,
		ScannedBy: scannerID,
	}
	if err := s.logs.Append(ctx, entry); err != nil {
		return nil, s.fail(span, err, "failed to record access")
	}
	s.metrics.IncrementLogWrites()
	result.Entry = entry
	result.Decision = d

	if !d.Allowed {
		result.State = models.StateDenied
		s.finish(ctx, span, result, scannerID, audit.EventCheckinDenied)
		return result, nil
	}
	result.State = models.StateGranted
	s.finish(ctx, span, result, scannerID, audit.EventCheckinGranted)
	return result, nil
}

// verify decides an accepted scan. The scanned account must still exist and
// be active; inactivity dominates registration and date checks.
func (s *Service) verify(ctx context.Context, userID string, event *domain.Event, now time.Time) (decision.Decision, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return decision.Deny(decision.ReasonAccountInactive), nil
		}
		return decision.Decision{}, err
	}
	if !user.IsActive {
		return decision.Deny(decision.ReasonAccountInactive), nil
	}
	if event.HasAttendee(userID) && event.IsUpcoming(now) {
		return decision.Allow(), nil
	}
	return decision.Deny(decision.ReasonNotRegistered), nil
}

func (s *Service) reject(ctx context.Context, span trace.Span, result *models.AccessResult, scannerID string, reason decision.Reason) *models.AccessResult {
	result.State = models.StateDenied
	result.Decision = decision.Deny(reason)
	s.finish(ctx, span, result, scannerID, audit.EventCheckinDenied)
	return result
}

func (s *Service) finish(ctx context.Context, span trace.Span, result *models.AccessResult, scannerID string, event audit.AuditEvent) {
	reason := string(result.Decision.Reason)
	span.SetAttributes(
		attribute.String("checkin.state", string(result.State)),
		attribute.String("checkin.reason", reason),
	)
	s.metrics.RecordScan(string(result.State), reason)

	level := slog.LevelInfo
	if !result.Decision.Allowed {
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, string(event),
		"user_id", result.UserID,
		"event_id", result.EventID,
		"scanned_by", scannerID,
		"reason", reason,
		"request_id", requestcontext.RequestID(ctx),
		"log_type", "audit",
	)

	if s.auditPublisher == nil {
		return
	}
	decisionLabel := "deny"
	if result.Decision.Allowed {
		decisionLabel = "allow"
	}
	e := audit.Event{
		Action:    string(event),
		UserID:    result.UserID,
		Subject:   result.EventID,
		Decision:  decisionLabel,
		Reason:    reason,
		ActorID:   scannerID,
		IP:        requestcontext.ClientIP(ctx),
		Device:    requestcontext.DeviceName(ctx),
		RequestID: requestcontext.RequestID(ctx),
	}
	if err := s.auditPublisher.Emit(ctx, e); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "error", err, "action", e.Action)
	}
}

func (s *Service) fail(span trace.Span, err error, msg string) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

// IssueQR renders the attendee code for the principal's current account.
func (s *Service) IssueQR(ctx context.Context, p *domain.Principal) (*models.QRCode, error) {
	if p == nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	user, err := s.users.FindByID(ctx, p.ID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}

	payload := qr.NewPayload(user, requestcontext.Now(ctx))
	raw, err := payload.Encode()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode qr payload")
	}
	image, err := qr.RenderDataURL(raw, s.qrSize)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate qr code")
	}
	s.metrics.IncrementQRIssued()
	return &models.QRCode{QRCode: image, Payload: payload}, nil
}

// ListAccessLogs returns userID's check-ins, newest first.
func (s *Service) ListAccessLogs(ctx context.Context, userID string, limit int) ([]*domain.AccessLogEntry, error) {
	logs, err := s.logs.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load access logs")
	}
	if logs == nil {
		logs = []*domain.AccessLogEntry{}
	}
	return logs, nil
}

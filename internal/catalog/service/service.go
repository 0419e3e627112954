package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"eventgate/internal/catalog/metrics"
	"eventgate/internal/catalog/models"
	"eventgate/internal/decision"
	"eventgate/internal/domain"
	dErrors "eventgate/pkg/domain-errors"
	"eventgate/pkg/platform/audit"
	"eventgate/pkg/platform/sentinel"
	pstrings "eventgate/pkg/platform/strings"
	"eventgate/pkg/requestcontext"
)

type PerkStore interface {
	Create(ctx context.Context, p *domain.Perk) error
	FindByID(ctx context.Context, id string) (*domain.Perk, error)
	List(ctx context.Context) ([]*domain.Perk, error)
	Update(ctx context.Context, id string, attrs map[string]any) (*domain.Perk, error)
	Delete(ctx context.Context, id string) (*domain.Perk, error)
}

type EventStore interface {
	Create(ctx context.Context, e *domain.Event) error
	FindByID(ctx context.Context, id string) (*domain.Event, error)
	List(ctx context.Context) ([]*domain.Event, error)
	Upcoming(ctx context.Context, now time.Time, limit int) ([]*domain.Event, error)
	Update(ctx context.Context, id string, attrs map[string]any) (*domain.Event, error)
	Delete(ctx context.Context, id string) (*domain.Event, error)
}

type ContentStore interface {
	Create(ctx context.Context, c *domain.ContentItem) error
	FindByID(ctx context.Context, id string) (*domain.ContentItem, error)
	List(ctx context.Context) ([]*domain.ContentItem, error)
	Update(ctx context.Context, id string, attrs map[string]any) (*domain.ContentItem, error)
	Delete(ctx context.Context, id string) (*domain.ContentItem, error)
}

// ContentDecider decides whether a principal may view a content item.
type ContentDecider interface {
	ContentAccess(ctx context.Context, p *domain.Principal, c *domain.ContentItem) decision.Decision
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

const (
	kindPerk    = "perk"
	kindEvent   = "event"
	kindContent = "content"
)

// Service manages perks, events and gated content.
type Service struct {
	perks          PerkStore
	events         EventStore
	content        ContentStore
	decider        ContentDecider
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	logger         *slog.Logger
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

func New(perks PerkStore, events EventStore, content ContentStore, decider ContentDecider, opts ...Option) *Service {
	s := &Service{
		perks:   perks,
		events:  events,
		content: content,
		decider: decider,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// -----------------------------------------------------------------------------
// Perks
// -----------------------------------------------------------------------------

func (s *Service) ListPerks(ctx context.Context) ([]*domain.Perk, error) {
	perks, err := s.perks.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list perks")
	}
	return perks, nil
}

func (s *Service) GetPerk(ctx context.Context, id string) (*domain.Perk, error) {
	p, err := s.perks.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err, kindPerk)
	}
	return p, nil
}

func (s *Service) CreatePerk(ctx context.Context, req models.CreatePerkRequest) (*domain.Perk, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	id, err := s.claimID(ctx, req.ID, func(ctx context.Context, id string) error {
		_, err := s.perks.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	p := &domain.Perk{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Type:        domain.PerkType(req.Type),
		CreatedAt:   requestcontext.Now(ctx),
	}
	if err := s.perks.Create(ctx, p); err != nil {
		return nil, createErr(err, kindPerk)
	}
	s.changed(ctx, kindPerk, "created", p.ID)
	return p, nil
}

func (s *Service) UpdatePerk(ctx context.Context, id string, req models.UpdatePerkRequest) (*domain.Perk, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	p, err := s.perks.Update(ctx, id, req.Attributes())
	if err != nil {
		return nil, wrapStoreErr(err, kindPerk)
	}
	s.changed(ctx, kindPerk, "updated", id)
	return p, nil
}

// DeletePerk removes the perk definition. Users and content that still
// reference the id keep it; it simply no longer has a display name.
func (s *Service) DeletePerk(ctx context.Context, id string) error {
	if _, err := s.perks.Delete(ctx, id); err != nil {
		return wrapStoreErr(err, kindPerk)
	}
	s.changed(ctx, kindPerk, "deleted", id)
	return nil
}

// -----------------------------------------------------------------------------
// Events
// -----------------------------------------------------------------------------

func (s *Service) ListEvents(ctx context.Context) ([]*domain.Event, error) {
	events, err := s.events.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list events")
	}
	return events, nil
}

// UpcomingEvents lists active events dated after the request time, soonest
// first.
func (s *Service) UpcomingEvents(ctx context.Context, limit int) ([]models.UpcomingEvent, error) {
	defer s.metrics.ObserveUpcoming(time.Now())
	if limit <= 0 {
		limit = models.DefaultUpcoming
	}
	events, err := s.events.Upcoming(ctx, requestcontext.Now(ctx), limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list upcoming events")
	}
	out := make([]models.UpcomingEvent, 0, len(events))
	for _, e := range events {
		out = append(out, models.NewUpcomingEvent(e))
	}
	return out, nil
}

func (s *Service) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	e, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err, kindEvent)
	}
	return e, nil
}

func (s *Service) CreateEvent(ctx context.Context, req models.CreateEventRequest) (*domain.Event, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	id, err := s.claimID(ctx, req.ID, func(ctx context.Context, id string) error {
		_, err := s.events.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	e := &domain.Event{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		Date:        req.Date.UTC(),
		Capacity:    req.Capacity,
		Attendees:   req.Attendees,
		IsActive:    active,
		CreatedAt:   requestcontext.Now(ctx),
		CreatedBy:   requestcontext.UserID(ctx),
	}
	if err := s.events.Create(ctx, e); err != nil {
		return nil, createErr(err, kindEvent)
	}
	s.changed(ctx, kindEvent, "created", e.ID)
	return e, nil
}

func (s *Service) UpdateEvent(ctx context.Context, id string, req models.UpdateEventRequest) (*domain.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	e, err := s.events.Update(ctx, id, req.Attributes())
	if err != nil {
		return nil, wrapStoreErr(err, kindEvent)
	}
	s.changed(ctx, kindEvent, "updated", id)
	return e, nil
}

func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	if _, err := s.events.Delete(ctx, id); err != nil {
		return wrapStoreErr(err, kindEvent)
	}
	s.changed(ctx, kindEvent, "deleted", id)
	return nil
}

// AddAttendee registers userID for the event. Adding an existing attendee is
// a no-op. Concurrent attendee edits are last-write-wins.
func (s *Service) AddAttendee(ctx context.Context, eventID, userID string) (*domain.Event, error) {
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "userId is required")
	}
	e, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if e.HasAttendee(userID) {
		return e, nil
	}
	attendees := pstrings.DedupeAndTrim(append(e.Attendees, userID))
	if len(attendees) > models.MaxListEntries {
		return nil, dErrors.New(dErrors.CodeValidation, "too many attendees")
	}
	updated, err := s.events.Update(ctx, eventID, map[string]any{"attendees": attendees})
	if err != nil {
		return nil, wrapStoreErr(err, kindEvent)
	}
	s.changed(ctx, kindEvent, "attendee_added", eventID)
	return updated, nil
}

func (s *Service) RemoveAttendee(ctx context.Context, eventID, userID string) (*domain.Event, error) {
	e, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !e.HasAttendee(userID) {
		return nil, dErrors.New(dErrors.CodeNotFound, "attendee not found")
	}
	updated, err := s.events.Update(ctx, eventID, map[string]any{"attendees": pstrings.Without(e.Attendees, userID)})
	if err != nil {
		return nil, wrapStoreErr(err, kindEvent)
	}
	s.changed(ctx, kindEvent, "attendee_removed", eventID)
	return updated, nil
}

// -----------------------------------------------------------------------------
// Content
// -----------------------------------------------------------------------------

func (s *Service) ListContent(ctx context.Context) ([]*domain.ContentItem, error) {
	items, err := s.content.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list content")
	}
	return items, nil
}

func (s *Service) GetContent(ctx context.Context, id string) (*domain.ContentItem, error) {
	c, err := s.content.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err, kindContent)
	}
	return c, nil
}

// ViewContent returns the item if p may see it. Denials carry CodeForbidden.
func (s *Service) ViewContent(ctx context.Context, p *domain.Principal, id string) (*domain.ContentItem, error) {
	c, err := s.GetContent(ctx, id)
	if err != nil {
		return nil, err
	}
	d := s.decider.ContentAccess(ctx, p, c)
	s.metrics.RecordContentView(string(d.Reason))
	if d.Allowed {
		return c, nil
	}

	userID := ""
	if p != nil {
		userID = p.ID
	}
	s.emit(ctx, audit.Event{
		Action:   string(audit.EventContentDenied),
		UserID:   userID,
		Subject:  id,
		Decision: "deny",
		Reason:   string(d.Reason),
	})
	if d.Reason == decision.ReasonAccountInactive {
		return nil, dErrors.New(dErrors.CodeForbidden, "account is inactive")
	}
	return nil, dErrors.New(dErrors.CodeForbidden, "a required perk is missing")
}

func (s *Service) CreateContent(ctx context.Context, req models.CreateContentRequest) (*domain.ContentItem, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	id, err := s.claimID(ctx, req.ID, func(ctx context.Context, id string) error {
		_, err := s.content.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	c := &domain.ContentItem{
		ID:            id,
		Title:         req.Title,
		Description:   req.Description,
		Type:          domain.ContentType(req.Type),
		URL:           req.URL,
		Images:        req.Images,
		RequiredPerks: req.RequiredPerks,
		CreatedAt:     requestcontext.Now(ctx),
		CreatedBy:     requestcontext.UserID(ctx),
	}
	if err := s.content.Create(ctx, c); err != nil {
		return nil, createErr(err, kindContent)
	}
	s.changed(ctx, kindContent, "created", c.ID)
	return c, nil
}

func (s *Service) UpdateContent(ctx context.Context, id string, req models.UpdateContentRequest) (*domain.ContentItem, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	c, err := s.content.Update(ctx, id, req.Attributes())
	if err != nil {
		return nil, wrapStoreErr(err, kindContent)
	}
	s.changed(ctx, kindContent, "updated", id)
	return c, nil
}

func (s *Service) DeleteContent(ctx context.Context, id string) error {
	if _, err := s.content.Delete(ctx, id); err != nil {
		return wrapStoreErr(err, kindContent)
	}
	s.changed(ctx, kindContent, "deleted", id)
	return nil
}

// -----------------------------------------------------------------------------
// helpers
// -----------------------------------------------------------------------------

// claimID returns requested when it is free, or a fresh uuid when requested
// is empty. find must return sentinel.ErrNotFound for a free id. find only
// sees its own kind; the store insert rejects ids held by other kinds.
func (s *Service) claimID(ctx context.Context, requested string, find func(context.Context, string) error) (string, error) {
	if requested == "" {
		return uuid.NewString(), nil
	}
	err := find(ctx, requested)
	switch {
	case err == nil:
		return "", dErrors.New(dErrors.CodeConflict, "id already in use")
	case errors.Is(err, sentinel.ErrNotFound):
		return requested, nil
	default:
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to check id")
	}
}

func (s *Service) changed(ctx context.Context, kind, op, id string) {
	s.metrics.RecordChange(kind, op)
	actor := requestcontext.UserID(ctx)
	s.logger.InfoContext(ctx, string(audit.EventCatalogChanged),
		"kind", kind,
		"op", op,
		"id", id,
		"actor_id", actor,
		"request_id", requestcontext.RequestID(ctx),
		"log_type", "audit",
	)
	s.emit(ctx, audit.Event{
		Action:  string(audit.EventCatalogChanged),
		Subject: kind + ":" + id,
		Reason:  op,
		ActorID: actor,
	})
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

// createErr maps an id taken by a document of another kind to a conflict.
func createErr(err error, kind string) error {
	if errors.Is(err, sentinel.ErrConflict) {
		return dErrors.New(dErrors.CodeConflict, "id already in use")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create "+kind)
}

func wrapStoreErr(err error, kind string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, kind+" not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to access "+kind)
}

package storage

import (
	"context"
	"errors"
	"sort"
	"time"

	"eventgate/internal/domain"
	"eventgate/pkg/platform/sentinel"
)

// UserRepository persists accounts. Email uniqueness is enforced by the
// underlying DocumentStore index.
type UserRepository struct {
	c collection[domain.User]
}

func NewUserRepository(docs DocumentStore) *UserRepository {
	return &UserRepository{c: collection[domain.User]{
		docs: docs,
		kind: KindUser,
		keys: func(u *domain.User) (string, string, time.Time) { return u.ID, u.Email, u.CreatedAt },
	}}
}

// Create stores a new user. An email or id already in use yields
// sentinel.ErrConflict.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	u.Email = NormalizeEmail(u.Email)
	if _, err := r.FindByEmail(ctx, u.Email); err == nil {
		return sentinel.ErrConflict
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return err
	}
	return r.c.insert(ctx, u)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.c.get(ctx, id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	doc, err := r.c.docs.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	return r.c.decode(doc)
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	users, err := r.c.list(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

// ExistsWithRole reports whether any account holds role.
func (r *UserRepository) ExistsWithRole(ctx context.Context, role domain.Role) (bool, error) {
	users, err := r.c.list(ctx)
	if err != nil {
		return false, err
	}
	for _, u := range users {
		if u.Role == role {
			return true, nil
		}
	}
	return false, nil
}

// UserUpdate is a partial account update. Nil fields are left unchanged.
type UserUpdate struct {
	Email        *string
	Name         *string
	PasswordHash *string
	Role         *domain.Role
	Perks        []string
	EventAccess  []string
	IsActive     *bool
	UpdatedAt    time.Time
}

func (u UserUpdate) attrs() map[string]any {
	attrs := map[string]any{"updatedAt": u.UpdatedAt}
	if u.Email != nil {
		attrs["email"] = NormalizeEmail(*u.Email)
	}
	if u.Name != nil {
		attrs["name"] = *u.Name
	}
	if u.PasswordHash != nil {
		attrs["password"] = *u.PasswordHash
	}
	if u.Role != nil {
		attrs["role"] = *u.Role
	}
	if u.Perks != nil {
		attrs["perks"] = u.Perks
	}
	if u.EventAccess != nil {
		attrs["eventAccess"] = u.EventAccess
	}
	if u.IsActive != nil {
		attrs["isActive"] = *u.IsActive
	}
	return attrs
}

func (r *UserRepository) Update(ctx context.Context, id string, upd UserUpdate) (*domain.User, error) {
	return r.c.update(ctx, id, upd.attrs())
}

func (r *UserRepository) Delete(ctx context.Context, id string) (*domain.User, error) {
	return r.c.delete(ctx, id)
}

type PerkRepository struct {
	c collection[domain.Perk]
}

func NewPerkRepository(docs DocumentStore) *PerkRepository {
	return &PerkRepository{c: collection[domain.Perk]{
		docs: docs,
		kind: KindPerk,
		keys: func(p *domain.Perk) (string, string, time.Time) { return p.ID, "", p.CreatedAt },
	}}
}

func (r *PerkRepository) Create(ctx context.Context, p *domain.Perk) error {
	return r.c.insert(ctx, p)
}

func (r *PerkRepository) FindByID(ctx context.Context, id string) (*domain.Perk, error) {
	return r.c.get(ctx, id)
}

func (r *PerkRepository) List(ctx context.Context) ([]*domain.Perk, error) {
	perks, err := r.c.list(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(perks, func(i, j int) bool { return perks[i].Name < perks[j].Name })
	return perks, nil
}

func (r *PerkRepository) Update(ctx context.Context, id string, attrs map[string]any) (*domain.Perk, error) {
	return r.c.update(ctx, id, attrs)
}

func (r *PerkRepository) Delete(ctx context.Context, id string) (*domain.Perk, error) {
	return r.c.delete(ctx, id)
}

type EventRepository struct {
	c collection[domain.Event]
}

func NewEventRepository(docs DocumentStore) *EventRepository {
	return &EventRepository{c: collection[domain.Event]{
		docs: docs,
		kind: KindEvent,
		keys: func(e *domain.Event) (string, string, time.Time) { return e.ID, "", e.CreatedAt },
	}}
}

func (r *EventRepository) Create(ctx context.Context, e *domain.Event) error {
	return r.c.insert(ctx, e)
}

func (r *EventRepository) FindByID(ctx context.Context, id string) (*domain.Event, error) {
	return r.c.get(ctx, id)
}

// List returns all events ordered by date.
func (r *EventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	events, err := r.c.list(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })
	return events, nil
}

// Upcoming returns active events dated strictly after now, soonest first.
// limit <= 0 means no limit.
func (r *EventRepository) Upcoming(ctx context.Context, now time.Time, limit int) ([]*domain.Event, error) {
	events, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Event, 0, len(events))
	for _, e := range events {
		if !e.IsActive || !e.IsUpcoming(now) {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *EventRepository) Update(ctx context.Context, id string, attrs map[string]any) (*domain.Event, error) {
	return r.c.update(ctx, id, attrs)
}

func (r *EventRepository) Delete(ctx context.Context, id string) (*domain.Event, error) {
	return r.c.delete(ctx, id)
}

type ContentRepository struct {
	c collection[domain.ContentItem]
}

func NewContentRepository(docs DocumentStore) *ContentRepository {
	return &ContentRepository{c: collection[domain.ContentItem]{
		docs: docs,
		kind: KindContent,
		keys: func(ci *domain.ContentItem) (string, string, time.Time) { return ci.ID, "", ci.CreatedAt },
	}}
}

func (r *ContentRepository) Create(ctx context.Context, ci *domain.ContentItem) error {
	return r.c.insert(ctx, ci)
}

func (r *ContentRepository) FindByID(ctx context.Context, id string) (*domain.ContentItem, error) {
	return r.c.get(ctx, id)
}

func (r *ContentRepository) List(ctx context.Context) ([]*domain.ContentItem, error) {
	items, err := r.c.list(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

func (r *ContentRepository) Update(ctx context.Context, id string, attrs map[string]any) (*domain.ContentItem, error) {
	return r.c.update(ctx, id, attrs)
}

func (r *ContentRepository) Delete(ctx context.Context, id string) (*domain.ContentItem, error) {
	return r.c.delete(ctx, id)
}

// AccessLogRepository is append-only: Append never replaces an entry.
type AccessLogRepository struct {
	c collection[domain.AccessLogEntry]
}

func NewAccessLogRepository(docs DocumentStore) *AccessLogRepository {
	return &AccessLogRepository{c: collection[domain.AccessLogEntry]{
		docs: docs,
		kind: KindAccessLog,
		keys: func(e *domain.AccessLogEntry) (string, string, time.Time) { return e.ID, "", e.Timestamp },
	}}
}

func (r *AccessLogRepository) Append(ctx context.Context, e *domain.AccessLogEntry) error {
	return r.c.insert(ctx, e)
}

// ListByUser returns the entries for userID, newest first. limit <= 0 means no
// limit.
func (r *AccessLogRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.AccessLogEntry, error) {
	all, err := r.c.list(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.AccessLogEntry, 0)
	for _, e := range all {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListByEvent returns the entries for eventID, newest first.
func (r *AccessLogRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.AccessLogEntry, error) {
	all, err := r.c.list(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.AccessLogEntry, 0)
	for _, e := range all {
		if e.EventID == eventID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

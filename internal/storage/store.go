package storage

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

// Kind is the discriminator stored on every document of the shared table.
type Kind string

const (
	KindUser      Kind = "user"
	KindPerk      Kind = "perk"
	KindEvent     Kind = "event"
	KindContent   Kind = "content"
	KindAccessLog Kind = "access_log"
)

// Document is one record of the single logical table: a flat JSON attribute
// map keyed by ID, tagged with its Kind. Email is only set for users and backs
// the unique email index.
type Document struct {
	ID        string
	Kind      Kind
	Email     string
	CreatedAt time.Time
	Body      json.RawMessage
}

// DocumentStore is the key-value document collaborator. Implementations:
// memory (tests, dev), redis and postgres.
//
// Insert is create-only: it fails with sentinel.ErrConflict when any
// document, of any kind, already holds the id. Put creates or replaces. Update merges top-level attributes into the stored
// body and returns the new document; there is no version check, so concurrent
// updates to the same id are last-write-wins. Delete returns the removed
// document. Missing ids yield sentinel.ErrNotFound; an email already bound to
// another id yields sentinel.ErrConflict.
type DocumentStore interface {
	Get(ctx context.Context, id string) (*Document, error)
	Insert(ctx context.Context, doc *Document) error
	Put(ctx context.Context, doc *Document) error
	Update(ctx context.Context, id string, attrs map[string]any) (*Document, error)
	Delete(ctx context.Context, id string) (*Document, error)
	FindByEmail(ctx context.Context, email string) (*Document, error)
	ListByKind(ctx context.Context, kind Kind) ([]*Document, error)
}

// NormalizeEmail is the canonical form used by the email index.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// MergeAttributes overlays attrs onto a JSON object body. Keys with nil values
// are left untouched.
func MergeAttributes(body json.RawMessage, attrs map[string]any) (json.RawMessage, error) {
	fields := map[string]json.RawMessage{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &fields); err != nil {
			return nil, err
		}
	}
	for k, v := range attrs {
		if v == nil {
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		fields[k] = raw
	}
	return json.Marshal(fields)
}

// EmailFromAttrs extracts a normalized email update, if any.
func EmailFromAttrs(attrs map[string]any) (string, bool) {
	v, ok := attrs["email"]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return NormalizeEmail(s), true
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	c.Body = append(json.RawMessage(nil), d.Body...)
	return &c
}

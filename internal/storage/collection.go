package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"eventgate/pkg/platform/sentinel"
)

// keyFunc extracts the envelope fields of a typed entity.
type keyFunc[T any] func(v *T) (id, email string, createdAt time.Time)

// collection is a typed view over one Kind of the shared table. It is the
// only place that reads or writes the discriminator.
type collection[T any] struct {
	docs DocumentStore
	kind Kind
	keys keyFunc[T]
}

func (c collection[T]) encode(v *T) (*Document, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", c.kind, err)
	}
	id, email, createdAt := c.keys(v)
	return &Document{
		ID:        id,
		Kind:      c.kind,
		Email:     NormalizeEmail(email),
		CreatedAt: createdAt,
		Body:      body,
	}, nil
}

func (c collection[T]) decode(doc *Document) (*T, error) {
	if doc == nil || doc.Kind != c.kind {
		return nil, sentinel.ErrNotFound
	}
	var v T
	if err := json.Unmarshal(doc.Body, &v); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", c.kind, doc.ID, err)
	}
	return &v, nil
}

// insert never replaces: an id already held by a document of any kind is
// sentinel.ErrConflict.
func (c collection[T]) insert(ctx context.Context, v *T) error {
	doc, err := c.encode(v)
	if err != nil {
		return err
	}
	return c.docs.Insert(ctx, doc)
}

func (c collection[T]) get(ctx context.Context, id string) (*T, error) {
	doc, err := c.docs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.decode(doc)
}

func (c collection[T]) list(ctx context.Context) ([]*T, error) {
	docs, err := c.docs.ListByKind(ctx, c.kind)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(docs))
	for _, doc := range docs {
		v, err := c.decode(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// update refuses to touch a document of a different kind sharing the id.
func (c collection[T]) update(ctx context.Context, id string, attrs map[string]any) (*T, error) {
	if _, err := c.get(ctx, id); err != nil {
		return nil, err
	}
	doc, err := c.docs.Update(ctx, id, attrs)
	if err != nil {
		return nil, err
	}
	return c.decode(doc)
}

func (c collection[T]) delete(ctx context.Context, id string) (*T, error) {
	if _, err := c.get(ctx, id); err != nil {
		return nil, err
	}
	doc, err := c.docs.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.decode(doc)
}

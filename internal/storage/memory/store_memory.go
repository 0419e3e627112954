package memory

import (
	"context"
	"fmt"
	"sync"

	"eventgate/internal/storage"
	"eventgate/pkg/platform/sentinel"
)

// Error Contract:
// - ErrNotFound when the requested document does not exist
// - ErrConflict when an email is already bound to another document, or when
//   Insert meets an id that is already taken

// InMemory stores documents in process memory for tests and local dev.
type InMemory struct {
	mu      sync.RWMutex
	docs    map[string]*storage.Document
	byEmail map[string]string
}

// New constructs an empty in-memory document store.
func New() *InMemory {
	return &InMemory{
		docs:    make(map[string]*storage.Document),
		byEmail: make(map[string]string),
	}
}

func (s *InMemory) Get(_ context.Context, id string) (*storage.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, sentinel.ErrNotFound)
	}
	return doc.Clone(), nil
}

func (s *InMemory) Insert(_ context.Context, doc *storage.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.docs[doc.ID]; ok {
		return fmt.Errorf("%s %s: %w", prev.Kind, doc.ID, sentinel.ErrConflict)
	}
	return s.putLocked(doc)
}

func (s *InMemory) Put(_ context.Context, doc *storage.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putLocked(doc)
}

func (s *InMemory) putLocked(doc *storage.Document) error {
	email := storage.NormalizeEmail(doc.Email)
	if email != "" {
		if owner, ok := s.byEmail[email]; ok && owner != doc.ID {
			return fmt.Errorf("email %s: %w", email, sentinel.ErrConflict)
		}
	}
	if prev, ok := s.docs[doc.ID]; ok && prev.Email != "" && prev.Email != email {
		delete(s.byEmail, prev.Email)
	}
	stored := doc.Clone()
	stored.Email = email
	s.docs[doc.ID] = stored
	if email != "" {
		s.byEmail[email] = doc.ID
	}
	return nil
}

func (s *InMemory) Update(_ context.Context, id string, attrs map[string]any) (*storage.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, sentinel.ErrNotFound)
	}
	email, changed := storage.EmailFromAttrs(attrs)
	if changed && email != doc.Email {
		if owner, ok := s.byEmail[email]; ok && owner != id {
			return nil, fmt.Errorf("email %s: %w", email, sentinel.ErrConflict)
		}
	}
	body, err := storage.MergeAttributes(doc.Body, attrs)
	if err != nil {
		return nil, fmt.Errorf("merge attributes: %w", err)
	}
	updated := doc.Clone()
	updated.Body = body
	if changed && email != doc.Email {
		delete(s.byEmail, doc.Email)
		s.byEmail[email] = id
		updated.Email = email
	}
	s.docs[id] = updated
	return updated.Clone(), nil
}

func (s *InMemory) Delete(_ context.Context, id string) (*storage.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, sentinel.ErrNotFound)
	}
	delete(s.docs, id)
	if doc.Email != "" {
		delete(s.byEmail, doc.Email)
	}
	return doc, nil
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*storage.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[storage.NormalizeEmail(email)]
	if !ok {
		return nil, fmt.Errorf("email %s: %w", email, sentinel.ErrNotFound)
	}
	return s.docs[id].Clone(), nil
}

func (s *InMemory) ListByKind(_ context.Context, kind storage.Kind) ([]*storage.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*storage.Document, 0)
	for _, doc := range s.docs {
		if doc.Kind == kind {
			out = append(out, doc.Clone())
		}
	}
	return out, nil
}

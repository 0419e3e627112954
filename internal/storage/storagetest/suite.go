// Package storagetest holds the behavioural contract every DocumentStore
// backend must satisfy. Backend packages embed DocumentStoreSuite and supply
// a fresh store per test.
package storagetest

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"eventgate/internal/storage"
	"eventgate/pkg/platform/sentinel"
)

type DocumentStoreSuite struct {
	suite.Suite
	// NewStore returns an empty store. Called before every test.
	NewStore func() storage.DocumentStore

	Store storage.DocumentStore
	Ctx   context.Context
}

func (s *DocumentStoreSuite) SetupTest() {
	s.Ctx = context.Background()
	s.Store = s.NewStore()
}

func (s *DocumentStoreSuite) doc(kind storage.Kind, email string, body map[string]any) *storage.Document {
	raw, err := json.Marshal(body)
	s.Require().NoError(err)
	return &storage.Document{
		ID:        uuid.NewString(),
		Kind:      kind,
		Email:     email,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
		Body:      raw,
	}
}

func (s *DocumentStoreSuite) body(doc *storage.Document) map[string]any {
	out := map[string]any{}
	s.Require().NoError(json.Unmarshal(doc.Body, &out))
	return out
}

func (s *DocumentStoreSuite) TestPutAndGet() {
	s.Run("round-trips a document", func() {
		d := s.doc(storage.KindPerk, "", map[string]any{"name": "VIP"})
		s.Require().NoError(s.Store.Put(s.Ctx, d))

		got, err := s.Store.Get(s.Ctx, d.ID)
		s.Require().NoError(err)
		s.Equal(storage.KindPerk, got.Kind)
		s.Equal("VIP", s.body(got)["name"])
		s.True(d.CreatedAt.Equal(got.CreatedAt))
	})

	s.Run("unknown id is ErrNotFound", func() {
		_, err := s.Store.Get(s.Ctx, uuid.NewString())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("put replaces an existing id", func() {
		d := s.doc(storage.KindEvent, "", map[string]any{"name": "before"})
		s.Require().NoError(s.Store.Put(s.Ctx, d))
		d.Body = json.RawMessage(`{"name":"after"}`)
		s.Require().NoError(s.Store.Put(s.Ctx, d))

		got, err := s.Store.Get(s.Ctx, d.ID)
		s.Require().NoError(err)
		s.Equal("after", s.body(got)["name"])
	})
}

func (s *DocumentStoreSuite) TestInsert() {
	s.Run("stores a new document", func() {
		d := s.doc(storage.KindContent, "", map[string]any{"title": "Slides"})
		s.Require().NoError(s.Store.Insert(s.Ctx, d))

		got, err := s.Store.Get(s.Ctx, d.ID)
		s.Require().NoError(err)
		s.Equal(storage.KindContent, got.Kind)
	})

	s.Run("refuses an id held by another kind", func() {
		event := s.doc(storage.KindEvent, "", map[string]any{"name": "Workshop"})
		event.ID = "workshop-2024"
		s.Require().NoError(s.Store.Insert(s.Ctx, event))

		perk := s.doc(storage.KindPerk, "", map[string]any{"name": "VIP"})
		perk.ID = event.ID
		s.ErrorIs(s.Store.Insert(s.Ctx, perk), sentinel.ErrConflict)

		got, err := s.Store.Get(s.Ctx, event.ID)
		s.Require().NoError(err)
		s.Equal(storage.KindEvent, got.Kind)
		s.Equal("Workshop", s.body(got)["name"])

		perks, err := s.Store.ListByKind(s.Ctx, storage.KindPerk)
		s.Require().NoError(err)
		s.Empty(perks)
	})

	s.Run("refuses an id held by the same kind", func() {
		entry := s.doc(storage.KindAccessLog, "", map[string]any{"status": "success"})
		s.Require().NoError(s.Store.Insert(s.Ctx, entry))

		forged := *entry
		forged.Body = json.RawMessage(`{"status":"denied"}`)
		s.ErrorIs(s.Store.Insert(s.Ctx, &forged), sentinel.ErrConflict)

		got, err := s.Store.Get(s.Ctx, entry.ID)
		s.Require().NoError(err)
		s.Equal("success", s.body(got)["status"])
	})

	s.Run("refuses a taken email", func() {
		first := s.doc(storage.KindUser, "insert@example.com", map[string]any{})
		second := s.doc(storage.KindUser, "insert@example.com", map[string]any{})
		s.Require().NoError(s.Store.Insert(s.Ctx, first))
		s.ErrorIs(s.Store.Insert(s.Ctx, second), sentinel.ErrConflict)
	})
}

// TestConcurrentInsertSameID verifies that writers racing for one id produce
// exactly one winner regardless of kind.
func (s *DocumentStoreSuite) TestConcurrentInsertSameID() {
	const goroutines = 10
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
	)
	kinds := []storage.Kind{storage.KindEvent, storage.KindPerk, storage.KindContent}
	for i := range goroutines {
		d := s.doc(kinds[i%len(kinds)], "", map[string]any{"n": i})
		d.ID = "contested-id"
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Store.Insert(s.Ctx, d) == nil {
				successes.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successes.Load())
}

func (s *DocumentStoreSuite) TestEmailIndex() {
	s.Run("finds by normalized email", func() {
		d := s.doc(storage.KindUser, "Ana@Example.com", map[string]any{"email": "ana@example.com"})
		s.Require().NoError(s.Store.Put(s.Ctx, d))

		got, err := s.Store.FindByEmail(s.Ctx, " ANA@example.com ")
		s.Require().NoError(err)
		s.Equal(d.ID, got.ID)
	})

	s.Run("rejects a second document with the same email", func() {
		first := s.doc(storage.KindUser, "dup@example.com", map[string]any{})
		second := s.doc(storage.KindUser, "dup@example.com", map[string]any{})
		s.Require().NoError(s.Store.Put(s.Ctx, first))
		s.ErrorIs(s.Store.Put(s.Ctx, second), sentinel.ErrConflict)
	})

	s.Run("unknown email is ErrNotFound", func() {
		_, err := s.Store.FindByEmail(s.Ctx, "nobody@example.com")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("email change moves the index", func() {
		d := s.doc(storage.KindUser, "old@example.com", map[string]any{"email": "old@example.com"})
		s.Require().NoError(s.Store.Put(s.Ctx, d))

		_, err := s.Store.Update(s.Ctx, d.ID, map[string]any{"email": "new@example.com"})
		s.Require().NoError(err)

		_, err = s.Store.FindByEmail(s.Ctx, "old@example.com")
		s.ErrorIs(err, sentinel.ErrNotFound)
		got, err := s.Store.FindByEmail(s.Ctx, "new@example.com")
		s.Require().NoError(err)
		s.Equal(d.ID, got.ID)
	})

	s.Run("email change to a taken address conflicts", func() {
		a := s.doc(storage.KindUser, "a@example.com", map[string]any{})
		b := s.doc(storage.KindUser, "b@example.com", map[string]any{})
		s.Require().NoError(s.Store.Put(s.Ctx, a))
		s.Require().NoError(s.Store.Put(s.Ctx, b))

		_, err := s.Store.Update(s.Ctx, b.ID, map[string]any{"email": "a@example.com"})
		s.ErrorIs(err, sentinel.ErrConflict)
	})
}

func (s *DocumentStoreSuite) TestUpdate() {
	s.Run("merges attributes and keeps the rest", func() {
		d := s.doc(storage.KindUser, "merge@example.com", map[string]any{"name": "Ana", "isActive": true})
		s.Require().NoError(s.Store.Put(s.Ctx, d))

		got, err := s.Store.Update(s.Ctx, d.ID, map[string]any{"isActive": false, "name": nil})
		s.Require().NoError(err)
		body := s.body(got)
		s.Equal("Ana", body["name"])
		s.Equal(false, body["isActive"])
	})

	s.Run("unknown id is ErrNotFound", func() {
		_, err := s.Store.Update(s.Ctx, uuid.NewString(), map[string]any{"x": 1})
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *DocumentStoreSuite) TestDelete() {
	s.Run("returns the removed document and frees the email", func() {
		d := s.doc(storage.KindUser, "gone@example.com", map[string]any{"name": "Gone"})
		s.Require().NoError(s.Store.Put(s.Ctx, d))

		old, err := s.Store.Delete(s.Ctx, d.ID)
		s.Require().NoError(err)
		s.Equal("Gone", s.body(old)["name"])

		_, err = s.Store.Get(s.Ctx, d.ID)
		s.ErrorIs(err, sentinel.ErrNotFound)
		_, err = s.Store.FindByEmail(s.Ctx, "gone@example.com")
		s.ErrorIs(err, sentinel.ErrNotFound)

		again := s.doc(storage.KindUser, "gone@example.com", map[string]any{})
		s.NoError(s.Store.Put(s.Ctx, again))
	})

	s.Run("unknown id is ErrNotFound", func() {
		_, err := s.Store.Delete(s.Ctx, uuid.NewString())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *DocumentStoreSuite) TestListByKind() {
	for i := 0; i < 3; i++ {
		s.Require().NoError(s.Store.Put(s.Ctx, s.doc(storage.KindEvent, "", map[string]any{"n": i})))
	}
	s.Require().NoError(s.Store.Put(s.Ctx, s.doc(storage.KindPerk, "", map[string]any{})))

	events, err := s.Store.ListByKind(s.Ctx, storage.KindEvent)
	s.Require().NoError(err)
	s.Len(events, 3)
	for _, e := range events {
		s.Equal(storage.KindEvent, e.Kind)
	}

	none, err := s.Store.ListByKind(s.Ctx, storage.KindContent)
	s.Require().NoError(err)
	s.Empty(none)
}

// TestConcurrentEmailRegistration verifies that concurrent writers racing for
// one email produce exactly one winner.
func (s *DocumentStoreSuite) TestConcurrentEmailRegistration() {
	const goroutines = 20
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		conflicts atomic.Int32
	)
	docs := make([]*storage.Document, goroutines)
	for i := range docs {
		docs[i] = s.doc(storage.KindUser, "race@example.com", map[string]any{})
	}
	for _, d := range docs {
		wg.Add(1)
		go func(d *storage.Document) {
			defer wg.Done()
			err := s.Store.Put(s.Ctx, d)
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflicts.Add(1)
			}
		}(d)
	}
	wg.Wait()

	s.Equal(int32(1), successes.Load())
	s.Equal(int32(goroutines-1), conflicts.Load())
}

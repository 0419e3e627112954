package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"eventgate/internal/storage"
	"eventgate/pkg/platform/sentinel"
)

var opDurationMs = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "eventgate_redis_store_op_duration_ms",
	Help:    "Latency of redis document store operations in milliseconds",
	Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 25, 50},
}, []string{"op"})

const (
	docKeyPrefix   = "eg:doc:"
	emailKeyPrefix = "eg:email:"
	kindKeyPrefix  = "eg:kind:"

	maxTxRetries = 5
)

// record is the stored JSON envelope of a document.
type record struct {
	ID        string          `json:"id"`
	Kind      storage.Kind    `json:"type"`
	Email     string          `json:"email,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	Body      json.RawMessage `json:"body"`
}

func toRecord(doc *storage.Document) record {
	return record{ID: doc.ID, Kind: doc.Kind, Email: doc.Email, CreatedAt: doc.CreatedAt, Body: doc.Body}
}

func (r record) document() *storage.Document {
	return &storage.Document{ID: r.ID, Kind: r.Kind, Email: r.Email, CreatedAt: r.CreatedAt, Body: r.Body}
}

// Store keeps each document as a JSON string, with a string key per email and
// a set per kind. Writes that touch the email index run under WATCH so two
// concurrent registrations for one email cannot both succeed.
type Store struct {
	client *redis.Client
}

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func observe(op string, start time.Time) {
	opDurationMs.WithLabelValues(op).Observe(float64(time.Since(start).Microseconds()) / 1000.0)
}

func (s *Store) load(ctx context.Context, c redis.Cmdable, id string) (*record, error) {
	raw, err := c.Get(ctx, docKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("document %s: %w", id, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id, err)
	}
	return &rec, nil
}

func (s *Store) Get(ctx context.Context, id string) (*storage.Document, error) {
	defer observe("get", time.Now())
	rec, err := s.load(ctx, s.client, id)
	if err != nil {
		return nil, err
	}
	return rec.document(), nil
}

// checkEmailOwner fails with ErrConflict if email is bound to an id other than id.
func checkEmailOwner(ctx context.Context, tx *redis.Tx, email, id string) error {
	if email == "" {
		return nil
	}
	owner, err := tx.Get(ctx, emailKeyPrefix+email).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get email index: %w", err)
	}
	if owner != id {
		return fmt.Errorf("email %s: %w", email, sentinel.ErrConflict)
	}
	return nil
}

// watch runs fn under optimistic locking, retrying when a watched key changes.
func (s *Store) watch(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error {
	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, fn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("document write contention: %w", sentinel.ErrUnavailable)
}

func (s *Store) Insert(ctx context.Context, doc *storage.Document) error {
	defer observe("insert", time.Now())
	return s.write(ctx, doc, true)
}

func (s *Store) Put(ctx context.Context, doc *storage.Document) error {
	defer observe("put", time.Now())
	return s.write(ctx, doc, false)
}

// write stores doc under WATCH of its key and email index. With createOnly an
// existing id of any kind aborts with ErrConflict and the SET runs with NX.
func (s *Store) write(ctx context.Context, doc *storage.Document, createOnly bool) error {
	rec := toRecord(doc)
	rec.Email = storage.NormalizeEmail(rec.Email)
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	docKey := docKeyPrefix + rec.ID
	keys := []string{docKey}
	if rec.Email != "" {
		keys = append(keys, emailKeyPrefix+rec.Email)
	}

	return s.watch(ctx, func(tx *redis.Tx) error {
		if err := checkEmailOwner(ctx, tx, rec.Email, rec.ID); err != nil {
			return err
		}
		prev, err := s.load(ctx, tx, rec.ID)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return err
		}
		if createOnly && prev != nil {
			return fmt.Errorf("%s %s: %w", prev.Kind, rec.ID, sentinel.ErrConflict)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if prev != nil && prev.Email != "" && prev.Email != rec.Email {
				pipe.Del(ctx, emailKeyPrefix+prev.Email)
			}
			if prev != nil && prev.Kind != rec.Kind {
				pipe.SRem(ctx, kindKeyPrefix+string(prev.Kind), rec.ID)
			}
			if createOnly {
				pipe.SetNX(ctx, docKey, payload, 0)
			} else {
				pipe.Set(ctx, docKey, payload, 0)
			}
			if rec.Email != "" {
				pipe.Set(ctx, emailKeyPrefix+rec.Email, rec.ID, 0)
			}
			pipe.SAdd(ctx, kindKeyPrefix+string(rec.Kind), rec.ID)
			return nil
		})
		return err
	}, keys...)
}

func (s *Store) Update(ctx context.Context, id string, attrs map[string]any) (*storage.Document, error) {
	defer observe("update", time.Now())
	docKey := docKeyPrefix + id
	keys := []string{docKey}
	email, emailChanged := storage.EmailFromAttrs(attrs)
	if emailChanged {
		keys = append(keys, emailKeyPrefix+email)
	}

	var updated *record
	err := s.watch(ctx, func(tx *redis.Tx) error {
		rec, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}
		prevEmail := rec.Email
		if emailChanged && email != prevEmail {
			if err := checkEmailOwner(ctx, tx, email, id); err != nil {
				return err
			}
			rec.Email = email
		}
		body, err := storage.MergeAttributes(rec.Body, attrs)
		if err != nil {
			return fmt.Errorf("merge attributes: %w", err)
		}
		rec.Body = body
		payload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode document: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, docKey, payload, 0)
			if rec.Email != prevEmail {
				if prevEmail != "" {
					pipe.Del(ctx, emailKeyPrefix+prevEmail)
				}
				pipe.Set(ctx, emailKeyPrefix+rec.Email, id, 0)
			}
			return nil
		})
		if err != nil {
			return err
		}
		updated = rec
		return nil
	}, keys...)
	if err != nil {
		return nil, err
	}
	return updated.document(), nil
}

func (s *Store) Delete(ctx context.Context, id string) (*storage.Document, error) {
	defer observe("delete", time.Now())
	var deleted *record
	err := s.watch(ctx, func(tx *redis.Tx) error {
		rec, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, docKeyPrefix+id)
			if rec.Email != "" {
				pipe.Del(ctx, emailKeyPrefix+rec.Email)
			}
			pipe.SRem(ctx, kindKeyPrefix+string(rec.Kind), id)
			return nil
		})
		if err != nil {
			return err
		}
		deleted = rec
		return nil
	}, docKeyPrefix+id)
	if err != nil {
		return nil, err
	}
	return deleted.document(), nil
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*storage.Document, error) {
	defer observe("find_by_email", time.Now())
	email = storage.NormalizeEmail(email)
	id, err := s.client.Get(ctx, emailKeyPrefix+email).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("email %s: %w", email, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get email index: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *Store) ListByKind(ctx context.Context, kind storage.Kind) ([]*storage.Document, error) {
	defer observe("list_by_kind", time.Now())
	ids, err := s.client.SMembers(ctx, kindKeyPrefix+string(kind)).Result()
	if err != nil {
		return nil, fmt.Errorf("list %s ids: %w", kind, err)
	}
	out := make([]*storage.Document, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = docKeyPrefix + id
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load %s documents: %w", kind, err)
	}
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// deleted between SMEMBERS and MGET
			continue
		}
		var rec record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decode %s document: %w", kind, err)
		}
		if rec.Kind == kind {
			out = append(out, rec.document())
		}
	}
	return out, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"eventgate/internal/storage"
	"eventgate/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

const selectColumns = `id, type, COALESCE(email, ''), created_at, body`

// Store persists documents in a single JSONB table.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func scanDocument(row pgx.Row) (*storage.Document, error) {
	var (
		doc  storage.Document
		kind string
		body []byte
	)
	if err := row.Scan(&doc.ID, &kind, &doc.Email, &doc.CreatedAt, &body); err != nil {
		return nil, err
	}
	doc.Kind = storage.Kind(kind)
	doc.Body = body
	return &doc, nil
}

func nullableEmail(email string) *string {
	email = storage.NormalizeEmail(email)
	if email == "" {
		return nil
	}
	return &email
}

func translate(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, sentinel.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", what, sentinel.ErrConflict)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func (s *Store) Get(ctx context.Context, id string) (*storage.Document, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM documents WHERE id = $1`, id)
	doc, err := scanDocument(row)
	if err != nil {
		return nil, translate(err, "get document "+id)
	}
	return doc, nil
}

// Insert never overwrites: an id held by any document turns the insert into a
// no-op, reported as ErrConflict. A taken email still raises 23505.
func (s *Store) Insert(ctx context.Context, doc *storage.Document) error {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO documents (id, type, email, created_at, updated_at, body)
		VALUES ($1, $2, $3, $4, now(), $5)
		ON CONFLICT (id) DO NOTHING`,
		doc.ID, string(doc.Kind), nullableEmail(doc.Email), doc.CreatedAt, []byte(doc.Body))
	if err != nil {
		return translate(err, "insert document "+doc.ID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("insert document %s: %w", doc.ID, sentinel.ErrConflict)
	}
	return nil
}

func (s *Store) Put(ctx context.Context, doc *storage.Document) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO documents (id, type, email, created_at, updated_at, body)
		VALUES ($1, $2, $3, $4, now(), $5)
		ON CONFLICT (id) DO UPDATE
		SET type = EXCLUDED.type,
		    email = EXCLUDED.email,
		    created_at = EXCLUDED.created_at,
		    updated_at = now(),
		    body = EXCLUDED.body`,
		doc.ID, string(doc.Kind), nullableEmail(doc.Email), doc.CreatedAt, []byte(doc.Body))
	if err != nil {
		return translate(err, "put document "+doc.ID)
	}
	return nil
}

// Update merges attrs into the stored body with the jsonb || operator, so
// the read-modify-write happens inside a single statement.
func (s *Store) Update(ctx context.Context, id string, attrs map[string]any) (*storage.Document, error) {
	patch, err := storage.MergeAttributes(nil, attrs)
	if err != nil {
		return nil, fmt.Errorf("encode attributes: %w", err)
	}
	var email *string
	if e, ok := storage.EmailFromAttrs(attrs); ok {
		email = nullableEmail(e)
	}
	row := s.pool.QueryRow(ctx, `
		UPDATE documents
		SET body = body || $2::jsonb,
		    email = COALESCE($3::text, email),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+selectColumns,
		id, []byte(patch), email)
	doc, err := scanDocument(row)
	if err != nil {
		return nil, translate(err, "update document "+id)
	}
	return doc, nil
}

func (s *Store) Delete(ctx context.Context, id string) (*storage.Document, error) {
	row := s.pool.QueryRow(ctx, `DELETE FROM documents WHERE id = $1 RETURNING `+selectColumns, id)
	doc, err := scanDocument(row)
	if err != nil {
		return nil, translate(err, "delete document "+id)
	}
	return doc, nil
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*storage.Document, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM documents WHERE email = $1`, storage.NormalizeEmail(email))
	doc, err := scanDocument(row)
	if err != nil {
		return nil, translate(err, "find by email")
	}
	return doc, nil
}

func (s *Store) ListByKind(ctx context.Context, kind storage.Kind) ([]*storage.Document, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+selectColumns+` FROM documents WHERE type = $1 ORDER BY created_at`, string(kind))
	if err != nil {
		return nil, translate(err, "list "+string(kind))
	}
	defer rows.Close()

	out := make([]*storage.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, translate(err, "scan "+string(kind))
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "list "+string(kind))
	}
	return out, nil
}

// TruncateAll empties the table. Used by integration tests.
func (s *Store) TruncateAll(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE documents`)
	return err
}

// Ping reports whether the pool can reach the database.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

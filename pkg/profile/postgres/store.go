// Package postgres provides the PostgreSQL-backed [profile.Store]
// implementation used by the account and profile endpoints.
//
// The schema is a single users table with a case-insensitive unique index on
// email. [Migrate] is idempotent and runs on every application start.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flashflow-ai/flashflow/pkg/profile"
)

var _ profile.Store = (*Store)(nil)

const ddlUsers = `
CREATE TABLE IF NOT EXISTS users (
    id             UUID         PRIMARY KEY,
    email          TEXT         NOT NULL,
    name           TEXT         NOT NULL DEFAULT '',
    mobile         TEXT         NOT NULL DEFAULT '',
    date_of_birth  TEXT         NOT NULL DEFAULT '',
    password_hash  TEXT         NOT NULL DEFAULT '',
    auth_provider  TEXT         NOT NULL DEFAULT 'password',
    registered_at  TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email
    ON users (lower(email));
`

// uniqueViolation is the PostgreSQL error code raised when the email index
// rejects a duplicate.
const uniqueViolation = "23505"

// Store is the PostgreSQL-backed user store. It holds a single
// [pgxpool.Pool]; all operations are safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore establishes a connection pool to the database at dsn, verifies
// connectivity and runs [Migrate].
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("profile store: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("profile store: ping: %w", err)
	}

	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("profile store: migrate: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Migrate creates the users table and its indexes if they do not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, ddlUsers); err != nil {
		return fmt.Errorf("profile migrate: %w", err)
	}
	return nil
}

// Pool exposes the underlying connection pool for readiness checks.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// Close releases all connections held by the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Create implements [profile.Store]. Fills in ID and RegisteredAt when unset.
func (s *Store) Create(ctx context.Context, u *profile.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.RegisteredAt.IsZero() {
		u.RegisteredAt = time.Now().UTC()
	}

	const q = `
		INSERT INTO users
		    (id, email, name, mobile, date_of_birth, password_hash, auth_provider, registered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.pool.Exec(ctx, q,
		u.ID,
		strings.ToLower(u.Email),
		u.Name,
		u.Mobile,
		u.DateOfBirth,
		u.PasswordHash,
		string(u.Provider),
		u.RegisteredAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return profile.ErrEmailTaken
		}
		return fmt.Errorf("profile store: create: %w", err)
	}
	return nil
}

// GetByID implements [profile.Store].
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*profile.User, error) {
	const q = userColumns + ` WHERE id = $1`
	return s.queryOne(ctx, q, id)
}

// GetByEmail implements [profile.Store]. Matching is case-insensitive.
func (s *Store) GetByEmail(ctx context.Context, email string) (*profile.User, error) {
	const q = userColumns + ` WHERE lower(email) = lower($1)`
	return s.queryOne(ctx, q, email)
}

// UpdateProfile implements [profile.Store]. Only non-nil fields of upd are
// written; the updated record is returned in full.
func (s *Store) UpdateProfile(ctx context.Context, id uuid.UUID, upd profile.Update) (*profile.User, error) {
	sets := []string{}
	args := []any{id} // $1 = id
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if upd.Name != nil {
		sets = append(sets, "name = "+next(*upd.Name))
	}
	if upd.Mobile != nil {
		sets = append(sets, "mobile = "+next(*upd.Mobile))
	}
	if upd.DateOfBirth != nil {
		sets = append(sets, "date_of_birth = "+next(*upd.DateOfBirth))
	}

	if len(sets) == 0 {
		return s.GetByID(ctx, id)
	}

	q := "UPDATE users SET " + strings.Join(sets, ", ") + " WHERE id = $1\n" +
		"RETURNING id, email, name, mobile, date_of_birth, password_hash, auth_provider, registered_at"

	row := s.pool.QueryRow(ctx, q, args...)
	return scanUser(row)
}

const userColumns = `
	SELECT id, email, name, mobile, date_of_birth, password_hash, auth_provider, registered_at
	FROM   users`

func (s *Store) queryOne(ctx context.Context, q string, arg any) (*profile.User, error) {
	row := s.pool.QueryRow(ctx, q, arg)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*profile.User, error) {
	var (
		u        profile.User
		provider string
	)
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Mobile,
		&u.DateOfBirth,
		&u.PasswordHash,
		&provider,
		&u.RegisteredAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, profile.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("profile store: scan user: %w", err)
	}
	u.Provider = profile.AuthProvider(provider)
	return &u, nil
}

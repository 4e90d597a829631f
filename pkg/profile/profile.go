// Package profile defines the user account model and the storage interface
// backing registration, login and profile management.
package profile

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors returned by [Store] implementations.
var (
	// ErrNotFound is returned when no user matches the lookup key.
	ErrNotFound = errors.New("profile: user not found")

	// ErrEmailTaken is returned by Create when the email address is already
	// registered.
	ErrEmailTaken = errors.New("profile: email already registered")
)

// AuthProvider identifies how an account authenticates.
type AuthProvider string

const (
	// AuthPassword is a local account with a bcrypt password hash.
	AuthPassword AuthProvider = "password"

	// AuthGoogle is an account created through Google sign-in. Such accounts
	// have an empty PasswordHash.
	AuthGoogle AuthProvider = "google"
)

// User is a registered account. PasswordHash is never serialised to JSON.
type User struct {
	ID           uuid.UUID    `json:"id"`
	Email        string       `json:"email"`
	Name         string       `json:"name"`
	Mobile       string       `json:"mobile,omitempty"`
	DateOfBirth  string       `json:"dateOfBirth,omitempty"`
	PasswordHash string       `json:"-"`
	Provider     AuthProvider `json:"provider"`
	RegisteredAt time.Time    `json:"registeredAt"`
}

// Update carries the mutable profile fields. Nil pointers leave the stored
// value unchanged.
type Update struct {
	Name        *string
	Mobile      *string
	DateOfBirth *string
}

// Store persists user accounts. Implementations must be safe for concurrent
// use.
type Store interface {
	// Create inserts a new user. Returns [ErrEmailTaken] when the email is
	// already registered.
	Create(ctx context.Context, u *User) error

	// GetByID returns the user with the given id, or [ErrNotFound].
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// GetByEmail returns the user with the given email, or [ErrNotFound].
	// Email matching is case-insensitive.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// UpdateProfile applies upd to the user with the given id and returns the
	// updated record, or [ErrNotFound].
	UpdateProfile(ctx context.Context, id uuid.UUID, upd Update) (*User, error)
}

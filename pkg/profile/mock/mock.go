// Package mock provides an in-memory [profile.Store] for tests.
package mock

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flashflow-ai/flashflow/pkg/profile"
)

var _ profile.Store = (*Store)(nil)

// Store is an in-memory user store keyed by id. Safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	users map[uuid.UUID]profile.User
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{users: make(map[uuid.UUID]profile.User)}
}

// Create implements [profile.Store].
func (s *Store) Create(_ context.Context, u *profile.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return profile.ErrEmailTaken
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.RegisteredAt.IsZero() {
		u.RegisteredAt = time.Now().UTC()
	}
	s.users[u.ID] = *u
	return nil
}

// GetByID implements [profile.Store].
func (s *Store) GetByID(_ context.Context, id uuid.UUID) (*profile.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, profile.ErrNotFound
	}
	return &u, nil
}

// GetByEmail implements [profile.Store].
func (s *Store) GetByEmail(_ context.Context, email string) (*profile.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, profile.ErrNotFound
}

// UpdateProfile implements [profile.Store].
func (s *Store) UpdateProfile(_ context.Context, id uuid.UUID, upd profile.Update) (*profile.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, profile.ErrNotFound
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Mobile != nil {
		u.Mobile = *upd.Mobile
	}
	if upd.DateOfBirth != nil {
		u.DateOfBirth = *upd.DateOfBirth
	}
	s.users[id] = u
	return &u, nil
}

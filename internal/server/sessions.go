package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flashflow-ai/flashflow/internal/assist"
	"github.com/flashflow-ai/flashflow/internal/engine"
	"github.com/flashflow-ai/flashflow/internal/observe"
	"github.com/flashflow-ai/flashflow/pkg/richtext"
)

// evictInterval is how often the idle sweep runs.
const evictInterval = time.Minute

// Session is one live editor document with its suggestion engine and
// assistant flows. The engine is single-threaded; callers must hold mu while
// touching it.
type Session struct {
	ID     uuid.UUID
	UserID uuid.UUID // uuid.Nil for anonymous sessions

	mu       sync.Mutex
	Engine   *engine.Engine
	Assist   *assist.Service
	lastUsed time.Time
}

// WithLock runs fn while holding the session lock and refreshes the idle
// timestamp.
func (s *Session) WithLock(fn func(*engine.Engine)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()
	fn(s.Engine)
}

// SessionManager owns the set of live editor sessions. Sessions idle longer
// than the configured timeout are evicted by a background sweep. All exported
// methods are safe for concurrent use.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session

	idleTimeout time.Duration
	newAssist   func() *assist.Service
	metrics     *observe.Metrics
	cancel      context.CancelFunc
}

// NewSessionManager creates a manager that builds per-session assistant
// services with newAssist. An idleTimeout of zero disables eviction.
func NewSessionManager(idleTimeout time.Duration, newAssist func() *assist.Service, metrics *observe.Metrics) *SessionManager {
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	return &SessionManager{
		sessions:    make(map[uuid.UUID]*Session),
		idleTimeout: idleTimeout,
		newAssist:   newAssist,
		metrics:     metrics,
	}
}

// Start launches the idle eviction loop. It runs until Stop is called or ctx
// is cancelled.
func (m *SessionManager) Start(ctx context.Context) {
	if m.idleTimeout <= 0 {
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(evictInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.evictIdle()
			}
		}
	}()
}

// Stop halts the eviction loop.
func (m *SessionManager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
}

// Create starts a new session with the given initial text.
func (m *SessionManager) Create(userID uuid.UUID, text string) *Session {
	s := &Session{
		ID:       uuid.New(),
		UserID:   userID,
		Engine:   engine.New(richtext.FromText(text)),
		Assist:   m.newAssist(),
		lastUsed: time.Now(),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.metrics.ActiveSessions.Add(context.Background(), 1)
	slog.Info("session created", "session_id", s.ID, "anonymous", userID == uuid.Nil)
	return s
}

// Get returns the session with the given id, or false.
func (m *SessionManager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Delete removes the session with the given id. Reports whether it existed.
func (m *SessionManager) Delete(id uuid.UUID) bool {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		m.metrics.ActiveSessions.Add(context.Background(), -1)
		slog.Info("session deleted", "session_id", id)
	}
	return ok
}

// Len returns the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// evictIdle drops sessions whose last use is older than the idle timeout.
func (m *SessionManager) evictIdle() {
	cutoff := time.Now().Add(-m.idleTimeout)

	m.mu.Lock()
	var evicted []uuid.UUID
	for id, s := range m.sessions {
		s.mu.Lock()
		idle := s.lastUsed.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(m.sessions, id)
			evicted = append(evicted, id)
		}
	}
	m.mu.Unlock()

	for _, id := range evicted {
		m.metrics.ActiveSessions.Add(context.Background(), -1)
		slog.Info("session evicted after idle timeout", "session_id", id, "timeout", m.idleTimeout)
	}
}

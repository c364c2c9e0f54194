// Package memory implements storage.Store with an in-process map.
// Sessions are lost when the process exits.
package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/tabsplit/internal/ledger"
	"github.com/mmynk/tabsplit/internal/metrics"
	"github.com/mmynk/tabsplit/internal/storage"
)

// ErrClosed is returned by every call made after Close.
var ErrClosed = errors.New("session store closed")

type entry struct {
	session    *storage.Session
	lastAccess time.Time
}

// Store keeps sessions in memory and forgets the ones idle for longer than ttl.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	now      func() time.Time
	closed   bool
}

var _ storage.Store = (*Store)(nil)

// New creates an in-memory session store. A ttl <= 0 keeps sessions forever.
func New(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// CreateSession starts a new bill session with a random UUID.
func (s *Store) CreateSession(ctx context.Context, initial ledger.State) (*storage.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	now := s.now()
	session := &storage.Session{
		ID:        uuid.NewString(),
		Ledger:    ledger.NewStore(initial),
		CreatedAt: now.Unix(),
	}
	s.sessions[session.ID] = &entry{session: session, lastAccess: now}
	metrics.SessionsActive.Inc()

	return session, nil
}

// GetSession returns the session and marks it as recently used.
func (s *Store) GetSession(ctx context.Context, sessionID string) (*storage.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	e, ok := s.sessions[sessionID]
	if !ok || s.expired(e, s.now()) {
		return nil, fmt.Errorf("%w: %s", storage.ErrSessionNotFound, sessionID)
	}
	e.lastAccess = s.now()
	return e.session, nil
}

// DeleteSession forgets a session.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if _, ok := s.sessions[sessionID]; !ok {
		return fmt.Errorf("%w: %s", storage.ErrSessionNotFound, sessionID)
	}
	delete(s.sessions, sessionID)
	metrics.SessionsActive.Dec()
	return nil
}

// Sweep removes expired sessions and returns how many were evicted.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	evicted := 0
	for id, e := range s.sessions {
		if s.expired(e, now) {
			delete(s.sessions, id)
			evicted++
		}
	}
	metrics.SessionsActive.Sub(float64(evicted))
	return evicted
}

// Run sweeps expired sessions every interval until ctx is cancelled.
func (s *Store) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.Info("Evicted idle sessions", "count", n)
			}
		}
	}
}

// Len returns the number of sessions held, including expired ones not yet swept.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close drops every session. Later calls fail with ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	metrics.SessionsActive.Sub(float64(len(s.sessions)))
	s.sessions = make(map[string]*entry)
	s.closed = true
	return nil
}

func (s *Store) expired(e *entry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.lastAccess) > s.ttl
}

// Package storage provides abstractions for holding bill sessions.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/tabsplit/internal/ledger"
)

// ErrSessionNotFound is returned when a session ID is unknown or has expired.
var ErrSessionNotFound = errors.New("session not found")

// Session is one bill being edited.
type Session struct {
	// ID is the unique identifier for the session (UUID format).
	ID string

	// Ledger owns the bill and serializes every change to it.
	Ledger *ledger.Store

	// CreatedAt is the Unix timestamp when the session was created.
	CreatedAt int64
}

// Store defines the interface for session storage.
// This abstraction allows swapping backends without changing the service layer.
type Store interface {
	// CreateSession starts a new bill from the given state.
	// The session ID is assigned by the store.
	CreateSession(ctx context.Context, initial ledger.State) (*Session, error)

	// GetSession retrieves a session by its ID.
	// Returns ErrSessionNotFound if the session does not exist.
	GetSession(ctx context.Context, sessionID string) (*Session, error)

	// DeleteSession removes a session.
	// Returns ErrSessionNotFound if the session does not exist.
	DeleteSession(ctx context.Context, sessionID string) error

	// Close releases any resources held by the store.
	Close() error
}

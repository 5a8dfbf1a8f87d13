// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/navyasetu/varunnetra/internal/domain"
)

// ErrNotFound is returned by writes that target a missing row.
// Reads signal absence with a nil result instead.
var ErrNotFound = errors.New("not found")

// Repository defines the interface for persisting users and chat logs.
type Repository interface {
	// GetUser retrieves a user by their user ID. Returns nil, nil when absent.
	GetUser(ctx context.Context, userID string) (*domain.User, error)

	// UpsertUser creates a user record or refreshes its name and last-seen time.
	// Navigation state is left untouched on conflict.
	UpsertUser(ctx context.Context, user *domain.User) error

	// UpdateLastSeen updates the last_seen_at timestamp for a user.
	UpdateLastSeen(ctx context.Context, userID string, lastSeen time.Time) error

	// UpdateAppState persists the navigation state of a user.
	UpdateAppState(ctx context.Context, userID, language string, authenticated bool, view string) error

	// CreateChatSession inserts a new chat session.
	CreateChatSession(ctx context.Context, session *domain.ChatSession) error

	// GetChatSession retrieves a chat session. Returns nil, nil when absent.
	GetChatSession(ctx context.Context, sessionID string) (*domain.ChatSession, error)

	// DeleteChatSession removes a session and its messages.
	// Returns ErrNotFound when the session does not exist.
	DeleteChatSession(ctx context.Context, sessionID string) error

	// AppendMessage stores msg at the end of its session's log, assigning
	// msg.Seq. Returns ErrNotFound when the session does not exist.
	AppendMessage(ctx context.Context, msg *domain.Message) error

	// ListMessages returns a session's messages in append order.
	ListMessages(ctx context.Context, sessionID string) ([]*domain.Message, error)

	// GetExpiredChatSessions returns sessions idle for longer than ttl.
	GetExpiredChatSessions(ctx context.Context, ttl time.Duration) ([]*domain.ChatSession, error)

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}

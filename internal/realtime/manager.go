// Package realtime carries chat sessions over WebSocket connections.
package realtime

import (
	"log/slog"
	"sync"

	"github.com/coder/websocket"
)

// Conn is the part of a WebSocket connection the manager needs.
type Conn interface {
	Close(code websocket.StatusCode, reason string) error
}

type entry struct {
	userID string
	conn   Conn
}

// SessionManager tracks the one active connection per chat session.
type SessionManager struct {
	mu     sync.RWMutex
	active map[string]entry
}

// NewSessionManager creates a new session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		active: make(map[string]entry),
	}
}

// GetActive returns the active connection for a user and session.
func (m *SessionManager) GetActive(userID, sessionID string) Conn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.active[sessionID]; ok && e.userID == userID {
		return e.conn
	}
	return nil
}

// Register makes conn the session's active connection, closing the one it replaces.
// The close handshake runs outside the lock.
func (m *SessionManager) Register(userID, sessionID string, conn Conn) {
	m.mu.Lock()
	existing, replaced := m.active[sessionID]
	m.active[sessionID] = entry{userID: userID, conn: conn}
	m.mu.Unlock()

	if replaced && existing.conn != conn {
		_ = existing.conn.Close(websocket.StatusPolicyViolation, "session replaced")
		slog.Info("Chat socket replaced", "user_id", userID, "session_id", sessionID)
	}
	slog.Info("Chat socket registered", "user_id", userID, "session_id", sessionID)
}

// Unregister removes conn if it is still the session's active connection.
func (m *SessionManager) Unregister(userID, sessionID string, conn Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if current, ok := m.active[sessionID]; ok && current.conn == conn {
		delete(m.active, sessionID)
		slog.Info("Chat socket unregistered", "user_id", userID, "session_id", sessionID)
	}
}

// CloseSession terminates the session's active connection, if any.
func (m *SessionManager) CloseSession(sessionID string) {
	m.mu.Lock()
	e, ok := m.active[sessionID]
	delete(m.active, sessionID)
	m.mu.Unlock()

	if !ok {
		return
	}
	_ = e.conn.Close(websocket.StatusNormalClosure, "session closed")
	slog.Info("Chat socket closed", "user_id", e.userID, "session_id", sessionID)
}

// Len returns the number of active connections.
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.active)
}

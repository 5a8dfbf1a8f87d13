package domain

import (
	"time"
)

// Origin tags who authored a chat message.
type Origin string

const (
	// OriginUser marks a message typed or picked by the visitor.
	OriginUser Origin = "user"
	// OriginAssistant marks a message produced by the health assistant.
	OriginAssistant Origin = "assistant"
)

// ChatSession is one mounted chat screen. Its messages live exactly as long as it does.
type ChatSession struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionTTL returns the time until the session expires.
// Returns 0 if the session has already expired.
func (s *ChatSession) SessionTTL(idle time.Duration) time.Duration {
	ttl := time.Until(s.UpdatedAt.Add(idle))
	if ttl < 0 {
		return 0
	}
	return ttl
}

// Message is one entry of a conversation log.
type Message struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"session_id"`
	Seq          int64     `json:"seq"`
	Origin       Origin    `json:"origin"`
	Content      string    `json:"content"`
	QuickReplies []string  `json:"quick_replies,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAssistant returns true for assistant-authored messages.
func (m *Message) IsAssistant() bool {
	return m.Origin == OriginAssistant
}

// Package chat implements the health assistant's conversation log: sessions,
// delayed assistant replies, live event fan-out and the HTTP surface.
package chat

import (
	"errors"
	"time"

	"github.com/navyasetu/varunnetra/internal/domain"
)

var (
	// ErrEmptyMessage is returned for blank submissions. Nothing is appended.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrMessageTooLong is returned when a submission exceeds the configured limit.
	ErrMessageTooLong = errors.New("message too long")
	// ErrUnknownAction is returned for quick actions outside QuickActions().
	ErrUnknownAction = errors.New("unknown quick action")
	// ErrSessionNotFound is returned for missing sessions and sessions owned by someone else.
	ErrSessionNotFound = errors.New("chat session not found")
	// ErrClosed is returned once the service stopped accepting work.
	ErrClosed = errors.New("chat service closed")
)

// QuickAction is one of the canned prompts on the chat screen.
type QuickAction string

const (
	QuickActionHealth    QuickAction = "health"
	QuickActionImage     QuickAction = "image"
	QuickActionHospitals QuickAction = "hospitals"
	QuickActionSafety    QuickAction = "safety"
)

var quickActions = []QuickAction{QuickActionHealth, QuickActionImage, QuickActionHospitals, QuickActionSafety}

// QuickActions returns the quick actions in display order.
func QuickActions() []QuickAction {
	out := make([]QuickAction, len(quickActions))
	copy(out, quickActions)
	return out
}

func parseQuickAction(s string) (QuickAction, bool) {
	for _, a := range quickActions {
		if string(a) == s {
			return a, true
		}
	}
	return "", false
}

// welcomeQuickReplies is how many suggested questions ride on the welcome message.
const welcomeQuickReplies = 3

// Transcript is a snapshot of one session's conversation log.
type Transcript struct {
	Session  *domain.ChatSession `json:"session"`
	Messages []*domain.Message   `json:"messages"`
	Typing   bool                `json:"typing"`
}

// RespondRequest is the body of a stateless selection request.
type RespondRequest struct {
	Utterance string `json:"utterance" validate:"max=8000"`
	Language  string `json:"language" validate:"omitempty,max=35"`
}

// RespondResponse is the result of a stateless selection request.
type RespondResponse struct {
	RuleID           string `json:"rule_id"`
	Language         string `json:"language"`
	Text             string `json:"text"`
	Fallback         bool   `json:"fallback"`
	LanguageFallback bool   `json:"language_fallback"`
}

// StartSessionRequest opens a chat screen.
type StartSessionRequest struct {
	Language string `json:"language" validate:"omitempty,max=35"`
}

// SubmitRequest carries one typed utterance.
type SubmitRequest struct {
	Content string `json:"content" validate:"required"`
}

// EventType names a hub event.
type EventType string

const (
	EventMessage      EventType = "message"
	EventTyping       EventType = "typing"
	EventSessionEnded EventType = "session_ended"
	EventError        EventType = "error"
)

// Event is one item of a session's live stream.
type Event struct {
	ID        int64           `json:"id"`
	Type      EventType       `json:"type"`
	SessionID string          `json:"session_id"`
	Message   *domain.Message `json:"message,omitempty"`
	Typing    bool            `json:"typing"`
	Error     string          `json:"error,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

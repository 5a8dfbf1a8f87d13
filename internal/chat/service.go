package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/navyasetu/varunnetra/internal/config"
	"github.com/navyasetu/varunnetra/internal/domain"
	"github.com/navyasetu/varunnetra/internal/i18n"
	"github.com/navyasetu/varunnetra/internal/metrics"
	"github.com/navyasetu/varunnetra/internal/respond"
	"github.com/navyasetu/varunnetra/internal/store"
)

// replyTimeout bounds the store and responder calls of one delayed reply.
const replyTimeout = 10 * time.Second

// Service owns chat sessions and their conversation logs.
type Service struct {
	repo       store.Repository
	responder  Responder
	local      *LocalResponder
	catalog    *i18n.Catalog
	hub        *Hub
	dispatcher *Dispatcher
	log        ConversationLogger
	metrics    *metrics.ChatMetrics
	delay      func() time.Duration
	maxLength  int
}

// Option customizes a Service.
type Option func(*Service)

// WithResponder replaces the in-process rule table, e.g. with a gRPC client.
// The rule table still answers when the responder fails.
func WithResponder(r Responder) Option {
	return func(s *Service) { s.responder = r }
}

// WithConversationLogger records every exchanged message.
func WithConversationLogger(l ConversationLogger) Option {
	return func(s *Service) { s.log = l }
}

// WithMetrics instruments the service.
func WithMetrics(m *metrics.ChatMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithCatalog overrides the translation catalog used for the welcome message.
func WithCatalog(c *i18n.Catalog) Option {
	return func(s *Service) { s.catalog = c }
}

// WithReplyDelay overrides the configured reply delay.
func WithReplyDelay(delay func() time.Duration) Option {
	return func(s *Service) { s.delay = delay }
}

// NewService wires a chat service. hub receives every message and typing event.
func NewService(repo store.Repository, hub *Hub, cfg config.ChatConfig, opts ...Option) *Service {
	local := NewLocalResponder(nil)
	s := &Service{
		repo:      repo,
		responder: local,
		local:     local,
		catalog:   i18n.DefaultCatalog(),
		hub:       hub,
		log:       noopConversationLogger{},
		delay:     JitteredDelay(cfg.ReplyDelay, cfg.ReplyJitter),
		maxLength: cfg.MaxMessageLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxLength <= 0 {
		s.maxLength = 2000
	}

	ordering := cfg.ReplyOrdering
	if ordering == "" {
		ordering = config.OrderingFIFO
	}
	s.dispatcher = NewDispatcher(ordering, s.delay, func(sessionID string, typing bool) {
		s.hub.Publish(sessionID, Event{Type: EventTyping, Typing: typing})
	})
	return s
}

// Respond runs one stateless selection.
func (s *Service) Respond(ctx context.Context, utterance, language string) respond.Match {
	match, err := s.responder.Respond(ctx, utterance, language)
	if err != nil {
		slog.Warn("responder failed, using built-in rule table", "error", err)
		match, _ = s.local.Respond(ctx, utterance, language)
	}
	s.metrics.ObserveSelection(match.RuleID, string(match.Language), match.LanguageFallback)
	return match
}

// StartSession opens a chat screen for userID and appends the welcome message.
func (s *Service) StartSession(ctx context.Context, userID, language string) (*Transcript, error) {
	tag := i18n.Resolve(language)
	now := time.Now().UTC()
	session := &domain.ChatSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		Language:  string(tag),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateChatSession(ctx, session); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	suggested := s.catalog.List("chatbot", "suggestedQuestions", string(tag))
	if len(suggested) > welcomeQuickReplies {
		suggested = suggested[:welcomeQuickReplies]
	}
	welcome := &domain.Message{
		ID:           uuid.NewString(),
		SessionID:    session.ID,
		Origin:       domain.OriginAssistant,
		Content:      s.catalog.Lookup("chatbot", "welcomeMessage", string(tag)),
		QuickReplies: suggested,
		CreatedAt:    now,
	}
	if err := s.repo.AppendMessage(ctx, welcome); err != nil {
		return nil, fmt.Errorf("append welcome message: %w", err)
	}

	s.metrics.ObserveSession("started")
	s.metrics.ObserveMessage(string(domain.OriginAssistant))
	s.hub.Publish(session.ID, Event{Type: EventMessage, Message: welcome})
	s.logMessage(session, welcome, "chat_welcome_message", nil)

	slog.Info("Chat session started", "user_id", userID, "session_id", session.ID, "language", tag)

	return &Transcript{Session: session, Messages: []*domain.Message{welcome}}, nil
}

// Session returns the session if it exists and belongs to userID.
func (s *Service) Session(ctx context.Context, userID, sessionID string) (*domain.ChatSession, error) {
	session, err := s.repo.GetChatSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session == nil || session.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Transcript returns the ordered log of a session and whether a reply is pending.
func (s *Service) Transcript(ctx context.Context, userID, sessionID string) (*Transcript, error) {
	session, err := s.Session(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	messages, err := s.repo.ListMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return &Transcript{
		Session:  session,
		Messages: messages,
		Typing:   s.dispatcher.Pending(sessionID) > 0,
	}, nil
}

// Subscribe attaches to a session's live events; see Hub.Subscribe.
func (s *Service) Subscribe(sessionID string, afterID int64) (*Subscription, []Event) {
	return s.hub.Subscribe(sessionID, afterID)
}

// LastEventID returns the most recently assigned event ID.
func (s *Service) LastEventID() int64 {
	return s.hub.LastEventID()
}

// Submit appends a user utterance and schedules the assistant's reply.
func (s *Service) Submit(ctx context.Context, userID, sessionID, content, requestID string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > s.maxLength {
		return nil, fmt.Errorf("%w: limit is %d characters", ErrMessageTooLong, s.maxLength)
	}

	session, err := s.Session(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Origin:    domain.OriginUser,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.AppendMessage(ctx, msg); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("append user message: %w", err)
	}

	s.metrics.ObserveMessage(string(domain.OriginUser))
	s.hub.Publish(sessionID, Event{Type: EventMessage, Message: msg})
	s.logMessage(session, msg, "chat_user_message", map[string]any{"request_id": requestID})

	if err := s.dispatcher.Schedule(sessionID, s.replyJob(session, content, msg.CreatedAt, requestID)); err != nil {
		return msg, err
	}
	s.metrics.ReplyScheduled()
	return msg, nil
}

// QuickAction submits the canned utterance of action in the session's language.
func (s *Service) QuickAction(ctx context.Context, userID, sessionID, action, requestID string) (*domain.Message, error) {
	a, ok := parseQuickAction(action)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	session, err := s.Session(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	utterance := s.catalog.Lookup("chatbot", "quickAction."+string(a)+".utterance", session.Language)
	return s.Submit(ctx, userID, sessionID, utterance, requestID)
}

// EndSession deletes a session's log. Replies still pending are dropped.
func (s *Service) EndSession(ctx context.Context, userID, sessionID string) error {
	if _, err := s.Session(ctx, userID, sessionID); err != nil {
		return err
	}
	if err := s.removeSession(ctx, sessionID, "ended"); err != nil {
		return err
	}
	slog.Info("Chat session ended", "user_id", userID, "session_id", sessionID)
	return nil
}

// ExpireSession deletes an idle session regardless of owner. A session that
// is already gone is not an error.
func (s *Service) ExpireSession(ctx context.Context, sessionID string) error {
	if err := s.removeSession(ctx, sessionID, "expired"); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return err
	}
	return nil
}

func (s *Service) removeSession(ctx context.Context, sessionID, reason string) error {
	if err := s.repo.DeleteChatSession(ctx, sessionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("delete session: %w", err)
	}
	s.hub.Forget(sessionID)
	s.metrics.ObserveSession(reason)
	return nil
}

// Close stops intake and waits for pending replies, then flushes the conversation log.
func (s *Service) Close(ctx context.Context) error {
	err := s.dispatcher.Close(ctx)
	if logErr := s.log.Close(); logErr != nil {
		slog.Warn("failed to close conversation logger", "error", logErr)
	}
	return err
}

func (s *Service) replyJob(session *domain.ChatSession, utterance string, submitted time.Time, requestID string) func() {
	return func() {
		defer s.metrics.ReplyFinished()

		ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
		defer cancel()

		match := s.Respond(ctx, utterance, session.Language)
		reply := &domain.Message{
			ID:        uuid.NewString(),
			SessionID: session.ID,
			Origin:    domain.OriginAssistant,
			Content:   match.Text,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.repo.AppendMessage(ctx, reply); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				slog.Debug("dropping reply for ended session", "session_id", session.ID)
				s.metrics.ReplyDropped()
				return
			}
			slog.Error("failed to append assistant reply", "session_id", session.ID, "error", err)
			s.hub.Publish(session.ID, Event{Type: EventError, Error: "failed to store reply"})
			return
		}

		latency := reply.CreatedAt.Sub(submitted)
		s.metrics.ObserveMessage(string(domain.OriginAssistant))
		s.metrics.ObserveReplyLatency(latency.Seconds())
		s.hub.Publish(session.ID, Event{Type: EventMessage, Message: reply})
		s.logMessage(session, reply, "chat_assistant_message", map[string]any{
			"rule_id":           match.RuleID,
			"fallback":          match.Fallback,
			"language_fallback": match.LanguageFallback,
			"latency_ms":        latency.Milliseconds(),
			"request_id":        requestID,
		})
	}
}

func (s *Service) logMessage(session *domain.ChatSession, msg *domain.Message, eventType string, meta map[string]any) {
	direction := "outbound"
	if msg.IsAssistant() {
		direction = "inbound"
	}
	s.log.Log(ConversationLogEvent{
		Timestamp:  msg.CreatedAt.Format(time.RFC3339Nano),
		UserID:     session.UserID,
		SessionID:  session.ID,
		Channel:    "chat",
		Direction:  direction,
		EventType:  eventType,
		ContentRaw: msg.Content,
		Content:    cleanForReadability(msg.Content),
		Meta:       meta,
	})
}

package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/navyasetu/varunnetra/internal/api"
	"github.com/navyasetu/varunnetra/internal/chat"
	"github.com/navyasetu/varunnetra/internal/domain"
	"github.com/navyasetu/varunnetra/internal/identity"
	"github.com/navyasetu/varunnetra/internal/store"
)

// readLimit caps one inbound frame.
const readLimit = 64 << 10

// writeTimeout bounds one outbound frame.
const writeTimeout = 10 * time.Second

// ChatService is the part of the chat service the socket drives.
type ChatService interface {
	Session(ctx context.Context, userID, sessionID string) (*domain.ChatSession, error)
	Submit(ctx context.Context, userID, sessionID, content, requestID string) (*domain.Message, error)
	QuickAction(ctx context.Context, userID, sessionID, action, requestID string) (*domain.Message, error)
	Subscribe(sessionID string, afterID int64) (*chat.Subscription, []chat.Event)
}

// Limiter throttles chat writes per visitor.
type Limiter interface {
	Allow(key string) bool
}

// WebSocketHandler serves GET /ws/chat?session_id=...
type WebSocketHandler struct {
	svc           ChatService
	repo          store.Repository
	sm            *SessionManager
	limiter       Limiter
	allowedOrigin string
	isDev         bool
}

// NewWebSocketHandler creates a new WebSocket handler. Message and
// quick_action frames draw from limiter under the visitor's user ID, the same
// bucket the REST write routes use. A nil limiter disables throttling.
func NewWebSocketHandler(svc ChatService, repo store.Repository, sm *SessionManager, limiter Limiter, allowedOrigin string, isDev bool) *WebSocketHandler {
	return &WebSocketHandler{
		svc:           svc,
		repo:          repo,
		sm:            sm,
		limiter:       limiter,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// inbound is a client frame.
type inbound struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	Action  string `json:"action,omitempty"`
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := r.URL.Query().Get("session_id")
	slog.Info("WebSocket connection request", "user_id", userID, "session_id", sessionID, "ip", identity.IPFromRequest(r))

	if !h.checkOrigin(r) {
		api.Error(w, http.StatusForbidden, "origin not allowed")
		return
	}
	if _, err := h.svc.Session(r.Context(), userID, sessionID); err != nil {
		if errors.Is(err, chat.ErrSessionNotFound) {
			api.Error(w, http.StatusNotFound, err.Error())
			return
		}
		slog.Error("Failed to load chat session", "error", err, "session_id", sessionID)
		api.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	lastEventID, _ := strconv.ParseInt(r.URL.Query().Get("last_event_id"), 10, 64)

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "user_id", userID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "user_id", userID)
		}
	}()
	ws.SetReadLimit(readLimit)

	h.sm.Register(userID, sessionID, ws)
	defer h.sm.Unregister(userID, sessionID, ws)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sub, missed := h.svc.Subscribe(sessionID, lastEventID)
	defer sub.Close()

	for _, ev := range missed {
		if err := h.writeJSON(ctx, ws, ev); err != nil {
			slog.Debug("Failed to replay event", "error", err, "event_id", ev.ID)
			return
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		h.outputLoop(ctx, ws, sub, userID, sessionID)
	}()

	h.inputLoop(ctx, ws, userID, sessionID)
	cancel()
	<-done
	slog.Info("Chat socket ended", "user_id", userID, "session_id", sessionID)
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" {
		return true
	}
	if origin == h.allowedOrigin {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

func (h *WebSocketHandler) inputLoop(ctx context.Context, ws *websocket.Conn, userID, sessionID string) {
	slog.Debug("Starting input loop", "user_id", userID, "session_id", sessionID)
	for {
		_, message, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 || ctx.Err() != nil {
				slog.Debug("WebSocket closed", "user_id", userID, "session_id", sessionID)
			} else {
				slog.Warn("WebSocket read error", "error", err, "user_id", userID)
			}
			return
		}

		var msg inbound
		if err := json.Unmarshal(message, &msg); err != nil {
			h.writeError(ctx, ws, "invalid message")
			continue
		}

		if (msg.Type == "message" || msg.Type == "quick_action") && !h.allow(userID) {
			slog.Warn("rate limit exceeded", "key", userID, "session_id", sessionID)
			h.writeError(ctx, ws, "rate limit exceeded")
			continue
		}

		requestID := uuid.NewString()
		switch msg.Type {
		case "message":
			if _, err := h.svc.Submit(ctx, userID, sessionID, msg.Content, requestID); err != nil {
				h.handleServiceError(ctx, ws, err)
			}
		case "quick_action":
			if _, err := h.svc.QuickAction(ctx, userID, sessionID, msg.Action, requestID); err != nil {
				h.handleServiceError(ctx, ws, err)
			}
		case "ping":
			if err := h.writeJSON(ctx, ws, map[string]string{"type": "pong"}); err != nil {
				slog.Debug("Failed to send pong", "error", err)
			}
			continue
		default:
			h.writeError(ctx, ws, "unknown message type")
			continue
		}

		// Update last seen asynchronously with timeout.
		go func() {
			updateCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := h.repo.UpdateLastSeen(updateCtx, userID, time.Now()); err != nil {
				slog.Warn("Failed to update last seen", "error", err)
			}
		}()
	}
}

func (h *WebSocketHandler) outputLoop(ctx context.Context, ws *websocket.Conn, sub *chat.Subscription, userID, sessionID string) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.Events():
			if !ok {
				slog.Info("Chat socket subscription ended", "user_id", userID, "session_id", sessionID)
				_ = ws.Close(websocket.StatusNormalClosure, "session ended")
				return
			}
			if err := h.writeJSON(ctx, ws, ev); err != nil {
				if ctx.Err() == nil {
					slog.Debug("WebSocket write error", "error", err, "user_id", userID)
				}
				return
			}
		}
	}
}

func (h *WebSocketHandler) allow(userID string) bool {
	return h.limiter == nil || h.limiter.Allow(userID)
}

// handleServiceError reports a rejected frame to the client. Fatal errors end the socket.
func (h *WebSocketHandler) handleServiceError(ctx context.Context, ws *websocket.Conn, err error) {
	switch {
	case errors.Is(err, chat.ErrEmptyMessage),
		errors.Is(err, chat.ErrMessageTooLong),
		errors.Is(err, chat.ErrUnknownAction):
		h.writeError(ctx, ws, err.Error())
	case errors.Is(err, chat.ErrSessionNotFound), errors.Is(err, chat.ErrClosed):
		h.writeError(ctx, ws, err.Error())
		_ = ws.Close(websocket.StatusGoingAway, err.Error())
	default:
		slog.Error("Chat socket request failed", "error", err)
		h.writeError(ctx, ws, "internal error")
	}
}

func (h *WebSocketHandler) writeError(ctx context.Context, ws *websocket.Conn, message string) {
	if err := h.writeJSON(ctx, ws, map[string]string{"type": string(chat.EventError), "error": message}); err != nil {
		slog.Debug("Failed to send error frame", "error", err)
	}
}

func (h *WebSocketHandler) writeJSON(ctx context.Context, ws *websocket.Conn, v interface{}) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(writeCtx, ws, v)
}

package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/navyasetu/varunnetra/internal/api"
	"github.com/navyasetu/varunnetra/internal/config"
	"github.com/navyasetu/varunnetra/internal/i18n"
	"github.com/navyasetu/varunnetra/internal/identity"
	"github.com/navyasetu/varunnetra/internal/store"
)

// defaultMaxRequestBodySize is the default maximum allowed request body size (1MB).
const defaultMaxRequestBodySize = 1 << 20

// Handler exposes the chat service over HTTP and SSE.
type Handler struct {
	svc       *Service
	repo      store.Repository
	validator *validator.Validate
	sse       config.SSEConfig
}

// NewHandler creates a chat handler. Zero SSE settings fall back to defaults.
func NewHandler(svc *Service, repo store.Repository, sse config.SSEConfig) *Handler {
	if sse.KeepaliveInterval <= 0 {
		sse.KeepaliveInterval = 10 * time.Second
	}
	if sse.RetryDelay <= 0 {
		sse.RetryDelay = 5 * time.Second
	}
	if sse.MaxRequestBodySize <= 0 {
		sse.MaxRequestBodySize = defaultMaxRequestBodySize
	}
	return &Handler{
		svc:       svc,
		repo:      repo,
		validator: validator.New(),
		sse:       sse,
	}
}

// RegisterRoutes registers chat routes. writeLimit wraps the routes that
// append messages; it may be nil.
func (h *Handler) RegisterRoutes(r chi.Router, writeLimit func(http.Handler) http.Handler) {
	r.Route("/api/chat", func(r chi.Router) {
		r.Post("/respond", h.HandleRespond)
		r.Post("/sessions", h.HandleStartSession)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", h.HandleGetSession)
			r.Delete("/", h.HandleEndSession)
			r.Get("/stream", h.HandleStream)
			r.Group(func(r chi.Router) {
				if writeLimit != nil {
					r.Use(writeLimit)
				}
				r.Post("/messages", h.HandleSubmit)
				r.Post("/quick-actions/{action}", h.HandleQuickAction)
			})
		})
	})
}

// HandleRespond handles POST /api/chat/respond: a stateless rule selection.
func (h *Handler) HandleRespond(w http.ResponseWriter, r *http.Request) {
	var req RespondRequest
	if !h.decode(w, r, &req) {
		return
	}
	match := h.svc.Respond(r.Context(), req.Utterance, req.Language)
	api.JSON(w, http.StatusOK, RespondResponse{
		RuleID:           match.RuleID,
		Language:         string(match.Language),
		Text:             match.Text,
		Fallback:         match.Fallback,
		LanguageFallback: match.LanguageFallback,
	})
}

// HandleStartSession handles POST /api/chat/sessions.
func (h *Handler) HandleStartSession(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req StartSessionRequest
	if r.ContentLength != 0 {
		if !h.decode(w, r, &req) {
			return
		}
	}

	language := req.Language
	if language == "" {
		user, err := h.repo.GetUser(r.Context(), userID)
		if err != nil {
			slog.Error("Failed to load user", "user_id", userID, "error", err)
			api.Error(w, http.StatusInternalServerError, "failed to load user")
			return
		}
		if user != nil && user.HasLanguage() {
			language = user.Language
		} else {
			language = string(i18n.Default)
		}
	}

	transcript, err := h.svc.StartSession(r.Context(), userID, language)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	api.JSON(w, http.StatusCreated, transcript)
}

// HandleGetSession handles GET /api/chat/sessions/{sessionID}.
func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	transcript, err := h.svc.Transcript(r.Context(), identity.UserIDFromContext(r.Context()), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.serviceError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, transcript)
}

// HandleEndSession handles DELETE /api/chat/sessions/{sessionID}.
func (h *Handler) HandleEndSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.EndSession(r.Context(), identity.UserIDFromContext(r.Context()), chi.URLParam(r, "sessionID")); err != nil {
		h.serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSubmit handles POST /api/chat/sessions/{sessionID}/messages.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if !h.decode(w, r, &req) {
		return
	}
	msg, err := h.svc.Submit(r.Context(),
		identity.UserIDFromContext(r.Context()),
		chi.URLParam(r, "sessionID"),
		req.Content,
		chiMiddleware.GetReqID(r.Context()),
	)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	api.JSON(w, http.StatusAccepted, msg)
}

// HandleQuickAction handles POST /api/chat/sessions/{sessionID}/quick-actions/{action}.
func (h *Handler) HandleQuickAction(w http.ResponseWriter, r *http.Request) {
	msg, err := h.svc.QuickAction(r.Context(),
		identity.UserIDFromContext(r.Context()),
		chi.URLParam(r, "sessionID"),
		chi.URLParam(r, "action"),
		chiMiddleware.GetReqID(r.Context()),
	)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	api.JSON(w, http.StatusAccepted, msg)
}

// HandleStream handles GET /api/chat/sessions/{sessionID}/stream.
// Events carry IDs; a client reconnecting with Last-Event-ID (or the
// lastEventId query parameter) is first sent what it missed.
//
//nolint:gocyclo // SSE lifecycle handling intentionally keeps branches together.
func (h *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := chi.URLParam(r, "sessionID")
	if _, err := h.svc.Session(r.Context(), userID, sessionID); err != nil {
		h.serviceError(w, err)
		return
	}

	lastEventID := int64(0)
	idHeader := r.Header.Get("Last-Event-ID")
	if idHeader == "" {
		idHeader = r.URL.Query().Get("lastEventId")
	}
	if idHeader != "" {
		if parsed, err := strconv.ParseInt(idHeader, 10, 64); err == nil {
			lastEventID = parsed
			slog.Info("SSE client reconnecting with Last-Event-ID",
				"user_id", userID,
				"session_id", sessionID,
				"last_event_id", lastEventID,
			)
		}
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		api.Error(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	if _, err := fmt.Fprintf(w, "retry: %d\n\n", h.sse.RetryDelay.Milliseconds()); err != nil {
		slog.Warn("failed to write SSE retry header", "error", err, "user_id", userID)
		return
	}

	sub, missed := h.svc.Subscribe(sessionID, lastEventID)
	defer sub.Close()

	if len(missed) > 0 {
		slog.Info("Sending missed events",
			"user_id", userID,
			"session_id", sessionID,
			"count", len(missed),
		)
	}
	for _, ev := range missed {
		if err := writeEvent(w, ev); err != nil {
			slog.Warn("failed to replay SSE event", "error", err, "event_id", ev.ID)
			return
		}
	}

	connected := fmt.Sprintf(`{"status":"connected","session_id":%q,"last_event_id":%d}`, sessionID, h.svc.LastEventID())
	if err := writeSSE(w, "connected", connected); err != nil {
		slog.Warn("failed to write SSE connected event", "error", err, "user_id", userID)
		return
	}
	flusher.Flush()

	slog.Info("Chat stream connected",
		"user_id", userID,
		"session_id", sessionID,
		"reconnect", lastEventID > 0,
	)

	keepalive := time.NewTicker(h.sse.KeepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			slog.Info("Chat stream disconnected", "user_id", userID, "session_id", sessionID)
			return
		case ev, ok := <-sub.Events():
			if !ok {
				slog.Info("Chat stream closed by hub", "user_id", userID, "session_id", sessionID)
				return
			}
			if err := writeEvent(w, ev); err != nil {
				slog.Warn("failed to write SSE event", "error", err, "user_id", userID)
				return
			}
			flusher.Flush()
		case <-keepalive.C:
			if err := writeSSE(w, "ping", `{"status":"alive"}`); err != nil {
				slog.Warn("failed to write SSE keepalive ping", "error", err, "user_id", userID)
				return
			}
			flusher.Flush()
		}
	}
}

// decode reads a size-limited JSON body into dst and validates it.
// It writes the error response and returns false on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.sse.MaxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			api.Error(w, http.StatusBadRequest, fmt.Sprintf("invalid field %s: %s", verrs[0].Field(), verrs[0].Tag()))
			return false
		}
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (h *Handler) serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmptyMessage), errors.Is(err, ErrUnknownAction):
		api.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrMessageTooLong):
		api.Error(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, ErrSessionNotFound):
		api.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrClosed):
		api.Error(w, http.StatusServiceUnavailable, err.Error())
	default:
		slog.Error("Chat request failed", "error", err)
		api.Error(w, http.StatusInternalServerError, "internal error")
	}
}

func writeEvent(w io.Writer, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return writeSSEWithID(w, ev.ID, string(ev.Type), string(data))
}

func writeSSE(w io.Writer, event, data string) error {
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}

func writeSSEWithID(w io.Writer, id int64, event, data string) error {
	_, err := fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", id, event, data)
	return err
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/navyasetu/varunnetra/internal/i18n"
	"github.com/navyasetu/varunnetra/internal/identity"
	"github.com/navyasetu/varunnetra/internal/navigation"
	"github.com/navyasetu/varunnetra/internal/shared"
)

// stateLocks serializes read-modify-write of one visitor's navigation state.
var stateLocks sync.Map

// AppHandler handles the app shell: language gate, demo sign-in and view navigation.
type AppHandler struct {
	*Handler
}

// NewAppHandler creates a new app shell handler.
func NewAppHandler(base *Handler) *AppHandler {
	return &AppHandler{Handler: base}
}

// StateResponse is the shell state plus the screen it renders.
type StateResponse struct {
	navigation.State
	Screen   navigation.Screen `json:"screen"`
	Username string            `json:"username"`
}

// LanguageRequest selects the visitor's language.
type LanguageRequest struct {
	Language string `json:"language" validate:"required,max=35"`
}

// NavigateRequest switches the current view.
type NavigateRequest struct {
	View string `json:"view" validate:"required,max=32"`
}

// LanguageOption describes one entry of the language gate.
type LanguageOption struct {
	Tag    i18n.Tag `json:"tag"`
	Name   string   `json:"name"`
	Native string   `json:"native"`
}

// RegisterRoutes registers app shell routes.
func (h *AppHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/app", func(r chi.Router) {
		r.Get("/state", h.GetState)
		r.Post("/language", h.SelectLanguage)
		r.Post("/auth", h.Authenticate)
		r.Post("/navigate", h.Navigate)
		r.Get("/languages", h.Languages)
	})
	r.Get("/api/i18n/{screen}", h.Translations)
}

// GetState returns the visitor's persisted shell state.
func (h *AppHandler) GetState(w http.ResponseWriter, r *http.Request) {
	state, ok := h.loadState(w, r)
	if !ok {
		return
	}
	h.writeState(w, r, state)
}

// SelectLanguage handles POST /api/app/language.
func (h *AppHandler) SelectLanguage(w http.ResponseWriter, r *http.Request) {
	var req LanguageRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.transition(w, r, func(s navigation.State) (navigation.State, error) {
		return s.SelectLanguage(req.Language)
	})
}

// Authenticate handles POST /api/app/auth, the demo sign-in gate.
func (h *AppHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(s navigation.State) (navigation.State, error) {
		return s.Authenticate(), nil
	})
}

// Navigate handles POST /api/app/navigate.
func (h *AppHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.transition(w, r, func(s navigation.State) (navigation.State, error) {
		return s.Navigate(req.View)
	})
}

// Languages lists the language gate's choices and pre-selects one from Accept-Language.
func (h *AppHandler) Languages(w http.ResponseWriter, r *http.Request) {
	tags := i18n.Supported()
	options := make([]LanguageOption, 0, len(tags))
	for _, tag := range tags {
		name, native := i18n.DisplayName(tag)
		options = append(options, LanguageOption{Tag: tag, Name: name, Native: native})
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"languages": options,
		"suggested": i18n.Suggest(r.Header.Get("Accept-Language")),
	})
}

// Translations returns one screen's text table. The language comes from the
// lang query parameter, else the visitor's stored choice.
func (h *AppHandler) Translations(w http.ResponseWriter, r *http.Request) {
	screen := chi.URLParam(r, "screen")
	lang := r.URL.Query().Get("lang")
	if lang == "" {
		if user, err := h.repo.GetUser(r.Context(), identity.UserIDFromContext(r.Context())); err == nil && user != nil {
			lang = user.Language
		}
	}

	tag := i18n.Resolve(lang)
	table, ok := h.catalog.Table(screen, string(tag))
	if !ok {
		Error(w, http.StatusNotFound, "unknown screen")
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"screen":   screen,
		"language": tag,
		"strings":  table.Strings,
		"lists":    table.Lists,
	})
}

func (h *AppHandler) transition(w http.ResponseWriter, r *http.Request, next func(navigation.State) (navigation.State, error)) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	lock, _ := stateLocks.LoadOrStore(userID, &sync.Mutex{})
	mu := lock.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()

	state, ok := h.loadState(w, r)
	if !ok {
		return
	}
	updated, err := next(state)
	switch {
	case errors.Is(err, navigation.ErrUnknownView), errors.Is(err, navigation.ErrEmptyLanguage):
		Error(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, navigation.ErrGated):
		Error(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		Error(w, http.StatusInternalServerError, "transition failed")
		return
	}

	if err := h.saveState(r.Context(), userID, updated); err != nil {
		slog.Error("Failed to save app state", "user_id", userID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to save state")
		return
	}
	slog.Info("App state changed",
		"user_id", userID,
		"language", updated.Language,
		"authenticated", updated.Authenticated,
		"view", updated.View,
	)
	h.writeState(w, r, updated)
}

func (h *AppHandler) loadState(w http.ResponseWriter, r *http.Request) (navigation.State, bool) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return navigation.State{}, false
	}
	user, err := h.repo.GetUser(r.Context(), userID)
	if err != nil {
		slog.Error("Failed to load user", "user_id", userID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to load user")
		return navigation.State{}, false
	}
	if user == nil {
		Error(w, http.StatusUnauthorized, "user not found")
		return navigation.State{}, false
	}
	return navigation.FromUser(user), true
}

// saveState persists the state, retrying SQLITE_BUSY conflicts.
func (h *AppHandler) saveState(ctx context.Context, userID string, s navigation.State) error {
	return shared.RetryOnConflict(ctx, "update app state", func() error {
		return h.repo.UpdateAppState(ctx, userID, string(s.Language), s.Authenticated, string(s.View))
	})
}

func (h *AppHandler) writeState(w http.ResponseWriter, r *http.Request, s navigation.State) {
	JSON(w, http.StatusOK, StateResponse{
		State:    s,
		Screen:   s.Screen(),
		Username: identity.UsernameFromContext(r.Context()),
	})
}

// decode reads a size-limited JSON body into dst and validates it.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, defaultMaxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			Error(w, http.StatusBadRequest, fmt.Sprintf("invalid field %s: %s", verrs[0].Field(), verrs[0].Tag()))
			return false
		}
		Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

package waterdata

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/navyasetu/varunnetra/internal/api"
	"github.com/navyasetu/varunnetra/internal/domain"
	"github.com/navyasetu/varunnetra/internal/identity"
)

// UserLookup loads the visitor so their stored language can be used.
type UserLookup interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
}

// Handler serves the sample datasets.
type Handler struct {
	users UserLookup
}

// NewHandler creates a dataset handler. users may be nil.
func NewHandler(users UserLookup) *Handler {
	return &Handler{users: users}
}

// RegisterRoutes registers the dataset routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/water", func(r chi.Router) {
		r.Get("/area", h.HandleArea)
		r.Get("/reports", h.HandleReports)
		r.Get("/map", h.HandleMap)
	})
}

// HandleArea handles GET /api/water/area.
func (h *Handler) HandleArea(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, Area(h.language(r)))
}

// HandleReports handles GET /api/water/reports.
func (h *Handler) HandleReports(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, HistoricalReports(h.language(r)))
}

// HandleMap handles GET /api/water/map?filter=all|safe|moderate|high.
func (h *Handler) HandleMap(w http.ResponseWriter, r *http.Request) {
	m, err := CityMap(h.language(r), r.URL.Query().Get("filter"))
	if err != nil {
		if errors.Is(err, ErrUnknownFilter) {
			api.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		api.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	api.JSON(w, http.StatusOK, m)
}

// language is the lang query parameter, else the visitor's stored choice.
func (h *Handler) language(r *http.Request) string {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return lang
	}
	if h.users == nil {
		return ""
	}
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		return ""
	}
	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		slog.Warn("Failed to load user language", "user_id", userID, "error", err)
		return ""
	}
	if user == nil {
		return ""
	}
	return user.Language
}

// Package api provides the VarunNetra app-shell HTTP handlers and the JSON helpers
// shared by every handler package.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/navyasetu/varunnetra/internal/i18n"
	"github.com/navyasetu/varunnetra/internal/store"
)

// defaultMaxRequestBodySize caps app-shell request bodies.
const defaultMaxRequestBodySize = 64 << 10

// Handler provides common handler utilities.
type Handler struct {
	repo      store.Repository
	catalog   *i18n.Catalog
	validator *validator.Validate
}

// NewHandler creates a new Handler with common dependencies. A nil catalog
// means the embedded one.
func NewHandler(repo store.Repository, catalog *i18n.Catalog) *Handler {
	if catalog == nil {
		catalog = i18n.DefaultCatalog()
	}
	return &Handler{
		repo:      repo,
		catalog:   catalog,
		validator: validator.New(),
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// Package handlers provides HTTP handlers for the catalog snapshot.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Monear/rental-village-social-bot/internal/domain"
	"github.com/Monear/rental-village-social-bot/internal/modules/catalog"
)

// Handler handles catalog HTTP requests
type Handler struct {
	repo  *catalog.Repository
	cache *catalog.SnapshotCache
	log   zerolog.Logger
}

// NewHandler creates a new catalog handler. cache may be nil.
func NewHandler(repo *catalog.Repository, cache *catalog.SnapshotCache, log zerolog.Logger) *Handler {
	return &Handler{
		repo:  repo,
		cache: cache,
		log:   log.With().Str("handler", "catalog").Logger(),
	}
}

// RegisterRoutes registers catalog routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/items", h.HandleGetItems)
	r.Put("/items", h.HandleReplaceItems)
	r.Get("/categories", h.HandleGetCategories)
}

// HandleGetItems returns the stored catalog snapshot
func (h *Handler) HandleGetItems(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.repo.GetAll()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"items":      snapshot.Items,
		"count":      len(snapshot.Items),
		"fetched_at": snapshot.FetchedAt,
	})
}

// HandleReplaceItems replaces the whole catalog. The sync collaborator calls
// this after pulling inventory from the rental system.
func (h *Handler) HandleReplaceItems(w http.ResponseWriter, r *http.Request) {
	var items []domain.CatalogItem
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	for _, item := range items {
		if item.ID == "" {
			h.writeError(w, http.StatusUnprocessableEntity, "every item needs an id")
			return
		}
	}

	if err := h.repo.ReplaceAll(items); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if h.cache != nil {
		snapshot, err := h.repo.GetAll()
		if err == nil {
			if err := h.cache.StoreCatalog(snapshot); err != nil {
				h.log.Warn().Err(err).Msg("Failed to refresh catalog snapshot cache")
			}
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"stored": len(items)})
}

// HandleGetCategories returns the distinct categories across the catalog
func (h *Handler) HandleGetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.Categories()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"count":      len(categories),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

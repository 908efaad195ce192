// Package handlers provides HTTP handlers for seasonal settings.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Monear/rental-village-social-bot/internal/modules/seasonal"
)

// Handler handles seasonal settings HTTP requests
type Handler struct {
	repo *seasonal.Repository
	log  zerolog.Logger
}

// NewHandler creates a new seasonal settings handler
func NewHandler(repo *seasonal.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "seasonal").Logger(),
	}
}

// RegisterRoutes registers seasonal settings routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/active", h.HandleGetActive)
	r.Post("/", h.HandleSave)
}

// HandleGetActive returns the active seasonal settings with the current
// season resolved for the request time.
func (h *Handler) HandleGetActive(w http.ResponseWriter, r *http.Request) {
	ctx, err := h.repo.GetActive()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	now := time.Now()
	isDefault := ctx == nil
	if isDefault {
		ctx = seasonal.DefaultContext(now)
	} else {
		ctx.Current = seasonal.SeasonFor(now)
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"settings": ctx,
		"default":  isDefault,
	})
}

type saveRequest struct {
	Title    string            `json:"title"`
	Settings *seasonal.Context `json:"settings"`
}

// HandleSave stores seasonal settings and activates them
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Settings == nil {
		h.writeError(w, http.StatusBadRequest, "settings are required")
		return
	}
	if req.Title == "" {
		req.Title = "Seasonal Settings"
	}

	id, err := h.repo.Save(req.Title, req.Settings, true)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]string{"id": id})
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

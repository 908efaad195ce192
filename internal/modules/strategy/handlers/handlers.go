// Package handlers provides HTTP handlers for strategy configuration.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Monear/rental-village-social-bot/internal/modules/strategy"
)

// Handler handles strategy configuration HTTP requests
type Handler struct {
	repo      *strategy.Repository
	validator *strategy.Validator
	log       zerolog.Logger
}

// NewHandler creates a new strategy configuration handler
func NewHandler(repo *strategy.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo:      repo,
		validator: strategy.NewValidator(),
		log:       log.With().Str("handler", "strategy").Logger(),
	}
}

// RegisterRoutes registers strategy configuration routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Get("/active", h.HandleGetActive)
	r.Post("/", h.HandleSave)
	r.Post("/validate", h.HandleValidate)
}

// HandleGetActive returns the active configuration, falling back to the
// defaults when none has been saved.
func (h *Handler) HandleGetActive(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.repo.GetActive()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	isDefault := cfg == nil
	if isDefault {
		cfg = strategy.DefaultConfig()
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"config":  cfg,
		"default": isDefault,
	})
}

// HandleList returns summaries of all stored configurations
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.repo.List()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"configs": summaries,
		"count":   len(summaries),
	})
}

// HandleSave validates and stores a configuration. ?activate=false stores
// without activating; the default activates.
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	var cfg strategy.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.validator.Validate(&cfg)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !result.Valid {
		h.writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":      "configuration is invalid",
			"violations": result.Violations,
		})
		return
	}

	activate := true
	if raw := r.URL.Query().Get("activate"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "activate must be a boolean")
			return
		}
		activate = parsed
	}

	id, err := h.repo.Save(&cfg, activate)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":     id,
		"active": activate,
	})
}

// HandleValidate dry-runs validation without storing anything
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var cfg strategy.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.validator.Validate(&cfg)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, result)
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

// Package handlers provides HTTP handlers for content suggestions.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Monear/rental-village-social-bot/internal/modules/selection"
)

// MaxSuggestions caps one request's batch size
const MaxSuggestions = 20

// Handler handles suggestion HTTP requests
type Handler struct {
	service *selection.Service
	log     zerolog.Logger
}

// NewHandler creates a new suggestion handler
func NewHandler(service *selection.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "selection").Logger(),
	}
}

// RegisterRoutes registers suggestion routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/suggestions", h.HandleSuggest)
	r.Get("/suggestions/pillars", h.HandlePillarDistribution)
}

type suggestRequest struct {
	Count int `json:"count"`
}

// HandleSuggest generates content suggestions. An empty body requests one.
func (h *Handler) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	req := suggestRequest{Count: 1}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	if req.Count < 1 {
		req.Count = 1
	}
	if req.Count > MaxSuggestions {
		h.writeError(w, http.StatusBadRequest, "count exceeds maximum batch size")
		return
	}

	results, err := h.service.Suggest(req.Count, time.Now())
	if err != nil {
		var cfgErr *selection.ConfigurationError
		switch {
		case errors.As(err, &cfgErr):
			h.writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":      "active strategy configuration is invalid",
				"violations": cfgErr.Violations,
			})
		case errors.Is(err, selection.ErrNoEligibleCandidates):
			h.writeError(w, http.StatusConflict, "no eligible catalog items for any pillar")
		default:
			h.log.Error().Err(err).Msg("Suggestion run failed")
			h.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": results,
		"count":       len(results),
	})
}

// HandlePillarDistribution reports the effective pillar probabilities the
// next run would draw from, for the dashboard's distribution view.
func (h *Handler) HandlePillarDistribution(w http.ResponseWriter, r *http.Request) {
	distribution, err := h.service.PillarDistribution(time.Now())
	if err != nil {
		var cfgErr *selection.ConfigurationError
		if errors.As(err, &cfgErr) {
			h.writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":      "active strategy configuration is invalid",
				"violations": cfgErr.Violations,
			})
			return
		}
		h.log.Error().Err(err).Msg("Failed to compute pillar distribution")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"pillars": distribution,
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

// Package handlers provides HTTP handlers for engagement analytics.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Monear/rental-village-social-bot/internal/domain"
	"github.com/Monear/rental-village-social-bot/internal/modules/performance"
	"github.com/Monear/rental-village-social-bot/internal/modules/strategy"
)

// StrategySource loads the active strategy configuration for distribution
// analysis.
type StrategySource interface {
	GetActive() (*strategy.Config, error)
}

// HistorySource loads recent selection history for distribution analysis
type HistorySource interface {
	LoadSince(cutoff time.Time) ([]domain.SelectionHistoryEntry, error)
}

// Handler handles engagement analytics HTTP requests
type Handler struct {
	repo       *performance.Repository
	service    *performance.Service
	strategies StrategySource
	history    HistorySource
	log        zerolog.Logger
}

// NewHandler creates a new engagement analytics handler
func NewHandler(
	repo *performance.Repository,
	service *performance.Service,
	strategies StrategySource,
	history HistorySource,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		repo:       repo,
		service:    service,
		strategies: strategies,
		history:    history,
		log:        log.With().Str("handler", "performance").Logger(),
	}
}

// RegisterRoutes registers engagement analytics routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/metrics", h.HandleRecordMetrics)
	r.Get("/summary", h.HandleSummary)
	r.Get("/trends/{itemID}", h.HandleTrend)
	r.Get("/report", h.HandleReport)
}

// HandleRecordMetrics stores one engagement measurement
func (h *Handler) HandleRecordMetrics(w http.ResponseWriter, r *http.Request) {
	var rec performance.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if rec.ItemID == "" {
		h.writeError(w, http.StatusUnprocessableEntity, "item_id is required")
		return
	}
	if rec.Likes < 0 || rec.Comments < 0 || rec.Reach < 0 {
		h.writeError(w, http.StatusUnprocessableEntity, "metrics must be non-negative")
		return
	}

	if err := h.repo.Record(rec); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}

// HandleSummary aggregates engagement over the last ?days (default 30)
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = parsed
	}

	summary, err := h.service.Summarize(time.Now().AddDate(0, 0, -days))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, summary)
}

// HandleTrend returns the engagement trend for one item
func (h *Handler) HandleTrend(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	if itemID == "" {
		h.writeError(w, http.StatusBadRequest, "item id is required")
		return
	}

	trend, err := h.service.TrendFor(itemID)
	if err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, trend)
}

// HandleReport compares the recent pillar mix against the configured
// weights and recommends adjustments.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.strategies.GetActive()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if cfg == nil {
		cfg = strategy.DefaultConfig()
	}

	history, err := h.history.LoadSince(time.Now().AddDate(0, 0, -30))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"pillars":    h.service.AnalyzeDistribution(cfg, history),
		"selections": len(history),
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

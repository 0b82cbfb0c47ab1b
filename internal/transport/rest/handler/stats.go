package handler

import (
	"net/http"
	"strconv"

	"insightapi/internal/service"
)

// StatsHandler handles corpus statistics endpoints
type StatsHandler struct {
	statsSvc *service.StatsService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsSvc *service.StatsService) *StatsHandler {
	return &StatsHandler{statsSvc: statsSvc}
}

// SentimentStats handles GET /v1/stats/sentiment
func (h *StatsHandler) SentimentStats(w http.ResponseWriter, r *http.Request) {
	resp, err := h.statsSvc.GetSentimentStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// FrequentIdeas handles GET /v1/stats/ideas
func (h *StatsHandler) FrequentIdeas(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	resp, err := h.statsSvc.GetFrequentIdeas(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

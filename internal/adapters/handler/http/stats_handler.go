package http

import (
	"net/http"

	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

type StatsHandler struct {
	service ports.StatsService
}

func NewStatsHandler(service ports.StatsService) *StatsHandler {
	return &StatsHandler{service: service}
}

func (h *StatsHandler) Overall(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Overall(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

const (
	defaultTopCandidates = 10
	maxTopCandidates     = 100
)

func (h *StatsHandler) Position(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	stats, err := h.service.Position(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *StatsHandler) TopCandidates(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", defaultTopCandidates, maxTopCandidates)
	if err != nil {
		writeError(w, r, err)
		return
	}

	candidates, err := h.service.TopCandidates(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, candidates)
}

func (h *StatsHandler) Trends(w http.ResponseWriter, r *http.Request) {
	trends, err := h.service.Trends(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trends)
}

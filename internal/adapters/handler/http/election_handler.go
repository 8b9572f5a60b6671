package http

import (
	"net/http"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

type ElectionHandler struct {
	service ports.ElectionService
}

func NewElectionHandler(service ports.ElectionService) *ElectionHandler {
	return &ElectionHandler{service: service}
}

type settingsRequest struct {
	AllowVoting         *bool `json:"allow_voting" validate:"required"`
	ShowResults         *bool `json:"show_results" validate:"required"`
	RequireVerification *bool `json:"require_verification" validate:"required"`
}

func (h *ElectionHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Status(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *ElectionHandler) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.service.History(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// Transition returns a handler moving the election to next.
func (h *ElectionHandler) Transition(next domain.ElectionPhase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := h.service.Transition(r.Context(), next)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, status)
	}
}

func (h *ElectionHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	status, err := h.service.UpdateSettings(r.Context(), domain.ElectionSettings{
		AllowVoting:         *req.AllowVoting,
		ShowResults:         *req.ShowResults,
		RequireVerification: *req.RequireVerification,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

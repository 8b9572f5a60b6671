package http

import (
	"net/http"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

type RunoffHandler struct {
	service ports.RunoffService
}

func NewRunoffHandler(service ports.RunoffService) *RunoffHandler {
	return &RunoffHandler{service: service}
}

type runoffVoteRequest struct {
	CandidateID int64 `json:"candidate_id" validate:"required,gt=0"`
}

type detectResponse struct {
	Created []domain.RunoffElection `json:"created"`
	Count   int                     `json:"count"`
}

func (h *RunoffHandler) Detect(w http.ResponseWriter, r *http.Request) {
	created, err := h.service.DetectAndCreateRunoffs(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detectResponse{Created: created, Count: len(created)})
}

func (h *RunoffHandler) List(w http.ResponseWriter, r *http.Request) {
	runoffs, err := h.service.ListRunoffElections(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, runoffs)
}

func (h *RunoffHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	detail, err := h.service.GetRunoffElection(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *RunoffHandler) Start(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	runoff, err := h.service.StartRunoffElection(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, runoff)
}

func (h *RunoffHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	runoff, err := h.service.CompleteRunoffElection(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, runoff)
}

func (h *RunoffHandler) Results(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	results, err := h.service.GetRunoffResults(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// Vote godoc
// @Summary      Casts the authenticated voter's runoff vote
// @Tags         runoffs
// @Accept       json
// @Success      201
// @Failure      400
// @Failure      409
// @Router       /runoffs/{id}/votes [post]
func (h *RunoffHandler) Vote(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFrom(r.Context())
	if !ok {
		writeError(w, r, domain.ErrUnauthorized)
		return
	}

	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req runoffVoteRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	vote, err := h.service.CastRunoffVote(r.Context(), ports.RunoffVoteInput{
		RunoffID:    id,
		Voucher:     principal.Subject,
		CandidateID: req.CandidateID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, vote)
}

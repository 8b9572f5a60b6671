package http

import (
	"net/http"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

type VoteHandler struct {
	service ports.VoteService
}

func NewVoteHandler(service ports.VoteService) *VoteHandler {
	return &VoteHandler{
		service: service,
	}
}

type selectionRequest struct {
	PositionID  int64 `json:"position_id" validate:"required,gt=0"`
	CandidateID int64 `json:"candidate_id" validate:"required,gt=0"`
}

type ballotRequest struct {
	Selections []selectionRequest `json:"selections" validate:"required,min=1,dive"`
}

type verifyRequest struct {
	VerificationCode string `json:"verification_code" validate:"required,alphanum,max=32"`
}

// CastBallot godoc
// @Summary      Casts the authenticated voter's ballot
// @Tags         votes
// @Accept       json
// @Success      201
// @Failure      400
// @Failure      409
// @Router       /votes [post]
func (h *VoteHandler) CastBallot(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFrom(r.Context())
	if !ok {
		writeError(w, r, domain.ErrUnauthorized)
		return
	}

	var req ballotRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	input := ports.BallotInput{
		Voucher:    principal.Subject,
		Selections: make([]domain.Selection, 0, len(req.Selections)),
	}
	for _, s := range req.Selections {
		input.Selections = append(input.Selections, domain.Selection{
			PositionID:  s.PositionID,
			CandidateID: s.CandidateID,
		})
	}

	receipt, err := h.service.CastBallot(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

// VerifyVote godoc
// @Summary      Looks up a vote by its verification code
// @Tags         votes
// @Accept       json
// @Success      200
// @Failure      404
// @Router       /votes/verify [post]
func (h *VoteHandler) VerifyVote(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	receipt, err := h.service.VerifyVote(r.Context(), req.VerificationCode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

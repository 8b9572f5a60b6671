package http

import (
	"net/http"

	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

type VoterHandler struct {
	authService ports.AuthService
}

func NewVoterHandler(authService ports.AuthService) *VoterHandler {
	return &VoterHandler{authService: authService}
}

type importVouchersRequest struct {
	Vouchers []string `json:"vouchers" validate:"required,min=1,max=10000,dive,required,max=64"`
}

type importVouchersResponse struct {
	Requested int `json:"requested"`
	Imported  int `json:"imported"`
}

func (h *VoterHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req importVouchersRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	imported, err := h.authService.ImportVouchers(r.Context(), req.Vouchers)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, importVouchersResponse{
		Requested: len(req.Vouchers),
		Imported:  imported,
	})
}

package http

import (
	"net/http"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

type AdminHandler struct {
	service ports.AdminService
}

func NewAdminHandler(service ports.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

type createAdminRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=admin super_admin"`
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin super_admin"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAdminRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	admin, err := h.service.CreateAdmin(r.Context(), ports.CreateAdminInput{
		Username: req.Username,
		Password: req.Password,
		Role:     domain.AdminRole(req.Role),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, admin)
}

func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	admins, err := h.service.ListAdmins(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, admins)
}

func (h *AdminHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateRoleRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	admin, err := h.service.UpdateRole(r.Context(), id, domain.AdminRole(req.Role))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, admin)
}

func (h *AdminHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	principal, _ := PrincipalFrom(r.Context())

	admin, err := h.service.Deactivate(r.Context(), id, principal.Subject)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, admin)
}

func (h *AdminHandler) Profile(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFrom(r.Context())

	admin, err := h.service.Profile(r.Context(), principal.Subject)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, admin)
}

func (h *AdminHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	principal, _ := PrincipalFrom(r.Context())

	if err := h.service.ChangePassword(r.Context(), principal.Subject, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

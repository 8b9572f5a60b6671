package http

import (
	"net/http"
	"time"

	"github.com/vncsmyrnk/ballot/internal/core/ports"
	"github.com/vncsmyrnk/ballot/internal/core/services"
)

type AuthHandler struct {
	authService    ports.AuthService
	cookieDomain   string
	cookieSameSite http.SameSite
}

func NewAuthHandler(authService ports.AuthService, cookieDomain string, cookieSameSite http.SameSite) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		cookieDomain:   cookieDomain,
		cookieSameSite: cookieSameSite,
	}
}

type voterLoginRequest struct {
	Voucher string `json:"voucher" validate:"required,max=64"`
}

type adminLoginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// VoterLogin godoc
// @Summary      Logs a voter in by voucher
// @Description  Sets the access token cookie used by the voting endpoints.
// @Tags         auth
// @Accept       json
// @Success      200
// @Failure      401
// @Router       /auth/voter/login [post]
func (h *AuthHandler) VoterLogin(w http.ResponseWriter, r *http.Request) {
	var req voterLoginRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	token, err := h.authService.LoginVoter(r.Context(), req.Voucher)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.respondWithToken(w, token, services.VoterTokenTTL)
}

// AdminLogin godoc
// @Summary      Logs an administrator in
// @Tags         auth
// @Accept       json
// @Success      200
// @Failure      401
// @Router       /auth/admin/login [post]
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	ctx := services.WithActor(r.Context(), "admin:"+req.Username)
	token, err := h.authService.LoginAdmin(ctx, req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.respondWithToken(w, token, services.AdminTokenTTL)
}

// Logout godoc
// @Summary      Logs the authenticated caller out
// @Description  Clears the access token cookie
// @Tags         auth
// @Success      200
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.expireCookies(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, token string, ttl time.Duration) {
	h.setAccessTokenCookie(w, token, ttl)
	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		ExpiresIn:   int(ttl.Seconds()),
	})
}

func (h *AuthHandler) setAccessTokenCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    token,
		Path:     "/",
		Domain:   h.cookieDomain,
		HttpOnly: true,
		Secure:   true,
		SameSite: h.cookieSameSite,
		MaxAge:   int(ttl.Seconds()),
	})
}

func (h *AuthHandler) expireCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: accessTokenCookie, MaxAge: -1, Path: "/", Domain: h.cookieDomain})
}

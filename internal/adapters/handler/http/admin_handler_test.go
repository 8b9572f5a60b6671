package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
)

const (
	superToken = "admin:root:super_admin"
	clerkToken = "admin:clerk:admin"
)

func TestAdminManagement_RequiresSuperAdmin(t *testing.T) {
	ts := newTestServer()

	routes := []struct {
		method, path string
		body         any
	}{
		{http.MethodGet, "/api/admin/admins", nil},
		{http.MethodPost, "/api/admin/admins", map[string]string{"username": "x", "password": "long-enough"}},
		{http.MethodPut, "/api/admin/admins/1/role", map[string]string{"role": "admin"}},
		{http.MethodPost, "/api/admin/admins/1/deactivate", nil},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, ts.do(t, rt.method, rt.path, "", rt.body).Code)
			assert.Equal(t, http.StatusForbidden, ts.do(t, rt.method, rt.path, clerkToken, rt.body).Code)
		})
	}
}

func TestCreateAdminRoute(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(t, http.MethodPost, "/api/admin/admins", superToken, map[string]string{
		"username": "clerk",
		"password": "clerk-password",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	admin := decodeBody[domain.AdminUser](t, rec)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.Equal(t, "clerk", ts.admins.created.Username)
	assert.NotContains(t, rec.Body.String(), "clerk-password")

	rec = ts.do(t, http.MethodPost, "/api/admin/admins", superToken, map[string]string{
		"username": "root",
		"password": "root-password",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/admin/admins", superToken, map[string]string{
		"username": "clerk",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/admin/admins", superToken, map[string]string{
		"username": "clerk",
		"password": "clerk-password",
		"role":     "moderator",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAdminsRoute(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(t, http.MethodGet, "/api/admin/admins", superToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	admins := decodeBody[[]domain.AdminUser](t, rec)
	assert.Len(t, admins, 1)
}

func TestUpdateAdminRoleRoute(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(t, http.MethodPut, "/api/admin/admins/1/role", superToken, map[string]string{"role": "admin"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.RoleAdmin, decodeBody[domain.AdminUser](t, rec).Role)

	rec = ts.do(t, http.MethodPut, "/api/admin/admins/7/role", superToken, map[string]string{"role": "admin"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPut, "/api/admin/admins/1/role", superToken, map[string]string{"role": "owner"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeactivateAdminRoute(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(t, http.MethodPost, "/api/admin/admins/1/deactivate", superToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "root", ts.admins.deactivator)

	rec = ts.do(t, http.MethodPost, "/api/admin/admins/9/deactivate", superToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminProfileRoute(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(t, http.MethodGet, "/api/admin/profile", clerkToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "clerk", decodeBody[domain.AdminUser](t, rec).Username)

	rec = ts.do(t, http.MethodGet, "/api/admin/profile", "voter:V-1", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestChangePasswordRoute(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(t, http.MethodPost, "/api/admin/change-password", clerkToken, map[string]string{
		"current_password": "secret",
		"new_password":     "fresh-password",
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "clerk", ts.admins.passwordFor)

	rec = ts.do(t, http.MethodPost, "/api/admin/change-password", clerkToken, map[string]string{
		"current_password": "wrong",
		"new_password":     "fresh-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

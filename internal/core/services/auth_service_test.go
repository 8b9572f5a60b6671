package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
)

const testSecret = "test-secret"

type fakeAdminRepo struct {
	admins []domain.AdminUser
}

func (f *fakeAdminRepo) GetByUsername(_ context.Context, username string) (*domain.AdminUser, error) {
	for _, a := range f.admins {
		if a.Username == username {
			out := a
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeAdminRepo) Count(context.Context) (int, error) { return len(f.admins), nil }

func (f *fakeAdminRepo) GetByID(_ context.Context, id int64) (*domain.AdminUser, error) {
	for _, a := range f.admins {
		if a.ID == id {
			out := a
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeAdminRepo) List(context.Context) ([]domain.AdminUser, error) {
	out := make([]domain.AdminUser, len(f.admins))
	copy(out, f.admins)
	return out, nil
}

func (f *fakeAdminRepo) Create(_ context.Context, a *domain.AdminUser) error {
	for _, existing := range f.admins {
		if existing.Username == a.Username {
			return domain.ErrAdminExists
		}
	}
	a.ID = int64(len(f.admins) + 1)
	f.admins = append(f.admins, *a)
	return nil
}

func (f *fakeAdminRepo) UpdateRole(_ context.Context, id int64, role domain.AdminRole) (*domain.AdminUser, error) {
	for i := range f.admins {
		if f.admins[i].ID == id && f.admins[i].Active {
			f.admins[i].Role = role
			out := f.admins[i]
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeAdminRepo) Deactivate(_ context.Context, id int64) (*domain.AdminUser, error) {
	for i := range f.admins {
		if f.admins[i].ID == id {
			f.admins[i].Active = false
			out := f.admins[i]
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeAdminRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	for i := range f.admins {
		if f.admins[i].ID == id && f.admins[i].Active {
			f.admins[i].PasswordHash = hash
			return nil
		}
	}
	return domain.ErrAdminNotFound
}

func TestLoginVoter(t *testing.T) {
	voters := seededAuditStore()
	svc := NewAuthService(voters, &fakeAdminRepo{}, testSecret, nil, nil)

	token, err := svc.LoginVoter(context.Background(), "V1")
	require.NoError(t, err)

	principal, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.PrincipalVoter, principal.Kind)
	assert.Equal(t, "V1", principal.Subject)

	_, err = svc.LoginVoter(context.Background(), "GHOST")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginAdmin(t *testing.T) {
	admins := &fakeAdminRepo{}
	rec := &memRecorder{}
	svc := NewAuthService(seededAuditStore(), admins, testSecret, rec, nil)
	require.NoError(t, svc.EnsureSuperAdmin(context.Background(), "root", "s3cret-pass"))
	require.Len(t, admins.admins, 1)
	assert.NotEqual(t, "s3cret-pass", admins.admins[0].PasswordHash)

	token, err := svc.LoginAdmin(context.Background(), "root", "s3cret-pass")
	require.NoError(t, err)
	principal, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.PrincipalAdmin, principal.Kind)
	assert.Equal(t, domain.RoleSuperAdmin, principal.Role)
	assert.Equal(t, []string{domain.EventAdminLogin}, rec.actions())

	_, err = svc.LoginAdmin(context.Background(), "root", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = svc.LoginAdmin(context.Background(), "nobody", "s3cret-pass")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginAdmin_Inactive(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	admins := &fakeAdminRepo{admins: []domain.AdminUser{{Username: "old", PasswordHash: string(hash), Role: domain.RoleAdmin}}}
	svc := NewAuthService(seededAuditStore(), admins, testSecret, nil, nil)

	_, err = svc.LoginAdmin(context.Background(), "old", "pw")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestEnsureSuperAdmin_NoopWhenAdminsExist(t *testing.T) {
	admins := &fakeAdminRepo{admins: []domain.AdminUser{{Username: "existing", Role: domain.RoleAdmin}}}
	svc := NewAuthService(seededAuditStore(), admins, testSecret, nil, nil)

	require.NoError(t, svc.EnsureSuperAdmin(context.Background(), "root", "pw"))
	assert.Len(t, admins.admins, 1)
}

func TestParseToken_Rejects(t *testing.T) {
	svc := NewAuthService(seededAuditStore(), &fakeAdminRepo{}, testSecret, nil, nil)

	sign := func(secret string, claims jwt.MapClaims) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return token
	}
	future := time.Now().Add(time.Hour).Unix()

	tests := map[string]string{
		"garbage":       "not-a-token",
		"wrong secret":  sign("other", jwt.MapClaims{"sub": "V1", "kind": "voter", "exp": future}),
		"expired":       sign(testSecret, jwt.MapClaims{"sub": "V1", "kind": "voter", "exp": time.Now().Add(-time.Hour).Unix()}),
		"no expiry":     sign(testSecret, jwt.MapClaims{"sub": "V1", "kind": "voter"}),
		"unknown kind":  sign(testSecret, jwt.MapClaims{"sub": "V1", "kind": "robot", "exp": future}),
		"admin no role": sign(testSecret, jwt.MapClaims{"sub": "root", "kind": "admin", "exp": future}),
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ParseToken(token)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}

func TestImportVouchers(t *testing.T) {
	voters := seededAuditStore()
	svc := NewAuthService(voters, &fakeAdminRepo{}, testSecret, nil, nil)

	n, err := svc.ImportVouchers(context.Background(), []string{"V1", " V3 ", "V3", "", "V4"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, voters.voters["V3"])
	assert.True(t, voters.voters["V4"])
}

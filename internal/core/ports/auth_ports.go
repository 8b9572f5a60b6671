package ports

import (
	"context"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
)

type VoterRepository interface {
	Exists(ctx context.Context, voucher string) (bool, error)
	// Import inserts the vouchers that are not already known and returns how
	// many were new.
	Import(ctx context.Context, vouchers []string) (int, error)
}

// AdminRepository lookups return nil, nil when no row matches.
type AdminRepository interface {
	GetByUsername(ctx context.Context, username string) (*domain.AdminUser, error)
	GetByID(ctx context.Context, id int64) (*domain.AdminUser, error)
	List(ctx context.Context) ([]domain.AdminUser, error)
	Count(ctx context.Context) (int, error)
	// Create returns domain.ErrAdminExists when the username is taken.
	Create(ctx context.Context, admin *domain.AdminUser) error
	// UpdateRole only touches active accounts.
	UpdateRole(ctx context.Context, id int64, role domain.AdminRole) (*domain.AdminUser, error)
	Deactivate(ctx context.Context, id int64) (*domain.AdminUser, error)
	// UpdatePassword returns domain.ErrAdminNotFound when no active account has id.
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

type AuthService interface {
	LoginVoter(ctx context.Context, voucher string) (string, error)
	LoginAdmin(ctx context.Context, username, password string) (string, error)
	ParseToken(token string) (*domain.Principal, error)
	ImportVouchers(ctx context.Context, vouchers []string) (int, error)
	EnsureSuperAdmin(ctx context.Context, username, password string) error
}

type CreateAdminInput struct {
	Username string
	Password string
	Role     domain.AdminRole
}

type AdminService interface {
	CreateAdmin(ctx context.Context, input CreateAdminInput) (*domain.AdminUser, error)
	ListAdmins(ctx context.Context) ([]domain.AdminUser, error)
	UpdateRole(ctx context.Context, id int64, role domain.AdminRole) (*domain.AdminUser, error)
	// Deactivate refuses to let requester deactivate their own account.
	Deactivate(ctx context.Context, id int64, requester string) (*domain.AdminUser, error)
	ChangePassword(ctx context.Context, username, current, next string) error
	Profile(ctx context.Context, username string) (*domain.AdminUser, error)
}

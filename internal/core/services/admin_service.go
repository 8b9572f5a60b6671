package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

const MinPasswordLength = 8

type adminService struct {
	admins ports.AdminRepository
	events eventLog
	logger *slog.Logger
}

func NewAdminService(admins ports.AdminRepository, recorder ports.EventRecorder, logger *slog.Logger) ports.AdminService {
	if logger == nil {
		logger = slog.Default()
	}
	return &adminService{
		admins: admins,
		events: newEventLog(recorder, logger),
		logger: logger,
	}
}

func (s *adminService) CreateAdmin(ctx context.Context, input ports.CreateAdminInput) (*domain.AdminUser, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, fmt.Errorf("username is required: %w", domain.ErrValidation)
	}
	role := input.Role
	if role == "" {
		role = domain.RoleAdmin
	}
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q: %w", role, domain.ErrValidation)
	}
	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	admin := &domain.AdminUser{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		if errors.Is(err, domain.ErrAdminExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	s.events.record(ctx, domain.EventAdminCreated, actorFrom(ctx), "admin_users", map[string]any{
		"admin_id": admin.ID,
		"username": admin.Username,
		"role":     admin.Role,
	})
	return admin, nil
}

func (s *adminService) ListAdmins(ctx context.Context) ([]domain.AdminUser, error) {
	admins, err := s.admins.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	return admins, nil
}

func (s *adminService) UpdateRole(ctx context.Context, id int64, role domain.AdminRole) (*domain.AdminUser, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q: %w", role, domain.ErrValidation)
	}
	admin, err := s.admins.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, fmt.Errorf("failed to update admin role: %w", err)
	}
	if admin == nil {
		return nil, domain.ErrAdminNotFound
	}

	s.events.record(ctx, domain.EventAdminRoleUpdated, actorFrom(ctx), "admin_users", map[string]any{
		"admin_id": admin.ID,
		"role":     admin.Role,
	})
	return admin, nil
}

func (s *adminService) Deactivate(ctx context.Context, id int64, requester string) (*domain.AdminUser, error) {
	target, err := s.admins.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	if target == nil {
		return nil, domain.ErrAdminNotFound
	}
	if target.Username == requester {
		return nil, fmt.Errorf("cannot deactivate your own account: %w", domain.ErrValidation)
	}

	admin, err := s.admins.Deactivate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to deactivate admin: %w", err)
	}
	if admin == nil {
		return nil, domain.ErrAdminNotFound
	}

	s.events.record(ctx, domain.EventAdminDeactivated, actorFrom(ctx), "admin_users", map[string]any{
		"admin_id": admin.ID,
		"username": admin.Username,
	})
	return admin, nil
}

func (s *adminService) ChangePassword(ctx context.Context, username, current, next string) error {
	admin, err := s.admins.GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to get admin: %w", err)
	}
	if admin == nil || !admin.Active {
		return domain.ErrAdminNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(current)); err != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := hashPassword(next)
	if err != nil {
		return err
	}
	if err := s.admins.UpdatePassword(ctx, admin.ID, hash); err != nil {
		if errors.Is(err, domain.ErrAdminNotFound) {
			return err
		}
		return fmt.Errorf("failed to change password: %w", err)
	}

	s.events.record(ctx, domain.EventPasswordChanged, admin.Username, "admin_users", map[string]any{
		"admin_id": admin.ID,
	})
	return nil
}

func (s *adminService) Profile(ctx context.Context, username string) (*domain.AdminUser, error) {
	admin, err := s.admins.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	if admin == nil || !admin.Active {
		return nil, domain.ErrAdminNotFound
	}
	return admin, nil
}

func hashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters: %w", MinPasswordLength, domain.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("password too long: %w", domain.ErrValidation)
		}
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

const (
	VoterTokenTTL = 30 * time.Minute
	AdminTokenTTL = 8 * time.Hour
)

type authService struct {
	voters    ports.VoterRepository
	admins    ports.AdminRepository
	jwtSecret []byte
	events    eventLog
	logger    *slog.Logger
	now       func() time.Time
}

func NewAuthService(voters ports.VoterRepository, admins ports.AdminRepository, jwtSecret string, recorder ports.EventRecorder, logger *slog.Logger) ports.AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	if jwtSecret == "" {
		logger.Warn("JWT_SECRET not set")
	}
	return &authService{
		voters:    voters,
		admins:    admins,
		jwtSecret: []byte(jwtSecret),
		events:    newEventLog(recorder, logger),
		logger:    logger,
		now:       time.Now,
	}
}

func (s *authService) LoginVoter(ctx context.Context, voucher string) (string, error) {
	voucher = strings.TrimSpace(voucher)
	if voucher == "" {
		return "", domain.ErrInvalidCredentials
	}

	exists, err := s.voters.Exists(ctx, voucher)
	if err != nil {
		return "", fmt.Errorf("failed to get voter: %w", err)
	}
	if !exists {
		return "", domain.ErrInvalidCredentials
	}

	return s.generateAccessToken(jwt.MapClaims{
		"sub":  voucher,
		"kind": string(domain.PrincipalVoter),
	}, VoterTokenTTL)
}

func (s *authService) LoginAdmin(ctx context.Context, username, password string) (string, error) {
	admin, err := s.admins.GetByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("failed to get admin: %w", err)
	}
	if admin == nil || !admin.Active {
		return "", domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.generateAccessToken(jwt.MapClaims{
		"sub":  admin.Username,
		"kind": string(domain.PrincipalAdmin),
		"role": string(admin.Role),
	}, AdminTokenTTL)
	if err != nil {
		return "", err
	}

	s.events.record(ctx, domain.EventAdminLogin, admin.Username, "admin_users", map[string]any{
		"role": admin.Role,
	})
	return token, nil
}

func (s *authService) ParseToken(tokenString string) (*domain.Principal, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	sub, _ := claims["sub"].(string)
	kind, _ := claims["kind"].(string)
	role, _ := claims["role"].(string)
	if sub == "" {
		return nil, domain.ErrUnauthorized
	}

	principal := &domain.Principal{Kind: domain.PrincipalKind(kind), Subject: sub}
	switch principal.Kind {
	case domain.PrincipalVoter:
	case domain.PrincipalAdmin:
		principal.Role = domain.AdminRole(role)
		if !principal.Role.Valid() {
			return nil, domain.ErrUnauthorized
		}
	default:
		return nil, domain.ErrUnauthorized
	}
	return principal, nil
}

func (s *authService) ImportVouchers(ctx context.Context, vouchers []string) (int, error) {
	seen := make(map[string]struct{}, len(vouchers))
	cleaned := make([]string, 0, len(vouchers))
	for _, v := range vouchers {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		cleaned = append(cleaned, v)
	}
	if len(cleaned) == 0 {
		return 0, nil
	}

	inserted, err := s.voters.Import(ctx, cleaned)
	if err != nil {
		return 0, fmt.Errorf("failed to import vouchers: %w", err)
	}

	s.events.record(ctx, domain.EventVouchersImported, actorFrom(ctx), "voters", map[string]any{
		"submitted": len(cleaned),
		"inserted":  inserted,
	})
	return inserted, nil
}

// EnsureSuperAdmin creates the bootstrap account when no admin exists yet.
func (s *authService) EnsureSuperAdmin(ctx context.Context, username, password string) error {
	count, err := s.admins.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if count > 0 {
		return nil
	}
	if username == "" || password == "" {
		s.logger.WarnContext(ctx, "no admin account exists and no bootstrap credentials are configured")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return fmt.Errorf("bootstrap password: %w", domain.ErrValidation)
		}
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &domain.AdminUser{
		Username:     username,
		PasswordHash: string(hash),
		Role:         domain.RoleSuperAdmin,
		Active:       true,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create super admin: %w", err)
	}
	s.logger.InfoContext(ctx, "super admin created", "username", username)
	return nil
}

func (s *authService) generateAccessToken(claims jwt.MapClaims, ttl time.Duration) (string, error) {
	now := s.now()
	claims["exp"] = now.Add(ttl).Unix()
	claims["iat"] = now.Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

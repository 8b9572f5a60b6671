package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

const adminColumns = `id, username, password_hash, role, active, created_at`

type adminRepository struct {
	db *sql.DB
}

func NewAdminRepository(db *sql.DB) ports.AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) GetByUsername(ctx context.Context, username string) (*domain.AdminUser, error) {
	query := `SELECT ` + adminColumns + ` FROM admin_users WHERE username = $1`
	return r.get(ctx, query, username)
}

func (r *adminRepository) GetByID(ctx context.Context, id int64) (*domain.AdminUser, error) {
	query := `SELECT ` + adminColumns + ` FROM admin_users WHERE id = $1`
	return r.get(ctx, query, id)
}

func (r *adminRepository) List(ctx context.Context) ([]domain.AdminUser, error) {
	query := `SELECT ` + adminColumns + ` FROM admin_users ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	defer rows.Close()

	admins := []domain.AdminUser{}
	for rows.Next() {
		admin, err := scanAdmin(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan admin: %w", err)
		}
		admins = append(admins, *admin)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return admins, nil
}

func (r *adminRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM admin_users`)
}

func (r *adminRepository) Create(ctx context.Context, admin *domain.AdminUser) error {
	query := `
		INSERT INTO admin_users (username, password_hash, role, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, admin.Username, admin.PasswordHash, admin.Role, admin.Active).Scan(&admin.ID, &admin.CreatedAt)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return domain.ErrAdminExists
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

func (r *adminRepository) UpdateRole(ctx context.Context, id int64, role domain.AdminRole) (*domain.AdminUser, error) {
	query := `
		UPDATE admin_users
		SET role = $2
		WHERE id = $1 AND active
		RETURNING ` + adminColumns
	return r.get(ctx, query, id, role)
}

func (r *adminRepository) Deactivate(ctx context.Context, id int64) (*domain.AdminUser, error) {
	query := `
		UPDATE admin_users
		SET active = FALSE
		WHERE id = $1
		RETURNING ` + adminColumns
	return r.get(ctx, query, id)
}

func (r *adminRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query := `UPDATE admin_users SET password_hash = $2 WHERE id = $1 AND active`
	res, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrAdminNotFound
	}
	return nil
}

// get returns nil when the statement matched no row.
func (r *adminRepository) get(ctx context.Context, query string, args ...any) (*domain.AdminUser, error) {
	admin, err := scanAdmin(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return admin, nil
}

func scanAdmin(row rowScanner) (*domain.AdminUser, error) {
	admin := &domain.AdminUser{}
	err := row.Scan(
		&admin.ID,
		&admin.Username,
		&admin.PasswordHash,
		&admin.Role,
		&admin.Active,
		&admin.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return admin, nil
}

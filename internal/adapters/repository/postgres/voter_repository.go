package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

type VoterRepository struct {
	db *sql.DB
}

func NewVoterRepository(db *sql.DB) ports.VoterRepository {
	return &VoterRepository{db: db}
}

func (r *VoterRepository) Exists(ctx context.Context, voucher string) (bool, error) {
	return exists(ctx, r.db, `SELECT EXISTS (SELECT 1 FROM voters WHERE voucher = $1)`, voucher)
}

func (r *VoterRepository) Import(ctx context.Context, vouchers []string) (int, error) {
	query := `
		INSERT INTO voters (voucher)
		SELECT unnest($1::text[])
		ON CONFLICT (voucher) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, pq.Array(vouchers))
	if err != nil {
		return 0, fmt.Errorf("failed to import vouchers: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count imported vouchers: %w", err)
	}
	return int(n), nil
}

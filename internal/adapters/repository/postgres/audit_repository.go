package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

type auditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) ports.AuditRepository {
	return &auditRepository{
		db: db,
	}
}

func (r *auditRepository) VoteDetail(ctx context.Context, voteID int64) (*domain.VoteDetail, error) {
	query := `
		SELECT v.id, v.voucher, v.candidate_id, v.position_id, v.verification_code, v.voted_at,
			COALESCE(c.name, ''), COALESCE(p.name, '')
		FROM votes v
		LEFT JOIN candidates c ON c.id = v.candidate_id
		LEFT JOIN positions p ON p.id = v.position_id
		WHERE v.id = $1
	`
	var d domain.VoteDetail
	err := r.db.QueryRowContext(ctx, query, voteID).Scan(
		&d.ID, &d.Voucher, &d.CandidateID, &d.PositionID, &d.VerificationCode, &d.VotedAt,
		&d.CandidateName, &d.PositionName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrVoteNotFound
		}
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}
	return &d, nil
}

func (r *auditRepository) VoteIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM votes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list vote ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan vote id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vote ids: %w", err)
	}
	return ids, nil
}

func (r *auditRepository) VoterExists(ctx context.Context, voucher string) (bool, error) {
	return exists(ctx, r.db, `SELECT EXISTS (SELECT 1 FROM voters WHERE voucher = $1)`, voucher)
}

func (r *auditRepository) CandidateInPosition(ctx context.Context, candidateID, positionID int64) (bool, error) {
	return exists(ctx, r.db, `SELECT EXISTS (SELECT 1 FROM candidates WHERE id = $1 AND position_id = $2)`, candidateID, positionID)
}

func (r *auditRepository) CountOtherVotes(ctx context.Context, voucher string, positionID, excludeVoteID int64) (int, error) {
	query := `SELECT COUNT(*) FROM votes WHERE voucher = $1 AND position_id = $2 AND id <> $3`
	return count(ctx, r.db, query, voucher, positionID, excludeVoteID)
}

func (r *auditRepository) CodeUsedElsewhere(ctx context.Context, code string, excludeVoteID int64) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM votes WHERE verification_code = $1 AND id <> $2)
			OR EXISTS (SELECT 1 FROM runoff_votes WHERE verification_code = $1)
	`
	return exists(ctx, r.db, query, code, excludeVoteID)
}

func (r *auditRepository) CountVotesByVoucher(ctx context.Context, voucher string) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM votes WHERE voucher = $1`, voucher)
}

func exists(ctx context.Context, db *sql.DB, query string, args ...any) (bool, error) {
	var found bool
	if err := db.QueryRowContext(ctx, query, args...).Scan(&found); err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return found, nil
}

func count(ctx context.Context, db *sql.DB, query string, args ...any) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count: %w", err)
	}
	return n, nil
}

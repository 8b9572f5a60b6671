package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

type voteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) ports.VoteRepository {
	return &voteRepository{
		db: db,
	}
}

func (r *voteRepository) VerificationCodeExists(ctx context.Context, code string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM votes WHERE verification_code = $1)
			OR EXISTS (SELECT 1 FROM runoff_votes WHERE verification_code = $1)
	`
	return exists(ctx, r.db, query, code)
}

func (r *voteRepository) SaveBallot(ctx context.Context, votes []*domain.Vote) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO votes (voucher, candidate_id, position_id, verification_code, voted_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare vote statement: %w", err)
	}
	defer stmt.Close()

	for _, v := range votes {
		err := stmt.QueryRowContext(ctx, v.Voucher, v.CandidateID, v.PositionID, v.VerificationCode, v.VotedAt).Scan(&v.ID)
		if err != nil {
			return mapVoteError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func mapVoteError(err error) error {
	if constraint, ok := uniqueViolation(err); ok {
		if constraint == "votes_verification_code_key" {
			return domain.ErrCodeTaken
		}
		return domain.ErrAlreadyVoted
	}
	if _, ok := foreignKeyViolation(err); ok {
		return domain.ErrInvalidCandidate
	}
	return fmt.Errorf("failed to save vote: %w", err)
}

func (r *voteRepository) FindByCode(ctx context.Context, code string) (*domain.VoteReceipt, error) {
	query := `
		SELECT v.verification_code, v.position_id, p.name, v.candidate_id, c.name, v.voted_at
		FROM votes v
		JOIN positions p ON p.id = v.position_id
		JOIN candidates c ON c.id = v.candidate_id
		WHERE v.verification_code = $1
	`
	var receipt domain.VoteReceipt
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&receipt.VerificationCode, &receipt.PositionID, &receipt.PositionName,
		&receipt.CandidateID, &receipt.CandidateName, &receipt.VotedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrVoteNotFound
		}
		return nil, fmt.Errorf("failed to find vote: %w", err)
	}
	return &receipt, nil
}

package ports

import (
	"context"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
)

type VerificationCodeChecker interface {
	// VerificationCodeExists looks across both primary and runoff votes.
	VerificationCodeExists(ctx context.Context, code string) (bool, error)
}

type VoteRepository interface {
	VerificationCodeChecker
	// SaveBallot inserts all votes atomically.
	SaveBallot(ctx context.Context, votes []*domain.Vote) error
	FindByCode(ctx context.Context, code string) (*domain.VoteReceipt, error)
}

type BallotInput struct {
	Voucher    string
	Selections []domain.Selection
}

type VoteService interface {
	CastBallot(ctx context.Context, input BallotInput) (*domain.BallotReceipt, error)
	VerifyVote(ctx context.Context, code string) (*domain.VoteReceipt, error)
}

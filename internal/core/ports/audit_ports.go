package ports

import (
	"context"
	"time"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
)

type AuditRepository interface {
	VoteDetail(ctx context.Context, voteID int64) (*domain.VoteDetail, error)
	VoteIDs(ctx context.Context) ([]int64, error)
	VoterExists(ctx context.Context, voucher string) (bool, error)
	CandidateInPosition(ctx context.Context, candidateID, positionID int64) (bool, error)
	CountOtherVotes(ctx context.Context, voucher string, positionID, excludeVoteID int64) (int, error)
	CodeUsedElsewhere(ctx context.Context, code string, excludeVoteID int64) (bool, error)
	CountVotesByVoucher(ctx context.Context, voucher string) (int, error)
}

type AuditService interface {
	AuditVote(ctx context.Context, voteID int64) (*domain.VoteAuditResult, error)
	AuditAllVotes(ctx context.Context) (*domain.AuditReport, error)
	SuspiciousVotes(ctx context.Context, minRisk int) ([]domain.VoteAuditResult, error)
}

type FraudRepository interface {
	// VouchersOver returns vouchers with more than threshold votes cast at or
	// after since. A zero since covers all votes.
	VouchersOver(ctx context.Context, since time.Time, threshold int) ([]domain.VoucherVoteCount, error)
	// CandidateShares is ordered by vote count descending.
	CandidateShares(ctx context.Context) ([]domain.CandidateShare, error)
	HourlyVoteCounts(ctx context.Context, since time.Time) ([]domain.HourBucket, error)
}

type FraudService interface {
	DetectFraudPatterns(ctx context.Context) (*domain.FraudDetectionResult, error)
}

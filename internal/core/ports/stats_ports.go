package ports

import (
	"context"
	"time"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
)

type StatsRepository interface {
	CountVoters(ctx context.Context) (int64, error)
	CountVotersWhoVoted(ctx context.Context) (int64, error)
	CountVotes(ctx context.Context) (int64, error)
	// PositionTallies includes candidates with zero votes.
	PositionTallies(ctx context.Context) ([]domain.CandidateTally, error)
	// DailyVoteCounts groups votes cast at or after since by UTC day, newest
	// first.
	DailyVoteCounts(ctx context.Context, since time.Time) ([]domain.DailyTrend, error)
	HourlyVoteCounts(ctx context.Context, since time.Time) ([]domain.HourBucket, error)
}

type StatsService interface {
	Overall(ctx context.Context) (*domain.OverallStats, error)
	Position(ctx context.Context, positionID int64) (*domain.PositionStats, error)
	TopCandidates(ctx context.Context, limit int) ([]domain.RankedCandidate, error)
	Trends(ctx context.Context) (*domain.VotingTrends, error)
}

package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

const trendWindow = 30 * 24 * time.Hour

type statsService struct {
	repo  ports.StatsRepository
	cache ports.Cache
	now   func() time.Time
}

func NewStatsService(repo ports.StatsRepository, cache ports.Cache) ports.StatsService {
	return &statsService{
		repo:  repo,
		cache: cache,
		now:   time.Now,
	}
}

func (s *statsService) Overall(ctx context.Context) (*domain.OverallStats, error) {
	if cached, ok := s.cache.Get(cacheKeyStats); ok {
		if stats, ok := cached.(*domain.OverallStats); ok {
			return stats, nil
		}
	}

	var (
		stats   domain.OverallStats
		tallies []domain.CandidateTally
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repo.CountVoters(gctx)
		if err != nil {
			return fmt.Errorf("failed to count voters: %w", err)
		}
		stats.TotalVoters = n
		return nil
	})
	g.Go(func() error {
		n, err := s.repo.CountVotersWhoVoted(gctx)
		if err != nil {
			return fmt.Errorf("failed to count participating voters: %w", err)
		}
		stats.VotersWhoVoted = n
		return nil
	})
	g.Go(func() error {
		n, err := s.repo.CountVotes(gctx)
		if err != nil {
			return fmt.Errorf("failed to count votes: %w", err)
		}
		stats.TotalVotes = n
		return nil
	})
	g.Go(func() error {
		t, err := s.repo.PositionTallies(gctx)
		if err != nil {
			return fmt.Errorf("failed to tally positions: %w", err)
		}
		tallies = t
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.TurnoutPercent = percent(stats.VotersWhoVoted, stats.TotalVoters)
	stats.Positions = positionStats(tallies)
	stats.GeneratedAt = s.now()

	s.cache.Set(cacheKeyStats, &stats)
	return &stats, nil
}

// Position returns one position's slice of the overall stats.
func (s *statsService) Position(ctx context.Context, positionID int64) (*domain.PositionStats, error) {
	stats, err := s.Overall(ctx)
	if err != nil {
		return nil, err
	}
	for i := range stats.Positions {
		if stats.Positions[i].PositionID == positionID {
			return &stats.Positions[i], nil
		}
	}
	return nil, domain.ErrPositionNotFound
}

// TopCandidates ranks candidates across every position by vote count.
func (s *statsService) TopCandidates(ctx context.Context, limit int) ([]domain.RankedCandidate, error) {
	stats, err := s.Overall(ctx)
	if err != nil {
		return nil, err
	}

	ranked := []domain.RankedCandidate{}
	for _, p := range stats.Positions {
		for _, c := range p.Candidates {
			ranked = append(ranked, domain.RankedCandidate{
				PositionID:     p.PositionID,
				PositionName:   p.PositionName,
				CandidateStats: c,
			})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].VoteCount > ranked[j].VoteCount
	})
	if limit < len(ranked) {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// Trends reports daily activity over the last trendWindow and hourly activity
// for the current UTC day.
func (s *statsService) Trends(ctx context.Context) (*domain.VotingTrends, error) {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	trends := &domain.VotingTrends{GeneratedAt: now}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		daily, err := s.repo.DailyVoteCounts(gctx, now.Add(-trendWindow))
		if err != nil {
			return fmt.Errorf("failed to load daily trends: %w", err)
		}
		trends.Daily = daily
		return nil
	})
	g.Go(func() error {
		hourly, err := s.repo.HourlyVoteCounts(gctx, today)
		if err != nil {
			return fmt.Errorf("failed to load hourly trends: %w", err)
		}
		trends.Hourly = hourly
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if trends.Hourly == nil {
		trends.Hourly = []domain.HourBucket{}
	}
	return trends, nil
}

func positionStats(tallies []domain.CandidateTally) []domain.PositionStats {
	positions := []domain.PositionStats{}
	for _, group := range groupByPosition(tallies) {
		ps := domain.PositionStats{
			PositionID:   group[0].PositionID,
			PositionName: group[0].PositionName,
		}
		for _, t := range group {
			ps.TotalVotes += t.VoteCount
		}
		for _, t := range group {
			ps.Candidates = append(ps.Candidates, domain.CandidateStats{
				CandidateID:   t.CandidateID,
				CandidateName: t.CandidateName,
				VoteCount:     t.VoteCount,
				Percentage:    percent(t.VoteCount, ps.TotalVotes),
			})
		}
		positions = append(positions, ps)
	}
	return positions
}

// percent rounds to two decimals and treats an empty denominator as zero.
func percent(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*10000) / 100
}

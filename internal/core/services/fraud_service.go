package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
	"github.com/vncsmyrnk/ballot/internal/core/scoring"
)

const (
	FactorRapidVoting   = "Rapid successive voting detected"
	FactorConcentration = "Unusual vote concentration patterns"
	FactorTimingSkew    = "Suspicious timing patterns"
	FactorOverVoting    = "Unusual user behavior patterns"
)

// heuristic is one election-wide fraud signal. run fills its part of details
// and reports the risk it contributes and whether it fired.
type heuristic struct {
	name   string
	factor string
	run    func(ctx context.Context, details *domain.FraudDetails) (float64, bool, error)
}

type fraudService struct {
	repo   ports.FraudRepository
	events eventLog
	logger *slog.Logger
	now    func() time.Time
}

func NewFraudService(repo ports.FraudRepository, recorder ports.EventRecorder, logger *slog.Logger) ports.FraudService {
	if logger == nil {
		logger = slog.Default()
	}
	return &fraudService{
		repo:   repo,
		events: newEventLog(recorder, logger),
		logger: logger,
		now:    time.Now,
	}
}

func (s *fraudService) DetectFraudPatterns(ctx context.Context) (*domain.FraudDetectionResult, error) {
	start := time.Now()
	defer func() {
		auditDuration.WithLabelValues("fraud_detection").Observe(time.Since(start).Seconds())
	}()

	result := &domain.FraudDetectionResult{RiskFactors: []string{}}
	var total float64
	for _, h := range s.heuristics() {
		risk, fired, err := h.run(ctx, &result.Details)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			auditCheckFailures.WithLabelValues(h.name).Inc()
			s.logger.WarnContext(ctx, "fraud heuristic failed", "check", h.name, "error", err)
			result.Checks = append(result.Checks, domain.CheckResult{
				Name:    h.name,
				Outcome: domain.CheckFailed,
				Error:   err.Error(),
			})
			continue
		}
		if !fired {
			result.Checks = append(result.Checks, domain.CheckResult{Name: h.name, Outcome: domain.NotTriggered})
			continue
		}

		total += risk
		result.RiskFactors = append(result.RiskFactors, h.factor)
		result.Checks = append(result.Checks, domain.CheckResult{
			Name:    h.name,
			Outcome: domain.Triggered,
			Issue:   h.factor,
			Risk:    risk,
		})
	}

	result.RiskScore = scoring.Clamp(total)
	result.RiskLevel = scoring.RiskLevel(result.RiskScore)
	result.IsSuspicious = len(result.RiskFactors) > 0
	result.Confidence = scoring.Confidence(len(result.RiskFactors))
	fraudRiskScore.Set(result.RiskScore)

	s.events.record(ctx, domain.EventFraudDetection, actorFrom(ctx), "votes", map[string]any{
		"risk_level":   result.RiskLevel,
		"risk_score":   result.RiskScore,
		"risk_factors": result.RiskFactors,
	})
	return result, nil
}

func (s *fraudService) heuristics() []heuristic {
	return []heuristic{
		{name: "rapid_voting", factor: FactorRapidVoting, run: s.rapidVoting},
		{name: "vote_concentration", factor: FactorConcentration, run: s.concentration},
		{name: "timing_patterns", factor: FactorTimingSkew, run: s.timingSkew},
		{name: "voucher_behavior", factor: FactorOverVoting, run: s.overVoting},
	}
}

func (s *fraudService) rapidVoting(ctx context.Context, details *domain.FraudDetails) (float64, bool, error) {
	vouchers, err := s.repo.VouchersOver(ctx, s.now().Add(-scoring.RapidVotingWindow), scoring.RapidVotingThreshold)
	if err != nil {
		return 0, false, err
	}
	if len(vouchers) == 0 {
		return 0, false, nil
	}

	details.RapidVoting = &domain.RapidVotingDetails{
		SuspiciousVouchers: len(vouchers),
		MaxVotesPerVoucher: maxVoucherVotes(vouchers),
	}
	return scoring.RapidVotingContribution(len(vouchers)), true, nil
}

func (s *fraudService) concentration(ctx context.Context, details *domain.FraudDetails) (float64, bool, error) {
	shares, err := s.repo.CandidateShares(ctx)
	if err != nil {
		return 0, false, err
	}
	if len(shares) == 0 {
		return 0, false, nil
	}

	top := shares[0]
	for _, sh := range shares[1:] {
		if sh.Percentage > top.Percentage {
			top = sh
		}
	}
	risk, fired := scoring.ConcentrationContribution(top.Percentage)
	if !fired {
		return 0, false, nil
	}

	details.VoteConcentration = &domain.ConcentrationDetails{
		TopCandidateID:         top.CandidateID,
		TopCandidatePercentage: top.Percentage,
		TotalCandidates:        len(shares),
	}
	return risk, true, nil
}

func (s *fraudService) timingSkew(ctx context.Context, details *domain.FraudDetails) (float64, bool, error) {
	buckets, err := s.repo.HourlyVoteCounts(ctx, s.now().Add(-scoring.TimingSkewWindow))
	if err != nil {
		return 0, false, err
	}

	var busiest, total int
	for _, b := range buckets {
		total += b.VoteCount
		busiest = max(busiest, b.VoteCount)
	}
	risk, fired := scoring.TimingSkewContribution(busiest, total)
	if !fired {
		return 0, false, nil
	}

	details.TimingPatterns = &domain.TimingDetails{
		MaxVotesInHour:     busiest,
		TotalVotes:         total,
		ConcentrationRatio: float64(busiest) / float64(total),
	}
	return risk, true, nil
}

func (s *fraudService) overVoting(ctx context.Context, details *domain.FraudDetails) (float64, bool, error) {
	vouchers, err := s.repo.VouchersOver(ctx, time.Time{}, scoring.ExpectedVotesPerVoucher)
	if err != nil {
		return 0, false, err
	}
	if len(vouchers) == 0 {
		return 0, false, nil
	}

	details.VoucherBehavior = &domain.OverVotingDetails{
		VouchersWithExtraVotes: len(vouchers),
		MaxVotesByVoucher:      maxVoucherVotes(vouchers),
	}
	return scoring.OverVotingContribution(len(vouchers)), true, nil
}

func maxVoucherVotes(vouchers []domain.VoucherVoteCount) int {
	var m int
	for _, v := range vouchers {
		m = max(m, v.VoteCount)
	}
	return m
}

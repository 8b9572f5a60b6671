package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
	"github.com/vncsmyrnk/ballot/internal/core/scoring"
)

const (
	DefaultAuditConcurrency = 8
	topIssuesLimit          = 10
)

type auditService struct {
	repo        ports.AuditRepository
	events      eventLog
	logger      *slog.Logger
	concurrency int
	now         func() time.Time
}

func NewAuditService(repo ports.AuditRepository, recorder ports.EventRecorder, logger *slog.Logger, concurrency int) ports.AuditService {
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency <= 0 {
		concurrency = DefaultAuditConcurrency
	}
	return &auditService{
		repo:        repo,
		events:      newEventLog(recorder, logger),
		logger:      logger,
		concurrency: concurrency,
		now:         time.Now,
	}
}

func (s *auditService) AuditVote(ctx context.Context, voteID int64) (*domain.VoteAuditResult, error) {
	result, err := s.auditVote(ctx, voteID)
	if err != nil {
		return nil, err
	}

	s.events.record(ctx, domain.EventVoteAudit, actorFrom(ctx), "votes/"+strconv.FormatInt(voteID, 10), map[string]any{
		"risk_score": result.RiskScore,
		"is_valid":   result.IsValid,
		"issues":     len(result.Issues),
	})
	return result, nil
}

func (s *auditService) auditVote(ctx context.Context, voteID int64) (*domain.VoteAuditResult, error) {
	vote, err := s.repo.VoteDetail(ctx, voteID)
	if err != nil {
		if errors.Is(err, domain.ErrVoteNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load vote %d: %w", voteID, err)
	}

	checks := []domain.CheckResult{
		s.runCheck(ctx, voteID, "voter_validity", func() (string, int, error) {
			found, err := s.repo.VoterExists(ctx, vote.Voucher)
			issue, risk := scoring.VoterRisk(found)
			return issue, risk, err
		}),
		s.runCheck(ctx, voteID, "candidate_validity", func() (string, int, error) {
			belongs, err := s.repo.CandidateInPosition(ctx, vote.CandidateID, vote.PositionID)
			issue, risk := scoring.CandidateRisk(belongs)
			return issue, risk, err
		}),
		s.runCheck(ctx, voteID, "duplicate_votes", func() (string, int, error) {
			n, err := s.repo.CountOtherVotes(ctx, vote.Voucher, vote.PositionID, vote.ID)
			issue, risk := scoring.DuplicateRisk(n)
			return issue, risk, err
		}),
		s.runCheck(ctx, voteID, "verification_code", func() (string, int, error) {
			used, err := s.repo.CodeUsedElsewhere(ctx, vote.VerificationCode, vote.ID)
			issue, risk := scoring.CodeRisk(vote.VerificationCode, !used)
			return issue, risk, err
		}),
		s.runCheck(ctx, voteID, "voucher_timing", func() (string, int, error) {
			n, err := s.repo.CountVotesByVoucher(ctx, vote.Voucher)
			issue, risk := scoring.VoucherTimingRisk(n)
			return issue, risk, err
		}),
		s.runCheck(ctx, voteID, "integrity", func() (string, int, error) {
			issue, risk := scoring.IntegrityCheck(vote.Vote, s.now())
			return issue, risk, nil
		}),
	}

	issues := []string{}
	var total float64
	for _, c := range checks {
		if c.Outcome != domain.Triggered {
			continue
		}
		issues = append(issues, c.Issue)
		total += c.Risk
	}
	score := int(scoring.Clamp(total))

	return &domain.VoteAuditResult{
		VoteID:           vote.ID,
		Voucher:          vote.Voucher,
		VerificationCode: vote.VerificationCode,
		CandidateID:      vote.CandidateID,
		PositionID:       vote.PositionID,
		Timestamp:        vote.VotedAt,
		IsValid:          len(issues) == 0 && score < scoring.ValidThreshold,
		Issues:           issues,
		RiskScore:        score,
		Checks:           checks,
	}, nil
}

// runCheck evaluates one audit rule. A rule whose lookup fails is recorded as
// CheckFailed and contributes nothing to the score.
func (s *auditService) runCheck(ctx context.Context, voteID int64, name string, check func() (string, int, error)) domain.CheckResult {
	issue, risk, err := check()
	if err != nil {
		auditCheckFailures.WithLabelValues(name).Inc()
		s.logger.WarnContext(ctx, "audit check failed", "check", name, "vote_id", voteID, "error", err)
		return domain.CheckResult{Name: name, Outcome: domain.CheckFailed, Error: err.Error()}
	}
	if risk == 0 {
		return domain.CheckResult{Name: name, Outcome: domain.NotTriggered}
	}
	return domain.CheckResult{Name: name, Outcome: domain.Triggered, Issue: issue, Risk: float64(risk)}
}

func (s *auditService) AuditAllVotes(ctx context.Context) (*domain.AuditReport, error) {
	start := time.Now()
	defer func() {
		auditDuration.WithLabelValues("full_audit").Observe(time.Since(start).Seconds())
	}()

	results, failed, err := s.auditEvery(ctx)
	if err != nil {
		return nil, err
	}

	report := buildReport(results)
	report.FailedAudits = failed

	s.events.record(ctx, domain.EventFullAudit, actorFrom(ctx), "votes", map[string]any{
		"total_votes":      report.TotalVotesAudited,
		"valid_votes":      report.ValidVotes,
		"suspicious_votes": report.SuspiciousVotes,
		"invalid_votes":    report.InvalidVotes,
		"failed_audits":    report.FailedAudits,
	})
	return report, nil
}

func (s *auditService) SuspiciousVotes(ctx context.Context, minRisk int) ([]domain.VoteAuditResult, error) {
	results, _, err := s.auditEvery(ctx)
	if err != nil {
		return nil, err
	}

	suspicious := []domain.VoteAuditResult{}
	for _, r := range results {
		if r.RiskScore >= minRisk {
			suspicious = append(suspicious, r)
		}
	}
	sort.SliceStable(suspicious, func(i, j int) bool {
		return suspicious[i].RiskScore > suspicious[j].RiskScore
	})
	return suspicious, nil
}

// auditEvery audits all votes concurrently. Votes that fail to audit are
// logged and left out; the number left out is returned.
func (s *auditService) auditEvery(ctx context.Context) ([]domain.VoteAuditResult, int, error) {
	ids, err := s.repo.VoteIDs(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list votes: %w", err)
	}

	var (
		mu      sync.Mutex
		results = make([]domain.VoteAuditResult, 0, len(ids))
		failed  int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, id := range ids {
		g.Go(func() error {
			result, err := s.auditVote(gctx, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.ErrorContext(gctx, "failed to audit vote", "vote_id", id, "error", err)
				failed++
				return nil
			}
			results = append(results, *result)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].VoteID < results[j].VoteID })
	return results, failed, nil
}

func buildReport(results []domain.VoteAuditResult) *domain.AuditReport {
	report := &domain.AuditReport{TotalVotesAudited: len(results)}

	counts := make(map[string]int)
	for _, r := range results {
		switch {
		case r.IsValid:
			report.ValidVotes++
		case r.RiskScore >= scoring.InvalidThreshold:
			report.InvalidVotes++
		default:
			report.SuspiciousVotes++
		}

		switch scoring.RiskBucket(r.RiskScore) {
		case domain.SeverityCritical:
			report.RiskDistribution.Critical++
		case domain.SeverityHigh:
			report.RiskDistribution.High++
		case domain.SeverityMedium:
			report.RiskDistribution.Medium++
		default:
			report.RiskDistribution.Low++
		}

		for _, issue := range r.Issues {
			counts[issue]++
		}
	}

	issues := make([]domain.IssueCount, 0, len(counts))
	for issue, n := range counts {
		issues = append(issues, domain.IssueCount{
			Issue:    issue,
			Count:    n,
			Severity: scoring.IssueSeverity(issue),
		})
	}
	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Count != issues[j].Count {
			return issues[i].Count > issues[j].Count
		}
		return issues[i].Issue < issues[j].Issue
	})
	if len(issues) > topIssuesLimit {
		issues = issues[:topIssuesLimit]
	}

	report.CommonIssues = issues
	report.Recommendations = scoring.Recommendations(issues, report.RiskDistribution)
	return report
}

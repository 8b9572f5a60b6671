package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
)

func TestCheckWeights(t *testing.T) {
	_, r := VoterRisk(false)
	assert.Equal(t, 25, r)
	_, r = CandidateRisk(false)
	assert.Equal(t, 30, r)
	_, r = DuplicateRisk(3)
	assert.Equal(t, 60, r)
	_, r = CodeRisk("ABCDEFGHJKLM", false)
	assert.Equal(t, 15, r)
	_, r = VoucherTimingRisk(3)
	assert.Equal(t, 30, r)

	issue, r := DuplicateRisk(0)
	assert.Empty(t, issue)
	assert.Zero(t, r)
	issue, r = VoucherTimingRisk(2)
	assert.Empty(t, issue)
	assert.Zero(t, r)
}

func TestCodeRisk(t *testing.T) {
	issue, r := CodeRisk("short", true)
	assert.Equal(t, VerificationCodeRisk, r)
	assert.Contains(t, issue, "too short")

	issue, r = CodeRisk("Abcdefgh1234", true)
	assert.Empty(t, issue)
	assert.Zero(t, r)
}

func TestIntegrityCheck(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ok := domain.Vote{Voucher: "V1", CandidateID: 5, PositionID: 1, VotedAt: now.Add(-time.Minute)}

	issue, r := IntegrityCheck(ok, now)
	assert.Empty(t, issue)
	assert.Zero(t, r)

	future := ok
	future.VotedAt = now.Add(time.Hour)
	issue, r = IntegrityCheck(future, now)
	assert.Equal(t, IntegrityRisk, r)
	assert.Contains(t, issue, "future")

	missing := ok
	missing.Voucher = ""
	issue, r = IntegrityCheck(missing, now)
	assert.Equal(t, IntegrityRisk, r)
	assert.Contains(t, issue, "Missing")
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 100.0, Clamp(260))
	assert.Equal(t, 0.0, Clamp(-5))
	assert.Equal(t, 42.0, Clamp(42))
}

func TestFraudContributions(t *testing.T) {
	assert.Equal(t, 30.0, RapidVotingContribution(3))
	assert.Equal(t, 45.0, OverVotingContribution(3))

	risk, hit := ConcentrationContribution(70)
	assert.True(t, hit)
	assert.InDelta(t, 20.0, risk, 1e-9)

	_, hit = ConcentrationContribution(60)
	assert.False(t, hit)

	risk, hit = TimingSkewContribution(9, 10)
	assert.True(t, hit)
	assert.Equal(t, 30.0, risk)

	_, hit = TimingSkewContribution(8, 10)
	assert.False(t, hit)
	_, hit = TimingSkewContribution(0, 0)
	assert.False(t, hit)
}

func TestRiskLevelAndConfidence(t *testing.T) {
	tests := []struct {
		score float64
		want  domain.Severity
	}{
		{0, domain.SeverityLow},
		{24.9, domain.SeverityLow},
		{25, domain.SeverityMedium},
		{50, domain.SeverityHigh},
		{75, domain.SeverityCritical},
		{100, domain.SeverityCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RiskLevel(tt.score), "score %v", tt.score)
	}

	assert.Equal(t, 0, Confidence(0))
	assert.Equal(t, 75, Confidence(3))
	assert.Equal(t, 100, Confidence(5))
}

func TestRiskBucket(t *testing.T) {
	assert.Equal(t, domain.SeverityLow, RiskBucket(24))
	assert.Equal(t, domain.SeverityMedium, RiskBucket(49))
	assert.Equal(t, domain.SeverityHigh, RiskBucket(69))
	assert.Equal(t, domain.SeverityCritical, RiskBucket(70))
}

func TestIssueSeverity(t *testing.T) {
	assert.Equal(t, domain.SeverityCritical, IssueSeverity("Duplicate votes detected: 1 other votes for same position"))
	assert.Equal(t, domain.SeverityCritical, IssueSeverity("Integrity issue: Vote timestamp is in the future"))
	assert.Equal(t, domain.SeverityHigh, IssueSeverity("Invalid user: User not found"))
	assert.Equal(t, domain.SeverityMedium, IssueSeverity("Suspicious timing: too many"))
	assert.Equal(t, domain.SeverityLow, IssueSeverity("something else"))
}

func TestRecommendations(t *testing.T) {
	healthy := Recommendations(nil, domain.RiskDistribution{Low: 10})
	assert.Equal(t, []string{"No specific recommendations - voting process appears healthy"}, healthy)

	recs := Recommendations([]domain.IssueCount{
		{Issue: "Duplicate votes detected: 1 other votes for same position"},
		{Issue: "Suspicious timing: Voucher has more than 2 votes (expected one per position)"},
		{Issue: "Invalid verification code: Verification code too short"},
	}, domain.RiskDistribution{Critical: 1, High: 2})
	assert.Len(t, recs, 5)
	assert.Contains(t, recs, "Implement stricter duplicate vote prevention mechanisms")
}

// Package scoring holds the stateless risk rules shared by the vote audit and
// fraud detection services. Nothing here touches the store.
package scoring

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
)

// Per-vote check weights.
const (
	InvalidVoterRisk     = 25
	InvalidCandidateRisk = 30
	DuplicateVoteRisk    = 20
	VerificationCodeRisk = 15
	TimingRisk           = 30
	IntegrityRisk        = 40

	MaxRisk = 100

	// MinCodeLength is the shortest verification code an audit accepts.
	MinCodeLength = 8
	// ExpectedVotesPerVoucher is one vote for each contested position.
	ExpectedVotesPerVoucher = 2

	// IsValid requires a score strictly below this.
	ValidThreshold = 30
	// Votes at or above this are counted as invalid in reports.
	InvalidThreshold = 50
)

// Fraud heuristic parameters.
const (
	RapidVotingWindow      = time.Hour
	RapidVotingThreshold   = 3
	RapidVotingRisk        = 10
	ConcentrationThreshold = 60.0
	ConcentrationFactor    = 2.0
	TimingSkewWindow       = 24 * time.Hour
	TimingSkewRatio        = 0.8
	TimingSkewRisk         = 30
	OverVotingRisk         = 15
	ConfidencePerFactor    = 25
)

// Clamp bounds a raw score to [0, MaxRisk].
func Clamp(score float64) float64 {
	return math.Max(0, math.Min(score, MaxRisk))
}

// VoterRisk scores the voucher validity check.
func VoterRisk(found bool) (string, int) {
	if found {
		return "", 0
	}
	return "Invalid user: User not found", InvalidVoterRisk
}

// CandidateRisk scores the candidate/position pairing check.
func CandidateRisk(belongs bool) (string, int) {
	if belongs {
		return "", 0
	}
	return "Invalid candidate: Candidate not found or not associated with position", InvalidCandidateRisk
}

// DuplicateRisk scores other votes cast by the same voucher for the same position.
func DuplicateRisk(duplicates int) (string, int) {
	if duplicates <= 0 {
		return "", 0
	}
	return "Duplicate votes detected: " + strconv.Itoa(duplicates) + " other votes for same position", DuplicateVoteRisk * duplicates
}

// CodeRisk scores the verification code. Uniqueness is checked first.
func CodeRisk(code string, unique bool) (string, int) {
	if !unique {
		return "Invalid verification code: Verification code not unique", VerificationCodeRisk
	}
	if len(code) < MinCodeLength {
		return "Invalid verification code: Verification code too short", VerificationCodeRisk
	}
	return "", 0
}

// VoucherTimingRisk scores the total number of votes recorded for a voucher.
func VoucherTimingRisk(totalVotes int) (string, int) {
	if totalVotes <= ExpectedVotesPerVoucher {
		return "", 0
	}
	return "Suspicious timing: Voucher has more than 2 votes (expected one per position)", TimingRisk
}

// IntegrityCheck scores the structural soundness of a vote relative to now.
func IntegrityCheck(v domain.Vote, now time.Time) (string, int) {
	if v.Voucher == "" || v.CandidateID == 0 || v.PositionID == 0 || v.VotedAt.IsZero() {
		return "Integrity issue: Missing required vote data", IntegrityRisk
	}
	if v.VotedAt.After(now) {
		return "Integrity issue: Vote timestamp is in the future", IntegrityRisk
	}
	return "", 0
}

// RapidVotingContribution scores vouchers that voted too often in the window.
func RapidVotingContribution(suspiciousVouchers int) float64 {
	return float64(suspiciousVouchers * RapidVotingRisk)
}

// ConcentrationContribution scores the top candidate's share of all votes.
// The second value reports whether the threshold was crossed.
func ConcentrationContribution(topPercentage float64) (float64, bool) {
	if topPercentage <= ConcentrationThreshold {
		return 0, false
	}
	return (topPercentage - ConcentrationThreshold) * ConcentrationFactor, true
}

// TimingSkewContribution scores how much of a day's voting fell in one hour.
func TimingSkewContribution(maxInHour, total int) (float64, bool) {
	if total == 0 || float64(maxInHour) <= float64(total)*TimingSkewRatio {
		return 0, false
	}
	return TimingSkewRisk, true
}

// OverVotingContribution scores vouchers holding more votes than positions.
func OverVotingContribution(affectedVouchers int) float64 {
	return float64(affectedVouchers * OverVotingRisk)
}

// RiskLevel maps a clamped score to a level.
func RiskLevel(score float64) domain.Severity {
	switch {
	case score >= 75:
		return domain.SeverityCritical
	case score >= 50:
		return domain.SeverityHigh
	case score >= 25:
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}

// Confidence is a coarse proxy: 25 points per triggered factor, capped at 100.
func Confidence(triggered int) int {
	return min(triggered*ConfidencePerFactor, MaxRisk)
}

// RiskBucket places a per-vote score into the report histogram.
func RiskBucket(score int) domain.Severity {
	switch {
	case score >= 70:
		return domain.SeverityCritical
	case score >= 50:
		return domain.SeverityHigh
	case score >= 25:
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}

// IssueSeverity classifies an issue string by its wording.
func IssueSeverity(issue string) domain.Severity {
	switch {
	case strings.Contains(issue, "Duplicate") || strings.Contains(issue, "Integrity"):
		return domain.SeverityCritical
	case strings.Contains(issue, "Invalid") || strings.Contains(issue, "not found"):
		return domain.SeverityHigh
	case strings.Contains(issue, "Suspicious"):
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}

// Recommendations turns a report's findings into operator guidance.
func Recommendations(issues []domain.IssueCount, dist domain.RiskDistribution) []string {
	var out []string
	if dist.Critical > 0 {
		out = append(out, "Immediate investigation required for votes with critical risk scores")
	}
	if dist.High > 0 {
		out = append(out, "Review votes with high risk scores for potential irregularities")
	}
	if anyIssue(issues, "Duplicate") {
		out = append(out, "Implement stricter duplicate vote prevention mechanisms")
	}
	if anyIssue(issues, "timing") {
		out = append(out, "Add rate limiting and timing validation to voting process")
	}
	if anyIssue(issues, "verification code") {
		out = append(out, "Enhance verification code generation and validation")
	}
	if len(out) == 0 {
		out = append(out, "No specific recommendations - voting process appears healthy")
	}
	return out
}

func anyIssue(issues []domain.IssueCount, needle string) bool {
	for _, i := range issues {
		if strings.Contains(i.Issue, needle) {
			return true
		}
	}
	return false
}

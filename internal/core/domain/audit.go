package domain

import "time"

// CheckOutcome separates a check that found nothing from one that could not
// run. Scoring treats CheckFailed like NotTriggered.
type CheckOutcome string

const (
	NotTriggered CheckOutcome = "not_triggered"
	Triggered    CheckOutcome = "triggered"
	CheckFailed  CheckOutcome = "check_failed"
)

type CheckResult struct {
	Name    string       `json:"name"`
	Outcome CheckOutcome `json:"outcome"`
	Issue   string       `json:"issue,omitempty"`
	Risk    float64      `json:"risk"`
	Error   string       `json:"error,omitempty"`
}

type VoteAuditResult struct {
	VoteID           int64         `json:"vote_id"`
	Voucher          string        `json:"voucher"`
	VerificationCode string        `json:"verification_code"`
	CandidateID      int64         `json:"candidate_id"`
	PositionID       int64         `json:"position_id"`
	Timestamp        time.Time     `json:"timestamp"`
	IsValid          bool          `json:"is_valid"`
	Issues           []string      `json:"issues"`
	RiskScore        int           `json:"risk_score"`
	Checks           []CheckResult `json:"checks"`
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type RiskDistribution struct {
	Low      int `json:"low"`
	Medium   int `json:"medium"`
	High     int `json:"high"`
	Critical int `json:"critical"`
}

type IssueCount struct {
	Issue    string   `json:"issue"`
	Count    int      `json:"count"`
	Severity Severity `json:"severity"`
}

type AuditReport struct {
	TotalVotesAudited int              `json:"total_votes_audited"`
	ValidVotes        int              `json:"valid_votes"`
	SuspiciousVotes   int              `json:"suspicious_votes"`
	InvalidVotes      int              `json:"invalid_votes"`
	FailedAudits      int              `json:"failed_audits"`
	RiskDistribution  RiskDistribution `json:"risk_distribution"`
	CommonIssues      []IssueCount     `json:"common_issues"`
	Recommendations   []string         `json:"recommendations"`
}

type FraudDetectionResult struct {
	IsSuspicious bool          `json:"is_suspicious"`
	RiskLevel    Severity      `json:"risk_level"`
	RiskScore    float64       `json:"risk_score"`
	RiskFactors  []string      `json:"risk_factors"`
	Confidence   int           `json:"confidence"`
	Details      FraudDetails  `json:"details"`
	Checks       []CheckResult `json:"checks"`
}

type FraudDetails struct {
	RapidVoting       *RapidVotingDetails   `json:"rapid_voting,omitempty"`
	VoteConcentration *ConcentrationDetails `json:"vote_concentration,omitempty"`
	TimingPatterns    *TimingDetails        `json:"timing_patterns,omitempty"`
	VoucherBehavior   *OverVotingDetails    `json:"voucher_behavior,omitempty"`
}

type RapidVotingDetails struct {
	SuspiciousVouchers int `json:"suspicious_vouchers"`
	MaxVotesPerVoucher int `json:"max_votes_per_voucher"`
}

type ConcentrationDetails struct {
	TopCandidateID         int64   `json:"top_candidate_id"`
	TopCandidatePercentage float64 `json:"top_candidate_percentage"`
	TotalCandidates        int     `json:"total_candidates"`
}

type TimingDetails struct {
	MaxVotesInHour     int     `json:"max_votes_in_hour"`
	TotalVotes         int     `json:"total_votes"`
	ConcentrationRatio float64 `json:"concentration_ratio"`
}

type OverVotingDetails struct {
	VouchersWithExtraVotes int `json:"vouchers_with_extra_votes"`
	MaxVotesByVoucher      int `json:"max_votes_by_voucher"`
}

// VoucherVoteCount is the number of votes recorded against one voucher.
type VoucherVoteCount struct {
	Voucher   string `json:"voucher"`
	VoteCount int    `json:"vote_count"`
}

type CandidateShare struct {
	CandidateID int64   `json:"candidate_id"`
	VoteCount   int     `json:"vote_count"`
	Percentage  float64 `json:"percentage"`
}

type HourBucket struct {
	Hour      int `json:"hour"`
	VoteCount int `json:"vote_count"`
}

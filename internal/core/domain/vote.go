package domain

import "time"

type Vote struct {
	ID               int64     `json:"id"`
	Voucher          string    `json:"voucher"`
	CandidateID      int64     `json:"candidate_id"`
	PositionID       int64     `json:"position_id"`
	VerificationCode string    `json:"verification_code"`
	VotedAt          time.Time `json:"voted_at"`
}

// VoteDetail is a vote joined with the names an auditor needs.
type VoteDetail struct {
	Vote
	CandidateName string `json:"candidate_name"`
	PositionName  string `json:"position_name"`
}

type Selection struct {
	PositionID  int64 `json:"position_id"`
	CandidateID int64 `json:"candidate_id"`
}

type BallotReceipt struct {
	Voucher string `json:"-"`
	Votes   []Vote `json:"votes"`
}

// VoteReceipt is what a verification code resolves to: enough to confirm the
// vote was counted without exposing the voucher.
type VoteReceipt struct {
	VerificationCode string    `json:"verification_code"`
	PositionID       int64     `json:"position_id"`
	PositionName     string    `json:"position_name"`
	CandidateID      int64     `json:"candidate_id"`
	CandidateName    string    `json:"candidate_name"`
	VotedAt          time.Time `json:"voted_at"`
}

package domain

import "time"

type RunoffStatus string

const (
	RunoffPending   RunoffStatus = "pending"
	RunoffActive    RunoffStatus = "active"
	RunoffCompleted RunoffStatus = "completed"
	RunoffCancelled RunoffStatus = "cancelled"
)

// TiedCandidate is the snapshot of a candidate taken when the tie was found.
type TiedCandidate struct {
	CandidateID       int64  `json:"candidate_id"`
	CandidateName     string `json:"candidate_name"`
	OriginalVoteCount int64  `json:"original_vote_count"`
}

type RunoffElection struct {
	ID                   int64           `json:"id"`
	OriginalPositionID   int64           `json:"original_position_id"`
	OriginalPositionName string          `json:"original_position_name"`
	Round                int             `json:"round"`
	TiedCandidates       []TiedCandidate `json:"tied_candidates"`
	Status               RunoffStatus    `json:"status"`
	CreatedAt            time.Time       `json:"created_at"`
	StartedAt            *time.Time      `json:"started_at,omitempty"`
	CompletedAt          *time.Time      `json:"completed_at,omitempty"`
	WinnerCandidateID    *int64          `json:"winner_candidate_id"`
}

// Unresolved reports whether the runoff finished without a single winner.
func (r *RunoffElection) Unresolved() bool {
	return r.Status == RunoffCompleted && r.WinnerCandidateID == nil
}

type RunoffCandidate struct {
	RunoffElectionID  int64  `json:"runoff_election_id"`
	CandidateID       int64  `json:"candidate_id"`
	CandidateName     string `json:"candidate_name"`
	OriginalVoteCount int64  `json:"original_vote_count"`
}

type RunoffVote struct {
	ID               int64     `json:"id"`
	RunoffElectionID int64     `json:"runoff_election_id"`
	Voucher          string    `json:"voucher"`
	CandidateID      int64     `json:"candidate_id"`
	VerificationCode string    `json:"verification_code"`
	VotedAt          time.Time `json:"voted_at"`
}

type RunoffResult struct {
	CandidateID   int64  `json:"candidate_id"`
	CandidateName string `json:"candidate_name"`
	VoteCount     int64  `json:"vote_count"`
}

// CandidateTally is the primary-election vote count of one candidate.
type CandidateTally struct {
	PositionID    int64  `json:"position_id"`
	PositionName  string `json:"position_name"`
	CandidateID   int64  `json:"candidate_id"`
	CandidateName string `json:"candidate_name"`
	VoteCount     int64  `json:"vote_count"`
}

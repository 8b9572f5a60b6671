package domain

import "time"

type CandidateStats struct {
	CandidateID   int64   `json:"candidate_id"`
	CandidateName string  `json:"candidate_name"`
	VoteCount     int64   `json:"vote_count"`
	Percentage    float64 `json:"percentage"`
}

type PositionStats struct {
	PositionID   int64            `json:"position_id"`
	PositionName string           `json:"position_name"`
	TotalVotes   int64            `json:"total_votes"`
	Candidates   []CandidateStats `json:"candidates"`
}

type OverallStats struct {
	TotalVoters    int64           `json:"total_voters"`
	VotersWhoVoted int64           `json:"voters_who_voted"`
	TurnoutPercent float64         `json:"turnout_percent"`
	TotalVotes     int64           `json:"total_votes"`
	Positions      []PositionStats `json:"positions"`
	GeneratedAt    time.Time       `json:"generated_at"`
}

// RankedCandidate is a candidate placed in the cross-position leaderboard.
type RankedCandidate struct {
	PositionID   int64  `json:"position_id"`
	PositionName string `json:"position_name"`
	CandidateStats
}

type DailyTrend struct {
	Date         time.Time `json:"date"`
	VoteCount    int64     `json:"vote_count"`
	UniqueVoters int64     `json:"unique_voters"`
}

type VotingTrends struct {
	// Daily is newest first.
	Daily []DailyTrend `json:"daily"`
	// Hourly covers the current UTC day.
	Hourly      []HourBucket `json:"hourly"`
	GeneratedAt time.Time    `json:"generated_at"`
}

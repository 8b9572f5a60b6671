package domain

import "time"

type ElectionPhase string

const (
	PhaseNotStarted ElectionPhase = "not_started"
	PhaseActive     ElectionPhase = "active"
	PhasePaused     ElectionPhase = "paused"
	PhaseCompleted  ElectionPhase = "completed"
	PhaseCancelled  ElectionPhase = "cancelled"
)

type ElectionSettings struct {
	AllowVoting         bool `json:"allow_voting"`
	ShowResults         bool `json:"show_results"`
	RequireVerification bool `json:"require_verification"`
}

func DefaultElectionSettings() ElectionSettings {
	return ElectionSettings{AllowVoting: true, ShowResults: false, RequireVerification: true}
}

type ElectionStatus struct {
	ID          int64            `json:"id"`
	Status      ElectionPhase    `json:"status"`
	StartedAt   *time.Time       `json:"started_at,omitempty"`
	PausedAt    *time.Time       `json:"paused_at,omitempty"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	CancelledAt *time.Time       `json:"cancelled_at,omitempty"`
	Settings    ElectionSettings `json:"settings"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// AcceptsVotes reports whether primary ballots may be cast right now.
func (s *ElectionStatus) AcceptsVotes() bool {
	return s.Status == PhaseActive && s.Settings.AllowVoting
}

// CanTransition reports whether the phase may move to next. Restarting a
// finished election is allowed and starts a new era.
func (p ElectionPhase) CanTransition(next ElectionPhase) bool {
	switch next {
	case PhaseActive:
		return p != PhaseActive
	case PhasePaused, PhaseCompleted:
		return p == PhaseActive
	case PhaseCancelled:
		return p == PhaseNotStarted || p == PhaseActive || p == PhasePaused
	}
	return false
}

// Finished reports whether the phase ends an era.
func (p ElectionPhase) Finished() bool {
	return p == PhaseCompleted || p == PhaseCancelled
}

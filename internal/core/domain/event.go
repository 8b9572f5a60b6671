package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventRunoffsCreated   = "RUNOFF_ELECTIONS_CREATED"
	EventRunoffCreated    = "CREATE_RUNOFF_ELECTION"
	EventRunoffStarted    = "START_RUNOFF_ELECTION"
	EventRunoffCompleted  = "COMPLETE_RUNOFF_ELECTION"
	EventRunoffVote       = "RUNOFF_VOTE_CAST"
	EventBallotCast       = "BALLOT_CAST"
	EventVoteAudit        = "VOTE_AUDIT"
	EventFullAudit        = "FULL_AUDIT_COMPLETED"
	EventFraudDetection   = "FRAUD_DETECTION_COMPLETED"
	EventElectionStatus   = "ELECTION_STATUS_CHANGED"
	EventElectionSettings = "ELECTION_SETTINGS_UPDATED"
	EventVouchersImported = "VOUCHERS_IMPORTED"
	EventAdminLogin       = "ADMIN_LOGIN"
	EventAdminCreated     = "CREATE_ADMIN"
	EventAdminRoleUpdated = "UPDATE_ADMIN_ROLE"
	EventAdminDeactivated = "DEACTIVATE_ADMIN"
	EventPasswordChanged  = "PASSWORD_CHANGE"
)

// ActorSystem marks events raised by the service itself.
const ActorSystem = "system"

type AuditEvent struct {
	ID        uuid.UUID      `json:"id"`
	Action    string         `json:"action"`
	Actor     string         `json:"actor"`
	Resource  string         `json:"resource,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func NewAuditEvent(action, actor, resource string, details map[string]any) AuditEvent {
	return AuditEvent{
		ID:        uuid.New(),
		Action:    action,
		Actor:     actor,
		Resource:  resource,
		Details:   details,
		CreatedAt: time.Now().UTC(),
	}
}

package http

import (
	"context"
	"strings"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

// fakeAuth accepts tokens of the form "voter:<voucher>" and
// "admin:<username>:<role>".
type fakeAuth struct {
	imported []string
}

func (f *fakeAuth) LoginVoter(_ context.Context, voucher string) (string, error) {
	if voucher != "V-1" {
		return "", domain.ErrInvalidCredentials
	}
	return "voter:" + voucher, nil
}

func (f *fakeAuth) LoginAdmin(_ context.Context, username, password string) (string, error) {
	if password != "secret" {
		return "", domain.ErrInvalidCredentials
	}
	return "admin:" + username + ":admin", nil
}

func (f *fakeAuth) ParseToken(token string) (*domain.Principal, error) {
	parts := strings.Split(token, ":")
	switch {
	case len(parts) == 2 && parts[0] == "voter":
		return &domain.Principal{Kind: domain.PrincipalVoter, Subject: parts[1]}, nil
	case len(parts) == 3 && parts[0] == "admin":
		return &domain.Principal{Kind: domain.PrincipalAdmin, Subject: parts[1], Role: domain.AdminRole(parts[2])}, nil
	}
	return nil, domain.ErrUnauthorized
}

func (f *fakeAuth) ImportVouchers(_ context.Context, vouchers []string) (int, error) {
	f.imported = append(f.imported, vouchers...)
	return len(vouchers), nil
}

func (f *fakeAuth) EnsureSuperAdmin(context.Context, string, string) error { return nil }

type fakeVotes struct {
	input ports.BallotInput
	err   error
}

func (f *fakeVotes) CastBallot(_ context.Context, input ports.BallotInput) (*domain.BallotReceipt, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = input
	receipt := &domain.BallotReceipt{Voucher: input.Voucher}
	for i, s := range input.Selections {
		receipt.Votes = append(receipt.Votes, domain.Vote{
			ID:               int64(i + 1),
			Voucher:          input.Voucher,
			PositionID:       s.PositionID,
			CandidateID:      s.CandidateID,
			VerificationCode: "CODE" + string(rune('A'+i)),
		})
	}
	return receipt, nil
}

func (f *fakeVotes) VerifyVote(_ context.Context, code string) (*domain.VoteReceipt, error) {
	if code != "ABC123" {
		return nil, domain.ErrVoteNotFound
	}
	return &domain.VoteReceipt{VerificationCode: code, PositionName: "President", CandidateName: "Alice"}, nil
}

type fakeRunoffs struct {
	vote     ports.RunoffVoteInput
	startErr error
	detected int
}

func (f *fakeRunoffs) DetectAndCreateRunoffs(context.Context) ([]domain.RunoffElection, error) {
	f.detected++
	return []domain.RunoffElection{{ID: 1, OriginalPositionName: "President", Round: 1, Status: domain.RunoffPending}}, nil
}

func (f *fakeRunoffs) StartRunoffElection(_ context.Context, id int64) (*domain.RunoffElection, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	return &domain.RunoffElection{ID: id, Status: domain.RunoffActive}, nil
}

func (f *fakeRunoffs) CastRunoffVote(_ context.Context, input ports.RunoffVoteInput) (*domain.RunoffVote, error) {
	f.vote = input
	return &domain.RunoffVote{ID: 7, RunoffElectionID: input.RunoffID, CandidateID: input.CandidateID, VerificationCode: "RUNOFF01"}, nil
}

func (f *fakeRunoffs) CompleteRunoffElection(_ context.Context, id int64) (*domain.RunoffElection, error) {
	return nil, domain.ErrRunoffNotActive
}

func (f *fakeRunoffs) GetRunoffResults(_ context.Context, id int64) ([]domain.RunoffResult, error) {
	return []domain.RunoffResult{{CandidateID: 1, CandidateName: "Alice", VoteCount: 3}}, nil
}

func (f *fakeRunoffs) ListRunoffElections(context.Context) ([]domain.RunoffElection, error) {
	return []domain.RunoffElection{}, nil
}

func (f *fakeRunoffs) GetRunoffElection(_ context.Context, id int64) (*ports.RunoffDetail, error) {
	return nil, domain.ErrRunoffNotFound
}

type fakeAudit struct {
	minRisk int
}

func (f *fakeAudit) AuditVote(_ context.Context, voteID int64) (*domain.VoteAuditResult, error) {
	if voteID != 1 {
		return nil, domain.ErrVoteNotFound
	}
	return &domain.VoteAuditResult{VoteID: 1, IsValid: true}, nil
}

func (f *fakeAudit) AuditAllVotes(context.Context) (*domain.AuditReport, error) {
	return &domain.AuditReport{TotalVotesAudited: 1, ValidVotes: 1}, nil
}

func (f *fakeAudit) SuspiciousVotes(_ context.Context, minRisk int) ([]domain.VoteAuditResult, error) {
	f.minRisk = minRisk
	return []domain.VoteAuditResult{}, nil
}

type fakeFraud struct{}

func (fakeFraud) DetectFraudPatterns(context.Context) (*domain.FraudDetectionResult, error) {
	return &domain.FraudDetectionResult{RiskLevel: domain.SeverityLow}, nil
}

type fakeEvents struct {
	limit int
}

func (f *fakeEvents) Recent(_ context.Context, limit int) ([]domain.AuditEvent, error) {
	f.limit = limit
	return []domain.AuditEvent{}, nil
}

type fakeElection struct {
	next domain.ElectionPhase
}

func (f *fakeElection) Status(context.Context) (*domain.ElectionStatus, error) {
	return &domain.ElectionStatus{Status: domain.PhaseNotStarted}, nil
}

func (f *fakeElection) Transition(_ context.Context, next domain.ElectionPhase) (*domain.ElectionStatus, error) {
	if next == domain.PhasePaused {
		return nil, domain.ErrInvalidElectionTransition
	}
	f.next = next
	return &domain.ElectionStatus{Status: next}, nil
}

func (f *fakeElection) UpdateSettings(_ context.Context, settings domain.ElectionSettings) (*domain.ElectionStatus, error) {
	return &domain.ElectionStatus{Status: domain.PhaseActive, Settings: settings}, nil
}

func (f *fakeElection) History(context.Context) ([]domain.ElectionStatus, error) {
	return nil, nil
}

type fakeCatalog struct{}

func (fakeCatalog) ListPositions(context.Context) ([]domain.Position, error) {
	return []domain.Position{{ID: 1, Name: "President"}}, nil
}

func (fakeCatalog) CreatePosition(_ context.Context, name string) (*domain.Position, error) {
	if name == "President" {
		return nil, domain.ErrPositionExists
	}
	return &domain.Position{ID: 2, Name: name}, nil
}

func (fakeCatalog) CreateCandidate(_ context.Context, input ports.CreateCandidateInput) (*domain.Candidate, error) {
	if input.PositionID != 1 {
		return nil, domain.ErrPositionNotFound
	}
	return &domain.Candidate{ID: 9, PositionID: input.PositionID, Name: input.Name}, nil
}

type fakeStats struct{}

func (fakeStats) Overall(context.Context) (*domain.OverallStats, error) {
	return &domain.OverallStats{TotalVoters: 10}, nil
}

func (fakeStats) Position(_ context.Context, id int64) (*domain.PositionStats, error) {
	if id != 1 {
		return nil, domain.ErrPositionNotFound
	}
	return &domain.PositionStats{PositionID: 1, PositionName: "President"}, nil
}

func (fakeStats) TopCandidates(_ context.Context, limit int) ([]domain.RankedCandidate, error) {
	out := make([]domain.RankedCandidate, limit)
	for i := range out {
		out[i].CandidateID = int64(i + 1)
	}
	return out, nil
}

func (fakeStats) Trends(context.Context) (*domain.VotingTrends, error) {
	return &domain.VotingTrends{Hourly: []domain.HourBucket{{Hour: 9, VoteCount: 2}}}, nil
}

// fakeAdmins knows a single account, "root", with id 1.
type fakeAdmins struct {
	created     ports.CreateAdminInput
	deactivator string
	passwordFor string
}

func (f *fakeAdmins) CreateAdmin(_ context.Context, input ports.CreateAdminInput) (*domain.AdminUser, error) {
	if input.Username == "root" {
		return nil, domain.ErrAdminExists
	}
	f.created = input
	role := input.Role
	if role == "" {
		role = domain.RoleAdmin
	}
	return &domain.AdminUser{ID: 2, Username: input.Username, Role: role, Active: true}, nil
}

func (f *fakeAdmins) ListAdmins(context.Context) ([]domain.AdminUser, error) {
	return []domain.AdminUser{{ID: 1, Username: "root", Role: domain.RoleSuperAdmin, Active: true}}, nil
}

func (f *fakeAdmins) UpdateRole(_ context.Context, id int64, role domain.AdminRole) (*domain.AdminUser, error) {
	if id != 1 {
		return nil, domain.ErrAdminNotFound
	}
	return &domain.AdminUser{ID: 1, Username: "root", Role: role, Active: true}, nil
}

func (f *fakeAdmins) Deactivate(_ context.Context, id int64, requester string) (*domain.AdminUser, error) {
	f.deactivator = requester
	if id != 1 {
		return nil, domain.ErrAdminNotFound
	}
	return &domain.AdminUser{ID: 1, Username: "root", Role: domain.RoleSuperAdmin}, nil
}

func (f *fakeAdmins) ChangePassword(_ context.Context, username, current, _ string) error {
	if current != "secret" {
		return domain.ErrInvalidCredentials
	}
	f.passwordFor = username
	return nil
}

func (f *fakeAdmins) Profile(_ context.Context, username string) (*domain.AdminUser, error) {
	return &domain.AdminUser{ID: 1, Username: username, Role: domain.RoleAdmin, Active: true}, nil
}

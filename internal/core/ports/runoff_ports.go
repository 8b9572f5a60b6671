package ports

import (
	"context"
	"time"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
)

type RunoffRepository interface {
	// CandidateTallies returns every candidate with at least one vote, ordered
	// by position and then by vote count descending.
	CandidateTallies(ctx context.Context) ([]domain.CandidateTally, error)
	Create(ctx context.Context, runoff *domain.RunoffElection) error
	GetByID(ctx context.Context, id int64) (*domain.RunoffElection, error)
	List(ctx context.Context) ([]domain.RunoffElection, error)
	ListByPosition(ctx context.Context, positionID int64) ([]domain.RunoffElection, error)
	Candidates(ctx context.Context, id int64) ([]domain.RunoffCandidate, error)
	// MarkActive and MarkCompleted return nil when the runoff is missing or not
	// in the state the transition starts from.
	MarkActive(ctx context.Context, id int64, at time.Time) (*domain.RunoffElection, error)
	MarkCompleted(ctx context.Context, id int64, winner *int64, at time.Time) (*domain.RunoffElection, error)
	HasVoted(ctx context.Context, id int64, voucher string) (bool, error)
	IsCandidate(ctx context.Context, id int64, candidateID int64) (bool, error)
	SaveVote(ctx context.Context, vote *domain.RunoffVote) error
	Results(ctx context.Context, id int64) ([]domain.RunoffResult, error)
}

type RunoffVoteInput struct {
	RunoffID    int64
	Voucher     string
	CandidateID int64
}

type RunoffDetail struct {
	domain.RunoffElection
	Candidates []domain.RunoffCandidate `json:"candidates"`
}

type RunoffService interface {
	DetectAndCreateRunoffs(ctx context.Context) ([]domain.RunoffElection, error)
	StartRunoffElection(ctx context.Context, id int64) (*domain.RunoffElection, error)
	CastRunoffVote(ctx context.Context, input RunoffVoteInput) (*domain.RunoffVote, error)
	CompleteRunoffElection(ctx context.Context, id int64) (*domain.RunoffElection, error)
	GetRunoffResults(ctx context.Context, id int64) ([]domain.RunoffResult, error)
	ListRunoffElections(ctx context.Context) ([]domain.RunoffElection, error)
	GetRunoffElection(ctx context.Context, id int64) (*RunoffDetail, error)
}

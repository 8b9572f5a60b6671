package ports

import (
	"context"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
)

type PositionRepository interface {
	ListWithCandidates(ctx context.Context) ([]domain.Position, error)
	GetByID(ctx context.Context, id int64) (*domain.Position, error)
	Create(ctx context.Context, position *domain.Position) error
	CreateCandidate(ctx context.Context, candidate *domain.Candidate) error
	CandidateBelongs(ctx context.Context, candidateID, positionID int64) (bool, error)
}

type CreateCandidateInput struct {
	PositionID int64
	Name       string
	Manifesto  string
	ImageURL   string
}

type CatalogService interface {
	ListPositions(ctx context.Context) ([]domain.Position, error)
	CreatePosition(ctx context.Context, name string) (*domain.Position, error)
	CreateCandidate(ctx context.Context, input CreateCandidateInput) (*domain.Candidate, error)
}

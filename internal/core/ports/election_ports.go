package ports

import (
	"context"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
)

type ElectionRepository interface {
	// Latest returns nil when no status row exists yet.
	Latest(ctx context.Context) (*domain.ElectionStatus, error)
	Insert(ctx context.Context, status *domain.ElectionStatus) error
	// Update writes status only if the stored phase still equals from.
	Update(ctx context.Context, status *domain.ElectionStatus, from domain.ElectionPhase) error
	History(ctx context.Context) ([]domain.ElectionStatus, error)
}

type ElectionService interface {
	Status(ctx context.Context) (*domain.ElectionStatus, error)
	Transition(ctx context.Context, next domain.ElectionPhase) (*domain.ElectionStatus, error)
	UpdateSettings(ctx context.Context, settings domain.ElectionSettings) (*domain.ElectionStatus, error)
	History(ctx context.Context) ([]domain.ElectionStatus, error)
}

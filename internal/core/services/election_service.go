package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

type electionService struct {
	repo   ports.ElectionRepository
	events eventLog
	now    func() time.Time
}

func NewElectionService(repo ports.ElectionRepository, recorder ports.EventRecorder, logger *slog.Logger) ports.ElectionService {
	return &electionService{
		repo:   repo,
		events: newEventLog(recorder, logger),
		now:    time.Now,
	}
}

// Status returns the current election row, creating a not_started one on
// first use.
func (s *electionService) Status(ctx context.Context) (*domain.ElectionStatus, error) {
	status, err := s.repo.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get election status: %w", err)
	}
	if status != nil {
		return status, nil
	}

	now := s.now()
	status = &domain.ElectionStatus{
		Status:    domain.PhaseNotStarted,
		Settings:  domain.DefaultElectionSettings(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, status); err != nil {
		return nil, fmt.Errorf("failed to create election status: %w", err)
	}
	return status, nil
}

func (s *electionService) Transition(ctx context.Context, next domain.ElectionPhase) (*domain.ElectionStatus, error) {
	current, err := s.Status(ctx)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransition(next) {
		return nil, fmt.Errorf("%s to %s: %w", current.Status, next, domain.ErrInvalidElectionTransition)
	}

	now := s.now()
	var updated *domain.ElectionStatus
	if next == domain.PhaseActive && current.Status.Finished() {
		updated = &domain.ElectionStatus{
			Status:    domain.PhaseActive,
			StartedAt: &now,
			Settings:  current.Settings,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.Insert(ctx, updated); err != nil {
			return nil, fmt.Errorf("failed to start new election: %w", err)
		}
	} else {
		changed := applyPhase(*current, next, now)
		if err := s.repo.Update(ctx, &changed, current.Status); err != nil {
			return nil, err
		}
		updated = &changed
	}

	s.events.record(ctx, domain.EventElectionStatus, actorFrom(ctx), "election_status", map[string]any{
		"from": current.Status,
		"to":   updated.Status,
	})
	return updated, nil
}

func applyPhase(status domain.ElectionStatus, next domain.ElectionPhase, now time.Time) domain.ElectionStatus {
	status.Status = next
	status.UpdatedAt = now
	switch next {
	case domain.PhaseActive:
		if status.StartedAt == nil {
			status.StartedAt = &now
		}
		status.PausedAt = nil
	case domain.PhasePaused:
		status.PausedAt = &now
	case domain.PhaseCompleted:
		status.CompletedAt = &now
	case domain.PhaseCancelled:
		status.CancelledAt = &now
	}
	return status
}

func (s *electionService) UpdateSettings(ctx context.Context, settings domain.ElectionSettings) (*domain.ElectionStatus, error) {
	current, err := s.Status(ctx)
	if err != nil {
		return nil, err
	}

	updated := *current
	updated.Settings = settings
	updated.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, &updated, current.Status); err != nil {
		return nil, err
	}

	s.events.record(ctx, domain.EventElectionSettings, actorFrom(ctx), "election_status", map[string]any{
		"settings": settings,
	})
	return &updated, nil
}

func (s *electionService) History(ctx context.Context) ([]domain.ElectionStatus, error) {
	history, err := s.repo.History(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get election history: %w", err)
	}
	return history, nil
}

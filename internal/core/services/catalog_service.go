package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

type catalogService struct {
	repo  ports.PositionRepository
	cache ports.Cache
}

func NewCatalogService(repo ports.PositionRepository, cache ports.Cache) ports.CatalogService {
	return &catalogService{
		repo:  repo,
		cache: cache,
	}
}

func (s *catalogService) ListPositions(ctx context.Context) ([]domain.Position, error) {
	if cached, ok := s.cache.Get(cacheKeyPositions); ok {
		if positions, ok := cached.([]domain.Position); ok {
			return positions, nil
		}
	}

	positions, err := s.repo.ListWithCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	s.cache.Set(cacheKeyPositions, positions)
	return positions, nil
}

func (s *catalogService) CreatePosition(ctx context.Context, name string) (*domain.Position, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("position name is required: %w", domain.ErrValidation)
	}

	position := &domain.Position{Name: name, CreatedAt: time.Now()}
	if err := s.repo.Create(ctx, position); err != nil {
		return nil, err
	}
	s.cache.Delete(cacheKeyPositions, cacheKeyStats)
	return position, nil
}

func (s *catalogService) CreateCandidate(ctx context.Context, input ports.CreateCandidateInput) (*domain.Candidate, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("candidate name is required: %w", domain.ErrValidation)
	}
	if _, err := s.repo.GetByID(ctx, input.PositionID); err != nil {
		return nil, err
	}

	candidate := &domain.Candidate{
		PositionID: input.PositionID,
		Name:       name,
		Manifesto:  strings.TrimSpace(input.Manifesto),
		ImageURL:   strings.TrimSpace(input.ImageURL),
		CreatedAt:  time.Now(),
	}
	if err := s.repo.CreateCandidate(ctx, candidate); err != nil {
		return nil, err
	}
	s.cache.Delete(cacheKeyPositions, cacheKeyStats)
	return candidate, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

const ballotSaveAttempts = 3

type voteService struct {
	votes     ports.VoteRepository
	voters    ports.VoterRepository
	positions ports.PositionRepository
	election  ports.ElectionService
	codes     *CodeGenerator
	cache     ports.Cache
	events    eventLog
	logger    *slog.Logger
	now       func() time.Time
}

func NewVoteService(
	votes ports.VoteRepository,
	voters ports.VoterRepository,
	positions ports.PositionRepository,
	election ports.ElectionService,
	codes *CodeGenerator,
	cache ports.Cache,
	recorder ports.EventRecorder,
	logger *slog.Logger,
) ports.VoteService {
	if logger == nil {
		logger = slog.Default()
	}
	return &voteService{
		votes:     votes,
		voters:    voters,
		positions: positions,
		election:  election,
		codes:     codes,
		cache:     cache,
		events:    newEventLog(recorder, logger),
		logger:    logger,
		now:       time.Now,
	}
}

func (s *voteService) CastBallot(ctx context.Context, input ports.BallotInput) (*domain.BallotReceipt, error) {
	if err := validateBallot(input); err != nil {
		return nil, err
	}

	status, err := s.election.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get election status: %w", err)
	}
	if !status.AcceptsVotes() {
		return nil, domain.ErrVotingClosed
	}

	exists, err := s.voters.Exists(ctx, input.Voucher)
	if err != nil {
		return nil, fmt.Errorf("failed to check voter: %w", err)
	}
	if !exists {
		return nil, domain.ErrVoterNotFound
	}

	for _, sel := range input.Selections {
		belongs, err := s.positions.CandidateBelongs(ctx, sel.CandidateID, sel.PositionID)
		if err != nil {
			return nil, fmt.Errorf("failed to check candidate: %w", err)
		}
		if !belongs {
			return nil, fmt.Errorf("candidate %d, position %d: %w", sel.CandidateID, sel.PositionID, domain.ErrInvalidCandidate)
		}
	}

	votes := make([]*domain.Vote, len(input.Selections))
	for attempt := 1; ; attempt++ {
		if err := s.fillVotes(ctx, input, votes); err != nil {
			return nil, err
		}
		err := s.votes.SaveBallot(ctx, votes)
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrCodeTaken) && attempt < ballotSaveAttempts {
			continue
		}
		return nil, err
	}

	ballotsCast.Inc()
	s.cache.Delete(cacheKeyStats)

	receipt := &domain.BallotReceipt{Voucher: input.Voucher}
	codes := make([]string, 0, len(votes))
	for _, v := range votes {
		receipt.Votes = append(receipt.Votes, *v)
		codes = append(codes, v.VerificationCode)
	}
	s.events.record(ctx, domain.EventBallotCast, input.Voucher, "votes", map[string]any{
		"positions":          len(votes),
		"verification_codes": codes,
	})
	return receipt, nil
}

// fillVotes builds one vote per selection, each with its own code.
func (s *voteService) fillVotes(ctx context.Context, input ports.BallotInput, votes []*domain.Vote) error {
	now := s.now()
	seen := make(map[string]struct{}, len(votes))
	for i, sel := range input.Selections {
		var code string
		for {
			c, err := s.codes.Generate(ctx)
			if err != nil {
				return err
			}
			if _, dup := seen[c]; !dup {
				code = c
				break
			}
		}
		seen[code] = struct{}{}
		votes[i] = &domain.Vote{
			Voucher:          input.Voucher,
			CandidateID:      sel.CandidateID,
			PositionID:       sel.PositionID,
			VerificationCode: code,
			VotedAt:          now,
		}
	}
	return nil
}

func (s *voteService) VerifyVote(ctx context.Context, code string) (*domain.VoteReceipt, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("verification code is required: %w", domain.ErrValidation)
	}

	if cached, ok := s.cache.Get(voteCodeKey(code)); ok {
		if receipt, ok := cached.(*domain.VoteReceipt); ok {
			return receipt, nil
		}
	}

	receipt, err := s.votes.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	s.cache.Set(voteCodeKey(code), receipt)
	return receipt, nil
}

func validateBallot(input ports.BallotInput) error {
	if strings.TrimSpace(input.Voucher) == "" {
		return fmt.Errorf("voucher is required: %w", domain.ErrInvalidBallot)
	}
	if len(input.Selections) == 0 {
		return fmt.Errorf("at least one selection is required: %w", domain.ErrInvalidBallot)
	}
	positions := make(map[int64]struct{}, len(input.Selections))
	for _, sel := range input.Selections {
		if sel.PositionID <= 0 || sel.CandidateID <= 0 {
			return fmt.Errorf("selection ids must be positive: %w", domain.ErrInvalidBallot)
		}
		if _, dup := positions[sel.PositionID]; dup {
			return fmt.Errorf("position %d selected twice: %w", sel.PositionID, domain.ErrInvalidBallot)
		}
		positions[sel.PositionID] = struct{}{}
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

// runoffVoteAttempts bounds retries when two voters race for the same code.
const runoffVoteAttempts = 3

type runoffService struct {
	repo   ports.RunoffRepository
	codes  *CodeGenerator
	events eventLog
	logger *slog.Logger
	now    func() time.Time
}

func NewRunoffService(repo ports.RunoffRepository, codes *CodeGenerator, recorder ports.EventRecorder, logger *slog.Logger) ports.RunoffService {
	if logger == nil {
		logger = slog.Default()
	}
	return &runoffService{
		repo:   repo,
		codes:  codes,
		events: newEventLog(recorder, logger),
		logger: logger,
		now:    time.Now,
	}
}

func (s *runoffService) DetectAndCreateRunoffs(ctx context.Context) ([]domain.RunoffElection, error) {
	tallies, err := s.repo.CandidateTallies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate vote counts: %w", err)
	}

	created := []domain.RunoffElection{}
	for _, group := range groupByPosition(tallies) {
		tied := findTie(group)
		if len(tied) == 0 {
			continue
		}

		position := group[0]
		runoff, err := s.createRunoff(ctx, position.PositionID, position.PositionName, tied)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to create runoff election",
				"position_id", position.PositionID,
				"error", err,
			)
			continue
		}
		if runoff == nil {
			continue
		}

		runoffsCreated.Inc()
		s.logger.InfoContext(ctx, "runoff election created",
			"runoff_id", runoff.ID,
			"position", runoff.OriginalPositionName,
			"round", runoff.Round,
			"tied_candidates", len(runoff.TiedCandidates),
		)
		created = append(created, *runoff)
	}

	positions := make([]string, 0, len(created))
	for _, r := range created {
		positions = append(positions, r.OriginalPositionName)
	}
	s.events.record(ctx, domain.EventRunoffsCreated, actorFrom(ctx), "runoff_elections", map[string]any{
		"count":     len(created),
		"positions": positions,
	})

	return created, nil
}

// createRunoff returns nil when the position already has an open runoff or a
// decided one, or when a concurrent detection created the same round first.
func (s *runoffService) createRunoff(ctx context.Context, positionID int64, positionName string, tied []domain.TiedCandidate) (*domain.RunoffElection, error) {
	existing, err := s.repo.ListByPosition(ctx, positionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list runoffs for position: %w", err)
	}
	for _, r := range existing {
		if r.Status == domain.RunoffPending || r.Status == domain.RunoffActive {
			return nil, nil
		}
		if r.Status == domain.RunoffCompleted && r.WinnerCandidateID != nil {
			return nil, nil
		}
	}

	runoff := &domain.RunoffElection{
		OriginalPositionID:   positionID,
		OriginalPositionName: positionName,
		Round:                len(existing) + 1,
		TiedCandidates:       tied,
		Status:               domain.RunoffPending,
		CreatedAt:            s.now(),
	}
	if err := s.repo.Create(ctx, runoff); err != nil {
		if errors.Is(err, domain.ErrRunoffExists) {
			s.logger.InfoContext(ctx, "runoff round already created",
				"position_id", positionID,
				"round", runoff.Round,
			)
			return nil, nil
		}
		return nil, err
	}
	return runoff, nil
}

func (s *runoffService) StartRunoffElection(ctx context.Context, id int64) (*domain.RunoffElection, error) {
	runoff, err := s.repo.MarkActive(ctx, id, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to start runoff election: %w", err)
	}
	if runoff == nil {
		runoffTransitions.WithLabelValues(string(domain.RunoffActive), "rejected").Inc()
		if _, err := s.repo.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, domain.ErrRunoffNotPending
	}

	runoffTransitions.WithLabelValues(string(domain.RunoffActive), "ok").Inc()
	s.events.record(ctx, domain.EventRunoffStarted, actorFrom(ctx), runoffResource(id), map[string]any{
		"position": runoff.OriginalPositionName,
	})
	return runoff, nil
}

func (s *runoffService) CastRunoffVote(ctx context.Context, input ports.RunoffVoteInput) (*domain.RunoffVote, error) {
	runoff, err := s.repo.GetByID(ctx, input.RunoffID)
	if err != nil {
		return nil, err
	}
	if runoff.Status != domain.RunoffActive {
		return nil, domain.ErrRunoffNotActive
	}

	voted, err := s.repo.HasVoted(ctx, input.RunoffID, input.Voucher)
	if err != nil {
		return nil, fmt.Errorf("failed to check runoff participation: %w", err)
	}
	if voted {
		return nil, domain.ErrAlreadyVoted
	}

	eligible, err := s.repo.IsCandidate(ctx, input.RunoffID, input.CandidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to check runoff candidate: %w", err)
	}
	if !eligible {
		return nil, domain.ErrInvalidRunoffCandidate
	}

	vote := &domain.RunoffVote{
		RunoffElectionID: input.RunoffID,
		Voucher:          input.Voucher,
		CandidateID:      input.CandidateID,
	}
	for attempt := 1; ; attempt++ {
		code, err := s.codes.Generate(ctx)
		if err != nil {
			return nil, err
		}
		vote.VerificationCode = code
		vote.VotedAt = s.now()

		err = s.repo.SaveVote(ctx, vote)
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrCodeTaken) && attempt < runoffVoteAttempts {
			continue
		}
		return nil, err
	}

	runoffVotesCast.Inc()
	s.events.record(ctx, domain.EventRunoffVote, input.Voucher, runoffResource(input.RunoffID), map[string]any{
		"candidate_id":      input.CandidateID,
		"verification_code": vote.VerificationCode,
	})
	return vote, nil
}

func (s *runoffService) CompleteRunoffElection(ctx context.Context, id int64) (*domain.RunoffElection, error) {
	runoff, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if runoff.Status != domain.RunoffActive {
		runoffTransitions.WithLabelValues(string(domain.RunoffCompleted), "rejected").Inc()
		return nil, domain.ErrRunoffNotActive
	}

	results, err := s.repo.Results(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to tally runoff votes: %w", err)
	}
	winner := decideWinner(results)

	completed, err := s.repo.MarkCompleted(ctx, id, winner, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to complete runoff election: %w", err)
	}
	if completed == nil {
		// Lost a race with another completion.
		runoffTransitions.WithLabelValues(string(domain.RunoffCompleted), "rejected").Inc()
		return nil, domain.ErrRunoffNotActive
	}

	runoffTransitions.WithLabelValues(string(domain.RunoffCompleted), "ok").Inc()
	if winner == nil {
		s.logger.WarnContext(ctx, "runoff election completed without a single winner",
			"runoff_id", id,
			"position", completed.OriginalPositionName,
		)
	}
	s.events.record(ctx, domain.EventRunoffCompleted, actorFrom(ctx), runoffResource(id), map[string]any{
		"winner_candidate_id": winner,
		"results":             results,
		"still_tied":          winner == nil,
	})
	return completed, nil
}

func (s *runoffService) GetRunoffResults(ctx context.Context, id int64) ([]domain.RunoffResult, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	results, err := s.repo.Results(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get runoff results: %w", err)
	}
	return results, nil
}

func (s *runoffService) ListRunoffElections(ctx context.Context) ([]domain.RunoffElection, error) {
	runoffs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list runoff elections: %w", err)
	}
	return runoffs, nil
}

func (s *runoffService) GetRunoffElection(ctx context.Context, id int64) (*ports.RunoffDetail, error) {
	runoff, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	candidates, err := s.repo.Candidates(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get runoff candidates: %w", err)
	}
	return &ports.RunoffDetail{RunoffElection: *runoff, Candidates: candidates}, nil
}

// groupByPosition splits tallies into per-position groups, keeping the order
// in which positions first appear.
func groupByPosition(tallies []domain.CandidateTally) [][]domain.CandidateTally {
	index := make(map[int64]int)
	var groups [][]domain.CandidateTally
	for _, t := range tallies {
		i, ok := index[t.PositionID]
		if !ok {
			i = len(groups)
			index[t.PositionID] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], t)
	}
	return groups
}

// findTie returns the candidates sharing the highest vote count when there
// are at least two of them.
func findTie(group []domain.CandidateTally) []domain.TiedCandidate {
	if len(group) < 2 {
		return nil
	}
	sorted := make([]domain.CandidateTally, len(group))
	copy(sorted, group)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].VoteCount > sorted[j].VoteCount
	})

	top := sorted[0].VoteCount
	if top <= 0 {
		return nil
	}
	var tied []domain.TiedCandidate
	for _, t := range sorted {
		if t.VoteCount != top {
			break
		}
		tied = append(tied, domain.TiedCandidate{
			CandidateID:       t.CandidateID,
			CandidateName:     t.CandidateName,
			OriginalVoteCount: t.VoteCount,
		})
	}
	if len(tied) < 2 {
		return nil
	}
	return tied
}

// decideWinner returns nil unless exactly one candidate holds the maximum.
func decideWinner(results []domain.RunoffResult) *int64 {
	if len(results) == 0 {
		return nil
	}
	var best int64 = -1
	var leaders []int64
	for _, r := range results {
		switch {
		case r.VoteCount > best:
			best = r.VoteCount
			leaders = []int64{r.CandidateID}
		case r.VoteCount == best:
			leaders = append(leaders, r.CandidateID)
		}
	}
	if len(leaders) != 1 {
		return nil
	}
	winner := leaders[0]
	return &winner
}

func runoffResource(id int64) string {
	return "runoff_elections/" + strconv.FormatInt(id, 10)
}

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

const runoffColumns = `
	id, original_position_id, original_position_name, round, tied_candidates,
	status, created_at, started_at, completed_at, winner_candidate_id
`

type runoffRepository struct {
	db *sql.DB
}

func NewRunoffRepository(db *sql.DB) ports.RunoffRepository {
	return &runoffRepository{
		db: db,
	}
}

func (r *runoffRepository) CandidateTallies(ctx context.Context) ([]domain.CandidateTally, error) {
	query := `
		SELECT p.id, p.name, c.id, c.name, COUNT(v.id) AS vote_count
		FROM positions p
		JOIN candidates c ON c.position_id = p.id
		LEFT JOIN votes v ON v.candidate_id = c.id AND v.position_id = p.id
		GROUP BY p.id, p.name, c.id, c.name
		HAVING COUNT(v.id) > 0
		ORDER BY p.id, vote_count DESC, c.id
	`
	return queryTallies(ctx, r.db, query)
}

func (r *runoffRepository) Create(ctx context.Context, runoff *domain.RunoffElection) error {
	tied, err := json.Marshal(runoff.TiedCandidates)
	if err != nil {
		return fmt.Errorf("failed to encode tied candidates: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	queryRunoff := `
		INSERT INTO runoff_elections (original_position_id, original_position_name, round, tied_candidates, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err = tx.QueryRowContext(ctx, queryRunoff,
		runoff.OriginalPositionID, runoff.OriginalPositionName, runoff.Round, string(tied), runoff.Status,
	).Scan(&runoff.ID, &runoff.CreatedAt)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok && constraint == "runoff_elections_position_round_key" {
			return domain.ErrRunoffExists
		}
		return fmt.Errorf("failed to insert runoff election: %w", err)
	}

	queryCandidate := `
		INSERT INTO runoff_candidates (runoff_election_id, candidate_id, candidate_name, original_vote_count)
		VALUES ($1, $2, $3, $4)
	`
	stmt, err := tx.PrepareContext(ctx, queryCandidate)
	if err != nil {
		return fmt.Errorf("failed to prepare candidate statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range runoff.TiedCandidates {
		_, err = stmt.ExecContext(ctx, runoff.ID, c.CandidateID, c.CandidateName, c.OriginalVoteCount)
		if err != nil {
			return fmt.Errorf("failed to insert runoff candidate: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *runoffRepository) GetByID(ctx context.Context, id int64) (*domain.RunoffElection, error) {
	query := `SELECT ` + runoffColumns + ` FROM runoff_elections WHERE id = $1`

	runoff, err := scanRunoff(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRunoffNotFound
		}
		return nil, fmt.Errorf("failed to get runoff election: %w", err)
	}
	return runoff, nil
}

func (r *runoffRepository) List(ctx context.Context) ([]domain.RunoffElection, error) {
	query := `SELECT ` + runoffColumns + ` FROM runoff_elections ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query)
}

func (r *runoffRepository) ListByPosition(ctx context.Context, positionID int64) ([]domain.RunoffElection, error) {
	query := `SELECT ` + runoffColumns + ` FROM runoff_elections WHERE original_position_id = $1 ORDER BY round`
	return r.list(ctx, query, positionID)
}

func (r *runoffRepository) list(ctx context.Context, query string, args ...any) ([]domain.RunoffElection, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runoff elections: %w", err)
	}
	defer rows.Close()

	runoffs := []domain.RunoffElection{}
	for rows.Next() {
		runoff, err := scanRunoff(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan runoff election: %w", err)
		}
		runoffs = append(runoffs, *runoff)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runoff elections: %w", err)
	}
	return runoffs, nil
}

func (r *runoffRepository) Candidates(ctx context.Context, id int64) ([]domain.RunoffCandidate, error) {
	query := `
		SELECT runoff_election_id, candidate_id, candidate_name, original_vote_count
		FROM runoff_candidates
		WHERE runoff_election_id = $1
		ORDER BY original_vote_count DESC, candidate_id
	`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get runoff candidates: %w", err)
	}
	defer rows.Close()

	candidates := []domain.RunoffCandidate{}
	for rows.Next() {
		var c domain.RunoffCandidate
		if err := rows.Scan(&c.RunoffElectionID, &c.CandidateID, &c.CandidateName, &c.OriginalVoteCount); err != nil {
			return nil, fmt.Errorf("failed to scan runoff candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runoff candidates: %w", err)
	}
	return candidates, nil
}

func (r *runoffRepository) MarkActive(ctx context.Context, id int64, at time.Time) (*domain.RunoffElection, error) {
	query := `
		UPDATE runoff_elections
		SET status = 'active', started_at = $2
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + runoffColumns
	return r.transition(ctx, query, id, at)
}

func (r *runoffRepository) MarkCompleted(ctx context.Context, id int64, winner *int64, at time.Time) (*domain.RunoffElection, error) {
	query := `
		UPDATE runoff_elections
		SET status = 'completed', completed_at = $2, winner_candidate_id = $3
		WHERE id = $1 AND status = 'active'
		RETURNING ` + runoffColumns
	return r.transition(ctx, query, id, at, winner)
}

func (r *runoffRepository) transition(ctx context.Context, query string, args ...any) (*domain.RunoffElection, error) {
	runoff, err := scanRunoff(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update runoff status: %w", err)
	}
	return runoff, nil
}

func (r *runoffRepository) HasVoted(ctx context.Context, id int64, voucher string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM runoff_votes WHERE runoff_election_id = $1 AND voucher = $2)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, id, voucher).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check existing runoff vote: %w", err)
	}
	return exists, nil
}

func (r *runoffRepository) IsCandidate(ctx context.Context, id int64, candidateID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM runoff_candidates WHERE runoff_election_id = $1 AND candidate_id = $2)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, id, candidateID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check runoff candidate: %w", err)
	}
	return exists, nil
}

func (r *runoffRepository) SaveVote(ctx context.Context, vote *domain.RunoffVote) error {
	query := `
		INSERT INTO runoff_votes (runoff_election_id, voucher, candidate_id, verification_code, voted_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		vote.RunoffElectionID, vote.Voucher, vote.CandidateID, vote.VerificationCode, vote.VotedAt,
	).Scan(&vote.ID)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			if constraint == "runoff_votes_verification_code_key" {
				return domain.ErrCodeTaken
			}
			return domain.ErrAlreadyVoted
		}
		if _, ok := foreignKeyViolation(err); ok {
			return domain.ErrInvalidRunoffCandidate
		}
		return fmt.Errorf("failed to save runoff vote: %w", err)
	}
	return nil
}

func (r *runoffRepository) Results(ctx context.Context, id int64) ([]domain.RunoffResult, error) {
	query := `
		SELECT rc.candidate_id, rc.candidate_name, COUNT(rv.id) AS vote_count
		FROM runoff_candidates rc
		LEFT JOIN runoff_votes rv
			ON rv.runoff_election_id = rc.runoff_election_id AND rv.candidate_id = rc.candidate_id
		WHERE rc.runoff_election_id = $1
		GROUP BY rc.candidate_id, rc.candidate_name
		ORDER BY vote_count DESC, rc.candidate_id
	`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get runoff results: %w", err)
	}
	defer rows.Close()

	results := []domain.RunoffResult{}
	for rows.Next() {
		var res domain.RunoffResult
		if err := rows.Scan(&res.CandidateID, &res.CandidateName, &res.VoteCount); err != nil {
			return nil, fmt.Errorf("failed to scan runoff result: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runoff results: %w", err)
	}
	return results, nil
}

func scanRunoff(row rowScanner) (*domain.RunoffElection, error) {
	var (
		runoff      domain.RunoffElection
		tied        []byte
		startedAt   sql.NullTime
		completedAt sql.NullTime
		winner      sql.NullInt64
	)
	err := row.Scan(
		&runoff.ID, &runoff.OriginalPositionID, &runoff.OriginalPositionName, &runoff.Round, &tied,
		&runoff.Status, &runoff.CreatedAt, &startedAt, &completedAt, &winner,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(tied, &runoff.TiedCandidates); err != nil {
		return nil, fmt.Errorf("failed to decode tied candidates: %w", err)
	}
	if startedAt.Valid {
		runoff.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		runoff.CompletedAt = &completedAt.Time
	}
	if winner.Valid {
		runoff.WinnerCandidateID = &winner.Int64
	}
	return &runoff, nil
}

func queryTallies(ctx context.Context, db *sql.DB, query string) ([]domain.CandidateTally, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to tally votes: %w", err)
	}
	defer rows.Close()

	tallies := []domain.CandidateTally{}
	for rows.Next() {
		var t domain.CandidateTally
		if err := rows.Scan(&t.PositionID, &t.PositionName, &t.CandidateID, &t.CandidateName, &t.VoteCount); err != nil {
			return nil, fmt.Errorf("failed to scan tally: %w", err)
		}
		tallies = append(tallies, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tallies: %w", err)
	}
	return tallies, nil
}

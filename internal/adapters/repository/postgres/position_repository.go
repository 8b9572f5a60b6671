package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

type positionRepository struct {
	db *sql.DB
}

func NewPositionRepository(db *sql.DB) ports.PositionRepository {
	return &positionRepository{
		db: db,
	}
}

func (r *positionRepository) ListWithCandidates(ctx context.Context) ([]domain.Position, error) {
	query := `
		SELECT p.id, p.name, p.created_at,
			c.id, c.name, c.manifesto, c.image_url, c.created_at
		FROM positions p
		LEFT JOIN candidates c ON c.position_id = p.id
		ORDER BY p.id, c.id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	defer rows.Close()

	positions := []domain.Position{}
	for rows.Next() {
		var (
			p           domain.Position
			candidateID sql.NullInt64
			name        sql.NullString
			manifesto   sql.NullString
			imageURL    sql.NullString
			createdAt   sql.NullTime
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt, &candidateID, &name, &manifesto, &imageURL, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}

		if n := len(positions); n == 0 || positions[n-1].ID != p.ID {
			p.Candidates = []domain.Candidate{}
			positions = append(positions, p)
		}
		if !candidateID.Valid {
			continue
		}
		last := &positions[len(positions)-1]
		last.Candidates = append(last.Candidates, domain.Candidate{
			ID:         candidateID.Int64,
			PositionID: p.ID,
			Name:       name.String,
			Manifesto:  manifesto.String,
			ImageURL:   imageURL.String,
			CreatedAt:  createdAt.Time,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}
	return positions, nil
}

func (r *positionRepository) GetByID(ctx context.Context, id int64) (*domain.Position, error) {
	query := `SELECT id, name, created_at FROM positions WHERE id = $1`

	var p domain.Position
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPositionNotFound
		}
		return nil, fmt.Errorf("failed to get position: %w", err)
	}
	return &p, nil
}

func (r *positionRepository) Create(ctx context.Context, position *domain.Position) error {
	query := `INSERT INTO positions (name) VALUES ($1) RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, position.Name).Scan(&position.ID, &position.CreatedAt)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return domain.ErrPositionExists
		}
		return fmt.Errorf("failed to create position: %w", err)
	}
	return nil
}

func (r *positionRepository) CreateCandidate(ctx context.Context, candidate *domain.Candidate) error {
	query := `
		INSERT INTO candidates (position_id, name, manifesto, image_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		candidate.PositionID, candidate.Name, candidate.Manifesto, candidate.ImageURL,
	).Scan(&candidate.ID, &candidate.CreatedAt)
	if err != nil {
		if _, ok := foreignKeyViolation(err); ok {
			return domain.ErrPositionNotFound
		}
		return fmt.Errorf("failed to create candidate: %w", err)
	}
	return nil
}

func (r *positionRepository) CandidateBelongs(ctx context.Context, candidateID, positionID int64) (bool, error) {
	return exists(ctx, r.db, `SELECT EXISTS (SELECT 1 FROM candidates WHERE id = $1 AND position_id = $2)`, candidateID, positionID)
}

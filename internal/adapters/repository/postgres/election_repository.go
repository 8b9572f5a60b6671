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

const electionColumns = `
	id, status, started_at, paused_at, completed_at, cancelled_at, settings, created_at, updated_at
`

type electionRepository struct {
	db *sql.DB
}

func NewElectionRepository(db *sql.DB) ports.ElectionRepository {
	return &electionRepository{
		db: db,
	}
}

func (r *electionRepository) Latest(ctx context.Context) (*domain.ElectionStatus, error) {
	query := `SELECT ` + electionColumns + ` FROM election_status ORDER BY id DESC LIMIT 1`

	status, err := scanElection(r.db.QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get election status: %w", err)
	}
	return status, nil
}

func (r *electionRepository) Insert(ctx context.Context, status *domain.ElectionStatus) error {
	settings, err := json.Marshal(status.Settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	query := `
		INSERT INTO election_status (status, started_at, paused_at, completed_at, cancelled_at, settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err = r.db.QueryRowContext(ctx, query,
		status.Status, status.StartedAt, status.PausedAt, status.CompletedAt, status.CancelledAt,
		string(settings), status.CreatedAt, status.UpdatedAt,
	).Scan(&status.ID)
	if err != nil {
		return fmt.Errorf("failed to insert election status: %w", err)
	}
	return nil
}

func (r *electionRepository) Update(ctx context.Context, status *domain.ElectionStatus, from domain.ElectionPhase) error {
	settings, err := json.Marshal(status.Settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	query := `
		UPDATE election_status
		SET status = $3, started_at = $4, paused_at = $5, completed_at = $6, cancelled_at = $7,
			settings = $8, updated_at = $9
		WHERE id = $1 AND status = $2
	`
	res, err := r.db.ExecContext(ctx, query,
		status.ID, from, status.Status, status.StartedAt, status.PausedAt, status.CompletedAt, status.CancelledAt,
		string(settings), status.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update election status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update election status: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("status changed concurrently: %w", domain.ErrInvalidElectionTransition)
	}
	return nil
}

func (r *electionRepository) History(ctx context.Context) ([]domain.ElectionStatus, error) {
	query := `SELECT ` + electionColumns + ` FROM election_status ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get election history: %w", err)
	}
	defer rows.Close()

	history := []domain.ElectionStatus{}
	for rows.Next() {
		status, err := scanElection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan election status: %w", err)
		}
		history = append(history, *status)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating election history: %w", err)
	}
	return history, nil
}

func scanElection(row rowScanner) (*domain.ElectionStatus, error) {
	var (
		s                                          domain.ElectionStatus
		startedAt, pausedAt, completedAt, cancelAt sql.NullTime
		settings                                   []byte
	)
	err := row.Scan(&s.ID, &s.Status, &startedAt, &pausedAt, &completedAt, &cancelAt, &settings, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}

	s.Settings = domain.DefaultElectionSettings()
	if err := json.Unmarshal(settings, &s.Settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	s.StartedAt = nullTime(startedAt)
	s.PausedAt = nullTime(pausedAt)
	s.CompletedAt = nullTime(completedAt)
	s.CancelledAt = nullTime(cancelAt)
	return &s, nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}

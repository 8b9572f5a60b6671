package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

type statsRepository struct {
	db *sql.DB
}

func NewStatsRepository(db *sql.DB) ports.StatsRepository {
	return &statsRepository{
		db: db,
	}
}

func (r *statsRepository) CountVoters(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM voters`)
}

func (r *statsRepository) CountVotersWhoVoted(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(DISTINCT voucher) FROM votes`)
}

func (r *statsRepository) CountVotes(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM votes`)
}

func (r *statsRepository) PositionTallies(ctx context.Context) ([]domain.CandidateTally, error) {
	query := `
		SELECT p.id, p.name, c.id, c.name, COUNT(v.id) AS vote_count
		FROM positions p
		JOIN candidates c ON c.position_id = p.id
		LEFT JOIN votes v ON v.candidate_id = c.id
		GROUP BY p.id, p.name, c.id, c.name
		ORDER BY p.id, vote_count DESC, c.id
	`
	return queryTallies(ctx, r.db, query)
}

func (r *statsRepository) DailyVoteCounts(ctx context.Context, since time.Time) ([]domain.DailyTrend, error) {
	query := `
		SELECT date_trunc('day', voted_at AT TIME ZONE 'UTC') AS day,
			COUNT(*) AS vote_count,
			COUNT(DISTINCT voucher) AS unique_voters
		FROM votes
		WHERE voted_at >= $1
		GROUP BY day
		ORDER BY day DESC
	`
	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to group votes by day: %w", err)
	}
	defer rows.Close()

	trends := []domain.DailyTrend{}
	for rows.Next() {
		var d domain.DailyTrend
		if err := rows.Scan(&d.Date, &d.VoteCount, &d.UniqueVoters); err != nil {
			return nil, fmt.Errorf("failed to scan daily trend: %w", err)
		}
		d.Date = time.Date(d.Date.Year(), d.Date.Month(), d.Date.Day(), 0, 0, 0, 0, time.UTC)
		trends = append(trends, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily trends: %w", err)
	}
	return trends, nil
}

func (r *statsRepository) HourlyVoteCounts(ctx context.Context, since time.Time) ([]domain.HourBucket, error) {
	return hourBuckets(ctx, r.db, since)
}

func (r *statsRepository) count(ctx context.Context, query string) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count: %w", err)
	}
	return n, nil
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

type fraudRepository struct {
	db *sql.DB
}

func NewFraudRepository(db *sql.DB) ports.FraudRepository {
	return &fraudRepository{
		db: db,
	}
}

func (r *fraudRepository) VouchersOver(ctx context.Context, since time.Time, threshold int) ([]domain.VoucherVoteCount, error) {
	query := `
		SELECT voucher, COUNT(*) AS vote_count
		FROM votes
		WHERE $1::timestamptz IS NULL OR voted_at >= $1
		GROUP BY voucher
		HAVING COUNT(*) > $2
		ORDER BY vote_count DESC, voucher
	`
	rows, err := r.db.QueryContext(ctx, query, sql.NullTime{Time: since, Valid: !since.IsZero()}, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to count votes per voucher: %w", err)
	}
	defer rows.Close()

	var counts []domain.VoucherVoteCount
	for rows.Next() {
		var c domain.VoucherVoteCount
		if err := rows.Scan(&c.Voucher, &c.VoteCount); err != nil {
			return nil, fmt.Errorf("failed to scan voucher count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating voucher counts: %w", err)
	}
	return counts, nil
}

func (r *fraudRepository) CandidateShares(ctx context.Context) ([]domain.CandidateShare, error) {
	query := `
		SELECT candidate_id, COUNT(*) AS vote_count,
			(COUNT(*) * 100.0 / SUM(COUNT(*)) OVER ())::float8 AS percentage
		FROM votes
		GROUP BY candidate_id
		ORDER BY vote_count DESC, candidate_id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to compute candidate shares: %w", err)
	}
	defer rows.Close()

	var shares []domain.CandidateShare
	for rows.Next() {
		var s domain.CandidateShare
		if err := rows.Scan(&s.CandidateID, &s.VoteCount, &s.Percentage); err != nil {
			return nil, fmt.Errorf("failed to scan candidate share: %w", err)
		}
		shares = append(shares, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candidate shares: %w", err)
	}
	return shares, nil
}

func (r *fraudRepository) HourlyVoteCounts(ctx context.Context, since time.Time) ([]domain.HourBucket, error) {
	return hourBuckets(ctx, r.db, since)
}

func hourBuckets(ctx context.Context, db *sql.DB, since time.Time) ([]domain.HourBucket, error) {
	query := `
		SELECT EXTRACT(HOUR FROM voted_at)::int AS hour, COUNT(*) AS vote_count
		FROM votes
		WHERE voted_at >= $1
		GROUP BY hour
		ORDER BY hour
	`
	rows, err := db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to bucket votes by hour: %w", err)
	}
	defer rows.Close()

	var buckets []domain.HourBucket
	for rows.Next() {
		var b domain.HourBucket
		if err := rows.Scan(&b.Hour, &b.VoteCount); err != nil {
			return nil, fmt.Errorf("failed to scan hour bucket: %w", err)
		}
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hour buckets: %w", err)
	}
	return buckets, nil
}

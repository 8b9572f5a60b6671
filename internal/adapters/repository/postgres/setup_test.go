package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("ballot_test"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func applyMigrations(db *sql.DB) error {
	entries, err := os.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "up.sql") {
			continue
		}

		content, err := os.ReadFile(filepath.Join("migrations", entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

// setupTestDB starts a migrated Postgres and tears it down with the test.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	container, connStr, err := setupPostgresContainer(ctx)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	db, err := sql.Open("postgres", connStr)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, applyMigrations(db))
	return db
}

type seed struct {
	positions  map[string]int64
	candidates map[string]int64
}

// seedBallot creates two positions with candidates and the given vouchers.
func seedBallot(t *testing.T, db *sql.DB, vouchers ...string) seed {
	t.Helper()
	ctx := context.Background()
	s := seed{positions: map[string]int64{}, candidates: map[string]int64{}}

	layout := map[string][]string{
		"President": {"Alice", "Bob", "Carol"},
		"Treasurer": {"Dave", "Erin"},
	}
	for _, position := range []string{"President", "Treasurer"} {
		var pid int64
		err := db.QueryRowContext(ctx, `INSERT INTO positions (name) VALUES ($1) RETURNING id`, position).Scan(&pid)
		require.NoError(t, err)
		s.positions[position] = pid
		for _, name := range layout[position] {
			var cid int64
			err := db.QueryRowContext(ctx, `INSERT INTO candidates (position_id, name) VALUES ($1, $2) RETURNING id`, pid, name).Scan(&cid)
			require.NoError(t, err)
			s.candidates[name] = cid
		}
	}

	n, err := NewVoterRepository(db).Import(ctx, vouchers)
	require.NoError(t, err)
	require.Equal(t, len(vouchers), n)
	return s
}

func insertVote(t *testing.T, db *sql.DB, voucher string, candidateID, positionID int64, code string, at time.Time) int64 {
	t.Helper()
	var id int64
	err := db.QueryRow(
		`INSERT INTO votes (voucher, candidate_id, position_id, verification_code, voted_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		voucher, candidateID, positionID, code, at,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
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

	"github.com/vncsmyrnk/ballot/internal/adapters/cache"
	handler "github.com/vncsmyrnk/ballot/internal/adapters/handler/http"
	repo "github.com/vncsmyrnk/ballot/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/ballot/internal/core/services"
)

const (
	adminUsername = "root"
	adminPassword = "correct-horse-battery"
)

type TestApp struct {
	DB          *sql.DB
	Server      *httptest.Server
	Client      *http.Client
	DBContainer testcontainers.Container
	closeCache  func()
}

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	dbName := "testdb"
	user := "user"
	password := "password"

	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(user),
		postgres.WithPassword(password),
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
	dirPath := "../../internal/adapters/repository/postgres/migrations"

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if !strings.HasSuffix(entry.Name(), "up.sql") {
			continue
		}

		fullPath := filepath.Join(dirPath, entry.Name())
		content, err := os.ReadFile(fullPath)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		_, err = db.Exec(string(content))
		if err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

// setupTestApp starts Postgres and serves the full API over httptest with the
// given vouchers registered and a bootstrapped super admin.
func setupTestApp(t *testing.T, vouchers ...string) *TestApp {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	dbContainer, dbURL, err := setupPostgresContainer(ctx)
	require.NoError(t, err)

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)

	err = applyMigrations(db)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	lookups, closeCache, err := cache.NewRistrettoCache(time.Minute, 1000)
	require.NoError(t, err)

	voteRepo := repo.NewVoteRepository(db)
	voterRepo := repo.NewVoterRepository(db)
	positionRepo := repo.NewPositionRepository(db)
	events := repo.NewEventRepository(db)
	codes := services.NewCodeGenerator(voteRepo)

	electionSvc := services.NewElectionService(repo.NewElectionRepository(db), events, logger)
	adminRepo := repo.NewAdminRepository(db)
	authSvc := services.NewAuthService(voterRepo, adminRepo, "test-secret", events, logger)
	adminSvc := services.NewAdminService(adminRepo, events, logger)
	runoffSvc := services.NewRunoffService(repo.NewRunoffRepository(db), codes, events, logger)
	auditSvc := services.NewAuditService(repo.NewAuditRepository(db), events, logger, 4)
	fraudSvc := services.NewFraudService(repo.NewFraudRepository(db), events, logger)
	voteSvc := services.NewVoteService(voteRepo, voterRepo, positionRepo, electionSvc, codes, lookups, events, logger)
	catalogSvc := services.NewCatalogService(positionRepo, lookups)
	statsSvc := services.NewStatsService(repo.NewStatsRepository(db), lookups)

	require.NoError(t, authSvc.EnsureSuperAdmin(ctx, adminUsername, adminPassword))
	if len(vouchers) > 0 {
		_, err = authSvc.ImportVouchers(ctx, vouchers)
		require.NoError(t, err)
	}

	router := handler.NewHandler(handler.Handlers{
		Auth:     handler.NewAuthHandler(authSvc, "", http.SameSiteLaxMode),
		Vote:     handler.NewVoteHandler(voteSvc),
		Runoff:   handler.NewRunoffHandler(runoffSvc),
		Audit:    handler.NewAuditHandler(auditSvc, fraudSvc, events),
		Election: handler.NewElectionHandler(electionSvc),
		Catalog:  handler.NewCatalogHandler(catalogSvc),
		Stats:    handler.NewStatsHandler(statsSvc),
		Voter:    handler.NewVoterHandler(authSvc),
		Admin:    handler.NewAdminHandler(adminSvc),
	}, authSvc, handler.NewRateLimiter(1000, 1000), []string{"*"})

	server := httptest.NewServer(router)

	app := &TestApp{
		DB:          db,
		Server:      server,
		Client:      server.Client(),
		DBContainer: dbContainer,
		closeCache:  closeCache,
	}
	t.Cleanup(func() { app.Teardown(t) })
	return app
}

func (app *TestApp) Teardown(t *testing.T) {
	app.Server.Close()
	app.closeCache()
	app.DB.Close()
	if err := testcontainers.TerminateContainer(app.DBContainer); err != nil {
		t.Logf("failed to terminate container: %v", err)
	}
}

// call sends a JSON request with an optional bearer token and decodes the
// response into out when out is non-nil.
func (app *TestApp) call(t *testing.T, method, path, token string, body, out any) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, app.Server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (app *TestApp) loginVoter(t *testing.T, voucher string) string {
	t.Helper()
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	status := app.call(t, http.MethodPost, "/api/auth/voter/login", "", map[string]string{"voucher": voucher}, &resp)
	require.Equal(t, http.StatusOK, status)
	return resp.AccessToken
}

func (app *TestApp) loginAdmin(t *testing.T) string {
	t.Helper()
	token, status := app.loginAdminAs(t, adminUsername, adminPassword)
	require.Equal(t, http.StatusOK, status)
	return token
}

func (app *TestApp) loginAdminAs(t *testing.T, username, password string) (string, int) {
	t.Helper()
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	status := app.call(t, http.MethodPost, "/api/auth/admin/login", "", map[string]string{
		"username": username,
		"password": password,
	}, &resp)
	return resp.AccessToken, status
}

type ballotLayout struct {
	positions  map[string]int64
	candidates map[string]int64
}

// setupBallot creates President (Alice, Bob) and Treasurer (Dave, Erin)
// through the admin API and opens the election.
func (app *TestApp) setupBallot(t *testing.T, adminToken string) ballotLayout {
	t.Helper()
	layout := ballotLayout{positions: map[string]int64{}, candidates: map[string]int64{}}

	for _, p := range []struct {
		name       string
		candidates []string
	}{
		{"President", []string{"Alice", "Bob"}},
		{"Treasurer", []string{"Dave", "Erin"}},
	} {
		var position struct {
			ID int64 `json:"id"`
		}
		status := app.call(t, http.MethodPost, "/api/admin/positions", adminToken, map[string]string{"name": p.name}, &position)
		require.Equal(t, http.StatusCreated, status)
		layout.positions[p.name] = position.ID

		for _, name := range p.candidates {
			var candidate struct {
				ID int64 `json:"id"`
			}
			path := fmt.Sprintf("/api/admin/positions/%d/candidates", position.ID)
			status := app.call(t, http.MethodPost, path, adminToken, map[string]string{"name": name}, &candidate)
			require.Equal(t, http.StatusCreated, status)
			layout.candidates[name] = candidate.ID
		}
	}

	status := app.call(t, http.MethodPost, "/api/admin/election/start", adminToken, nil, nil)
	require.Equal(t, http.StatusOK, status)
	return layout
}

func (l ballotLayout) ballot(president, treasurer string) map[string]any {
	return map[string]any{
		"selections": []map[string]int64{
			{"position_id": l.positions["President"], "candidate_id": l.candidates[president]},
			{"position_id": l.positions["Treasurer"], "candidate_id": l.candidates[treasurer]},
		},
	}
}

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/vncsmyrnk/ballot/internal/adapters/cache"
	"github.com/vncsmyrnk/ballot/internal/adapters/handler/http"
	"github.com/vncsmyrnk/ballot/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/ballot/internal/config"
	"github.com/vncsmyrnk/ballot/internal/core/services"
)

const cacheMaxItems = 10_000

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}

	db, err := sql.Open("postgres", cfg.Postgres.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pingCtx, cancelPing := context.WithTimeout(ctx, 10*time.Second)
	defer cancelPing()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("failed to reach database: %w", err)
	}

	lookups, closeCache, err := cache.NewRistrettoCache(cfg.CacheTTL, cacheMaxItems)
	if err != nil {
		return err
	}
	defer closeCache()

	voteRepo := postgres.NewVoteRepository(db)
	voterRepo := postgres.NewVoterRepository(db)
	positionRepo := postgres.NewPositionRepository(db)
	events := postgres.NewEventRepository(db)

	codes := services.NewCodeGenerator(voteRepo)
	electionSvc := services.NewElectionService(postgres.NewElectionRepository(db), events, logger)
	adminRepo := postgres.NewAdminRepository(db)
	authSvc := services.NewAuthService(voterRepo, adminRepo, cfg.JWTSecret, events, logger)
	adminSvc := services.NewAdminService(adminRepo, events, logger)
	runoffSvc := services.NewRunoffService(postgres.NewRunoffRepository(db), codes, events, logger)
	auditSvc := services.NewAuditService(postgres.NewAuditRepository(db), events, logger, cfg.AuditConcurrency)
	fraudSvc := services.NewFraudService(postgres.NewFraudRepository(db), events, logger)
	voteSvc := services.NewVoteService(voteRepo, voterRepo, positionRepo, electionSvc, codes, lookups, events, logger)
	catalogSvc := services.NewCatalogService(positionRepo, lookups)
	statsSvc := services.NewStatsService(postgres.NewStatsRepository(db), lookups)

	if err := authSvc.EnsureSuperAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return err
	}

	handler := http.NewHandler(http.Handlers{
		Auth:     http.NewAuthHandler(authSvc, cfg.CookieDomain, cfg.CookieSameSite),
		Vote:     http.NewVoteHandler(voteSvc),
		Runoff:   http.NewRunoffHandler(runoffSvc),
		Audit:    http.NewAuditHandler(auditSvc, fraudSvc, events),
		Election: http.NewElectionHandler(electionSvc),
		Catalog:  http.NewCatalogHandler(catalogSvc),
		Stats:    http.NewStatsHandler(statsSvc),
		Voter:    http.NewVoterHandler(authSvc),
		Admin:    http.NewAdminHandler(adminSvc),
	}, authSvc, http.NewRateLimiter(cfg.VoteRateLimit, cfg.VoteRateBurst), cfg.CORSOrigins)

	server := &stdhttp.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	logger.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

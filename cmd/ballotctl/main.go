// Command ballotctl runs administrative ballot operations against the
// database directly: runoff detection and lifecycle, audits, fraud scans and
// voucher import.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"github.com/vncsmyrnk/ballot/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/ballot/internal/config"
	"github.com/vncsmyrnk/ballot/internal/core/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(openApp).ExecuteContext(ctx); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

// openApp wires the services against the configured database.
func openApp(ctx context.Context) (*app, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger := cfg.NewLogger()

	db, err := sql.Open("postgres", cfg.Postgres.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to reach database: %w", err)
	}

	events := postgres.NewEventRepository(db)
	codes := services.NewCodeGenerator(postgres.NewVoteRepository(db))

	a := &app{
		runoffs: services.NewRunoffService(postgres.NewRunoffRepository(db), codes, events, logger),
		audit:   services.NewAuditService(postgres.NewAuditRepository(db), events, logger, cfg.AuditConcurrency),
		fraud:   services.NewFraudService(postgres.NewFraudRepository(db), events, logger),
		auth:    services.NewAuthService(postgres.NewVoterRepository(db), postgres.NewAdminRepository(db), cfg.JWTSecret, events, logger),
		out:     os.Stdout,
		in:      os.Stdin,
	}
	return a, func() { db.Close() }, nil
}

// Command auditjob runs one fraud scan and one full vote audit and exits. It
// is meant to be scheduled; a non-zero exit means the scan reached the
// -fail-at risk level.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/vncsmyrnk/ballot/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/ballot/internal/config"
	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
	"github.com/vncsmyrnk/ballot/internal/core/services"
)

const jobActor = "auditjob"

// Exit codes.
const (
	exitOK        = 0
	exitFailed    = 1
	exitRiskFound = 2
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	flag.StringVar(&cfg.Postgres.Host, "db-host", cfg.Postgres.Host, "Database host")
	flag.StringVar(&cfg.Postgres.Port, "db-port", cfg.Postgres.Port, "Database port")
	flag.StringVar(&cfg.Postgres.User, "db-user", cfg.Postgres.User, "Database user")
	flag.StringVar(&cfg.Postgres.Password, "db-pass", cfg.Postgres.Password, "Database password")
	flag.StringVar(&cfg.Postgres.DB, "db-name", cfg.Postgres.DB, "Database name")
	timeout := flag.Duration("timeout", 5*time.Minute, "Job timeout")
	failAt := flag.String("fail-at", string(domain.SeverityHigh), "Fraud risk level that fails the job (low, medium, high, critical)")
	flag.Parse()

	threshold := domain.Severity(*failAt)
	if _, ok := severityRank[threshold]; !ok {
		log.Fatalf("invalid -fail-at level %q", *failAt)
	}

	os.Exit(run(cfg, *timeout, threshold))
}

// run owns every resource the job opens so that they are released before
// main exits.
func run(cfg *config.Config, timeout time.Duration, failAt domain.Severity) int {
	logger := cfg.NewLogger()

	db, err := sql.Open("postgres", cfg.Postgres.DSN())
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return exitFailed
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(services.WithActor(context.Background(), jobActor), timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		logger.Error("failed to reach database", "error", err)
		return exitFailed
	}

	events := postgres.NewEventRepository(db)
	fraudSvc := services.NewFraudService(postgres.NewFraudRepository(db), events, logger)
	auditSvc := services.NewAuditService(postgres.NewAuditRepository(db), events, logger, cfg.AuditConcurrency)

	return runJob(ctx, fraudSvc, auditSvc, failAt, logger)
}

func runJob(ctx context.Context, fraudSvc ports.FraudService, auditSvc ports.AuditService, failAt domain.Severity, logger *slog.Logger) int {
	logger.Info("starting audit job")

	fraud, err := fraudSvc.DetectFraudPatterns(ctx)
	if err != nil {
		logger.Error("fraud scan failed", "error", err)
		return exitFailed
	}

	report, err := auditSvc.AuditAllVotes(ctx)
	if err != nil {
		logger.Error("full audit failed", "error", err)
		return exitFailed
	}

	logger.Info("audit job completed",
		"fraud_risk_level", fraud.RiskLevel,
		"fraud_risk_score", fraud.RiskScore,
		"risk_factors", fraud.RiskFactors,
		"votes_audited", report.TotalVotesAudited,
		"invalid_votes", report.InvalidVotes,
		"suspicious_votes", report.SuspiciousVotes,
	)

	if severityRank[fraud.RiskLevel] >= severityRank[failAt] {
		logger.Warn("fraud risk at or above failure level", "level", fraud.RiskLevel, "fail_at", failAt)
		return exitRiskFound
	}
	return exitOK
}

var severityRank = map[domain.Severity]int{
	domain.SeverityLow:      0,
	domain.SeverityMedium:   1,
	domain.SeverityHigh:     2,
	domain.SeverityCritical: 3,
}

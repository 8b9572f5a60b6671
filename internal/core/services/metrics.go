package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ballotsCast = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ballot_ballots_cast_total",
		Help: "Primary ballots accepted",
	})

	runoffsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ballot_runoffs_created_total",
		Help: "Runoff elections created from detected ties",
	})

	runoffTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ballot_runoff_transitions_total",
		Help: "Runoff status transitions by target status and outcome",
	}, []string{"status", "outcome"})

	runoffVotesCast = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ballot_runoff_votes_cast_total",
		Help: "Runoff votes accepted",
	})

	auditCheckFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ballot_audit_check_failures_total",
		Help: "Audit and fraud checks that could not run and were treated as not triggered",
	}, []string{"check"})

	auditDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ballot_audit_duration_seconds",
		Help:    "Duration of audit and fraud scans",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
	}, []string{"operation"})

	fraudRiskScore = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ballot_fraud_risk_score",
		Help: "Risk score of the latest fraud pattern scan",
	})
)

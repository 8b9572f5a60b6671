package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
	"github.com/vncsmyrnk/ballot/internal/core/scoring"
)

const (
	defaultLogLimit = 50
	maxLogLimit     = 500
)

type AuditHandler struct {
	audit  ports.AuditService
	fraud  ports.FraudService
	events ports.EventReader
}

func NewAuditHandler(audit ports.AuditService, fraud ports.FraudService, events ports.EventReader) *AuditHandler {
	return &AuditHandler{audit: audit, fraud: fraud, events: events}
}

func (h *AuditHandler) AuditVote(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.audit.AuditVote(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AuditHandler) FullAudit(w http.ResponseWriter, r *http.Request) {
	report, err := h.audit.AuditAllVotes(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *AuditHandler) Fraud(w http.ResponseWriter, r *http.Request) {
	result, err := h.fraud.DetectFraudPatterns(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Suspicious lists votes whose audit risk is at least min_risk, which
// defaults to the validity threshold.
func (h *AuditHandler) Suspicious(w http.ResponseWriter, r *http.Request) {
	minRisk, err := intQuery(r, "min_risk", scoring.ValidThreshold, scoring.MaxRisk)
	if err != nil {
		writeError(w, r, err)
		return
	}

	votes, err := h.audit.SuspiciousVotes(r.Context(), minRisk)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, votes)
}

func (h *AuditHandler) Logs(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", defaultLogLimit, maxLogLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	events, err := h.events.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func intQuery(r *http.Request, name string, fallback, upper int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 || v > upper {
		return 0, fmt.Errorf("%w: %s must be between 0 and %d", domain.ErrValidation, name, upper)
	}
	return v, nil
}

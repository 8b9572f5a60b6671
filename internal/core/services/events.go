package services

import (
	"context"
	"log/slog"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

// eventLog emits audit events to the structured log and, when a recorder is
// configured, persists them. A failed write never fails the caller.
type eventLog struct {
	recorder ports.EventRecorder
	logger   *slog.Logger
}

func newEventLog(recorder ports.EventRecorder, logger *slog.Logger) eventLog {
	if logger == nil {
		logger = slog.Default()
	}
	return eventLog{recorder: recorder, logger: logger}
}

func (l eventLog) record(ctx context.Context, action, actor, resource string, details map[string]any) {
	event := domain.NewAuditEvent(action, actor, resource, details)
	l.logger.InfoContext(ctx, "audit event",
		"event_id", event.ID,
		"action", action,
		"actor", actor,
		"resource", resource,
		"details", details,
	)
	if l.recorder == nil {
		return
	}
	if err := l.recorder.Record(ctx, event); err != nil {
		l.logger.WarnContext(ctx, "failed to persist audit event", "action", action, "error", err)
	}
}

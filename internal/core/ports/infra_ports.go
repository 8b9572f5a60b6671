package ports

import (
	"context"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
)

type EventRecorder interface {
	Record(ctx context.Context, event domain.AuditEvent) error
}

type EventReader interface {
	Recent(ctx context.Context, limit int) ([]domain.AuditEvent, error)
}

// Cache is a read-mostly lookup cache with expiring entries.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Delete(keys ...string)
}

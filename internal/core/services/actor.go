package services

import (
	"context"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
)

type actorKey struct{}

// WithActor tags ctx with the identity recorded on audit events.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func actorFrom(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey{}).(string); ok && actor != "" {
		return actor
	}
	return domain.ActorSystem
}

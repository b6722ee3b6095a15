package core

import "context"

// Context keys for request-scoped values.
type contextKey string

const actorKey contextKey = "actor"

// WithActor attaches the authenticated actor to the context.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the actor set by WithActor.
func ActorFromContext(ctx context.Context) (string, bool) {
	actor, ok := ctx.Value(actorKey).(string)
	return actor, ok && actor != ""
}

package shared

import "context"

type actorContextKey struct{}

// ContextWithActor stores the authenticated identity in context. The identity
// is an opaque subject string supplied by the identity provider.
func ContextWithActor(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, actorContextKey{}, identity)
}

// ActorFromContext extracts the authenticated identity from context. Returns
// the empty string when the request is unauthenticated.
func ActorFromContext(ctx context.Context) string {
	identity, _ := ctx.Value(actorContextKey{}).(string)
	return identity
}

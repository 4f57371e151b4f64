package shared

import (
	"context"
	"net/http"
	"strings"
)

// ActorHeader carries the identity of the operator acting on a request.
const ActorHeader = "X-Actor"

type actorContextKey struct{}

// ContextWithActor stores the acting user in context.
func ContextWithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorContextKey{}, strings.TrimSpace(actor))
}

// ActorFromContext extracts the acting user from context. Empty when unset.
func ActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(actorContextKey{}).(string)
	return actor
}

// ActorMiddleware copies the actor header into the request context.
func ActorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if actor := r.Header.Get(ActorHeader); actor != "" {
			r = r.WithContext(ContextWithActor(r.Context(), actor))
		}
		next.ServeHTTP(w, r)
	})
}

// Package actorctx carries the acting principal and request id on a context.Context so code below the HTTP
// layer (logging, services) can see who is acting without depending on gin.
package actorctx

import (
	"context"

	"github.com/geocoder89/inkwell/internal/authz"
)

type ctxKey struct{}

type requestIDKey struct{}

func WithPrincipal(ctx context.Context, p authz.Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// PrincipalFrom returns the stored principal, or the anonymous one.
func PrincipalFrom(ctx context.Context) authz.Principal {
	p, ok := ctx.Value(ctxKey{}).(authz.Principal)
	if !ok {
		return authz.Anonymous()
	}
	return p
}

func UserIDFrom(ctx context.Context) (int64, bool) {
	p := PrincipalFrom(ctx)
	return p.UserID, p.IsAuthenticated()
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

package actorctx

import (
	"context"
	"testing"

	"github.com/geocoder89/inkwell/internal/authz"
)

func TestPrincipalRoundTrip(t *testing.T) {
	if p := PrincipalFrom(context.Background()); p.IsAuthenticated() {
		t.Fatalf("empty context must be anonymous, got %+v", p)
	}

	ctx := WithPrincipal(context.Background(), authz.Authenticated(7, "admin"))

	id, ok := UserIDFrom(ctx)
	if !ok || id != 7 {
		t.Fatalf("got id=%d ok=%v", id, ok)
	}
	if !PrincipalFrom(ctx).IsAdmin() {
		t.Fatalf("expected admin principal")
	}
}

func TestRequestID(t *testing.T) {
	if id := RequestIDFrom(context.Background()); id != "" {
		t.Fatalf("expected empty id, got %q", id)
	}
	if id := RequestIDFrom(WithRequestID(context.Background(), "req-1")); id != "req-1" {
		t.Fatalf("got %q", id)
	}
}

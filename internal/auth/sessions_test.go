package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/geocoder89/inkwell/internal/auth"
	"github.com/geocoder89/inkwell/internal/domain/user"
	"github.com/geocoder89/inkwell/internal/repo/memory"
)

func newSessions() *auth.Sessions {
	store := memory.NewStore()
	return auth.NewSessions(auth.NewManager("test-secret", time.Minute, time.Hour), store.RefreshTokens)
}

var ann = user.User{ID: 1, Email: "ann@x.com", Name: "Ann", Role: user.RoleAdmin}

func TestSessions_IssueAndPrincipal(t *testing.T) {
	s := newSessions()

	tokens, err := s.Issue(context.Background(), ann)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	p, err := s.Principal(tokens.AccessToken)
	if err != nil {
		t.Fatalf("principal: %v", err)
	}
	if p.UserID != 1 || !p.IsAdmin() {
		t.Fatalf("unexpected principal: %+v", p)
	}

	if _, err := s.Principal("garbage"); err == nil {
		t.Fatalf("expected garbage token to fail")
	}
}

func TestSessions_RefreshRotates(t *testing.T) {
	ctx := context.Background()
	s := newSessions()

	first, _ := s.Issue(ctx, ann)

	second, err := s.Refresh(ctx, first.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatalf("refresh token must rotate")
	}

	// the first token is spent
	if _, err := s.Refresh(ctx, first.RefreshToken); !errors.Is(err, auth.ErrRefreshTokenRevoked) {
		t.Fatalf("got %v, want revoked", err)
	}
}

func TestSessions_ReuseRevokesEverySession(t *testing.T) {
	ctx := context.Background()
	s := newSessions()

	first, _ := s.Issue(ctx, ann)
	second, _ := s.Refresh(ctx, first.RefreshToken)

	// replaying the spent token ends the live one too
	_, _ = s.Refresh(ctx, first.RefreshToken)

	if _, err := s.Refresh(ctx, second.RefreshToken); !errors.Is(err, auth.ErrRefreshTokenRevoked) {
		t.Fatalf("got %v, want revoked after reuse", err)
	}
}

func TestSessions_Revoke(t *testing.T) {
	ctx := context.Background()
	s := newSessions()

	tokens, _ := s.Issue(ctx, ann)

	if err := s.Revoke(ctx, tokens.RefreshToken); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if err := s.Revoke(ctx, tokens.RefreshToken); err != nil {
		t.Fatalf("second revoke should be a no-op: %v", err)
	}
	if err := s.Revoke(ctx, "not-a-token"); err != nil {
		t.Fatalf("malformed tokens are ignored: %v", err)
	}

	if _, err := s.Refresh(ctx, tokens.RefreshToken); err == nil {
		t.Fatalf("revoked token must not refresh")
	}
}

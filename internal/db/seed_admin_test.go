package db

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/geocoder89/inkwell/internal/config"
	"github.com/geocoder89/inkwell/internal/domain/user"
	"github.com/geocoder89/inkwell/internal/repo/memory"
	"github.com/geocoder89/inkwell/internal/security"
	"golang.org/x/crypto/bcrypt"
)

func TestEnsureAdminUser(t *testing.T) {
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	hasher := security.NewHasher(bcrypt.MinCost)
	cfg := config.Config{AdminEmail: " Admin@Example.com ", AdminPassword: "secret", AdminName: "Admin"}

	t.Run("seeds first user as admin", func(t *testing.T) {
		store := memory.NewStore()

		if err := EnsureAdminUser(ctx, store.Users, hasher, cfg, log); err != nil {
			t.Fatalf("seed: %v", err)
		}

		u, err := store.Users.GetByEmail(ctx, "admin@example.com")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if u.Role != user.RoleAdmin {
			t.Fatalf("got role %q, want admin", u.Role)
		}

		// second run is a no-op
		if err := EnsureAdminUser(ctx, store.Users, hasher, cfg, log); err != nil {
			t.Fatalf("reseed: %v", err)
		}
		if n, _ := store.Users.Count(ctx); n != 1 {
			t.Fatalf("got %d users, want 1", n)
		}
	})

	t.Run("skips when users exist", func(t *testing.T) {
		store := memory.NewStore()
		if _, err := store.Users.Create(ctx, user.User{Email: "ann@x.com", Name: "Ann", PasswordHash: "h"}); err != nil {
			t.Fatal(err)
		}

		if err := EnsureAdminUser(ctx, store.Users, hasher, cfg, log); err != nil {
			t.Fatalf("seed: %v", err)
		}
		if n, _ := store.Users.Count(ctx); n != 1 {
			t.Fatalf("got %d users, want 1", n)
		}
	})

	t.Run("disabled without credentials", func(t *testing.T) {
		store := memory.NewStore()
		if err := EnsureAdminUser(ctx, store.Users, hasher, config.Config{}, log); err != nil {
			t.Fatalf("seed: %v", err)
		}
		if n, _ := store.Users.Count(ctx); n != 0 {
			t.Fatalf("got %d users, want 0", n)
		}
	})
}

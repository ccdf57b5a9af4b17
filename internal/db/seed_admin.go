package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/geocoder89/inkwell/internal/config"
	"github.com/geocoder89/inkwell/internal/domain/user"
)

type AdminSeedStore interface {
	Count(ctx context.Context) (int, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// EnsureAdminUser registers the configured administrator when the user table is empty.
// The store promotes the first user to admin, so once anyone has registered this is a no-op.
func EnsureAdminUser(ctx context.Context, users AdminSeedStore, hasher PasswordHasher, cfg config.Config, log *slog.Logger) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))

	// check if the user exists
	_, err := users.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return err
	}

	n, err := users.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Warn("admin seed skipped: users already exist", "email", email)
		return nil
	}

	hash, err := hasher.Hash(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	now := time.Now().UTC()

	u, err := users.Create(ctx, user.User{
		Email:        email,
		PasswordHash: hash,
		Name:         cfg.AdminName,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return err
	}

	log.Info("admin user seeded", "user_id", u.ID, "role", u.Role)
	return nil
}

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/inkwell/internal/authz"
	"github.com/geocoder89/inkwell/internal/domain/user"
)

type Tokens struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// Sessions issues, rotates and revokes token pairs and resolves principals from access tokens.
type Sessions struct {
	jwt   *Manager
	store RefreshTokenStore
}

func NewSessions(jwtManager *Manager, store RefreshTokenStore) *Sessions {
	return &Sessions{jwt: jwtManager, store: store}
}

func (s *Sessions) Issue(ctx context.Context, u user.User) (Tokens, error) {
	access, err := s.jwt.GenerateAccessToken(u.ID, u.Email, u.Role)
	if err != nil {
		return Tokens{}, err
	}

	raw, jti, expiresAt, err := s.jwt.GenerateRefreshToken(u.ID, u.Email, u.Role)
	if err != nil {
		return Tokens{}, err
	}

	err = s.store.Create(ctx, RefreshToken{
		ID:        jti,
		UserID:    u.ID,
		TokenHash: s.jwt.HashRefreshToken(raw),
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return Tokens{}, err
	}

	return Tokens{AccessToken: access, RefreshToken: raw, RefreshExpiresAt: expiresAt}, nil
}

// Refresh rotates a refresh token. The presented token is revoked and can never be reused.
func (s *Sessions) Refresh(ctx context.Context, raw string) (Tokens, error) {
	claims, err := s.jwt.VerifyRefreshToken(raw)
	if err != nil {
		return Tokens{}, ErrRefreshTokenNotFound
	}

	userID, _ := claims.UserID()

	newRaw, newJTI, newExpiresAt, err := s.jwt.GenerateRefreshToken(userID, claims.Email, claims.Role)
	if err != nil {
		return Tokens{}, err
	}

	now := time.Now().UTC()
	next := RefreshToken{
		ID:        newJTI,
		UserID:    userID,
		TokenHash: s.jwt.HashRefreshToken(newRaw),
		ExpiresAt: newExpiresAt,
		CreatedAt: now,
	}

	if err := s.store.Rotate(ctx, claims.ID, s.jwt.HashRefreshToken(raw), now, next); err != nil {
		// a revoked token coming back means it leaked; end every session of that user
		if errors.Is(err, ErrRefreshTokenRevoked) {
			_ = s.store.RevokeAllForUser(ctx, userID)
		}
		return Tokens{}, err
	}

	access, err := s.jwt.GenerateAccessToken(userID, claims.Email, claims.Role)
	if err != nil {
		return Tokens{}, err
	}

	return Tokens{AccessToken: access, RefreshToken: newRaw, RefreshExpiresAt: newExpiresAt}, nil
}

// Revoke is idempotent; unknown or malformed tokens are ignored.
func (s *Sessions) Revoke(ctx context.Context, raw string) error {
	claims, err := s.jwt.VerifyRefreshToken(raw)
	if err != nil {
		return nil
	}
	return s.store.Revoke(ctx, claims.ID)
}

func (s *Sessions) Principal(accessToken string) (authz.Principal, error) {
	claims, err := s.jwt.VerifyAccessToken(accessToken)
	if err != nil {
		return authz.Anonymous(), err
	}

	userID, _ := claims.UserID()
	return authz.Authenticated(userID, claims.Role), nil
}

package auth

import (
	"context"
	"errors"
	"time"
)

var (
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenRevoked  = errors.New("refresh token revoked")
	ErrRefreshTokenExpired  = errors.New("refresh token expired")
	ErrRefreshTokenMismatch = errors.New("refresh token hash mismatch")
)

type RefreshToken struct {
	ID         string
	UserID     int64
	TokenHash  string
	ExpiresAt  time.Time
	RevokedAt  *time.Time
	ReplacedBy *string
	CreatedAt  time.Time
}

// RefreshTokenStore persists hashed refresh tokens. Rotate must lock the old row, check it
// is live and matches presentedHash, revoke it and insert next, all in one transaction.
type RefreshTokenStore interface {
	Create(ctx context.Context, t RefreshToken) error
	Rotate(ctx context.Context, oldID, presentedHash string, now time.Time, next RefreshToken) error
	Revoke(ctx context.Context, id string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
}

// CheckLive applies the rotation preconditions to a locked row.
func CheckLive(row RefreshToken, presentedHash string, now time.Time) error {
	if row.RevokedAt != nil {
		return ErrRefreshTokenRevoked
	}
	if now.After(row.ExpiresAt) {
		return ErrRefreshTokenExpired
	}
	// verify hash matches the presented token (prevents token substitution)
	if row.TokenHash != presentedHash {
		return ErrRefreshTokenMismatch
	}
	return nil
}

package memory

import (
	"context"
	"time"

	"github.com/geocoder89/inkwell/internal/auth"
)

type RefreshTokensRepo struct {
	t *tables
}

func (r *RefreshTokensRepo) Create(_ context.Context, t auth.RefreshToken) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	r.t.refreshTokens[t.ID] = t
	return nil
}

func (r *RefreshTokensRepo) Rotate(_ context.Context, oldID, presentedHash string, now time.Time, next auth.RefreshToken) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	row, ok := r.t.refreshTokens[oldID]
	if !ok {
		return auth.ErrRefreshTokenNotFound
	}

	if err := auth.CheckLive(row, presentedHash, now); err != nil {
		return err
	}

	revokedAt := now
	replacedBy := next.ID
	row.RevokedAt = &revokedAt
	row.ReplacedBy = &replacedBy

	r.t.refreshTokens[oldID] = row
	r.t.refreshTokens[next.ID] = next
	return nil
}

func (r *RefreshTokensRepo) Revoke(_ context.Context, id string) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	row, ok := r.t.refreshTokens[id]
	if !ok || row.RevokedAt != nil {
		return nil
	}

	now := time.Now().UTC()
	row.RevokedAt = &now
	r.t.refreshTokens[id] = row
	return nil
}

func (r *RefreshTokensRepo) RevokeAllForUser(_ context.Context, userID int64) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	now := time.Now().UTC()
	for id, row := range r.t.refreshTokens {
		if row.UserID == userID && row.RevokedAt == nil {
			row.RevokedAt = &now
			r.t.refreshTokens[id] = row
		}
	}
	return nil
}

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/inkwell/internal/auth"
	"github.com/geocoder89/inkwell/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RefreshTokensRepo struct {
	repo
}

func NewRefreshTokensRepo(pool *pgxpool.Pool, prom *observability.Prom) *RefreshTokensRepo {
	return &RefreshTokensRepo{repo{pool: pool, prom: prom}}
}

func (r *RefreshTokensRepo) Create(ctx context.Context, t auth.RefreshToken) error {
	return r.observe("refresh_tokens.create", func() error {
		_, err := r.pool.Exec(ctx, insertRefreshToken,
			t.ID, t.UserID, t.TokenHash, t.ExpiresAt, t.RevokedAt, t.ReplacedBy, t.CreatedAt,
		)
		return err
	})
}

const insertRefreshToken = `
	INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, revoked_at, replaced_by, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

// Rotate locks the presented row to prevent concurrent refresh races.
func (r *RefreshTokensRepo) Rotate(ctx context.Context, oldID, presentedHash string, now time.Time, next auth.RefreshToken) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		var row auth.RefreshToken

		err := r.observe("refresh_tokens.rotate.lock", func() error {
			return tx.QueryRow(ctx, `
				SELECT id, user_id, token_hash, expires_at, revoked_at, replaced_by, created_at
				FROM refresh_tokens
				WHERE id = $1
				FOR UPDATE`, oldID,
			).Scan(
				&row.ID,
				&row.UserID,
				&row.TokenHash,
				&row.ExpiresAt,
				&row.RevokedAt,
				&row.ReplacedBy,
				&row.CreatedAt,
			)
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return auth.ErrRefreshTokenNotFound
			}
			return err
		}

		if err := auth.CheckLive(row, presentedHash, now); err != nil {
			return err
		}

		err = r.observe("refresh_tokens.rotate.revoke", func() error {
			_, e := tx.Exec(ctx, `
				UPDATE refresh_tokens
				SET revoked_at = $2, replaced_by = $3
				WHERE id = $1`, oldID, now, next.ID)
			return e
		})
		if err != nil {
			return err
		}

		return r.observe("refresh_tokens.rotate.insert", func() error {
			_, e := tx.Exec(ctx, insertRefreshToken,
				next.ID, next.UserID, next.TokenHash, next.ExpiresAt, next.RevokedAt, next.ReplacedBy, next.CreatedAt,
			)
			return e
		})
	})
}

// Revoke is idempotent; unknown or already revoked ids are not an error.
func (r *RefreshTokensRepo) Revoke(ctx context.Context, id string) error {
	return r.observe("refresh_tokens.revoke", func() error {
		_, err := r.pool.Exec(ctx, `
			UPDATE refresh_tokens
			SET revoked_at = NOW()
			WHERE id = $1 AND revoked_at IS NULL`, id)
		return err
	})
}

func (r *RefreshTokensRepo) RevokeAllForUser(ctx context.Context, userID int64) error {
	return r.observe("refresh_tokens.revoke_all_for_user", func() error {
		_, err := r.pool.Exec(ctx, `
			UPDATE refresh_tokens
			SET revoked_at = NOW()
			WHERE user_id = $1 AND revoked_at IS NULL`, userID)
		return err
	})
}

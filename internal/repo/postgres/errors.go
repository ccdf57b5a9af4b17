package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/inkwell/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"

	constraintUsersEmail       = "users_email_key"
	constraintUsersSingleAdmin = "users_single_admin_idx"
	constraintPostsTitle       = "posts_title_key"
	constraintPostsAuthor      = "posts_author_id_fkey"
	constraintCommentsAuthor   = "comments_author_id_fkey"
)

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return true
	}
	return false
}

// violatedConstraint reports the constraint name of a unique or foreign key violation, or "".
func violatedConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == uniqueViolation || pgErr.Code == foreignKeyViolation) {
		return pgErr.ConstraintName
	}
	return ""
}

// repo is embedded by every repository. prom may be nil.
type repo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func (r repo) observe(op string, fn func() error) error {
	return r.prom.ObserveDB(op, fn)
}

// inTx runs fn in a transaction, committing only when fn succeeds.
func (r repo) inTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err = fn(tx); err != nil {
		return
	}

	err = tx.Commit(ctx)
	return
}

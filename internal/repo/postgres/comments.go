package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/inkwell/internal/domain/comment"
	"github.com/geocoder89/inkwell/internal/domain/post"
	"github.com/geocoder89/inkwell/internal/domain/user"
	"github.com/geocoder89/inkwell/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CommentsRepo struct {
	repo
}

func NewCommentsRepo(pool *pgxpool.Pool, prom *observability.Prom) *CommentsRepo {
	return &CommentsRepo{repo{pool: pool, prom: prom}}
}

// Create holds a share lock on the post so a concurrent delete cannot orphan the comment.
func (r *CommentsRepo) Create(ctx context.Context, c comment.Comment) (created comment.Comment, err error) {
	err = r.inTx(ctx, func(tx pgx.Tx) error {
		var postID int64
		err := r.observe("comments.create.post_lock", func() error {
			return tx.QueryRow(ctx, `SELECT id FROM posts WHERE id = $1 FOR SHARE`, c.PostID).Scan(&postID)
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return post.ErrNotFound
			}
			return err
		}

		return r.observe("comments.create.insert", func() error {
			return tx.QueryRow(ctx, `
				WITH ins AS (
					INSERT INTO comments (text, author_id, post_id, created_at)
					VALUES ($1, $2, $3, $4)
					RETURNING *
				)
				SELECT c.id, c.text, c.author_id, u.name, c.post_id, c.created_at
				FROM ins c
				JOIN users u ON u.id = c.author_id`,
				c.Text, c.AuthorID, c.PostID, c.CreatedAt,
			).Scan(
				&created.ID,
				&created.Text,
				&created.AuthorID,
				&created.AuthorName,
				&created.PostID,
				&created.CreatedAt,
			)
		})
	})

	if err != nil {
		if violatedConstraint(err) == constraintCommentsAuthor {
			err = user.ErrNotFound
		}
		return comment.Comment{}, err
	}
	return created, nil
}

func (r *CommentsRepo) ListByPost(ctx context.Context, postID int64) ([]comment.Comment, error) {
	out := make([]comment.Comment, 0)

	err := r.observe("comments.list_by_post", func() error {
		rows, e := r.pool.Query(ctx, `
			SELECT c.id, c.text, c.author_id, u.name, c.post_id, c.created_at
			FROM comments c
			JOIN users u ON u.id = c.author_id
			WHERE c.post_id = $1
			ORDER BY c.id ASC`, postID)
		if e != nil {
			return e
		}
		defer rows.Close()

		for rows.Next() {
			var c comment.Comment
			if e := rows.Scan(&c.ID, &c.Text, &c.AuthorID, &c.AuthorName, &c.PostID, &c.CreatedAt); e != nil {
				return e
			}
			out = append(out, c)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

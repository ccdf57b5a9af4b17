package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/inkwell/internal/domain/post"
	"github.com/geocoder89/inkwell/internal/domain/user"
	"github.com/geocoder89/inkwell/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostsRepo struct {
	repo
}

func NewPostsRepo(pool *pgxpool.Pool, prom *observability.Prom) *PostsRepo {
	return &PostsRepo{repo{pool: pool, prom: prom}}
}

const postSelect = `
	SELECT p.id, p.title, p.subtitle, p.body, p.image_url, p.author_id, u.name, p.created_at, p.updated_at
	FROM posts p
	JOIN users u ON u.id = p.author_id`

func scanPost(row pgx.Row) (post.Post, error) {
	var p post.Post
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Subtitle,
		&p.Body,
		&p.ImageURL,
		&p.AuthorID,
		&p.AuthorName,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func mapPostWriteErr(err error) error {
	switch violatedConstraint(err) {
	case constraintPostsTitle:
		return post.ErrDuplicateTitle
	case constraintPostsAuthor:
		return user.ErrNotFound
	}
	return err
}

func (r *PostsRepo) Create(ctx context.Context, p post.Post) (post.Post, error) {
	var created post.Post

	err := r.observe("posts.create", func() error {
		var e error
		created, e = scanPost(r.pool.QueryRow(ctx, `
			WITH ins AS (
				INSERT INTO posts (title, subtitle, body, image_url, author_id, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING *
			)
			SELECT p.id, p.title, p.subtitle, p.body, p.image_url, p.author_id, u.name, p.created_at, p.updated_at
			FROM ins p
			JOIN users u ON u.id = p.author_id`,
			p.Title, p.Subtitle, p.Body, p.ImageURL, p.AuthorID, p.CreatedAt, p.UpdatedAt,
		))
		return e
	})

	if err != nil {
		return post.Post{}, mapPostWriteErr(err)
	}
	return created, nil
}

func (r *PostsRepo) GetByID(ctx context.Context, id int64) (post.Post, error) {
	var p post.Post

	err := r.observe("posts.get_by_id", func() error {
		var e error
		p, e = scanPost(r.pool.QueryRow(ctx, postSelect+` WHERE p.id = $1`, id))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return post.Post{}, post.ErrNotFound
		}
		return post.Post{}, err
	}
	return p, nil
}

func (r *PostsRepo) List(ctx context.Context) ([]post.Post, error) {
	out := make([]post.Post, 0)

	err := r.observe("posts.list", func() error {
		rows, e := r.pool.Query(ctx, postSelect+` ORDER BY p.id ASC`)
		if e != nil {
			return e
		}
		defer rows.Close()

		for rows.Next() {
			p, e := scanPost(rows)
			if e != nil {
				return e
			}
			out = append(out, p)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update rewrites the editable fields only; author_id and created_at are never touched.
func (r *PostsRepo) Update(ctx context.Context, id int64, d post.Draft, now time.Time) (post.Post, error) {
	var updated post.Post

	err := r.observe("posts.update", func() error {
		var e error
		updated, e = scanPost(r.pool.QueryRow(ctx, `
			WITH upd AS (
				UPDATE posts
				SET title = $2, subtitle = $3, body = $4, image_url = $5, updated_at = $6
				WHERE id = $1
				RETURNING *
			)
			SELECT p.id, p.title, p.subtitle, p.body, p.image_url, p.author_id, u.name, p.created_at, p.updated_at
			FROM upd p
			JOIN users u ON u.id = p.author_id`,
			id, d.Title, d.Subtitle, d.Body, d.ImageURL, now,
		))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return post.Post{}, post.ErrNotFound
		}
		return post.Post{}, mapPostWriteErr(err)
	}
	return updated, nil
}

// Delete locks the post, removes its comments and then the post in one transaction.
func (r *PostsRepo) Delete(ctx context.Context, id int64) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		var locked int64
		err := r.observe("posts.delete.lock", func() error {
			return tx.QueryRow(ctx, `SELECT id FROM posts WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return post.ErrNotFound
			}
			return err
		}

		err = r.observe("posts.delete.comments", func() error {
			_, e := tx.Exec(ctx, `DELETE FROM comments WHERE post_id = $1`, id)
			return e
		})
		if err != nil {
			return err
		}

		return r.observe("posts.delete.post", func() error {
			_, e := tx.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
			return e
		})
	})
}

// Package blog holds the lifecycle managers of the blog: accounts, posts, comments and the
// contact dispatcher. Every mutating operation takes the acting principal explicitly and asks
// authz before touching storage.
package blog

import (
	"context"
	"time"

	"github.com/geocoder89/inkwell/internal/domain/comment"
	"github.com/geocoder89/inkwell/internal/domain/post"
	"github.com/geocoder89/inkwell/internal/domain/user"
)

// UserStore persists users. Create returns user.ErrDuplicateEmail on a taken email and, when
// u.Role is empty, assigns user.RoleAdmin to the first user of an empty store and
// user.RoleUser otherwise.
type UserStore interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
}

// PostStore persists posts. Create and Update return post.ErrDuplicateTitle when the title
// is taken by another post; Update and Delete return post.ErrNotFound for a missing id.
// Delete removes the post's comments in the same transaction.
type PostStore interface {
	Create(ctx context.Context, p post.Post) (post.Post, error)
	GetByID(ctx context.Context, id int64) (post.Post, error)
	List(ctx context.Context) ([]post.Post, error)
	Update(ctx context.Context, id int64, d post.Draft, now time.Time) (post.Post, error)
	Delete(ctx context.Context, id int64) error
}

// CommentStore persists comments. Create returns post.ErrNotFound when the post is absent
// at commit time.
type CommentStore interface {
	Create(ctx context.Context, c comment.Comment) (comment.Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]comment.Comment, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}

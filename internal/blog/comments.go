package blog

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/geocoder89/inkwell/internal/apperr"
	"github.com/geocoder89/inkwell/internal/authz"
	"github.com/geocoder89/inkwell/internal/domain/comment"
	"github.com/go-playground/validator/v10"
)

// Comments is the comment lifecycle manager. Comments are append-only.
type Comments struct {
	comments CommentStore
	posts    PostStore
	validate *validator.Validate
	log      *slog.Logger
	now      func() time.Time
}

func NewComments(comments CommentStore, posts PostStore, log *slog.Logger) *Comments {
	if log == nil {
		log = slog.Default()
	}
	return &Comments{
		comments: comments,
		posts:    posts,
		validate: newValidator(),
		log:      log,
		now:      time.Now,
	}
}

func (s *Comments) Add(ctx context.Context, p authz.Principal, postID int64, text string) (comment.Comment, error) {
	const op = "comments.add"

	if dec := authz.Authorize(p, authz.CreateComment); !dec.Allowed {
		return comment.Comment{}, apperr.Forbidden(op, dec.Reason)
	}

	req := comment.CreateCommentRequest{Text: strings.TrimSpace(text)}
	if err := validateInput(s.validate, op, req); err != nil {
		return comment.Comment{}, err
	}

	created, err := s.comments.Create(ctx, comment.New(postID, p.UserID, req.Text, s.now().UTC()))
	if err != nil {
		return comment.Comment{}, apperr.Storage(op, err)
	}

	s.log.InfoContext(ctx, "comment.added", "comment_id", created.ID, "post_id", postID, "author_id", p.UserID)
	return created, nil
}

// ListForPost returns the post's comments oldest first, or post.ErrNotFound.
func (s *Comments) ListForPost(ctx context.Context, postID int64) ([]comment.Comment, error) {
	const op = "comments.list_for_post"

	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, apperr.Storage(op, err)
	}

	out, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	return out, nil
}

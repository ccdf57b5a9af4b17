package memory

import (
	"context"
	"sort"

	"github.com/geocoder89/inkwell/internal/domain/comment"
	"github.com/geocoder89/inkwell/internal/domain/post"
	"github.com/geocoder89/inkwell/internal/domain/user"
)

type CommentsRepo struct {
	t *tables
}

func (r *CommentsRepo) Create(_ context.Context, c comment.Comment) (comment.Comment, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	if _, ok := r.t.posts[c.PostID]; !ok {
		return comment.Comment{}, post.ErrNotFound
	}
	if _, ok := r.t.users[c.AuthorID]; !ok {
		return comment.Comment{}, user.ErrNotFound
	}

	r.t.nextCommentID++
	c.ID = r.t.nextCommentID
	r.t.comments[c.ID] = c

	c.AuthorName = r.t.authorName(c.AuthorID)
	return c, nil
}

func (r *CommentsRepo) ListByPost(_ context.Context, postID int64) ([]comment.Comment, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()

	out := make([]comment.Comment, 0)
	for _, c := range r.t.comments {
		if c.PostID == postID {
			c.AuthorName = r.t.authorName(c.AuthorID)
			out = append(out, c)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Count reports every stored comment; used to check cascades.
func (r *CommentsRepo) Count(_ context.Context) int {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()

	return len(r.t.comments)
}

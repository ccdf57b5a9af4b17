// Package memory is a process-local Content Store with the same contract as the Postgres
// repositories. One mutex guards every table, so each operation is atomic.
package memory

import (
	"context"
	"sync"

	"github.com/geocoder89/inkwell/internal/auth"
	"github.com/geocoder89/inkwell/internal/domain/comment"
	"github.com/geocoder89/inkwell/internal/domain/post"
	"github.com/geocoder89/inkwell/internal/domain/user"
)

type tables struct {
	mu sync.RWMutex

	users      map[int64]user.User
	nextUserID int64

	posts      map[int64]post.Post
	nextPostID int64

	comments      map[int64]comment.Comment
	nextCommentID int64

	refreshTokens map[string]auth.RefreshToken
}

type Store struct {
	Users         *UsersRepo
	Posts         *PostsRepo
	Comments      *CommentsRepo
	RefreshTokens *RefreshTokensRepo
}

func NewStore() *Store {
	t := &tables{
		users:         make(map[int64]user.User),
		posts:         make(map[int64]post.Post),
		comments:      make(map[int64]comment.Comment),
		refreshTokens: make(map[string]auth.RefreshToken),
	}

	return &Store{
		Users:         &UsersRepo{t: t},
		Posts:         &PostsRepo{t: t},
		Comments:      &CommentsRepo{t: t},
		RefreshTokens: &RefreshTokensRepo{t: t},
	}
}

func (s *Store) Ping(context.Context) error {
	return nil
}

// caller holds t.mu
func (t *tables) authorName(id int64) string {
	return t.users[id].Name
}

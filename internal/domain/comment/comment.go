package comment

import (
	"time"

	"github.com/geocoder89/inkwell/internal/apperr"
)

type Comment struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	AuthorID   int64     `json:"authorId"`
	AuthorName string    `json:"authorName,omitempty"`
	PostID     int64     `json:"postId"`
	CreatedAt  time.Time `json:"createdAt"`
}

var ErrNotFound = apperr.New(apperr.ErrNotFound, "comment not found")

type CreateCommentRequest struct {
	Text string `json:"text" binding:"required,max=5000"`
}

func New(postID, authorID int64, text string, now time.Time) Comment {
	return Comment{
		Text:      text,
		AuthorID:  authorID,
		PostID:    postID,
		CreatedAt: now,
	}
}

type View struct {
	ID         int64  `json:"id"`
	Text       string `json:"text"`
	AuthorID   int64  `json:"authorId"`
	AuthorName string `json:"authorName,omitempty"`
	PostID     int64  `json:"postId"`
	CreatedAt  string `json:"createdAt"`
}

func (c Comment) ToView() View {
	return View{
		ID:         c.ID,
		Text:       c.Text,
		AuthorID:   c.AuthorID,
		AuthorName: c.AuthorName,
		PostID:     c.PostID,
		CreatedAt:  c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func ToViews(comments []Comment) []View {
	out := make([]View, 0, len(comments))
	for _, c := range comments {
		out = append(out, c.ToView())
	}
	return out
}

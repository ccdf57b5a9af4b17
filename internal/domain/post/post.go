package post

import (
	"time"

	"github.com/geocoder89/inkwell/internal/apperr"
)

// DateLayout renders CreatedAt the way the blog front page shows it.
const DateLayout = "January 02, 2006"

type Post struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Subtitle   string    `json:"subtitle"`
	Body       string    `json:"body"`
	ImageURL   string    `json:"imageUrl"`
	AuthorID   int64     `json:"authorId"`
	AuthorName string    `json:"authorName,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

var (
	ErrNotFound       = apperr.New(apperr.ErrNotFound, "post not found")
	ErrDuplicateTitle = apperr.New(apperr.ErrDuplicateTitle, "a post with this title already exists")
)

// Draft holds the editable fields of a post. Author and creation date are never part of it.
type Draft struct {
	Title    string `json:"title" binding:"required,max=250"`
	Subtitle string `json:"subtitle" binding:"required,max=250"`
	Body     string `json:"body" binding:"required"`
	ImageURL string `json:"imageUrl" binding:"required,url,max=250"`
}

type CreatePostRequest = Draft

type UpdatePostRequest = Draft

func NewFromDraft(d Draft, authorID int64, now time.Time) Post {
	return Post{
		Title:     d.Title,
		Subtitle:  d.Subtitle,
		Body:      d.Body,
		ImageURL:  d.ImageURL,
		AuthorID:  authorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Apply overwrites the editable fields and leaves AuthorID and CreatedAt untouched.
func (p Post) Apply(d Draft, now time.Time) Post {
	p.Title = d.Title
	p.Subtitle = d.Subtitle
	p.Body = d.Body
	p.ImageURL = d.ImageURL
	p.UpdatedAt = now
	return p
}

type View struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle"`
	Body       string `json:"body"`
	ImageURL   string `json:"imageUrl"`
	AuthorID   int64  `json:"authorId"`
	AuthorName string `json:"authorName,omitempty"`
	Date       string `json:"date"`
	CreatedAt  string `json:"createdAt"`
}

func (p Post) ToView() View {
	return View{
		ID:         p.ID,
		Title:      p.Title,
		Subtitle:   p.Subtitle,
		Body:       p.Body,
		ImageURL:   p.ImageURL,
		AuthorID:   p.AuthorID,
		AuthorName: p.AuthorName,
		Date:       p.CreatedAt.Format(DateLayout),
		CreatedAt:  p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func ToViews(posts []Post) []View {
	out := make([]View, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ToView())
	}
	return out
}

package memory

import (
	"context"
	"sort"
	"time"

	"github.com/geocoder89/inkwell/internal/domain/post"
	"github.com/geocoder89/inkwell/internal/domain/user"
)

type PostsRepo struct {
	t *tables
}

// caller holds t.mu
func (t *tables) titleTaken(title string, exceptID int64) bool {
	for id, p := range t.posts {
		if id != exceptID && p.Title == title {
			return true
		}
	}
	return false
}

func (r *PostsRepo) Create(_ context.Context, p post.Post) (post.Post, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	if _, ok := r.t.users[p.AuthorID]; !ok {
		return post.Post{}, user.ErrNotFound
	}

	if r.t.titleTaken(p.Title, 0) {
		return post.Post{}, post.ErrDuplicateTitle
	}

	r.t.nextPostID++
	p.ID = r.t.nextPostID
	r.t.posts[p.ID] = p

	p.AuthorName = r.t.authorName(p.AuthorID)
	return p, nil
}

func (r *PostsRepo) GetByID(_ context.Context, id int64) (post.Post, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()

	p, ok := r.t.posts[id]
	if !ok {
		return post.Post{}, post.ErrNotFound
	}

	p.AuthorName = r.t.authorName(p.AuthorID)
	return p, nil
}

func (r *PostsRepo) List(_ context.Context) ([]post.Post, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()

	out := make([]post.Post, 0, len(r.t.posts))
	for _, p := range r.t.posts {
		p.AuthorName = r.t.authorName(p.AuthorID)
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *PostsRepo) Update(_ context.Context, id int64, d post.Draft, now time.Time) (post.Post, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	existing, ok := r.t.posts[id]
	if !ok {
		return post.Post{}, post.ErrNotFound
	}

	if r.t.titleTaken(d.Title, id) {
		return post.Post{}, post.ErrDuplicateTitle
	}

	updated := existing.Apply(d, now)
	r.t.posts[id] = updated

	updated.AuthorName = r.t.authorName(updated.AuthorID)
	return updated, nil
}

func (r *PostsRepo) Delete(_ context.Context, id int64) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	if _, ok := r.t.posts[id]; !ok {
		return post.ErrNotFound
	}

	for cid, c := range r.t.comments {
		if c.PostID == id {
			delete(r.t.comments, cid)
		}
	}
	delete(r.t.posts, id)

	return nil
}

package blog

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/geocoder89/inkwell/internal/apperr"
	"github.com/geocoder89/inkwell/internal/authz"
	"github.com/geocoder89/inkwell/internal/cache"
	"github.com/geocoder89/inkwell/internal/domain/post"
	"github.com/go-playground/validator/v10"
)

// Posts is the post lifecycle manager. The cache is optional.
//
// Reads fill the cache only if no invalidation ran since they started, so a read that saw a
// row before an edit or delete cannot put it back. The guard is per process; with a shared
// Redis cache another replica can still serve a stale entry until CACHE_TTL_SECONDS expires.
type Posts struct {
	store    PostStore
	cache    cache.Cache
	validate *validator.Validate
	log      *slog.Logger
	now      func() time.Time

	fillMu     sync.RWMutex
	generation uint64
}

func NewPosts(store PostStore, c cache.Cache, log *slog.Logger) *Posts {
	if log == nil {
		log = slog.Default()
	}
	return &Posts{
		store:    store,
		cache:    c,
		validate: newValidator(),
		log:      log,
		now:      time.Now,
	}
}

func (s *Posts) Create(ctx context.Context, p authz.Principal, d post.Draft) (post.Post, error) {
	const op = "posts.create"

	if dec := authz.Authorize(p, authz.CreatePost); !dec.Allowed {
		return post.Post{}, apperr.Forbidden(op, dec.Reason)
	}

	d = normalizeDraft(d)
	if err := validateInput(s.validate, op, d); err != nil {
		return post.Post{}, err
	}

	created, err := s.store.Create(ctx, post.NewFromDraft(d, p.UserID, s.now().UTC()))
	if err != nil {
		return post.Post{}, apperr.Storage(op, err)
	}

	s.invalidate(ctx, cache.PostListKey())
	s.log.InfoContext(ctx, "post.created", "post_id", created.ID, "author_id", created.AuthorID)

	return created, nil
}

func (s *Posts) Get(ctx context.Context, id int64) (post.Post, error) {
	const op = "posts.get"

	var cached post.Post
	if s.lookup(ctx, cache.PostKey(id), &cached) {
		return cached, nil
	}

	gen := s.currentGeneration()
	found, err := s.store.GetByID(ctx, id)
	if err != nil {
		return post.Post{}, apperr.Storage(op, err)
	}

	s.remember(ctx, gen, cache.PostKey(id), found)
	return found, nil
}

// ListAll returns every post in id (creation) order.
func (s *Posts) ListAll(ctx context.Context) ([]post.Post, error) {
	const op = "posts.list_all"

	var cached []post.Post
	if s.lookup(ctx, cache.PostListKey(), &cached) {
		return cached, nil
	}

	gen := s.currentGeneration()
	posts, err := s.store.List(ctx)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}

	s.remember(ctx, gen, cache.PostListKey(), posts)
	return posts, nil
}

func (s *Posts) Edit(ctx context.Context, p authz.Principal, id int64, d post.Draft) (post.Post, error) {
	const op = "posts.edit"

	if dec := authz.Authorize(p, authz.EditPost); !dec.Allowed {
		return post.Post{}, apperr.Forbidden(op, dec.Reason)
	}

	d = normalizeDraft(d)
	if err := validateInput(s.validate, op, d); err != nil {
		return post.Post{}, err
	}

	updated, err := s.store.Update(ctx, id, d, s.now().UTC())
	if err != nil {
		return post.Post{}, apperr.Storage(op, err)
	}

	s.invalidate(ctx, cache.PostListKey(), cache.PostKey(id))
	s.log.InfoContext(ctx, "post.edited", "post_id", id, "editor_id", p.UserID)

	return updated, nil
}

func (s *Posts) Delete(ctx context.Context, p authz.Principal, id int64) error {
	const op = "posts.delete"

	if dec := authz.Authorize(p, authz.DeletePost); !dec.Allowed {
		return apperr.Forbidden(op, dec.Reason)
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return apperr.Storage(op, err)
	}

	s.invalidate(ctx, cache.PostListKey(), cache.PostKey(id))
	s.log.InfoContext(ctx, "post.deleted", "post_id", id, "deleted_by", p.UserID)

	return nil
}

func normalizeDraft(d post.Draft) post.Draft {
	d.Title = strings.TrimSpace(d.Title)
	d.Subtitle = strings.TrimSpace(d.Subtitle)
	d.ImageURL = strings.TrimSpace(d.ImageURL)
	return d
}

// cache failures are logged and otherwise ignored; storage stays the source of truth.

func (s *Posts) lookup(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}

	hit, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		s.log.WarnContext(ctx, "cache.get_failed", "key", key, "err", err)
		return false
	}
	return hit
}

func (s *Posts) currentGeneration() uint64 {
	s.fillMu.RLock()
	defer s.fillMu.RUnlock()
	return s.generation
}

// remember stores val unless an invalidation ran after the read that produced it began.
func (s *Posts) remember(ctx context.Context, gen uint64, key string, val any) {
	if s.cache == nil {
		return
	}

	s.fillMu.RLock()
	defer s.fillMu.RUnlock()

	if s.generation != gen {
		return
	}
	if err := s.cache.Set(ctx, key, val); err != nil {
		s.log.WarnContext(ctx, "cache.set_failed", "key", key, "err", err)
	}
}

func (s *Posts) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}

	s.fillMu.Lock()
	defer s.fillMu.Unlock()

	s.generation++
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.WarnContext(ctx, "cache.delete_failed", "keys", keys, "err", err)
	}
}

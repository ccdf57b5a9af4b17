package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/inkwell/internal/apperr"
	"github.com/geocoder89/inkwell/internal/authz"
	"github.com/geocoder89/inkwell/internal/domain/comment"
	"github.com/geocoder89/inkwell/internal/domain/post"
	"github.com/geocoder89/inkwell/internal/http/handlers"
	"github.com/geocoder89/inkwell/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

type fakePostService struct {
	createFn func(ctx context.Context, p authz.Principal, d post.Draft) (post.Post, error)
	getFn    func(ctx context.Context, id int64) (post.Post, error)
	listFn   func(ctx context.Context) ([]post.Post, error)
	editFn   func(ctx context.Context, p authz.Principal, id int64, d post.Draft) (post.Post, error)
	deleteFn func(ctx context.Context, p authz.Principal, id int64) error
}

func (f *fakePostService) Create(ctx context.Context, p authz.Principal, d post.Draft) (post.Post, error) {
	if f.createFn != nil {
		return f.createFn(ctx, p, d)
	}
	return post.Post{}, nil
}

func (f *fakePostService) Get(ctx context.Context, id int64) (post.Post, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return post.Post{}, nil
}

func (f *fakePostService) ListAll(ctx context.Context) ([]post.Post, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return nil, nil
}

func (f *fakePostService) Edit(ctx context.Context, p authz.Principal, id int64, d post.Draft) (post.Post, error) {
	if f.editFn != nil {
		return f.editFn(ctx, p, id, d)
	}
	return post.Post{}, nil
}

func (f *fakePostService) Delete(ctx context.Context, p authz.Principal, id int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, p, id)
	}
	return nil
}

type fakeCommentService struct {
	addFn  func(ctx context.Context, p authz.Principal, postID int64, text string) (comment.Comment, error)
	listFn func(ctx context.Context, postID int64) ([]comment.Comment, error)
}

func (f *fakeCommentService) Add(ctx context.Context, p authz.Principal, postID int64, text string) (comment.Comment, error) {
	if f.addFn != nil {
		return f.addFn(ctx, p, postID, text)
	}
	return comment.Comment{}, nil
}

func (f *fakeCommentService) ListForPost(ctx context.Context, postID int64) ([]comment.Comment, error) {
	if f.listFn != nil {
		return f.listFn(ctx, postID)
	}
	return nil, nil
}

// small helper which returns a gin engine mounting one handler, acting as principal p

func setupRouter(method, path string, p authz.Principal, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Use(func(c *gin.Context) {
		middlewares.SetPrincipal(c, p)
		c.Next()
	})
	r.Handle(method, path, h)

	return r
}

type errorResponse struct {
	Error handlers.APIError `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) handlers.APIError {
	t.Helper()

	var resp errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v body=%s", err, w.Body.String())
	}
	return resp.Error
}

var (
	admin  = authz.Authenticated(1, "admin")
	reader = authz.Authenticated(2, "user")
)

const validPostBody = `{
	"title": "Hello",
	"subtitle": "First post",
	"body": "<p>hi</p>",
	"imageUrl": "https://images.example.com/hello.jpg"
}`

func TestCreatePostHandler(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name           string
		principal      authz.Principal
		body           string
		serviceSetUp   func(*fakePostService)
		wantStatusCode int
		wantCode       string
	}{
		{
			name:      "success",
			principal: admin,
			body:      validPostBody,
			serviceSetUp: func(f *fakePostService) {
				f.createFn = func(ctx context.Context, p authz.Principal, d post.Draft) (post.Post, error) {
					return post.NewFromDraft(d, p.UserID, created), nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:      "forbidden for non admin",
			principal: reader,
			body:      validPostBody,
			serviceSetUp: func(f *fakePostService) {
				f.createFn = func(ctx context.Context, p authz.Principal, d post.Draft) (post.Post, error) {
					return post.Post{}, apperr.Forbidden("posts.create", authz.ReasonForbidden)
				}
			},
			wantStatusCode: http.StatusForbidden,
			wantCode:       "forbidden",
		},
		{
			name:      "duplicate title",
			principal: admin,
			body:      validPostBody,
			serviceSetUp: func(f *fakePostService) {
				f.createFn = func(ctx context.Context, p authz.Principal, d post.Draft) (post.Post, error) {
					return post.Post{}, post.ErrDuplicateTitle
				}
			},
			wantStatusCode: http.StatusConflict,
			wantCode:       "duplicate_title",
		},
		{
			name:           "invalid body",
			principal:      admin,
			body:           `{"title": ""}`,
			serviceSetUp:   func(f *fakePostService) {},
			wantStatusCode: http.StatusBadRequest,
			wantCode:       "invalid_request",
		},
		{
			name:      "storage failure",
			principal: admin,
			body:      validPostBody,
			serviceSetUp: func(f *fakePostService) {
				f.createFn = func(ctx context.Context, p authz.Principal, d post.Draft) (post.Post, error) {
					return post.Post{}, apperr.Storage("posts.create", errors.New("connection reset"))
				}
			},
			wantStatusCode: http.StatusInternalServerError,
			wantCode:       "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakePostService{}
			tt.serviceSetUp(svc)

			h := handlers.NewPostsHandler(svc, &fakeCommentService{})
			r := setupRouter(http.MethodPost, "/posts", tt.principal, h.CreatePost)

			req := httptest.NewRequest(http.MethodPost, "/posts", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantCode != "" {
				if got := decodeError(t, w).Code; got != tt.wantCode {
					t.Fatalf("got error code %q, want %q", got, tt.wantCode)
				}
				return
			}

			var view post.View
			if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if view.Title != "Hello" || view.AuthorID != admin.UserID {
				t.Fatalf("unexpected view: %+v", view)
			}
			if view.Date != "January 02, 2026" {
				t.Fatalf("got display date %q", view.Date)
			}
			if w.Header().Get("Location") == "" {
				t.Fatalf("expected Location header")
			}
		})
	}
}

func TestGetPostHandler(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		wantStatusCode int
		wantComments   int
	}{
		{name: "found with comments", path: "/posts/1", wantStatusCode: http.StatusOK, wantComments: 2},
		{name: "missing", path: "/posts/99", wantStatusCode: http.StatusNotFound},
		{name: "non numeric id", path: "/posts/abc", wantStatusCode: http.StatusNotFound},
	}

	posts := &fakePostService{getFn: func(ctx context.Context, id int64) (post.Post, error) {
		if id != 1 {
			return post.Post{}, post.ErrNotFound
		}
		return post.Post{ID: 1, Title: "Hello", AuthorID: 1, AuthorName: "Ann"}, nil
	}}
	comments := &fakeCommentService{listFn: func(ctx context.Context, postID int64) ([]comment.Comment, error) {
		return []comment.Comment{
			{ID: 1, Text: "first", PostID: postID, AuthorID: 2},
			{ID: 2, Text: "second", PostID: postID, AuthorID: 3},
		}, nil
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewPostsHandler(posts, comments)
			r := setupRouter(http.MethodGet, "/posts/:id", authz.Anonymous(), h.GetPost)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
			if tt.wantStatusCode != http.StatusOK {
				if got := decodeError(t, w).Code; got != "not_found" {
					t.Fatalf("got error code %q", got)
				}
				return
			}

			var resp struct {
				Post     post.View      `json:"post"`
				Comments []comment.View `json:"comments"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Post.ID != 1 || len(resp.Comments) != tt.wantComments {
				t.Fatalf("unexpected response: %+v", resp)
			}
		})
	}
}

func TestListPostsHandler_ETag(t *testing.T) {
	posts := &fakePostService{listFn: func(ctx context.Context) ([]post.Post, error) {
		return []post.Post{{ID: 1, Title: "One"}, {ID: 2, Title: "Two"}}, nil
	}}

	h := handlers.NewPostsHandler(posts, &fakeCommentService{})
	r := setupRouter(http.MethodGet, "/posts", authz.Anonymous(), h.ListPosts)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/posts", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d", w.Code)
	}
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("expected an ETag")
	}

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotModified {
		t.Fatalf("got status %d, want 304", w.Code)
	}
}

func TestUpdatePostHandler_PassesIDAndDraft(t *testing.T) {
	var gotID int64
	var gotDraft post.Draft

	posts := &fakePostService{editFn: func(ctx context.Context, p authz.Principal, id int64, d post.Draft) (post.Post, error) {
		gotID, gotDraft = id, d
		return post.Post{ID: id, Title: d.Title, ImageURL: d.ImageURL, AuthorID: 1}, nil
	}}

	h := handlers.NewPostsHandler(posts, &fakeCommentService{})
	r := setupRouter(http.MethodPut, "/posts/:id", admin, h.UpdatePost)

	req := httptest.NewRequest(http.MethodPut, "/posts/7", bytes.NewBufferString(validPostBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}
	if gotID != 7 {
		t.Fatalf("got id %d, want 7", gotID)
	}
	if gotDraft.ImageURL != "https://images.example.com/hello.jpg" {
		t.Fatalf("image url not taken from imageUrl field: %+v", gotDraft)
	}
}

func TestDeletePostHandler(t *testing.T) {
	tests := []struct {
		name           string
		principal      authz.Principal
		err            error
		wantStatusCode int
	}{
		{"admin deletes", admin, nil, http.StatusNoContent},
		{"anonymous forbidden", authz.Anonymous(), apperr.Forbidden("posts.delete", authz.ReasonAuthRequired), http.StatusForbidden},
		{"missing post", admin, post.ErrNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts := &fakePostService{deleteFn: func(ctx context.Context, p authz.Principal, id int64) error {
				return tt.err
			}}

			h := handlers.NewPostsHandler(posts, &fakeCommentService{})
			r := setupRouter(http.MethodDelete, "/posts/:id", tt.principal, h.DeletePost)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/posts/3", nil))

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d", w.Code, tt.wantStatusCode)
			}
		})
	}
}

func TestAddCommentHandler(t *testing.T) {
	tests := []struct {
		name           string
		principal      authz.Principal
		body           string
		err            error
		wantStatusCode int
	}{
		{"reader comments", reader, `{"text":"nice"}`, nil, http.StatusCreated},
		{"anonymous forbidden", authz.Anonymous(), `{"text":"nice"}`, apperr.Forbidden("comments.add", authz.ReasonAuthRequired), http.StatusForbidden},
		{"missing post", reader, `{"text":"nice"}`, post.ErrNotFound, http.StatusNotFound},
		{"empty text", reader, `{"text":""}`, nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comments := &fakeCommentService{addFn: func(ctx context.Context, p authz.Principal, postID int64, text string) (comment.Comment, error) {
				if tt.err != nil {
					return comment.Comment{}, tt.err
				}
				return comment.Comment{ID: 1, Text: text, PostID: postID, AuthorID: p.UserID}, nil
			}}

			h := handlers.NewPostsHandler(&fakePostService{}, comments)
			r := setupRouter(http.MethodPost, "/posts/:id/comments", tt.principal, h.AddComment)

			req := httptest.NewRequest(http.MethodPost, "/posts/5/comments", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode == http.StatusCreated {
				var view comment.View
				_ = json.Unmarshal(w.Body.Bytes(), &view)
				if view.AuthorID != reader.UserID || view.PostID != 5 {
					t.Fatalf("unexpected comment: %+v", view)
				}
			}
		})
	}
}

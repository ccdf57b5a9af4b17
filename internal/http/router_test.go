package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/geocoder89/inkwell/internal/auth"
	"github.com/geocoder89/inkwell/internal/blog"
	"github.com/geocoder89/inkwell/internal/cache"
	httpx "github.com/geocoder89/inkwell/internal/http"
	"github.com/geocoder89/inkwell/internal/notifications"
	"github.com/geocoder89/inkwell/internal/repo/memory"
	"github.com/geocoder89/inkwell/internal/security"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type stubMailer struct {
	err  error
	sent []notifications.Email
}

func (m *stubMailer) Send(ctx context.Context, email notifications.Email) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, email)
	return nil
}

type testServer struct {
	router *gin.Engine
	store  *memory.Store
	mailer *stubMailer
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	mailer := &stubMailer{}

	sessions := auth.NewSessions(auth.NewManager("test-secret", time.Minute, time.Hour), store.RefreshTokens)

	router := httpx.NewRouter(log, httpx.Options{Env: "test"}, httpx.Deps{
		Accounts: blog.NewAccounts(store.Users, security.NewHasher(bcrypt.MinCost), log),
		Sessions: sessions,
		Posts:    blog.NewPosts(store.Posts, cache.NewMemory(time.Minute), log),
		Comments: blog.NewComments(store.Comments, store.Posts, log),
		Contact:  blog.NewContact(mailer, "blog@example.com", "owner@example.com", log),
		Ping:     store.Ping,
	})

	return testServer{router: router, store: store, mailer: mailer}
}

func (s testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s testServer) register(t *testing.T, name, email string) string {
	t.Helper()

	w := s.do(http.MethodPost, "/auth/register", "", `{"name":"`+name+`","email":"`+email+`","password":"p1"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body=%s", email, w.Code, w.Body.String())
	}

	var resp struct {
		AccessToken string `json:"accessToken"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return resp.AccessToken
}

const helloPost = `{"title":"Hello","subtitle":"Sub","body":"<p>hi</p>","imageUrl":"https://img.example.com/a.png"}`

func TestRouter_DuplicateRegistration(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "Ann", "ann@x.com")

	w := s.do(http.MethodPost, "/auth/register", "", `{"name":"Ann","email":"ann@x.com","password":"p2"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("got %d, want 409", w.Code)
	}

	if n, _ := s.store.Users.Count(context.Background()); n != 1 {
		t.Fatalf("got %d users, want 1", n)
	}
}

func TestRouter_PostLifecycle(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.register(t, "Ann", "ann@x.com")
	readerToken := s.register(t, "Bo", "bo@x.com")

	w := s.do(http.MethodPost, "/posts", adminToken, helloPost)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var created struct {
		ID       int64 `json:"id"`
		AuthorID int64 `json:"authorId"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &created)
	postPath := "/posts/" + strconv.FormatInt(created.ID, 10)

	// a second user cannot edit or delete
	if w := s.do(http.MethodPut, postPath, readerToken, helloPost); w.Code != http.StatusForbidden {
		t.Fatalf("reader edit: got %d, want 403", w.Code)
	}
	if w := s.do(http.MethodDelete, postPath, readerToken, ""); w.Code != http.StatusForbidden {
		t.Fatalf("reader delete: got %d, want 403", w.Code)
	}
	if w := s.do(http.MethodPost, "/posts", "", helloPost); w.Code != http.StatusForbidden {
		t.Fatalf("anonymous create: got %d, want 403", w.Code)
	}

	// duplicate title
	if w := s.do(http.MethodPost, "/posts", adminToken, helloPost); w.Code != http.StatusConflict {
		t.Fatalf("duplicate: got %d, want 409", w.Code)
	}

	// reader comments, anonymous cannot
	if w := s.do(http.MethodPost, postPath+"/comments", readerToken, `{"text":"nice"}`); w.Code != http.StatusCreated {
		t.Fatalf("comment: got %d %s", w.Code, w.Body.String())
	}
	if w := s.do(http.MethodPost, postPath+"/comments", "", `{"text":"anon"}`); w.Code != http.StatusForbidden {
		t.Fatalf("anonymous comment: got %d, want 403", w.Code)
	}

	w = s.do(http.MethodGet, postPath, "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get: %d", w.Code)
	}
	var detail struct {
		Comments []struct {
			AuthorName string `json:"authorName"`
		} `json:"comments"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &detail)
	if len(detail.Comments) != 1 || detail.Comments[0].AuthorName != "Bo" {
		t.Fatalf("unexpected comments: %s", w.Body.String())
	}

	// admin edits, author and date survive
	edited := `{"title":"Hello again","subtitle":"Sub","body":"<p>edited</p>","imageUrl":"https://img.example.com/b.png"}`
	w = s.do(http.MethodPut, postPath, adminToken, edited)
	if w.Code != http.StatusOK {
		t.Fatalf("edit: %d %s", w.Code, w.Body.String())
	}
	var after struct {
		AuthorID int64  `json:"authorId"`
		Title    string `json:"title"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &after)
	if after.AuthorID != created.AuthorID || after.Title != "Hello again" {
		t.Fatalf("unexpected edit result: %s", w.Body.String())
	}

	// delete cascades comments
	if w := s.do(http.MethodDelete, postPath, adminToken, ""); w.Code != http.StatusNoContent {
		t.Fatalf("delete: got %d", w.Code)
	}
	if w := s.do(http.MethodGet, postPath, "", ""); w.Code != http.StatusNotFound {
		t.Fatalf("get after delete: got %d", w.Code)
	}
	if n := s.store.Comments.Count(context.Background()); n != 0 {
		t.Fatalf("got %d orphan comments", n)
	}
}

func TestRouter_Contact(t *testing.T) {
	s := newTestServer(t)
	body := `{"name":"Bo","email":"bo@x.com","phone":"555","message":"hi"}`

	if w := s.do(http.MethodPost, "/contact", "", body); w.Code != http.StatusOK {
		t.Fatalf("contact: got %d %s", w.Code, w.Body.String())
	}
	if len(s.mailer.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(s.mailer.sent))
	}

	s.mailer.err = errors.New("dial tcp: connection refused")
	if w := s.do(http.MethodPost, "/contact", "", body); w.Code != http.StatusBadGateway {
		t.Fatalf("contact with smtp down: got %d, want 502", w.Code)
	}
}

func TestRouter_MeAndInvalidToken(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "Ann", "ann@x.com")

	if w := s.do(http.MethodGet, "/auth/me", token, ""); w.Code != http.StatusOK {
		t.Fatalf("me: got %d", w.Code)
	}
	if w := s.do(http.MethodGet, "/auth/me", "", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous me: got %d, want 401", w.Code)
	}
	if w := s.do(http.MethodGet, "/posts", "not-a-jwt", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: got %d, want 401", w.Code)
	}
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		if w := s.do(http.MethodGet, path, "", ""); w.Code != http.StatusOK {
			t.Fatalf("%s: got %d", path, w.Code)
		}
	}
}

package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/geocoder89/inkwell/internal/authz"
	"github.com/geocoder89/inkwell/internal/domain/comment"
	"github.com/geocoder89/inkwell/internal/domain/post"
	"github.com/geocoder89/inkwell/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type PostService interface {
	Create(ctx context.Context, p authz.Principal, d post.Draft) (post.Post, error)
	Get(ctx context.Context, id int64) (post.Post, error)
	ListAll(ctx context.Context) ([]post.Post, error)
	Edit(ctx context.Context, p authz.Principal, id int64, d post.Draft) (post.Post, error)
	Delete(ctx context.Context, p authz.Principal, id int64) error
}

type CommentService interface {
	Add(ctx context.Context, p authz.Principal, postID int64, text string) (comment.Comment, error)
	ListForPost(ctx context.Context, postID int64) ([]comment.Comment, error)
}

type PostsHandler struct {
	posts    PostService
	comments CommentService
}

func NewPostsHandler(posts PostService, comments CommentService) *PostsHandler {
	return &PostsHandler{posts: posts, comments: comments}
}

type postDetail struct {
	Post     post.View      `json:"post"`
	Comments []comment.View `json:"comments"`
}

// postID parses the :id path parameter. Anything that is not a positive integer is a missing post.
func postID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondNotFound(ctx, post.ErrNotFound.Msg)
		return 0, false
	}
	return id, true
}

func (h *PostsHandler) ListPosts(ctx *gin.Context) {
	cctx, cancel := withTimeout(ctx, readTimeout)
	defer cancel()

	posts, err := h.posts.ListAll(cctx)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"items": post.ToViews(posts),
		"count": len(posts),
	})
}

func (h *PostsHandler) GetPost(ctx *gin.Context) {
	id, ok := postID(ctx)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx, readTimeout)
	defer cancel()

	p, err := h.posts.Get(cctx, id)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	comments, err := h.comments.ListForPost(cctx, id)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, postDetail{
		Post:     p.ToView(),
		Comments: comment.ToViews(comments),
	})
}

func (h *PostsHandler) CreatePost(ctx *gin.Context) {
	var req post.CreatePostRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx, writeTimeout)
	defer cancel()

	created, err := h.posts.Create(cctx, middlewares.PrincipalFromContext(ctx), req)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.Header("Location", "/posts/"+strconv.FormatInt(created.ID, 10))
	ctx.JSON(http.StatusCreated, created.ToView())
}

func (h *PostsHandler) UpdatePost(ctx *gin.Context) {
	id, ok := postID(ctx)
	if !ok {
		return
	}

	var req post.UpdatePostRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx, writeTimeout)
	defer cancel()

	updated, err := h.posts.Edit(cctx, middlewares.PrincipalFromContext(ctx), id, req)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, updated.ToView())
}

func (h *PostsHandler) DeletePost(ctx *gin.Context) {
	id, ok := postID(ctx)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx, writeTimeout)
	defer cancel()

	if err := h.posts.Delete(cctx, middlewares.PrincipalFromContext(ctx), id); err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *PostsHandler) ListComments(ctx *gin.Context) {
	id, ok := postID(ctx)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx, readTimeout)
	defer cancel()

	comments, err := h.comments.ListForPost(cctx, id)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"items": comment.ToViews(comments),
		"count": len(comments),
	})
}

func (h *PostsHandler) AddComment(ctx *gin.Context) {
	id, ok := postID(ctx)
	if !ok {
		return
	}

	var req comment.CreateCommentRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx, writeTimeout)
	defer cancel()

	created, err := h.comments.Add(cctx, middlewares.PrincipalFromContext(ctx), id, req.Text)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, created.ToView())
}

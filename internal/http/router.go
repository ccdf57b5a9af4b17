package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/geocoder89/inkwell/internal/authz"
	"github.com/geocoder89/inkwell/internal/http/handlers"
	"github.com/geocoder89/inkwell/internal/http/middlewares"
	"github.com/geocoder89/inkwell/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const (
	serviceName  = "inkwell-api"
	maxBodyBytes = 1 << 20
)

type Options struct {
	Env            string
	AllowedOrigins []string
	Tracing        bool
	// LoginLimit and ContactLimit are requests per minute per client; zero disables the limiter.
	LoginLimit   int
	ContactLimit int
}

// Deps are the services behind the routes. Ping and Prom are optional.
type Deps struct {
	Accounts handlers.AccountService
	Sessions interface {
		handlers.SessionService
		middlewares.PrincipalResolver
	}
	Posts    handlers.PostService
	Comments handlers.CommentService
	Contact  handlers.ContactService
	Ping     func(ctx context.Context) error
	Prom     *observability.Prom
}

func NewRouter(log *slog.Logger, opts Options, deps Deps) *gin.Engine {
	if opts.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	if opts.Tracing {
		r.Use(otelgin.Middleware(serviceName))
	}
	r.Use(middlewares.RequestID())
	r.Use(middlewares.SecurityHeaders(opts.Env == "prod"))
	r.Use(middlewares.CORSMiddleware(opts.AllowedOrigins))
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))

	authMW := middlewares.NewAuthMiddleware(deps.Sessions)
	r.Use(authMW.ResolvePrincipal())
	r.Use(middlewares.RequestLogger(log))

	// health
	h := handlers.NewHealthHandler(deps.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Prom != nil {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	jsonBody := middlewares.RequireJSON()

	// auth
	authHandler := handlers.NewAuthHandler(deps.Accounts, deps.Sessions, opts.Env, log)
	authGroup := r.Group("/auth")
	authGroup.POST("/register", jsonBody, authHandler.Register)
	authGroup.POST("/login", limit(opts.LoginLimit, middlewares.KeyByIP), jsonBody, authHandler.Login)
	authGroup.POST("/refresh", authHandler.Refresh)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/me", authMW.RequireAuth(), authHandler.Me)

	// posts and comments
	postsHandler := handlers.NewPostsHandler(deps.Posts, deps.Comments)
	r.GET("/posts", postsHandler.ListPosts)
	r.GET("/posts/:id", postsHandler.GetPost)
	r.POST("/posts", middlewares.Authorize(authz.CreatePost), jsonBody, postsHandler.CreatePost)
	r.PUT("/posts/:id", middlewares.Authorize(authz.EditPost), jsonBody, postsHandler.UpdatePost)
	r.DELETE("/posts/:id", middlewares.Authorize(authz.DeletePost), postsHandler.DeletePost)
	r.GET("/posts/:id/comments", postsHandler.ListComments)
	r.POST("/posts/:id/comments", middlewares.Authorize(authz.CreateComment), jsonBody, postsHandler.AddComment)

	// contact
	contactHandler := handlers.NewContactHandler(deps.Contact)
	r.POST("/contact", limit(opts.ContactLimit, middlewares.KeyByUserOrIP), jsonBody, contactHandler.Submit)

	return r
}

func limit(perMinute int, key func(*gin.Context) string) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return middlewares.NewRateLimiter(perMinute, time.Minute).RateLimiterMiddleware(key)
}

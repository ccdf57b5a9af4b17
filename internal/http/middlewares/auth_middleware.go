package middlewares

import (
	"net/http"
	"strings"

	"github.com/geocoder89/inkwell/internal/actorctx"
	"github.com/geocoder89/inkwell/internal/authz"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type PrincipalResolver interface {
	Principal(accessToken string) (authz.Principal, error)
}

type AuthMiddleware struct {
	sessions PrincipalResolver
}

func NewAuthMiddleware(sessions PrincipalResolver) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// ResolvePrincipal attaches the caller's principal to the request. A request without a bearer
// token continues as anonymous; a bearer token that does not verify is rejected with 401.
func (m *AuthMiddleware) ResolvePrincipal() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			SetPrincipal(c, authz.Anonymous())
			c.Next()
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "Missing or invalid Authorization header")
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			abortUnauthorized(c, "Missing or invalid access token")
			return
		}

		p, err := m.sessions.Principal(raw)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired access token")
			return
		}

		SetPrincipal(c, p)
		c.Next()
	}
}

// RequireAuth rejects anonymous callers. Mount it after ResolvePrincipal.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !PrincipalFromContext(c).IsAuthenticated() {
			abortUnauthorized(c, "Authentication required")
			return
		}
		c.Next()
	}
}

// SetPrincipal stores p on both the gin context and the request context.
func SetPrincipal(c *gin.Context, p authz.Principal) {
	c.Set(ctxPrincipal, p)
	c.Request = c.Request.WithContext(actorctx.WithPrincipal(c.Request.Context(), p))
}

// PrincipalFromContext returns the resolved principal, or anonymous when none was resolved.
func PrincipalFromContext(c *gin.Context) authz.Principal {
	v, ok := c.Get(ctxPrincipal)
	if !ok {
		return authz.Anonymous()
	}
	p, ok := v.(authz.Principal)
	if !ok {
		return authz.Anonymous()
	}
	return p
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":      "unauthorized",
			"message":   message,
			"requestId": c.GetString(CtxRequestID),
		},
	})
}

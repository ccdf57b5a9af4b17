package middlewares

import (
	"net/http"

	"github.com/geocoder89/inkwell/internal/authz"
	"github.com/gin-gonic/gin"
)

// Authorize asks the authorization gate before the handler runs. Denials are 403 whether the
// caller is anonymous or merely lacks the role.
func Authorize(action authz.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		dec := authz.Authorize(PrincipalFromContext(c), action)
		if !dec.Allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":      "forbidden",
					"message":   authz.Explain(dec.Reason),
					"requestId": c.GetString(CtxRequestID),
				},
			})
			return
		}
		c.Next()
	}
}

package middlewares

import "github.com/gin-gonic/gin"

// The API only ever returns JSON, so nothing needs to load or frame it.
const apiCSP = "default-src 'none'; frame-ancestors 'none'"

// SecurityHeaders sets response hardening headers. hsts should be on only behind TLS.
func SecurityHeaders(hsts bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cross-Origin-Resource-Policy", "same-site")
		h.Set("Content-Security-Policy", apiCSP)
		if hsts {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}

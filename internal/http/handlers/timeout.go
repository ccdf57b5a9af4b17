package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	readTimeout  = 2 * time.Second
	writeTimeout = 3 * time.Second
	// contact sends retry with backoff inside the mailer
	mailTimeout = 30 * time.Second
)

// withTimeout bounds a handler's downstream calls while keeping the request's trace and principal.
func withTimeout(ctx *gin.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request.Context(), d)
}

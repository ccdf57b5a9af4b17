package handlers

import (
	"errors"
	"net/http"

	"github.com/geocoder89/inkwell/internal/apperr"
	"github.com/geocoder89/inkwell/internal/authz"
	"github.com/geocoder89/inkwell/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	if s := ctx.GetString(middlewares.CtxRequestID); s != "" {
		return s
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondUnauthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message, nil)
}

func RespondForbidden(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusForbidden, "forbidden", message, nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

func RespondConflict(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusConflict, code, message, nil)
}

// RespondServiceError maps the error taxonomy onto HTTP. Storage and transport causes are
// recorded on the gin context for the request logger, never sent to the client.
func RespondServiceError(ctx *gin.Context, err error) {
	msg := publicMessage(err)

	switch kind := apperr.KindOf(err); kind {
	case apperr.ErrValidation:
		RespondBadRequest(ctx, "Invalid request body", gin.H{"fields": apperr.FieldsOf(err)})
	case apperr.ErrNotFound:
		RespondNotFound(ctx, msg)
	case apperr.ErrDuplicateTitle:
		RespondConflict(ctx, "duplicate_title", msg)
	case apperr.ErrDuplicateEmail:
		RespondConflict(ctx, "duplicate_email", msg)
	case apperr.ErrConflict:
		RespondConflict(ctx, "conflict", msg)
	case apperr.ErrForbidden:
		RespondForbidden(ctx, authz.Explain(msg))
	case apperr.ErrTransport:
		_ = ctx.Error(err)
		RespondError(ctx, http.StatusBadGateway, "transport_failure", "The message could not be delivered. Please try again later.", nil)
	default:
		_ = ctx.Error(err)
		RespondInternal(ctx, "Something went wrong")
	}
}

func publicMessage(err error) string {
	var e *apperr.Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	return ""
}

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/inkwell/internal/auth"
	"github.com/geocoder89/inkwell/internal/domain/user"
	"github.com/geocoder89/inkwell/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type AccountService interface {
	Register(ctx context.Context, req user.RegisterRequest) (user.User, error)
	Authenticate(ctx context.Context, email, password string) (user.User, error)
	Get(ctx context.Context, id int64) (user.User, error)
}

type SessionService interface {
	Issue(ctx context.Context, u user.User) (auth.Tokens, error)
	Refresh(ctx context.Context, raw string) (auth.Tokens, error)
	Revoke(ctx context.Context, raw string) error
}

type AuthHandler struct {
	accounts     AccountService
	sessions     SessionService
	secureCookie bool
	log          *slog.Logger
}

func NewAuthHandler(accounts AccountService, sessions SessionService, env string, log *slog.Logger) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{
		accounts:     accounts,
		sessions:     sessions,
		secureCookie: env == "prod",
		log:          log,
	}
}

const refreshCookieName = "refresh_token"

type authResponse struct {
	User        user.View `json:"user"`
	AccessToken string    `json:"accessToken"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx, writeTimeout)
	defer cancel()

	u, err := h.accounts.Register(cctx, req)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	// registering logs the new user in
	tokens, err := h.sessions.Issue(cctx, u)
	if err != nil {
		_ = ctx.Error(err)
		RespondInternal(ctx, "Could not create session")
		return
	}

	h.setRefreshCookie(ctx, tokens.RefreshToken, tokens.RefreshExpiresAt)

	ctx.JSON(http.StatusCreated, authResponse{User: u.ToView(), AccessToken: tokens.AccessToken})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx, writeTimeout)
	defer cancel()

	u, err := h.accounts.Authenticate(cctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			RespondUnauthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
			return
		}
		RespondServiceError(ctx, err)
		return
	}

	tokens, err := h.sessions.Issue(cctx, u)
	if err != nil {
		_ = ctx.Error(err)
		RespondInternal(ctx, "Could not create session")
		return
	}

	h.setRefreshCookie(ctx, tokens.RefreshToken, tokens.RefreshExpiresAt)

	ctx.JSON(http.StatusOK, authResponse{User: u.ToView(), AccessToken: tokens.AccessToken})
}

func (h *AuthHandler) Refresh(ctx *gin.Context) {
	raw, err := ctx.Cookie(refreshCookieName)

	if err != nil || raw == "" {
		RespondUnauthorized(ctx, "no_refresh", "Missing refresh token")
		return
	}

	cctx, cancel := withTimeout(ctx, writeTimeout)
	defer cancel()

	tokens, err := h.sessions.Refresh(cctx, raw)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrRefreshTokenExpired):
			h.clearRefreshCookie(ctx)
			RespondUnauthorized(ctx, "expired_refresh", "Refresh token expired.")
		case errors.Is(err, auth.ErrRefreshTokenRevoked):
			h.log.WarnContext(ctx.Request.Context(), "auth.refresh_reuse_detected")
			h.clearRefreshCookie(ctx)
			RespondUnauthorized(ctx, "invalid_refresh", "Invalid refresh token.")
		case errors.Is(err, auth.ErrRefreshTokenNotFound), errors.Is(err, auth.ErrRefreshTokenMismatch):
			h.clearRefreshCookie(ctx)
			RespondUnauthorized(ctx, "invalid_refresh", "Invalid refresh token.")
		default:
			_ = ctx.Error(err)
			RespondInternal(ctx, "Could not refresh session")
		}
		return
	}

	h.setRefreshCookie(ctx, tokens.RefreshToken, tokens.RefreshExpiresAt)

	ctx.JSON(http.StatusOK, gin.H{
		"accessToken": tokens.AccessToken,
	})
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	raw, err := ctx.Cookie(refreshCookieName)

	if err == nil && raw != "" {
		cctx, cancel := withTimeout(ctx, writeTimeout)
		defer cancel()

		if err := h.sessions.Revoke(cctx, raw); err != nil {
			_ = ctx.Error(err)
		}
	}

	h.clearRefreshCookie(ctx)
	ctx.Status(http.StatusNoContent)
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	p := middlewares.PrincipalFromContext(ctx)

	cctx, cancel := withTimeout(ctx, readTimeout)
	defer cancel()

	u, err := h.accounts.Get(cctx, p.UserID)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, u.ToView())
}

func (h *AuthHandler) setRefreshCookie(ctx *gin.Context, raw string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())

	ctx.SetSameSite(http.SameSiteStrictMode)

	ctx.SetCookie(
		refreshCookieName,
		raw,
		maxAge,
		"/auth",
		"",
		h.secureCookie,
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearRefreshCookie(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(
		refreshCookieName,
		"",
		-1,
		"/auth",
		"",
		h.secureCookie,
		true,
	)
}

package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/inkwell/internal/authz"
	"github.com/geocoder89/inkwell/internal/domain/contact"
	"github.com/geocoder89/inkwell/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type ContactService interface {
	SendContactMessage(ctx context.Context, p authz.Principal, m contact.Message) error
}

type ContactHandler struct {
	svc ContactService
}

func NewContactHandler(svc ContactService) *ContactHandler {
	return &ContactHandler{svc: svc}
}

func (h *ContactHandler) Submit(ctx *gin.Context) {
	var req contact.Message

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx, mailTimeout)
	defer cancel()

	if err := h.svc.SendContactMessage(cctx, middlewares.PrincipalFromContext(ctx), req); err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status":  "sent",
		"message": "Successfully sent your message",
	})
}

package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/coderkec/authchat/internal/config"
	"github.com/coderkec/authchat/internal/domain/chatlog"
	"github.com/coderkec/authchat/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type ChatLogStore interface {
	Insert(ctx context.Context, userID, category, question, answer string) error
	ListByUserAndCategory(ctx context.Context, userID, category string, limit int) ([]chatlog.Entry, error)
}

type ChatLogsHandler struct {
	logs ChatLogStore
}

func NewChatLogsHandler(logs ChatLogStore) *ChatLogsHandler {
	return &ChatLogsHandler{logs: logs}
}

func (h *ChatLogsHandler) AddLog(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnauthorized(ctx, "unauthorized", "missing token")
		return
	}

	var req chatlog.AddLogRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if !chatlog.ValidCategory(req.Category) {
		RespondError(ctx, http.StatusBadRequest, "invalid_category", "invalid category", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if err := h.logs.Insert(cctx, userID, req.Category, req.Question, req.Answer); err != nil {
		RespondInternal(ctx, "Could not store log")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *ChatLogsHandler) ListLogs(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnauthorized(ctx, "unauthorized", "missing token")
		return
	}

	category := ctx.Query("category")

	if !chatlog.ValidCategory(category) {
		RespondError(ctx, http.StatusBadRequest, "invalid_category", "invalid category", nil)
		return
	}

	limit := chatlog.DefaultListLimit

	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			RespondBadRequest(ctx, "limit must be an integer", nil)
			return
		}
		limit = chatlog.ClampLimit(n)
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	items, err := h.logs.ListByUserAndCategory(cctx, userID, category, limit)

	if err != nil {
		RespondInternal(ctx, "Could not list logs")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"ok":    true,
		"items": items,
	})
}

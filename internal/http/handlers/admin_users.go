package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/coderkec/authchat/internal/config"
	"github.com/coderkec/authchat/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type UserLister interface {
	ListRecent(ctx context.Context, limit int) ([]user.User, error)
}

type AdminUsersHandler struct {
	users UserLister
}

func NewAdminUsersHandler(users UserLister) *AdminUsersHandler {
	return &AdminUsersHandler{users: users}
}

// ListUsers returns the most recently created accounts. Route is gated by
// RequireRole("ROLE_ADMIN") in the router.
func (h *AdminUsersHandler) ListUsers(ctx *gin.Context) {
	limit := 50

	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			RespondBadRequest(ctx, "limit must be an integer between 1 and 500", nil)
			return
		}
		limit = n
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	users, err := h.users.ListRecent(cctx, limit)

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"ok":    true,
		"items": users,
		"count": len(users),
	})
}

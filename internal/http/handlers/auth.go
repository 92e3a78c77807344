package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coderkec/authchat/internal/auth"
	"github.com/coderkec/authchat/internal/cache"
	"github.com/coderkec/authchat/internal/config"
	"github.com/coderkec/authchat/internal/domain/user"
	"github.com/coderkec/authchat/internal/http/middlewares"
	"github.com/coderkec/authchat/internal/observability"
	"github.com/gin-gonic/gin"
)

type AuthService interface {
	SignUp(ctx context.Context, in auth.SignUpInput) (auth.Session, error)
	Login(ctx context.Context, in auth.LoginInput) (auth.Session, error)
	Profile(ctx context.Context, userID string) (user.User, error)
}

type AuthHandler struct {
	svc      AuthService
	profiles cache.ProfileCache
	prom     *observability.Prom
}

func NewAuthHandler(svc AuthService, profiles cache.ProfileCache, prom *observability.Prom) *AuthHandler {
	return &AuthHandler{
		svc:      svc,
		profiles: profiles,
		prom:     prom,
	}
}

type SignupRequest struct {
	Username    string  `json:"username" binding:"required,max=64"`
	Password    string  `json:"password" binding:"required"`
	Email       *string `json:"email" binding:"omitempty,email"`
	DisplayName *string `json:"display_name" binding:"omitempty,max=128"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Signup(ctx *gin.Context) {
	var req SignupRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)

	defer cancel()

	sess, err := h.svc.SignUp(cctx, auth.SignUpInput{
		Username:    req.Username,
		Password:    req.Password,
		Email:       req.Email,
		DisplayName: req.DisplayName,
	})

	if err != nil {
		h.countAuth("signup", err)
		h.respondAuthError(ctx, err)
		return
	}

	h.countAuth("signup", nil)

	ctx.JSON(http.StatusOK, gin.H{
		"ok":           true,
		"user_id":      sess.UserID,
		"role":         sess.Role,
		"access_token": sess.AccessToken,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	sess, err := h.svc.Login(cctx, auth.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})

	if err != nil {
		h.countAuth("login", err)
		h.respondAuthError(ctx, err)
		return
	}

	h.countAuth("login", nil)

	// updated_at just changed, a cached profile is stale now
	if h.profiles != nil {
		h.profiles.Invalidate(cctx, sess.UserID)
	}

	ctx.JSON(http.StatusOK, gin.H{
		"ok":           true,
		"user_id":      sess.UserID,
		"role":         sess.Role,
		"access_token": sess.AccessToken,
	})
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnauthorized(ctx, "unauthorized", "missing token")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if h.profiles != nil {
		if payload, hit := h.profiles.Get(cctx, userID); hit {
			ctx.Data(http.StatusOK, "application/json; charset=utf-8", payload)
			return
		}
	}

	u, err := h.svc.Profile(cctx, userID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "user not found")
			return
		}
		RespondInternal(ctx, "Could not load profile")
		return
	}

	body, err := json.Marshal(gin.H{"ok": true, "user": u})

	if err != nil {
		RespondInternal(ctx, "Could not load profile")
		return
	}

	if h.profiles != nil {
		h.profiles.Set(cctx, userID, body)
	}

	ctx.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func (h *AuthHandler) respondAuthError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		RespondUnauthorized(ctx, "invalid_credentials", "invalid credentials")
	case errors.Is(err, auth.ErrUserInactive):
		RespondForbidden(ctx, "user_inactive", "user inactive")
	case errors.Is(err, auth.ErrConflict):
		RespondConflict(ctx, "conflict", "username already exists or insert failed")
	default:
		RespondInternal(ctx, "Could not complete request")
	}
}

func (h *AuthHandler) countAuth(op string, err error) {
	if h.prom == nil {
		return
	}

	result := "ok"

	switch {
	case err == nil:
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrUserInactive),
		errors.Is(err, auth.ErrConflict):
		result = "denied"
	default:
		result = "error"
	}

	h.prom.AuthAttempts.WithLabelValues(op, result).Inc()
}

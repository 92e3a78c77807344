package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coderkec/authchat/internal/auth"
	"github.com/coderkec/authchat/internal/cache"
	"github.com/coderkec/authchat/internal/domain/user"
	"github.com/coderkec/authchat/internal/http/handlers"
	"github.com/coderkec/authchat/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

// Fake implementation of the handlers.AuthService interface

type fakeAuthService struct {
	signUpFn  func(ctx context.Context, in auth.SignUpInput) (auth.Session, error)
	loginFn   func(ctx context.Context, in auth.LoginInput) (auth.Session, error)
	profileFn func(ctx context.Context, userID string) (user.User, error)

	profileCalls int
}

func (f *fakeAuthService) SignUp(ctx context.Context, in auth.SignUpInput) (auth.Session, error) {
	if f.signUpFn != nil {
		return f.signUpFn(ctx, in)
	}
	return auth.Session{}, nil
}

func (f *fakeAuthService) Login(ctx context.Context, in auth.LoginInput) (auth.Session, error) {
	if f.loginFn != nil {
		return f.loginFn(ctx, in)
	}
	return auth.Session{}, auth.ErrInvalidCredentials
}

func (f *fakeAuthService) Profile(ctx context.Context, userID string) (user.User, error) {
	f.profileCalls++
	if f.profileFn != nil {
		return f.profileFn(ctx, userID)
	}
	return user.User{}, user.ErrNotFound
}

func newAuthRouter(svc handlers.AuthService, tokens *auth.Manager, profiles cache.ProfileCache) *gin.Engine {
	h := handlers.NewAuthHandler(svc, profiles, nil)
	gate := middlewares.NewAuthMiddleware(tokens)

	r := gin.New()
	r.POST("/api/auth/signup", h.Signup)
	r.POST("/api/auth/login", h.Login)
	r.GET("/api/auth/me", gate.RequireAuth(), h.Me)

	return r
}

func doJSON(router http.Handler, method, path, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func mustReadJSON[T any](t *testing.T, w *httptest.ResponseRecorder, out *T) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to unmarshal json: %v, body=%s", err, w.Body.String())
	}
}

type sessionResponse struct {
	OK          bool   `json:"ok"`
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
	AccessToken string `json:"access_token"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func testManager() *auth.Manager {
	return auth.NewManager("test-secret-key", time.Hour)
}

func TestSignup_Success(t *testing.T) {
	t.Parallel()

	svc := &fakeAuthService{
		signUpFn: func(ctx context.Context, in auth.SignUpInput) (auth.Session, error) {
			if in.Username != "alice" || in.Password != "pw123" {
				t.Errorf("unexpected input: %+v", in)
			}
			return auth.Session{UserID: "id-1", Role: "ROLE_USER", AccessToken: "tok"}, nil
		},
	}

	router := newAuthRouter(svc, testManager(), nil)

	w := doJSON(router, http.MethodPost, "/api/auth/signup", `{"username":"alice","password":"pw123"}`, "")

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp sessionResponse
	mustReadJSON(t, w, &resp)

	if !resp.OK || resp.UserID != "id-1" || resp.Role != "ROLE_USER" || resp.AccessToken != "tok" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestSignup_Conflict(t *testing.T) {
	t.Parallel()

	svc := &fakeAuthService{
		signUpFn: func(ctx context.Context, in auth.SignUpInput) (auth.Session, error) {
			return auth.Session{}, auth.ErrConflict
		},
	}

	router := newAuthRouter(svc, testManager(), nil)

	w := doJSON(router, http.MethodPost, "/api/auth/signup", `{"username":"alice","password":"pw123"}`, "")

	if w.Code != http.StatusConflict {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusConflict)
	}

	var resp errorResponse
	mustReadJSON(t, w, &resp)

	if resp.Error.Code != "conflict" {
		t.Fatalf("error code = %q, want conflict", resp.Error.Code)
	}
}

func TestSignup_InactiveForbidden(t *testing.T) {
	t.Parallel()

	svc := &fakeAuthService{
		signUpFn: func(ctx context.Context, in auth.SignUpInput) (auth.Session, error) {
			return auth.Session{}, auth.ErrUserInactive
		},
	}

	router := newAuthRouter(svc, testManager(), nil)

	w := doJSON(router, http.MethodPost, "/api/auth/signup", `{"username":"alice","password":"pw123"}`, "")

	if w.Code != http.StatusForbidden {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestSignup_MissingFields(t *testing.T) {
	t.Parallel()

	router := newAuthRouter(&fakeAuthService{}, testManager(), nil)

	w := doJSON(router, http.MethodPost, "/api/auth/signup", `{"username":"alice"}`, "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	t.Parallel()

	router := newAuthRouter(&fakeAuthService{}, testManager(), nil)

	w := doJSON(router, http.MethodPost, "/api/auth/login", `{"username":"alice","password":"wrong"}`, "")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusUnauthorized)
	}

	var resp errorResponse
	mustReadJSON(t, w, &resp)

	if resp.Error.Code != "invalid_credentials" {
		t.Fatalf("error code = %q, want invalid_credentials", resp.Error.Code)
	}
}

func TestLogin_InactiveForbidden(t *testing.T) {
	t.Parallel()

	svc := &fakeAuthService{
		loginFn: func(ctx context.Context, in auth.LoginInput) (auth.Session, error) {
			return auth.Session{}, auth.ErrUserInactive
		},
	}

	router := newAuthRouter(svc, testManager(), nil)

	w := doJSON(router, http.MethodPost, "/api/auth/login", `{"username":"alice","password":"pw123"}`, "")

	if w.Code != http.StatusForbidden {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestMe_ReturnsProfileWithoutHash(t *testing.T) {
	t.Parallel()

	hash := "$2a$10$should.never.leak"
	email := "alice@example.com"

	svc := &fakeAuthService{
		profileFn: func(ctx context.Context, userID string) (user.User, error) {
			return user.User{
				ID:           userID,
				Username:     "alice",
				Email:        &email,
				PasswordHash: &hash,
				Role:         "ROLE_USER",
				Status:       user.StatusActive,
				CreatedAt:    time.Now().UTC(),
				UpdatedAt:    time.Now().UTC(),
			}, nil
		},
	}

	tokens := testManager()
	router := newAuthRouter(svc, tokens, nil)

	tok, err := tokens.GenerateAccessToken("id-1", "ROLE_USER")
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	w := doJSON(router, http.MethodGet, "/api/auth/me", "", tok)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}

	body := w.Body.String()

	if bytes.Contains([]byte(body), []byte(hash)) {
		t.Fatalf("password hash leaked into response: %s", body)
	}

	var resp struct {
		OK   bool      `json:"ok"`
		User user.User `json:"user"`
	}
	mustReadJSON(t, w, &resp)

	if !resp.OK || resp.User.ID != "id-1" || resp.User.Username != "alice" {
		t.Fatalf("unexpected profile: %+v", resp.User)
	}
}

func TestMe_UserGone(t *testing.T) {
	t.Parallel()

	tokens := testManager()
	router := newAuthRouter(&fakeAuthService{}, tokens, nil)

	tok, err := tokens.GenerateAccessToken("deleted-user", "ROLE_USER")
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	w := doJSON(router, http.MethodGet, "/api/auth/me", "", tok)

	if w.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestMe_ProfileCacheShortCircuits(t *testing.T) {
	t.Parallel()

	svc := &fakeAuthService{
		profileFn: func(ctx context.Context, userID string) (user.User, error) {
			return user.User{ID: userID, Username: "alice", Role: "ROLE_USER", Status: user.StatusActive}, nil
		},
	}

	tokens := testManager()
	router := newAuthRouter(svc, tokens, cache.NewMemory(time.Minute))

	tok, err := tokens.GenerateAccessToken("id-1", "ROLE_USER")
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	first := doJSON(router, http.MethodGet, "/api/auth/me", "", tok)
	second := doJSON(router, http.MethodGet, "/api/auth/me", "", tok)

	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("expected both requests to succeed: %d, %d", first.Code, second.Code)
	}

	if svc.profileCalls != 1 {
		t.Fatalf("expected one store lookup, got %d", svc.profileCalls)
	}

	if first.Body.String() != second.Body.String() {
		t.Fatalf("cached response should match the original")
	}
}

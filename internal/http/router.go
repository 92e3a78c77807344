package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/coderkec/authchat/internal/auth"
	"github.com/coderkec/authchat/internal/cache"
	"github.com/coderkec/authchat/internal/config"
	"github.com/coderkec/authchat/internal/http/handlers"
	"github.com/coderkec/authchat/internal/http/middlewares"
	"github.com/coderkec/authchat/internal/observability"
	"github.com/coderkec/authchat/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20 // 1 MiB

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// metrics registry

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	prom := observability.NewProm(reg)

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	}
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(otelgin.Middleware("authchat"))
	r.Use(prom.GinHandleMiddleware())

	// health

	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// profile cache: shared Redis when configured, per-process map otherwise

	var profiles cache.ProfileCache = cache.NewMemory(30 * time.Second)

	if cfg.RedisAddr != "" {
		profiles = cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, 30*time.Second)
	}

	// wire up repositories and services

	usersRepo := postgres.NewUsersRepo(pool, prom)
	chatLogsRepo := postgres.NewChatLogsRepo(pool, prom)

	tokens := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL())
	authSvc := auth.NewService(usersRepo, tokens)

	authHandler := handlers.NewAuthHandler(authSvc, profiles, prom)
	chatLogsHandler := handlers.NewChatLogsHandler(chatLogsRepo)
	adminUsersHandler := handlers.NewAdminUsersHandler(usersRepo)

	authGate := middlewares.NewAuthMiddleware(tokens)

	api := r.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.POST("/signup", authHandler.Signup)
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.GET("/me", authGate.RequireAuth(), authHandler.Me)

	chatRoutes := api.Group("/chat", authGate.RequireAuth())
	chatRoutes.POST("/logs", chatLogsHandler.AddLog)
	chatRoutes.GET("/logs", chatLogsHandler.ListLogs)

	adminRoutes := api.Group("/admin", authGate.RequireAuth(), authGate.RequireRole("ROLE_ADMIN"))
	adminRoutes.GET("/users", adminUsersHandler.ListUsers)

	return r
}

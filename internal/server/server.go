package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/playsight/backend/internal/config"
	"github.com/playsight/backend/internal/handler"
	"github.com/playsight/backend/internal/metrics"
	"github.com/playsight/backend/internal/middleware"
	"github.com/playsight/backend/internal/ratelimit"
	"github.com/playsight/backend/internal/repository"
	"github.com/playsight/backend/internal/service"
	"github.com/playsight/backend/internal/storage"
)

type Server struct {
	router     *gin.Engine
	config     *config.Config
	redis      *storage.RedisClient
	postgres   *storage.Postgres
	limiter    *ratelimit.Limiter
	quota      *ratelimit.QuotaService
	registry   *prometheus.Registry
	httpServer *http.Server
}

// New wires the full service. redis may be nil: the global limiter then
// starts in local-only mode and quota enforcement is skipped, per the
// availability-over-enforcement policy.
func New(cfg *config.Config, redis *storage.RedisClient, postgres *storage.Postgres) *Server {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	sink := metrics.New(registry)

	var shared ratelimit.CounterStore
	if redis != nil {
		shared = ratelimit.NewRedisStore(redis)
	}

	limiter := ratelimit.NewLimiter(ratelimit.LimiterConfig{
		PerMinute:      cfg.RateLimit.PerMinute,
		PerHour:        cfg.RateLimit.PerHour,
		BanThreshold:   cfg.RateLimit.BanThreshold,
		BanTTL:         time.Duration(cfg.RateLimit.BanTTLMinutes) * time.Minute,
		ViolationTTL:   time.Duration(cfg.RateLimit.ViolationTTLMinutes) * time.Minute,
		EscalationOn:   cfg.RateLimit.EscalationEnabled,
		BypassIdentity: cfg.RateLimit.BypassIdentity,
	}, shared, sink)

	userRepo := repository.NewUserRepository(postgres)
	subRepo := repository.NewSubscriptionRepository(postgres)
	logRepo := repository.NewRequestLogRepository(postgres)

	authService := service.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.ExpiryHours)
	subService := service.NewSubscriptionService(subRepo, redis)
	analyticsService := service.NewAnalyticsService(logRepo)

	quota := ratelimit.NewQuotaService(shared, subService, cfg.Quotas, sink, cfg.RateLimit.BypassUserID)

	s := &Server{
		router:   router,
		config:   cfg,
		redis:    redis,
		postgres: postgres,
		limiter:  limiter,
		quota:    quota,
		registry: registry,
	}

	auditLogger := middleware.NewRequestAuditLogger(logRepo, 1000)

	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS())
	router.Use(auditLogger.Handler())
	router.Use(middleware.RateLimit(limiter, cfg.RateLimit.ExemptPaths))

	s.setupRoutes(authService, analyticsService, handler.NewSubscriptionHandler(subRepo, subService))

	return s
}

func (s *Server) setupRoutes(authService *service.AuthService, analyticsService *service.AnalyticsService, subscriptionHandler *handler.SubscriptionHandler) {
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	s.router.GET("/docs", s.docs)
	s.router.GET("/openapi.json", s.openAPISchema)

	auth := s.router.Group("/api/auth")
	{
		authHandler := handler.NewAuthHandler(authService)
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	api := s.router.Group("/api")
	api.Use(middleware.RequireAuth(authService, s.limiter))
	{
		analysisHandler := handler.NewAnalysisHandler()
		api.POST("/analysis/ai",
			middleware.EnforceQuota(s.quota, ratelimit.OpAIAnalysis),
			analysisHandler.AIAnalysis)
		api.POST("/analysis/file",
			middleware.EnforceQuota(s.quota, ratelimit.OpFileAnalysis),
			analysisHandler.FileAnalysis)
	}

	admin := s.router.Group("/admin")
	admin.Use(middleware.RequireAuth(authService, s.limiter), middleware.RequireRole("admin"))
	{
		var ledger *ratelimit.Ledger
		if s.redis != nil {
			ledger = ratelimit.NewLedger(ratelimit.NewRedisStore(s.redis))
		}
		adminHandler := handler.NewRateLimitAdminHandler(ledger, s.quota, s.config.RateLimit)
		admin.GET("/rate-limit/config", adminHandler.GetConfig)
		admin.GET("/rate-limit/bans", adminHandler.ListBans)
		admin.POST("/rate-limit/bans/:kind/:value", adminHandler.CreateBan)
		admin.DELETE("/rate-limit/bans/:kind/:value", adminHandler.DeleteBan)
		admin.GET("/rate-limit/violations", adminHandler.ListViolations)
		admin.POST("/rate-limit/violations/cleanup", adminHandler.CleanupViolations)

		analyticsHandler := handler.NewAnalyticsHandler(analyticsService)
		admin.GET("/analytics/summary", analyticsHandler.GetSummary)

		admin.GET("/subscriptions/:user_id", subscriptionHandler.Get)
		admin.PUT("/subscriptions/:user_id", subscriptionHandler.Set)
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	redisHealthy := s.redis != nil
	if s.redis != nil {
		if err := s.redis.Ping(c.Request.Context()); err != nil {
			redisHealthy = false
			log.Printf("Redis health check failed: %v", err)
		}
	}

	dbHealthy := true
	if err := s.postgres.Ping(c.Request.Context()); err != nil {
		dbHealthy = false
		log.Printf("Database health check failed: %v", err)
	}

	status := "healthy"
	statusCode := http.StatusOK
	if !dbHealthy {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	} else if !redisHealthy || s.limiter.Degraded() {
		// Degraded limiting is survivable; report it without failing the
		// probe.
		status = "degraded"
	}

	c.JSON(statusCode, gin.H{
		"status":           status,
		"redis":            redisHealthy,
		"database":         dbHealthy,
		"limiter_degraded": s.limiter.Degraded(),
	})
}

func (s *Server) docs(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, docsPage)
}

func (s *Server) openAPISchema(c *gin.Context) {
	c.Header("Content-Type", "application/json")
	c.String(http.StatusOK, openAPISpec)
}

func (s *Server) Run(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	log.Printf("Server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

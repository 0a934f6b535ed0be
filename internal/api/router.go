// Package api wires together all HTTP routes for the Recruitbase sharing and
// audit backend.
//
// Route grouping philosophy:
//   - The link resolution route (/v1/shared/:token) is intentionally
//     unauthenticated: a shareable link's whole purpose is that its recipient
//     needs no account. Possession of the unguessable token (plus the link
//     password, when set) is the credential. The route carries its own, much
//     stricter, per-IP rate limit.
//   - Everything under /api/v1/ requires a valid JWT and is scoped to the
//     caller's organization.
package api

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/recruitbase/recruitbase/internal/api/admin"
	"github.com/recruitbase/recruitbase/internal/api/shares"
	"github.com/recruitbase/recruitbase/internal/audit"
	"github.com/recruitbase/recruitbase/internal/config"
	"github.com/recruitbase/recruitbase/internal/db/repositories"
	"github.com/recruitbase/recruitbase/internal/middleware"
	"github.com/recruitbase/recruitbase/internal/share"
)

// BackgroundServices holds resources that must be stopped during graceful
// shutdown. The caller (cmd/server) invokes Shutdown() after the HTTP server
// has drained so in-flight requests finish first.
type BackgroundServices struct {
	rateLimiters []*middleware.RateLimiter
	shipper      audit.Shipper
}

// Shutdown stops all background goroutines and releases the audit shipper's
// resources. Called only after the HTTP server has drained, so no new audit
// entries can arrive once the shipper is closed.
func (bg *BackgroundServices) Shutdown() {
	slog.Info("stopping background services")
	for _, rl := range bg.rateLimiters {
		rl.Stop()
	}
	if bg.shipper != nil {
		if err := bg.shipper.Close(); err != nil {
			slog.Error("failed to close audit shipper", "error", err)
		}
	}
	slog.Info("all background services stopped")
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg *config.Config, db *sql.DB) (*gin.Engine, *BackgroundServices) {
	router := gin.New()

	// Repositories. The audit repository stays on database/sql; the link and
	// resource repositories use sqlx for struct scanning.
	sqlxDB := sqlx.NewDb(db, "postgres")
	auditRepo := repositories.NewAuditRepository(db)
	shareRepo := repositories.NewShareRepository(sqlxDB)
	jobRepo := repositories.NewJobRepository(sqlxDB)
	reportRepo := repositories.NewReportRepository(sqlxDB)
	dashboardRepo := repositories.NewDashboardRepository(sqlxDB)

	// Audit pipeline: DB store plus optional external destinations.
	shipper, err := audit.NewShipper(cfg.Audit.Destinations)
	if err != nil {
		log.Fatalf("Failed to initialize audit shippers: %v", err)
	}
	recorder := audit.NewRecorder(auditRepo, shipper)

	// Resource registry: one fetcher per shareable resource type. Each fetcher
	// translates its repository's model into the registry's neutral Resource.
	registry := share.NewRegistry()
	registry.Register(share.ResourceJob, func(ctx context.Context, id string) (*share.Resource, error) {
		job, err := jobRepo.GetByID(ctx, id)
		if err != nil || job == nil {
			return nil, err
		}
		return &share.Resource{
			Type:           share.ResourceJob,
			ID:             job.ID,
			OrganizationID: job.OrganizationID,
			Payload:        job,
		}, nil
	})
	registry.Register(share.ResourceReport, func(ctx context.Context, id string) (*share.Resource, error) {
		report, err := reportRepo.GetByID(ctx, id)
		if err != nil || report == nil {
			return nil, err
		}
		return &share.Resource{
			Type:           share.ResourceReport,
			ID:             report.ID,
			OrganizationID: report.OrganizationID,
			Payload:        report,
		}, nil
	})
	registry.Register(share.ResourceDashboard, func(ctx context.Context, id string) (*share.Resource, error) {
		dashboard, err := dashboardRepo.GetByID(ctx, id)
		if err != nil || dashboard == nil {
			return nil, err
		}
		return &share.Resource{
			Type:           share.ResourceDashboard,
			ID:             dashboard.ID,
			OrganizationID: dashboard.OrganizationID,
			Payload:        dashboard,
		}, nil
	})

	issuer := share.NewIssuer(shareRepo, registry, recorder,
		cfg.Server.GetPublicURL(), cfg.Sharing.LinkBasePath, cfg.Auth.BcryptCost)
	resolver := share.NewResolver(shareRepo, registry, recorder)
	if !cfg.Audit.LogReadOperations {
		resolver.DisableReadAuditing()
	}

	shareHandlers := shares.NewHandlers(issuer, resolver, shareRepo)
	auditHandlers := admin.NewAuditLogHandlers(auditRepo)

	// Middleware chain; ordering documented in the middleware package.
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(LoggerMiddleware(cfg))
	router.Use(middleware.SecurityHeadersMiddleware(middleware.APISecurityHeadersConfig()))

	router.GET("/health", healthCheckHandler(db))
	router.GET("/version", versionHandler())

	// Public link resolution, behind its own per-IP limiter.
	resolveLimiter := middleware.NewRateLimiter(middleware.ResolveRateLimitConfig(
		cfg.Sharing.ResolveRequestsPerMinute, cfg.Sharing.ResolveBurstSize))
	shared := router.Group("/v1/shared")
	shared.Use(middleware.RateLimitMiddleware(resolveLimiter))
	{
		shared.GET("/:token", shareHandlers.Resolve)
	}

	// Authenticated organization-scoped API.
	generalLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimitConfig())
	apiV1 := router.Group("/api/v1")
	apiV1.Use(middleware.RateLimitMiddleware(generalLimiter))
	apiV1.Use(middleware.AuthMiddleware())
	{
		apiV1.POST("/shares", shareHandlers.Issue)
		apiV1.GET("/shares", shareHandlers.List)
		apiV1.GET("/audit-logs", auditHandlers.List)
		apiV1.GET("/audit-logs/:id", auditHandlers.Get)
	}

	bg := &BackgroundServices{
		rateLimiters: []*middleware.RateLimiter{resolveLimiter, generalLimiter},
		shipper:      shipper,
	}

	return router, bg
}

// healthCheckHandler returns the health status of the service
func healthCheckHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// versionHandler returns the API version
func versionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":     "0.1.0",
			"api_version": "v1",
		})
	}
}

// LoggerMiddleware provides structured request logging via slog. The output
// format (text/json) follows the handler installed by telemetry.SetupLogger.
func LoggerMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		requestID, _ := c.Get(middleware.RequestIDKey)

		slog.LogAttrs(
			c.Request.Context(),
			slog.LevelInfo,
			"http request",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.Int("status", c.Writer.Status()),
			slog.Int("size", c.Writer.Size()),
			slog.Duration("latency", latency),
			slog.String("ip", c.ClientIP()),
			slog.String("request_id", fmt.Sprintf("%v", requestID)),
			slog.String("user_agent", c.Request.UserAgent()),
		)
	}
}

package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/nginxforge/nginxforge/internal/api/handlers"
	"github.com/nginxforge/nginxforge/internal/api/middleware"
	"github.com/nginxforge/nginxforge/internal/config"
	"github.com/nginxforge/nginxforge/internal/database"
	"github.com/nginxforge/nginxforge/internal/metrics"
	"github.com/nginxforge/nginxforge/internal/nginx"
	"github.com/nginxforge/nginxforge/internal/services"
)

// Services exposes the service layer built during route registration so the
// caller can hand it to background workers.
type Services struct {
	Sites         *services.SiteService
	Notifications *services.NotificationService
	Auth          *services.AuthService
}

// Register wires up API routes and performs automatic migrations.
func Register(router *gin.Engine, db *gorm.DB, cfg config.Config) (*Services, error) {
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	registry := prometheus.NewRegistry()
	metrics.Register(registry)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	router.GET("/api/v1/health", handlers.HealthHandler)

	api := router.Group("/api/v1")

	manager := nginx.NewManager(db, cfg.NginxConfigDir)
	notificationService := services.NewNotificationService(db, cfg.ShoutrrrURL)
	siteService := services.NewSiteService(db, manager, notificationService)
	authService := services.NewAuthService(db, cfg)

	authHandler := handlers.NewAuthHandler(authService, cfg.IsProduction())
	siteHandler := handlers.NewSiteHandler(siteService)
	importHandler := handlers.NewImportHandler(siteService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	settingsHandler := handlers.NewSettingsHandler(db)

	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/register", authHandler.Register)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(authService))
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/auth/me", authHandler.Me)
		protected.POST("/auth/change-password", authHandler.ChangePassword)

		// Sites and everything derived from their configuration models
		protected.GET("/sites", siteHandler.List)
		protected.POST("/sites", siteHandler.Create)
		protected.GET("/sites/:id", siteHandler.Get)
		protected.PUT("/sites/:id", siteHandler.Update)
		protected.PATCH("/sites/:id", siteHandler.Patch)
		protected.DELETE("/sites/:id", siteHandler.Delete)
		protected.GET("/sites/:id/generate", siteHandler.Generate)
		protected.POST("/sites/:id/lint", siteHandler.Lint)
		protected.GET("/sites/:id/lint/history", siteHandler.LintHistory)
		protected.POST("/sites/:id/fix/:ruleId", siteHandler.ApplyFix)
		protected.POST("/sites/:id/fix-all", siteHandler.ApplyAllFixes)
		protected.POST("/sites/:id/deploy", siteHandler.Deploy)
		protected.POST("/sites/:id/rollback", siteHandler.Rollback)

		// Lint rule catalog
		protected.GET("/rules", handlers.ListRules)

		// Raw config import
		protected.POST("/import/preview", importHandler.Preview)
		protected.POST("/import", importHandler.Commit)

		// Notifications
		protected.GET("/notifications", notificationHandler.List)
		protected.POST("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.POST("/notifications/read-all", notificationHandler.MarkAllAsRead)

		// Settings (admin only)
		admin := protected.Group("/")
		admin.Use(middleware.RequireRole("admin"))
		admin.GET("/settings", settingsHandler.List)
		admin.GET("/settings/:key", settingsHandler.Get)
		admin.PUT("/settings/:key", settingsHandler.Update)
	}

	return &Services{
		Sites:         siteService,
		Notifications: notificationService,
		Auth:          authService,
	}, nil
}

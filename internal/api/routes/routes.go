package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/Adarsh-MG101/VerifyCert2/internal/api/handlers"
	"github.com/Adarsh-MG101/VerifyCert2/internal/api/middleware"
	"github.com/Adarsh-MG101/VerifyCert2/internal/config"
	"github.com/Adarsh-MG101/VerifyCert2/internal/convert"
	"github.com/Adarsh-MG101/VerifyCert2/internal/database"
	"github.com/Adarsh-MG101/VerifyCert2/internal/metrics"
	"github.com/Adarsh-MG101/VerifyCert2/internal/models"
	"github.com/Adarsh-MG101/VerifyCert2/internal/services"
)

// Register wires up API routes and performs automatic migrations.
func Register(router *gin.Engine, db *gorm.DB, cfg config.Config) error {
	if err := database.Migrate(db); err != nil {
		return err
	}

	converter, err := convert.NewGotenbergConverter(cfg.GotenbergURL, cfg.GotenbergTimeout)
	if err != nil {
		return fmt.Errorf("init converter: %w", err)
	}
	pipeline := &convert.Pipeline{
		Converter:   converter,
		Thumbnailer: &convert.ChromeThumbnailer{ExecPath: cfg.ChromePath},
	}

	notificationService := services.NewNotificationService(db, cfg.NotifyURLs)
	authService := services.NewAuthService(db, cfg)
	activityService := services.NewActivityService(db)
	templateService := services.NewTemplateService(db, cfg, pipeline, notificationService)
	documentService := services.NewDocumentService(db, cfg, converter, notificationService)
	batchService := services.NewBatchService(db, cfg, documentService, notificationService)
	mailService := services.NewMailService(db)

	authHandler := handlers.NewAuthHandler(authService, activityService)
	templateHandler := handlers.NewTemplateHandler(templateService, cfg)
	documentHandler := handlers.NewDocumentHandler(documentService, batchService)
	emailHandler := handlers.NewEmailHandler(mailService, documentService, cfg)
	settingsHandler := handlers.NewSettingsHandler(mailService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	activityHandler := handlers.NewActivityHandler(activityService)
	statsHandler := handlers.NewStatsHandler(db)

	registry := prometheus.NewRegistry()
	metrics.Register(registry)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	router.GET("/api/v1/health", handlers.HealthHandler)

	api := router.Group("/api/v1")

	// Public endpoints: anyone holding a certificate link can verify it.
	api.GET("/verify/:id", documentHandler.Verify)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/register", authHandler.Register)

	protected := api.Group("/")
	protected.Use(middleware.Auth(authService), middleware.TenantScope())
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/auth/me", authHandler.Me)

		// Templates
		protected.GET("/templates", templateHandler.List)
		protected.POST("/templates", templateHandler.Upload)
		protected.GET("/templates/:id", templateHandler.Get)
		protected.PATCH("/templates/:id", templateHandler.Rename)
		protected.POST("/templates/:id/toggle", templateHandler.Toggle)
		protected.POST("/templates/:id/refresh", templateHandler.Refresh)
		protected.DELETE("/templates/:id", templateHandler.Delete)

		// Documents
		protected.POST("/generate", documentHandler.Generate)
		protected.POST("/generate-bulk", documentHandler.GenerateBulk)
		protected.GET("/documents", documentHandler.List)
		protected.GET("/documents/:id/download", documentHandler.Download)
		protected.POST("/send-email", emailHandler.SendCertificate)

		// Dashboard
		protected.GET("/stats", statsHandler.Get)
		protected.GET("/notifications", notificationHandler.List)
		protected.POST("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.POST("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/activity", activityHandler.List)

		// Admin-only settings
		admin := protected.Group("/")
		admin.Use(middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin))
		{
			admin.GET("/settings/smtp", settingsHandler.GetSMTP)
			admin.POST("/settings/smtp", settingsHandler.SaveSMTP)
			admin.POST("/settings/smtp/test", settingsHandler.TestSMTP)
		}
	}

	return nil
}

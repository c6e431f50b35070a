package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/Jeancampos10/site-control-hub-api/api/swagger"
	"github.com/Jeancampos10/site-control-hub-api/internal/handler"
	"github.com/Jeancampos10/site-control-hub-api/internal/middleware"
	"github.com/Jeancampos10/site-control-hub-api/internal/models"
	"github.com/Jeancampos10/site-control-hub-api/internal/repository"
	"github.com/Jeancampos10/site-control-hub-api/internal/service"
	"github.com/Jeancampos10/site-control-hub-api/pkg/cache"
	"github.com/Jeancampos10/site-control-hub-api/pkg/config"
	"github.com/Jeancampos10/site-control-hub-api/pkg/database"
	"github.com/Jeancampos10/site-control-hub-api/pkg/jobs"
	"github.com/Jeancampos10/site-control-hub-api/pkg/logger"
	corsmiddleware "github.com/Jeancampos10/site-control-hub-api/pkg/middleware/cors"
	reqidmiddleware "github.com/Jeancampos10/site-control-hub-api/pkg/middleware/requestid"
)

// @title Site Control Hub API
// @version 1.0.0
// @description Deferred bulk-edit reconciliation backend for the site control dashboard
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The recipient cache is an optimisation; fan-out works without it.
		logr.Sugar().Warnw("redis unavailable, continuing without cache", "error", err)
		redisClient = nil
	}

	metrics := service.NewMetricsService()

	bulkEditRepo := repository.NewBulkEditLogRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Notifications.AdminCacheTTL, logr, redisClient != nil)
	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            "site-control-hub",
	})
	notificationSvc := service.NewNotificationService(notificationRepo, userRepo, cacheSvc, logr,
		cfg.Notifications.Enabled, cfg.Notifications.AdminCacheTTL)
	gateway := service.NewSheetsGateway(cfg.Sheets, metrics, logr)
	bulkEditSvc := service.NewBulkEditService(bulkEditRepo, notificationSvc, gateway, nil, logr)

	applyQueue := jobs.NewQueue("bulk-edit-apply", bulkEditSvc.ApplyJobHandler(), jobs.QueueConfig{
		Workers:    cfg.Apply.WorkerConcurrency,
		BufferSize: cfg.Apply.QueueBuffer,
		MaxRetries: 1,
		Logger:     logr,
	})
	bulkEditSvc.AttachQueue(applyQueue)
	applyQueue.Start(context.Background())
	defer applyQueue.Stop()

	bulkEditHandler := handler.NewBulkEditHandler(bulkEditSvc)
	bulkUpdateHandler := handler.NewBulkUpdateHandler(gateway)
	authHandler := handler.NewAuthHandler(authSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		sheets := gateway.Healthcheck(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"status": "ready", "sheets": sheets})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Edge-function-compatible surface; OPTIONS preflight is answered by the
	// CORS middleware before auth or configuration checks run.
	r.POST("/apply-bulk-update", middleware.JWT(authSvc), bulkUpdateHandler.Apply)

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("", middleware.JWT(authSvc))
	protected.POST("/bulk-edits", bulkEditHandler.Submit)
	protected.GET("/bulk-edits", bulkEditHandler.List)
	protected.GET("/bulk-edits/:id", bulkEditHandler.Get)

	admin := protected.Group("", middleware.RequireRoles(models.RoleAdminPrincipal, models.RoleAdmin))
	admin.POST("/bulk-edits/:id/apply", bulkEditHandler.Apply)
	admin.GET("/bulk-edits/export", bulkEditHandler.Export)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

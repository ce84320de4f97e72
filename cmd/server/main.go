// Package main runs the conference portal HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/events-factory/mededafrica-abstract-submission-sub000/config"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/abstracts"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/analytics"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/auth"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/bulkimport"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/changelog"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/delegates"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/emaillogs"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/forms"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/middleware"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/payments"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/proxy"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/registrations"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/pkg/database"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/pkg/queue"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/pkg/redis"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/pkg/response"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			UploadsBucket:        cfg.AWS.UploadsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	// serverCtx outlives individual requests: background dispatch and
	// payment outcome persistence hang off it.
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Changelog (written by the mutating handlers below)
	auditRepo := changelog.NewRepository(pool, logger)
	changelogHandler := changelog.NewHandler(auditRepo, logger)

	// Dynamic registration forms
	formsRepo := forms.NewRepository(pool)
	formsHandler := forms.NewHandler(formsRepo, logger)

	// Delegates + invitation flow
	delegateRepo := delegates.NewRepository(pool)
	inviter := delegates.NewInviter(delegateRepo, jobQueue, cfg.Server.PortalURL, logger)
	delegateHandler := delegates.NewHandler(delegateRepo, inviter, auditRepo, logger)

	// Bulk import (staff spreadsheet pipeline)
	importStore := bulkimport.NewStore()
	progressHub := bulkimport.NewProgressHub(logger)
	importHandler := bulkimport.NewHandler(importStore, progressHub, inviter, serverCtx, logger)

	// Payments
	paymentProcessor := payments.NewProcessor()
	paymentGateway := payments.NewGateway(cfg.Payment, paymentProcessor, logger)
	paymentRepo := payments.NewRepository(pool)
	paymentService := payments.NewService(paymentGateway, paymentProcessor, paymentRepo, serverCtx, logger)
	var simulator *payments.SimulatedGateway
	if sim, ok := paymentGateway.(*payments.SimulatedGateway); ok {
		simulator = sim
		logger.Info("payment simulation mode active")
	}
	paymentHandler := payments.NewHandler(paymentService, simulator, logger)

	// Registrations
	registrationRepo := registrations.NewRepository(pool)
	categoryCache := registrations.NewCategoryCache(rdb, logger)
	registrationHandler := registrations.NewHandler(
		registrationRepo, categoryCache, formsRepo, paymentService,
		s3Client, delegateRepo, auditRepo, jobQueue, logger,
	)

	// Abstracts
	abstractRepo := abstracts.NewRepository(pool)
	abstractHandler := abstracts.NewHandler(abstractRepo, authRepo, s3Client, auditRepo, jobQueue, logger)

	// Staff dashboard + email logs
	analyticsHandler := analytics.NewHandler(pool, logger)
	emailLogsHandler := emaillogs.NewHandler(emaillogs.NewRepository(pool))

	// Proxy gateway to the conference backend
	proxyHandler := proxy.NewHandler(cfg.Backend, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	// Public registration surface: forms, categories, invitation
	// validation, submission and the payment flow.
	router.GET("/forms/:attendanceType", formsHandler.GetSchema)
	router.GET("/categories", registrationHandler.ListCategories)
	router.GET("/invitations/:token", delegateHandler.ValidateInvitation)
	router.POST("/registrations", registrationHandler.Submit)

	router.POST("/api/smartevent/Initialize-Payment", paymentHandler.Initialize)
	router.GET("/api/smartevent/Initialize-Payment", paymentHandler.InitializeWrongMethod)
	router.POST("/api/payments/callback", paymentHandler.Callback)
	router.GET("/api/payments/:sessionID", paymentHandler.Status)
	if simulator != nil {
		router.POST("/api/payments/simulator/:sessionID/complete", paymentHandler.SimulateComplete)
		router.POST("/api/payments/simulator/:sessionID/cancel", paymentHandler.SimulateCancel)
	}

	// Proxy gateway (auth passthrough, no local JWT requirement)
	router.Any("/api/proxy/*path", proxyHandler.Forward)

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		api.GET("/auth/me", authHandler.Me)
		api.GET("/users", middleware.RequireRole("admin"), authHandler.List)

		// Abstracts: authors manage their own, staff review
		api.POST("/abstracts", abstractHandler.Create)
		api.GET("/abstracts", abstractHandler.List)
		api.GET("/abstracts/:id", abstractHandler.Get)
		api.PUT("/abstracts/:id", abstractHandler.Update)
		api.DELETE("/abstracts/:id", abstractHandler.Delete)
		api.POST("/abstracts/:id/file", abstractHandler.UploadFile)
		api.GET("/abstracts/:id/file", abstractHandler.DownloadURL)
		api.POST("/abstracts/:id/coauthors", abstractHandler.AddCoauthor)
		api.DELETE("/abstracts/:id/coauthors/:coauthorID", abstractHandler.DeleteCoauthor)
		api.POST("/abstracts/:id/status", middleware.RequireStaff(), abstractHandler.SetStatus)
		api.GET("/abstracts/:id/history", middleware.RequireStaff(), abstractHandler.History)
		api.POST("/abstracts/:id/comments", middleware.RequireStaff(), abstractHandler.AddComment)

		// Registrations (staff views)
		api.GET("/registrations", middleware.RequireStaff(), registrationHandler.List)
		api.GET("/registrations/:id", registrationHandler.Get)

		// Category management (staff)
		api.POST("/categories", middleware.RequireStaff(), registrationHandler.CreateCategory)
		api.PUT("/categories/:id", middleware.RequireStaff(), registrationHandler.UpdateCategory)
		api.DELETE("/categories/:id", middleware.RequireStaff(), registrationHandler.DeleteCategory)

		// Form schema management (staff)
		api.PUT("/forms/:attendanceType", middleware.RequireStaff(), formsHandler.UpdateSchema)

		// Delegates (staff)
		api.GET("/delegates", middleware.RequireStaff(), delegateHandler.List)
		api.GET("/delegates/:id", middleware.RequireStaff(), delegateHandler.Get)
		api.POST("/delegates/invite", middleware.RequireStaff(), delegateHandler.Invite)
		api.PUT("/delegates/:id", middleware.RequireStaff(), delegateHandler.Update)
		api.DELETE("/delegates/:id", middleware.RequireStaff(), delegateHandler.Delete)

		// Bulk import (staff)
		api.POST("/bulk-import", middleware.RequireStaff(), importHandler.Upload)
		api.GET("/bulk-import/:id", middleware.RequireStaff(), importHandler.Get)
		api.GET("/bulk-import/:id/columns", middleware.RequireStaff(), importHandler.Columns)
		api.POST("/bulk-import/:id/confirm", middleware.RequireStaff(), importHandler.ConfirmMapping)
		api.DELETE("/bulk-import/:id/rows/:index", middleware.RequireStaff(), importHandler.RemoveRow)
		api.POST("/bulk-import/:id/dispatch", middleware.RequireStaff(), importHandler.Dispatch)

		// Payment attempt history per order (staff)
		api.GET("/payments/orders/:orderID", middleware.RequireStaff(), paymentHandler.AttemptsByOrder)

		// Changelog viewer + dashboard + email logs (staff)
		api.GET("/changelog", middleware.RequireStaff(), changelogHandler.List)
		api.GET("/analytics/summary", middleware.RequireStaff(), analyticsHandler.Summary)
		api.GET("/email-logs", middleware.RequireStaff(), emailLogsHandler.List)
	}

	// WebSocket progress feed (token validated on the HTTP upgrade by JWT
	// middleware; staff only, like the views that open it).
	router.GET("/bulk-import/:id/progress", middleware.JWT(jwtService), middleware.RequireStaff(), progressHub.ServeWS)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	serverCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}

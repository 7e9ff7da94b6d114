package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/app"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/config"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/database"
	apphttp "github.com/newslinemedia001-bot/newslinetrainingagency/internal/http"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/http/handlers"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/http/metrics"
	httpmw "github.com/newslinemedia001-bot/newslinetrainingagency/internal/http/middleware"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/http/response"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/integration/blobstore"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/integration/federated"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/integration/mailer"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/jobs"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/observability"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/repository/postgres"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/security"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/stream"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger()
	db := database.NewPostgres(database.PostgresConfig{
		DSN:             cfg.PostgresDSN,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxIdle:     cfg.DBConnMaxIdle,
		ConnMaxLifetime: cfg.DBConnMaxLife,
	})
	defer db.Close()
	redisClient := database.NewRedis(cfg.RedisAddr)
	if redisClient != nil {
		defer redisClient.Close()
	}

	userRepo := postgres.NewUserRepository(db)
	credentialRepo := postgres.NewCredentialRepository(db)
	refreshRepo := postgres.NewRefreshTokenRepository(db)
	resetRepo := postgres.NewPasswordResetRepository(db)
	applicationRepo := postgres.NewApplicationRepository(db)
	messageRepo := postgres.NewMessageRepository(db)

	jwtProvider := security.NewJWTProvider(cfg.JWTSecret)
	httpClient := &http.Client{Timeout: 10 * time.Second}
	var mailClient mailer.Client
	if cfg.Mail.BaseURL != "" {
		mailClient = mailer.NewClient(cfg.Mail.BaseURL, cfg.Mail.APIKey, cfg.Mail.From, httpClient)
	}
	var blobClient blobstore.Client
	if cfg.Blob.BaseURL != "" {
		blobClient = blobstore.NewClient(cfg.Blob.BaseURL, cfg.Blob.Preset, httpClient)
	}
	verifier := federated.NewVerifier(cfg.Federated.TokenInfoURL, cfg.Federated.ClientID, httpClient)

	dispatcher := app.NewDispatcher()
	feed := stream.NewFeed(redisClient, logger)

	sessionService := app.NewSessionService(userRepo, credentialRepo, refreshRepo, resetRepo, jwtProvider, verifier, mailClient, logger,
		cfg.PublicBaseURL, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, cfg.ResetTokenTTL)
	applicationService := app.NewApplicationService(applicationRepo, mailClient, dispatcher, feed, logger, cfg.Mail.AdminInbox)
	messageService := app.NewMessageService(messageRepo, userRepo, mailClient, dispatcher, logger)
	companyService := app.NewCompanyService(userRepo, logger)

	var limiter httpmw.Limiter
	if redisLimiter := httpmw.NewRedisLimiter(redisClient); redisLimiter != nil {
		limiter = redisLimiter
	} else {
		limiter = httpmw.NewRateLimiter()
	}

	collector := metrics.NewCollector()
	response.SetErrorCollector(collector)

	router := apphttp.NewRouter(apphttp.RouterDependencies{
		AuthHandler:        handlers.NewAuthHandler(sessionService, limiter),
		ApplicationHandler: handlers.NewApplicationHandler(applicationService),
		AdminHandler:       handlers.NewAdminHandler(applicationService, companyService, messageService),
		CompanyHandler:     handlers.NewCompanyHandler(applicationService),
		MessageHandler:     handlers.NewMessageHandler(messageService),
		UploadHandler:      handlers.NewUploadHandler(blobClient),
		CompatHandler:      handlers.NewCompatHandler(mailClient, cfg.Mail.AdminInbox),
		FeedHandler:        feed,
		AuthMiddleware:     httpmw.NewAuthMiddleware(sessionService),
		Limiter:            limiter,
		Metrics:            collector,
		Logger:             logger,
		RequestTimeout:     cfg.RequestTimeout,
		CORSOrigins:        cfg.CORSOrigins,
	})

	cleanup := jobs.NewCleanup(refreshRepo, resetRepo, logger)
	if err := cleanup.Start(); err != nil {
		log.Fatal(err)
	}
	defer cleanup.Stop()

	// No WriteTimeout: the admin feed holds its response open.
	server := &http.Server{
		Addr:        ":" + cfg.HTTPPort,
		Handler:     router,
		ReadTimeout: 5 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("API started on :" + cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}

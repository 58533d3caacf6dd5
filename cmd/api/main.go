package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mariocromia/centroservice/config"
	_ "github.com/mariocromia/centroservice/docs" // Important for Swagger
	"github.com/mariocromia/centroservice/internal/abuse"
	"github.com/mariocromia/centroservice/internal/auditlog"
	v1 "github.com/mariocromia/centroservice/internal/delivery/http/v1"
	"github.com/mariocromia/centroservice/internal/usecase"
	"github.com/mariocromia/centroservice/pkg/email"
	"github.com/mariocromia/centroservice/pkg/logger"
	"github.com/mariocromia/centroservice/pkg/redis"
	"github.com/mariocromia/centroservice/pkg/security"
)

// @title           Centro Service Contact API
// @version         1.0
// @description     Contact and quote-request backend for the Centro Service RJ marketing site.
// @host            localhost:8080
// @BasePath        /
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init()
	logger.Log.Info("Starting contact backend", "port", cfg.Port, "env", cfg.Environment)
	seclog := security.InitSecurityLogger("centroservice-api", cfg.Environment)

	// 3. Setup Redis (optional; abuse gates fall back to in-memory stores)
	if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
		logger.Log.Warn("Redis unavailable, using in-memory rate limit and CSRF stores", "error", err)
	}
	defer redis.Close()

	// 4. Setup Abuse Gates
	limiter := abuse.NewLimiter(redis.Client(), cfg.RateLimitAttempts, cfg.RateLimitWindow)
	tokens := abuse.NewTokenStore(redis.Client())

	// 5. Setup Email Service
	mailer := email.NewSMTPMailer(cfg)
	if !mailer.IsConfigured() {
		logger.Log.Warn("SMTP not fully configured - email dispatch will fail")
	}
	renderer := email.NewRenderer(cfg)

	// 6. Setup Audit Log
	audit := auditlog.NewWriter(cfg.LogDirectory)

	// 7. Setup UseCase
	contactUC := usecase.NewContactUsecase(cfg, mailer, renderer, limiter, tokens, audit, seclog)

	// 8. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		ContactUC:  contactUC,
		TokenStore: tokens,
		Config:     cfg,
	})

	// 9. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

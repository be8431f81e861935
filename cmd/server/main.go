package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"courier_api/internal/config"
	"courier_api/internal/database"
	"courier_api/internal/handlers"
	"courier_api/internal/logger"
	"courier_api/internal/migrations"
	"courier_api/internal/redis"
	"courier_api/internal/repository"
	"courier_api/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zapLogger, err := logger.New(cfg.LogsDirectory)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer zapLogger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Schema
	if cfg.DatabaseDriver == database.DriverPostgres && cfg.MigrationsEnabled {
		if err := migrations.RunMigrations(cfg.DatabaseURL, zapLogger); err != nil {
			zapLogger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseDriver, cfg.DatabaseURL, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	inquiryRepo := repository.NewInquiryRepository(db)
	billRepo := repository.NewBillRepository(db)

	// Initialize services
	sessionTTL := time.Duration(cfg.SessionTimeout) * time.Second
	authService := services.NewAuthService(userRepo, redisClient, sessionTTL, zapLogger)
	inquiryService := services.NewInquiryService(inquiryRepo, billRepo, zapLogger)
	billService := services.NewBillService(billRepo, inquiryRepo, zapLogger)

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	created, err := authService.SeedAdmin(seedCtx, cfg.AdminEmail, cfg.AdminUsername, cfg.AdminPassword)
	cancelSeed()
	if err != nil {
		zapLogger.Error("failed to seed admin", zap.Error(err))
	} else if created {
		zapLogger.Info("admin user seeded", zap.String("email", cfg.AdminEmail))
	}

	// Setup routes
	router := handlers.Router{
		Inquiries: handlers.NewInquiryHandler(inquiryService, zapLogger),
		Bills:     handlers.NewBillHandler(billService, zapLogger),
		Auth:      handlers.NewAuthHandler(authService, cfg.IsProduction(), cfg.SessionTimeout, zapLogger),
		Origins:   cfg.AllowedOrigins(),
		Logger:    zapLogger,
	}

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server
	go func() {
		zapLogger.Info("server starting", zap.String("port", cfg.ServerPort), zap.String("env", cfg.Environment))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		zapLogger.Error("server forced to shut down", zap.Error(err))
	}
}

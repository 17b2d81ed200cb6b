package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/Marling1212/ntu-sports-sub001/brackets"
	"github.com/Marling1212/ntu-sports-sub001/config"
	"github.com/Marling1212/ntu-sports-sub001/db"
	"github.com/Marling1212/ntu-sports-sub001/handlers"
	"github.com/Marling1212/ntu-sports-sub001/repositories"
	api "github.com/Marling1212/ntu-sports-sub001/routes"
	"github.com/Marling1212/ntu-sports-sub001/services"
	"github.com/Marling1212/ntu-sports-sub001/storage"
)

const tokenTTL = 24 * time.Hour

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	handlers.SetLogger(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	var uploader storage.FileUploader
	if cfg.StorageEnabled() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 storage not configured, logo uploads disabled")
	}

	wsHub := brackets.NewHub(logger)
	go wsHub.Run()
	logger.Info("websocket hub started")

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	eventRepo := repositories.NewPostgresEventRepository(dbConn)
	competitorRepo := repositories.NewPostgresCompetitorRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	announcementRepo := repositories.NewPostgresAnnouncementRepository(dbConn)
	logger.Info("repositories initialized")

	var emailService *services.EmailService
	var roundNotifier services.RoundNotifier
	var welcomeNotifier services.WelcomeNotifier
	if cfg.EmailEnabled() {
		emailService = services.NewEmailService(cfg)
		roundNotifier = emailService
		welcomeNotifier = emailService
		logger.Info("email service initialized")
	} else {
		logger.Warn("SMTP not configured, email notifications disabled")
	}

	authService := services.NewAuthService(userRepo, welcomeNotifier, cfg.JWTSecretKey, tokenTTL, logger)
	eventService := services.NewEventService(eventRepo, uploader, logger)
	competitorService := services.NewCompetitorService(competitorRepo, eventRepo, uploader, logger)
	bracketService := services.NewBracketService(dbConn, eventRepo, competitorRepo, matchRepo, wsHub, logger)
	matchService := services.NewMatchService(matchRepo, eventRepo, announcementRepo, userRepo, roundNotifier, wsHub, logger)
	standingsService := services.NewStandingsService(eventRepo, competitorRepo, matchRepo)
	announcementService := services.NewAnnouncementService(announcementRepo, eventRepo, wsHub, logger)
	logger.Info("services initialized")

	authHandler := handlers.NewAuthHandler(authService)
	eventHandler := handlers.NewEventHandler(eventService)
	competitorHandler := handlers.NewCompetitorHandler(competitorService)
	bracketHandler := handlers.NewBracketHandler(bracketService)
	matchHandler := handlers.NewMatchHandler(matchService)
	standingsHandler := handlers.NewStandingsHandler(standingsService)
	announcementHandler := handlers.NewAnnouncementHandler(announcementService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, logger)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		authService,
		authHandler,
		eventHandler,
		competitorHandler,
		bracketHandler,
		matchHandler,
		standingsHandler,
		announcementHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
}

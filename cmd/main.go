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

	"github.com/Dosada05/padel-manager/brackets"
	"github.com/Dosada05/padel-manager/config"
	"github.com/Dosada05/padel-manager/db"
	"github.com/Dosada05/padel-manager/handlers"
	"github.com/Dosada05/padel-manager/repositories"
	api "github.com/Dosada05/padel-manager/routes"
	"github.com/Dosada05/padel-manager/services"
	"github.com/Dosada05/padel-manager/storage"
	"github.com/go-chi/chi/v5"
)

const schedulerInterval = 30 * time.Second // как часто проверяем просроченные турниры

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, dbConn); err != nil {
			logger.Error("failed to apply schema", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("database schema applied")
	}

	// Загрузчик файлов (Cloudflare R2), без настроек загрузка логотипов выключена
	uploader := storage.NewDisabledUploader()
	if cfg.StorageEnabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
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
		logger.Warn("R2 storage is not configured, logo uploads are disabled")
	}

	// WebSocket Hub
	wsHub := brackets.NewHub(logger)
	go wsHub.Run(ctx)

	// Репозитории
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	clubRepo := repositories.NewPostgresClubRepository(dbConn)
	coachRepo := repositories.NewPostgresCoachRepository(dbConn)
	coupleRepo := repositories.NewPostgresCoupleRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	inscriptionRepo := repositories.NewPostgresInscriptionRepository(dbConn)
	zoneRepo := repositories.NewPostgresZoneRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)

	// Сервисы
	authService := services.NewAuthService(dbConn, userRepo, playerRepo, clubRepo, coachRepo, logger)
	clubService := services.NewClubService(clubRepo, uploader, logger)
	playerService := services.NewPlayerService(playerRepo)
	tournamentService := services.NewTournamentService(
		tournamentRepo,
		clubRepo,
		inscriptionRepo,
		zoneRepo,
		matchRepo,
		uploader,
		wsHub,
		logger,
	)
	inscriptionService := services.NewInscriptionService(
		dbConn,
		inscriptionRepo,
		tournamentRepo,
		playerRepo,
		coupleRepo,
		clubRepo,
		logger,
	)
	zoneService := services.NewZoneService(
		dbConn,
		tournamentRepo,
		clubRepo,
		inscriptionRepo,
		zoneRepo,
		matchRepo,
		wsHub,
		cfg.ZoneSize,
		logger,
	)
	bracketService := services.NewBracketService(
		dbConn,
		tournamentRepo,
		clubRepo,
		inscriptionRepo,
		zoneRepo,
		matchRepo,
		wsHub,
		cfg.QualifiersPerZone,
		logger,
	)
	matchService := services.NewMatchService(
		dbConn,
		matchRepo,
		tournamentRepo,
		clubRepo,
		coupleRepo,
		playerRepo,
		wsHub,
		logger,
	)
	viewService := services.NewViewService(tournamentService, clubRepo, playerRepo, coachRepo, coupleRepo)

	// Планировщик: турниры, не стартовавшие к дате окончания, отменяются
	go func() {
		ticker := time.NewTicker(schedulerInterval)
		defer ticker.Stop()
		logger.Info("tournament scheduler started", slog.Duration("interval", schedulerInterval))

		run := func() {
			n, err := tournamentService.AutoCancelExpired(ctx, time.Now())
			if err != nil {
				logger.Error("scheduler run failed", slog.Any("error", err))
				return
			}
			if n > 0 {
				logger.Info("scheduler canceled expired tournaments", slog.Int("count", n))
			}
		}

		run()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				run()
			}
		}
	}()

	// Маршрутизатор
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Auth:        handlers.NewAuthHandler(authService, cfg.JWTSecretKey),
		Club:        handlers.NewClubHandler(clubService),
		Player:      handlers.NewPlayerHandler(playerService),
		Tournament:  handlers.NewTournamentHandler(tournamentService, viewService),
		Inscription: handlers.NewInscriptionHandler(inscriptionService),
		Zone:        handlers.NewZoneHandler(zoneService, bracketService),
		Match:       handlers.NewMatchHandler(matchService),
		WebSocket:   handlers.NewWebSocketHandler(wsHub, cfg.CORSAllowedOrigins, logger),
	}, cfg.JWTSecretKey, cfg.CORSAllowedOrigins)
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

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			stop()
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		} else {
			logger.Info("server shutdown complete")
		}
	}
	stop()
	logger.Info("application exited")
}

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/knockout-system/brackets"
	"github.com/Dosada05/knockout-system/cache"
	"github.com/Dosada05/knockout-system/config"
	"github.com/Dosada05/knockout-system/db"
	"github.com/Dosada05/knockout-system/handlers"
	"github.com/Dosada05/knockout-system/metrics"
	"github.com/Dosada05/knockout-system/repositories"
	api "github.com/Dosada05/knockout-system/routes"
	"github.com/Dosada05/knockout-system/services"
	"github.com/Dosada05/knockout-system/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
)

const version = "1.0.0"

// @title Knockout Tournament API
// @version 1.0
// @description Клубы, игроки, сетка на выбывание, корты, судейские коды и таблица лидеров.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
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
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.Bool("database_configured", cfg.DatabaseConfigured()))

	declash, err := brackets.ParseDeclashStrategy(cfg.DeclashStrategy)
	if err != nil {
		logger.Error("invalid declash strategy", slog.Any("error", err))
		os.Exit(1)
	}

	appMetrics := metrics.New()

	// Инициализация WebSocket Hub
	wsHub := brackets.NewHub(logger)
	go wsHub.Run()
	defer wsHub.Stop()
	logger.Info("WebSocket Hub started")

	routeHandlers := api.Handlers{
		System: handlers.NewSystemHandler(cfg.DatabaseConfigured(), version),
	}

	var purgeJobs *cron.Cron
	if cfg.DatabaseConfigured() {
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

		migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
		err = db.Migrate(migrateCtx, dbConn, logger)
		cancelMigrate()
		if err != nil {
			logger.Error("failed to apply migrations", slog.Any("error", err))
			os.Exit(1)
		}

		readCache := setupCache(cfg, logger)
		uploader := setupUploader(cfg, logger)

		var codeService services.MatchCodeService
		routeHandlers, codeService = wire(cfg, logger, dbConn, readCache, uploader, wsHub, appMetrics, declash, routeHandlers)

		purgeJobs, err = startPurgeJob(cfg.CodePurgeSchedule, codeService, logger)
		if err != nil {
			logger.Error("failed to schedule match code purge", slog.Any("error", err))
			os.Exit(1)
		}
	} else {
		logger.Warn("DATABASE_URL is not set, starting without a store: data endpoints answer 503")
	}

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, routeHandlers, api.Options{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		UmpireSecret:       []byte(cfg.JWTSecretKey),
		RequireUmpireToken: cfg.RequireUmpireToken,
		Metrics:            appMetrics,
	})
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
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
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if purgeJobs != nil {
			<-purgeJobs.Stop().Done()
		}

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}

// setupCache берёт Redis, а без REDIS_URL или при недоступном Redis использует кэш в памяти.
func setupCache(cfg *config.Config, logger *slog.Logger) cache.Cache {
	if cfg.RedisURL == "" {
		logger.Info("REDIS_URL is not set, using in-memory cache")
		return cache.NewMemory()
	}
	redisCache, _, err := cache.NewRedis(cfg.RedisURL)
	if err != nil {
		logger.Warn("redis unavailable, using in-memory cache", slog.Any("error", err))
		return cache.NewMemory()
	}
	logger.Info("redis cache connected")
	return redisCache
}

// setupUploader возвращает nil, если R2 не настроен: загруженные составы тогда не архивируются.
func setupUploader(cfg *config.Config, logger *slog.Logger) storage.FileUploader {
	if !cfg.R2Configured() {
		return nil
	}
	// Инициализация загрузчика файлов (Cloudflare R2)
	uploader, err := storage.NewCloudflareR2Uploader(context.Background(), storage.CloudflareR2UploaderConfig{
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
	return uploader
}

func wire(
	cfg *config.Config,
	logger *slog.Logger,
	dbConn *sql.DB,
	readCache cache.Cache,
	uploader storage.FileUploader,
	wsHub *brackets.Hub,
	appMetrics *metrics.Metrics,
	declash brackets.DeclashStrategy,
	h api.Handlers,
) (api.Handlers, services.MatchCodeService) {
	// Инициализация репозиториев
	clubRepo := repositories.NewPostgresClubRepository(dbConn)
	eventRepo := repositories.NewPostgresEventRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	scoreRepo := repositories.NewPostgresScoreRepository(dbConn)
	codeRepo := repositories.NewPostgresMatchCodeRepository(dbConn)
	locker := repositories.NewPostgresEventLocker(dbConn, logger)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	generator := brackets.NewSingleEliminationGenerator(declash, nil)

	clubService := services.NewClubService(clubRepo)
	eventService := services.NewEventService(eventRepo)
	playerService := services.NewPlayerService(playerRepo, clubRepo, eventRepo, uploader, appMetrics, logger)
	fixtureService := services.NewFixtureService(eventRepo, playerRepo, matchRepo, locker, generator,
		readCache, cfg.CacheTTL, wsHub, appMetrics, logger)
	scheduleService := services.NewScheduleService(eventRepo, matchRepo, locker, readCache, wsHub, appMetrics, logger)
	resultService := services.NewResultService(matchRepo, scoreRepo, locker, brackets.NewRoundAdvancer(),
		readCache, wsHub, appMetrics, logger)
	codeService := services.NewMatchCodeService(codeRepo, matchRepo, cfg.MatchCodeTTL, []byte(cfg.JWTSecretKey), appMetrics, logger)
	leaderboardService := services.NewLeaderboardService(eventRepo, matchRepo, scoreRepo, playerRepo,
		readCache, cfg.CacheTTL, logger)
	logger.Info("Services initialized", slog.String("declash_strategy", string(declash)))

	// Инициализация обработчиков HTTP
	h.Club = handlers.NewClubHandler(clubService)
	h.Event = handlers.NewEventHandler(eventService)
	h.Player = handlers.NewPlayerHandler(playerService)
	h.Fixture = handlers.NewFixtureHandler(fixtureService)
	h.Schedule = handlers.NewScheduleHandler(scheduleService)
	h.MatchCode = handlers.NewMatchCodeHandler(codeService)
	h.Result = handlers.NewResultHandler(resultService)
	h.Leaderboard = handlers.NewLeaderboardHandler(leaderboardService)
	h.WebSocket = handlers.NewWebSocketHandler(wsHub, eventService, logger)
	logger.Info("HTTP handlers initialized")

	return h, codeService
}

func startPurgeJob(schedule string, codeService services.MatchCodeService, logger *slog.Logger) (*cron.Cron, error) {
	jobs := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	_, err := jobs.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := codeService.PurgeExpired(ctx); err != nil {
			logger.Error("match code purge failed", slog.Any("error", err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid CODE_PURGE_SCHEDULE %q: %w", schedule, err)
	}
	jobs.Start()
	logger.Info("match code purge scheduled", slog.String("schedule", schedule))
	return jobs, nil
}

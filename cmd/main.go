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

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/Dosada05/selective-league/brackets"
	"github.com/Dosada05/selective-league/config"
	"github.com/Dosada05/selective-league/db"
	"github.com/Dosada05/selective-league/handlers"
	"github.com/Dosada05/selective-league/metrics"
	"github.com/Dosada05/selective-league/repositories"
	api "github.com/Dosada05/selective-league/routes"
	"github.com/Dosada05/selective-league/services"
	"github.com/Dosada05/selective-league/storage"
)

type repositorySet struct {
	players    repositories.PlayerRepository
	selectives repositories.SelectiveRepository
	matches    repositories.MatchRepository
	settings   repositories.SettingsRepository
}

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
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("ranking_mode", string(cfg.RankingMode)))

	// Хранилище: Postgres при заданном DATABASE_URL, иначе память процесса
	var repos repositorySet
	if cfg.DatabaseURL != "" {
		dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second, logger)
		if err != nil {
			logger.Error("failed to connect to database", slog.Any("error", err))
			os.Exit(1)
		}
		defer closeDB(dbConn, logger)

		migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err = db.Migrate(migrateCtx, dbConn)
		cancel()
		if err != nil {
			logger.Error("failed to apply schema", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("database connection established")

		repos = repositorySet{
			players:    repositories.NewPostgresPlayerRepository(dbConn),
			selectives: repositories.NewPostgresSelectiveRepository(dbConn),
			matches:    repositories.NewPostgresMatchRepository(dbConn),
			settings:   repositories.NewPostgresSettingsRepository(dbConn, cfg.RankingMode),
		}
	} else {
		store := repositories.NewMemoryStore(cfg.RankingMode)
		repos = repositorySet{
			players:    store.Players(),
			selectives: store.Selectives(),
			matches:    store.Matches(),
			settings:   store.Settings(),
		}
		logger.Warn("DATABASE_URL is not set, using in-memory store")
	}

	// Инициализация загрузчика файлов (Cloudflare R2)
	selectiveOpts := []services.SelectiveServiceOption{}
	if cfg.R2.Enabled() {
		uploader, err := storage.NewCloudflareR2Uploader(context.Background(), cfg.R2, logger)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		selectiveOpts = append(selectiveOpts, services.WithStandingsExport(uploader))
		logger.Info("Cloudflare R2 uploader initialized", slog.String("bucket", cfg.R2.BucketName))
	}

	// Инициализация WebSocket Hub
	done := make(chan struct{})
	wsHub := brackets.NewHub(logger)
	go wsHub.Run(done)
	logger.Info("WebSocket Hub started")

	m := metrics.New()

	// Инициализация сервисов
	authService := services.NewAuthService(cfg.AdminPasswordHash, []byte(cfg.JWTSecretKey), cfg.TokenTTL)
	ratingService := services.NewRatingService(repos.players, m, logger, services.WithRecordedEloUndo(cfg.EloExactUndo))
	playerService := services.NewPlayerService(repos.players, logger)
	settingsService := services.NewSettingsService(repos.settings, wsHub)
	matchService := services.NewMatchService(repos.matches, repos.selectives, ratingService, wsHub, m, logger)
	selectiveService := services.NewSelectiveService(
		repos.selectives,
		repos.matches,
		repos.players,
		ratingService,
		wsHub,
		m,
		logger,
		selectiveOpts...,
	)
	rankingService := services.NewRankingService(repos.players, repos.matches, repos.settings, wsHub, m, logger)
	logger.Info("Services initialized")

	// Инициализация обработчиков HTTP
	h := api.Handlers{
		Player:    handlers.NewPlayerHandler(playerService),
		Selective: handlers.NewSelectiveHandler(selectiveService, matchService),
		Match:     handlers.NewMatchHandler(matchService),
		Ranking:   handlers.NewRankingHandler(rankingService, settingsService),
		Auth:      handlers.NewAuthHandler(authService),
		WebSocket: handlers.NewWebSocketHandler(wsHub, selectiveService),
	}

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, h, api.Options{
		AuthService:    authService,
		MetricsHandler: m.Handler(),
		CORSOrigins:    cfg.CORSOrigins,
	})
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 40 * time.Second,
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

	exitCode := 0
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			exitCode = 1
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			exitCode = 1
		} else {
			logger.Info("server shutdown complete")
		}
	}
	close(done)
	logger.Info("application exited")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func closeDB(dbConn *sql.DB, logger *slog.Logger) {
	if err := dbConn.Close(); err != nil {
		logger.Error("failed to close database connection", slog.Any("error", err))
		return
	}
	logger.Info("database connection closed")
}

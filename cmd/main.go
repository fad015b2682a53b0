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

	"github.com/Dauren-Zh/tourney-engine/config"
	"github.com/Dauren-Zh/tourney-engine/db"
	"github.com/Dauren-Zh/tourney-engine/handlers"
	"github.com/Dauren-Zh/tourney-engine/notify"
	"github.com/Dauren-Zh/tourney-engine/repositories"
	api "github.com/Dauren-Zh/tourney-engine/routes"
	"github.com/Dauren-Zh/tourney-engine/services"
	"github.com/Dauren-Zh/tourney-engine/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

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
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Snapshot archiving is optional; without R2 credentials snapshots
	// live only in Postgres.
	var archiver storage.SnapshotArchiver
	if cfg.ArchivingEnabled() {
		uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
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
		archiver = storage.NewSnapshotArchiver(uploader)
		logger.Info("snapshot archiving enabled", slog.String("bucket", cfg.R2BucketName))
	}

	wsHub := notify.NewHub()
	go wsHub.Run()
	logger.Info("websocket hub started")

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	participantRepo := repositories.NewPostgresParticipantRepository(dbConn)
	outcomeRepo := repositories.NewPostgresOutcomeRepository(dbConn)
	snapshotRepo := repositories.NewPostgresSnapshotRepository(dbConn)
	logger.Info("repositories initialized")

	publisher := notify.NewHubPublisher(wsHub)
	coordinator := services.NewRecalculationCoordinator(
		tournamentRepo,
		participantRepo,
		outcomeRepo,
		snapshotRepo,
		dbConn,
		publisher,
		archiver,
		logger,
	)

	userService := services.NewUserService(userRepo, dbConn)
	tournamentService := services.NewTournamentService(tournamentRepo, dbConn, coordinator)
	participantService := services.NewParticipantService(participantRepo, tournamentRepo, userRepo, dbConn, coordinator)
	outcomeService := services.NewOutcomeService(outcomeRepo, participantRepo, tournamentRepo, dbConn, coordinator)
	standingsService := services.NewStandingsService(snapshotRepo, tournamentRepo, coordinator)
	pairingService := services.NewPairingService(tournamentRepo, participantRepo, outcomeRepo, publisher)
	logger.Info("services initialized")

	userHandler := handlers.NewUserHandler(userService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	participantHandler := handlers.NewParticipantHandler(participantService)
	outcomeHandler := handlers.NewOutcomeHandler(outcomeService)
	standingsHandler := handlers.NewStandingsHandler(standingsService)
	pairingHandler := handlers.NewPairingHandler(pairingService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, tournamentService)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		userHandler,
		tournamentHandler,
		participantHandler,
		outcomeHandler,
		standingsHandler,
		pairingHandler,
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
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}

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

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-amqp/v2/pkg/amqp"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/ttimaizumi/tournaments-sub000/brackets"
	"github.com/ttimaizumi/tournaments-sub000/config"
	"github.com/ttimaizumi/tournaments-sub000/db"
	"github.com/ttimaizumi/tournaments-sub000/handlers"
	"github.com/ttimaizumi/tournaments-sub000/messaging"
	"github.com/ttimaizumi/tournaments-sub000/repositories"
	"github.com/ttimaizumi/tournaments-sub000/routes"
	"github.com/ttimaizumi/tournaments-sub000/services"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

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

	wmLogger := watermill.NewStdLogger(false, false)
	amqpConfig := amqp.NewDurableQueueConfig(cfg.AMQPURL)

	amqpPublisher, err := amqp.NewPublisher(amqpConfig, wmLogger)
	if err != nil {
		logger.Error("failed to create AMQP publisher", slog.Any("error", err))
		os.Exit(1)
	}
	defer amqpPublisher.Close()

	amqpSubscriber, err := amqp.NewSubscriber(amqpConfig, wmLogger)
	if err != nil {
		logger.Error("failed to create AMQP subscriber", slog.Any("error", err))
		os.Exit(1)
	}
	defer amqpSubscriber.Close()

	publisher := messaging.NewEventPublisher(amqpPublisher)

	wsHub := brackets.NewHub(logger)
	go wsHub.Run()

	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	groupRepo := repositories.NewPostgresGroupRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	standingRepo := repositories.NewPostgresStandingRepository(dbConn)

	standingsCalc := services.NewStandingsCalculator(matchRepo, groupRepo, standingRepo)
	matchService := services.NewMatchService(matchRepo, publisher)
	groupService := services.NewGroupService(groupRepo, teamRepo, publisher)
	tournamentService := services.NewTournamentService(tournamentRepo, groupRepo, teamRepo, matchRepo, publisher)

	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	groupHandler := handlers.NewGroupHandler(groupService, standingsCalc)
	matchHandler := handlers.NewMatchHandler(matchService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, tournamentService, logger)

	router := chi.NewRouter()
	routes.SetupRoutes(router, tournamentHandler, groupHandler, matchHandler, webSocketHandler)
	logger.Info("routes configured")

	// Bridge outbound progression events into the websocket hub.
	bridgeRouter, err := message.NewRouter(message.RouterConfig{}, wmLogger)
	if err != nil {
		logger.Error("failed to create bridge router", slog.Any("error", err))
		os.Exit(1)
	}
	bridge := messaging.NewHubBridge(wsHub, logger)
	bridge.Attach(bridgeRouter, amqpSubscriber)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := bridgeRouter.Run(ctx); err != nil {
			logger.Error("bridge router stopped", slog.Any("error", err))
		}
	}()

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

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
	}
	logger.Info("application exited")
}

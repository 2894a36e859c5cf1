package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-amqp/v2/pkg/amqp"
	"github.com/ThreeDotsLabs/watermill/message"
	_ "github.com/lib/pq"

	"github.com/ttimaizumi/tournaments-sub000/config"
	"github.com/ttimaizumi/tournaments-sub000/db"
	"github.com/ttimaizumi/tournaments-sub000/messaging"
	"github.com/ttimaizumi/tournaments-sub000/repositories"
	"github.com/ttimaizumi/tournaments-sub000/services"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

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

	amqpSubscriber, err := amqp.NewSubscriber(amqpConfig, wmLogger)
	if err != nil {
		logger.Error("failed to create AMQP subscriber", slog.Any("error", err))
		os.Exit(1)
	}
	defer amqpSubscriber.Close()

	amqpPublisher, err := amqp.NewPublisher(amqpConfig, wmLogger)
	if err != nil {
		logger.Error("failed to create AMQP publisher", slog.Any("error", err))
		os.Exit(1)
	}
	defer amqpPublisher.Close()

	publisher := messaging.NewEventPublisher(amqpPublisher)

	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	groupRepo := repositories.NewPostgresGroupRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	standingRepo := repositories.NewPostgresStandingRepository(dbConn)

	standingsCalc := services.NewStandingsCalculator(matchRepo, groupRepo, standingRepo)
	engine := services.NewAdvancementEngine(
		matchRepo, groupRepo, teamRepo, tournamentRepo,
		standingsCalc, publisher, logger,
	)

	router, err := messaging.NewConsumerRouter(
		message.RouterConfig{}, wmLogger, amqpSubscriber, engine, logger,
	)
	if err != nil {
		logger.Error("failed to create consumer router", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("consumer started")
	if err := router.Run(ctx); err != nil {
		logger.Error("consumer router stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("consumer exited")
}

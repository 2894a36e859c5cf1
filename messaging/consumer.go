package messaging

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/ttimaizumi/tournaments-sub000/brackets"
	"github.com/ttimaizumi/tournaments-sub000/models"
	"github.com/ttimaizumi/tournaments-sub000/services"
)

// NewConsumerRouter wires the advancement engine to its three inbound queues.
// Handlers acknowledge on success and on terminal errors; storage failures
// propagate so the broker redelivers.
func NewConsumerRouter(
	routerConfig message.RouterConfig,
	watermillLogger watermill.LoggerAdapter,
	subscriber message.Subscriber,
	engine services.AdvancementEngine,
	logger *slog.Logger,
) (*message.Router, error) {
	router, err := message.NewRouter(routerConfig, watermillLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer router: %w", err)
	}
	router.AddMiddleware(middleware.Recoverer)

	router.AddNoPublisherHandler(
		"score_recorded_handler",
		models.TopicScoreRecorded,
		subscriber,
		func(msg *message.Message) error {
			var event models.ScoreRecordedEvent
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				logger.Error("discarding malformed score message",
					slog.String("message_id", msg.UUID), slog.Any("error", err))
				return nil
			}
			return dispatch(logger, msg, "score recorded",
				engine.ProcessScoreRecorded(msg.Context(), event))
		},
	)

	router.AddNoPublisherHandler(
		"team_added_handler",
		models.TopicTeamAdded,
		subscriber,
		func(msg *message.Message) error {
			var event models.TeamAddedEvent
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				logger.Error("discarding malformed team message",
					slog.String("message_id", msg.UUID), slog.Any("error", err))
				return nil
			}
			return dispatch(logger, msg, "team added",
				engine.ProcessTeamAdded(msg.Context(), event))
		},
	)

	router.AddNoPublisherHandler(
		"tournament_full_handler",
		models.TopicTournamentFull,
		subscriber,
		func(msg *message.Message) error {
			var event models.TournamentFullEvent
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				logger.Error("discarding malformed tournament message",
					slog.String("message_id", msg.UUID), slog.Any("error", err))
				return nil
			}
			return dispatch(logger, msg, "tournament full",
				engine.ProcessTournamentFull(msg.Context(), event))
		},
	)

	return router, nil
}

// dispatch classifies engine errors: domain errors are terminal, the message
// is acknowledged and logged; anything else is assumed transient and returned
// so the message comes back.
func dispatch(logger *slog.Logger, msg *message.Message, kind string, err error) error {
	if err == nil {
		return nil
	}
	if isTerminal(err) {
		logger.Warn("dropping message after terminal error",
			slog.String("handler", kind),
			slog.String("message_id", msg.UUID),
			slog.Any("error", err))
		return nil
	}
	return err
}

func isTerminal(err error) bool {
	terminal := []error{
		services.ErrMatchNotFound,
		services.ErrGroupNotFound,
		services.ErrTeamNotFound,
		services.ErrTournamentNotFound,
		services.ErrInvalidScore,
		services.ErrTieNotAllowed,
		brackets.ErrInvalidEntrantCount,
		brackets.ErrInvalidGroupSize,
		brackets.ErrMissingQualifiers,
	}
	for _, t := range terminal {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

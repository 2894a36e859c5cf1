package messaging

import (
	"encoding/json"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ttimaizumi/tournaments-sub000/brackets"
	"github.com/ttimaizumi/tournaments-sub000/models"
)

// HubBridge relays outbound progression events from the queue into the
// websocket hub, one room per tournament. Delivery is best effort; a client
// that misses a frame refetches over HTTP.
type HubBridge struct {
	hub    *brackets.Hub
	logger *slog.Logger
}

func NewHubBridge(hub *brackets.Hub, logger *slog.Logger) *HubBridge {
	return &HubBridge{hub: hub, logger: logger}
}

// Attach registers one forwarding handler per outbound topic on the router.
func (b *HubBridge) Attach(router *message.Router, subscriber message.Subscriber) {
	topics := []string{
		models.TopicScoreRecorded,
		models.TopicMatchCreated,
		models.TopicRoundAdvanced,
		models.TopicTournamentCompleted,
	}
	for _, topic := range topics {
		topic := topic
		router.AddNoPublisherHandler(
			"ws_bridge_"+topic,
			topic,
			subscriber,
			func(msg *message.Message) error {
				b.forward(topic, msg.Payload)
				return nil
			},
		)
	}
}

func (b *HubBridge) forward(topic string, payload []byte) {
	var envelope struct {
		TournamentID string `json:"tournamentId"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil || envelope.TournamentID == "" {
		b.logger.Warn("skipping frame without tournament id", slog.String("topic", topic))
		return
	}

	b.hub.BroadcastToRoom(envelope.TournamentID, brackets.ProgressionMessage{
		Type:    topic,
		Payload: json.RawMessage(payload),
	})
}

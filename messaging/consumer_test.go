package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ttimaizumi/tournaments-sub000/models"
	"github.com/ttimaizumi/tournaments-sub000/services"
)

type stubEngine struct {
	scores      chan models.ScoreRecordedEvent
	teamsAdded  chan models.TeamAddedEvent
	tournaments chan models.TournamentFullEvent
	err         error
}

func newStubEngine() *stubEngine {
	return &stubEngine{
		scores:      make(chan models.ScoreRecordedEvent, 8),
		teamsAdded:  make(chan models.TeamAddedEvent, 8),
		tournaments: make(chan models.TournamentFullEvent, 8),
	}
}

func (s *stubEngine) ProcessScoreRecorded(_ context.Context, event models.ScoreRecordedEvent) error {
	s.scores <- event
	return s.err
}

func (s *stubEngine) ProcessTeamAdded(_ context.Context, event models.TeamAddedEvent) error {
	s.teamsAdded <- event
	return s.err
}

func (s *stubEngine) ProcessTournamentFull(_ context.Context, event models.TournamentFullEvent) error {
	s.tournaments <- event
	return s.err
}

func startRouter(t *testing.T, engine services.AdvancementEngine) (*gochannel.GoChannel, context.CancelFunc) {
	t.Helper()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router, err := NewConsumerRouter(message.RouterConfig{}, watermill.NopLogger{}, pubSub, engine, logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := router.Run(ctx); err != nil {
			t.Logf("router stopped: %v", err)
		}
	}()
	select {
	case <-router.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("router did not start")
	}

	t.Cleanup(func() {
		cancel()
		pubSub.Close()
	})
	return pubSub, cancel
}

func publishJSON(t *testing.T, pubSub *gochannel.GoChannel, topic string, payload interface{}) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, pubSub.Publish(topic, message.NewMessage(watermill.NewUUID(), body)))
}

func TestConsumerRouterDispatchesEvents(t *testing.T) {
	engine := newStubEngine()
	pubSub, _ := startRouter(t, engine)

	publishJSON(t, pubSub, models.TopicScoreRecorded, models.ScoreRecordedEvent{
		TournamentID: "t1", MatchID: "m1", HomeTeamScore: 2, VisitorTeamScore: 0,
	})
	publishJSON(t, pubSub, models.TopicTeamAdded, models.TeamAddedEvent{
		TournamentID: "t1", GroupID: "g1", TeamID: "team-1",
	})
	publishJSON(t, pubSub, models.TopicTournamentFull, models.TournamentFullEvent{
		TournamentID: "t1",
	})

	select {
	case event := <-engine.scores:
		assert.Equal(t, "m1", event.MatchID)
		assert.Equal(t, 2, event.HomeTeamScore)
	case <-time.After(5 * time.Second):
		t.Fatal("score event not dispatched")
	}
	select {
	case event := <-engine.teamsAdded:
		assert.Equal(t, "g1", event.GroupID)
	case <-time.After(5 * time.Second):
		t.Fatal("team added event not dispatched")
	}
	select {
	case event := <-engine.tournaments:
		assert.Equal(t, "t1", event.TournamentID)
	case <-time.After(5 * time.Second):
		t.Fatal("tournament full event not dispatched")
	}
}

func TestConsumerRouterDropsMalformedPayload(t *testing.T) {
	engine := newStubEngine()
	pubSub, _ := startRouter(t, engine)

	require.NoError(t, pubSub.Publish(models.TopicScoreRecorded,
		message.NewMessage(watermill.NewUUID(), []byte("not json"))))

	select {
	case <-engine.scores:
		t.Fatal("malformed payload must not reach the engine")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestConsumerRouterAcksTerminalErrors(t *testing.T) {
	engine := newStubEngine()
	engine.err = fmt.Errorf("lookup: %w", services.ErrMatchNotFound)
	pubSub, _ := startRouter(t, engine)

	publishJSON(t, pubSub, models.TopicScoreRecorded, models.ScoreRecordedEvent{
		TournamentID: "t1", MatchID: "missing",
	})

	// Terminal errors are swallowed; the message is consumed exactly once
	// instead of looping forever.
	select {
	case <-engine.scores:
	case <-time.After(5 * time.Second):
		t.Fatal("event not dispatched")
	}
	select {
	case <-engine.scores:
		t.Fatal("terminal error must not trigger redelivery")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, isTerminal(services.ErrMatchNotFound))
	assert.True(t, isTerminal(fmt.Errorf("wrapped: %w", services.ErrTieNotAllowed)))
	assert.True(t, isTerminal(fmt.Errorf("wrapped: %w", services.ErrInvalidScore)))
	assert.False(t, isTerminal(errors.New("connection refused")))
	assert.False(t, isTerminal(context.DeadlineExceeded))
}

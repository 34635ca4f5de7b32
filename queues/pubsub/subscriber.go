package pubsub

import (
	"context"
	"encoding/json"
	"time"

	"dragon-duel-client/queues"

	gpubsub "cloud.google.com/go/pubsub"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

type Subscriber struct {
	projectID        string
	subscriptionName string
	credsFile        string
	client           *gpubsub.Client
	sub              *gpubsub.Subscription
	maxOutstanding   int
}

// NewSubscriber builds a lazy subscriber. maxOutstanding caps battles handled at once; 0 keeps the library default.
func NewSubscriber(projectID, subscriptionName, credsFile string, maxOutstanding int) *Subscriber {
	return &Subscriber{projectID: projectID, subscriptionName: subscriptionName, credsFile: credsFile, maxOutstanding: maxOutstanding}
}

func (s *Subscriber) Start(ctx context.Context, handler func(context.Context, *queues.BattleRequest) error) error {
	if s.client == nil {
		var (
			client *gpubsub.Client
			err    error
		)
		if s.credsFile != "" {
			log.Debug().Str("projectID", s.projectID).Str("subscription", s.subscriptionName).Str("credsFile", s.credsFile).Msg("initializing pubsub subscriber with explicit credentials")
			client, err = gpubsub.NewClient(ctx, s.projectID, option.WithCredentialsFile(s.credsFile))
		} else {
			log.Debug().Str("projectID", s.projectID).Str("subscription", s.subscriptionName).Msg("initializing pubsub subscriber with default credentials")
			client, err = gpubsub.NewClient(ctx, s.projectID)
		}
		if err != nil {
			log.Error().Err(err).Str("projectID", s.projectID).Str("subscription", s.subscriptionName).Msg("failed to create pubsub client for subscriber")
			return err
		}
		s.client = client
		s.sub = client.Subscription(s.subscriptionName)
		if s.maxOutstanding > 0 {
			s.sub.ReceiveSettings.MaxOutstandingMessages = s.maxOutstanding
		}
		log.Info().Str("subscription", s.subscriptionName).Msg("pubsub subscriber initialized")
	}

	// Receive blocks; it will create goroutines internally; respect ctx cancellation
	return s.sub.Receive(ctx, func(ctx context.Context, m *gpubsub.Message) {

		log.Debug().Str("messageID", m.ID).Int("size", len(m.Data)).Msg("received pubsub message")
		recvAt := time.Now()
		var req queues.BattleRequest
		if err := json.Unmarshal(m.Data, &req); err != nil {
			log.Error().Err(err).Msg("failed to unmarshal battle request")
			// Nack to allow retry
			m.Nack()
			return
		}
		if !req.Valid() {
			log.Error().Str("battleId", req.BattleID).Int("rounds", req.Rounds).Msg("invalid request payload")
			// Ack to drop bad message (poison)
			m.Ack()
			return
		}

		log.Info().Str("battleId", req.BattleID).Int("rounds", req.Rounds).Str("playerId", req.PlayerID).Msg("handling battle request")
		if err := handler(ctx, &req); err != nil {
			log.Error().Err(err).Str("battleId", req.BattleID).Msg("handler failed; will retry")
			m.Nack()
			return
		}
		// Success -> ack
		log.Debug().Str("battleId", req.BattleID).Dur("latency", time.Since(recvAt)).Msg("handler succeeded; acking message")
		m.Ack()
	})
}

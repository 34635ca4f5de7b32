package pubsub

import (
	"context"
	"encoding/json"
	"sync"

	"dragon-duel-client/queues"

	gpubsub "cloud.google.com/go/pubsub"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// Publisher sends battle results to a Pub/Sub topic. The client is created on first use.
type Publisher struct {
	projectID   string
	resultTopic string
	credsFile   string

	mu     sync.Mutex
	client *gpubsub.Client
	topic  *gpubsub.Topic
}

func NewPublisher(projectID, resultTopic, credsFile string) *Publisher {
	return &Publisher{projectID: projectID, resultTopic: resultTopic, credsFile: credsFile}
}

// Close releases the Pub/Sub client, if one was created.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client == nil {
		return nil
	}
	p.topic.Stop()
	err := p.client.Close()
	p.client, p.topic = nil, nil
	return err
}

func (p *Publisher) topicFor(ctx context.Context) (*gpubsub.Topic, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		return p.topic, nil
	}
	var (
		client *gpubsub.Client
		err    error
	)
	if p.credsFile != "" {
		log.Debug().Str("projectID", p.projectID).Str("topic", p.resultTopic).Str("credsFile", p.credsFile).Msg("initializing pubsub publisher with explicit credentials")
		client, err = gpubsub.NewClient(ctx, p.projectID, option.WithCredentialsFile(p.credsFile))
	} else {
		log.Debug().Str("projectID", p.projectID).Str("topic", p.resultTopic).Msg("initializing pubsub publisher with default credentials")
		client, err = gpubsub.NewClient(ctx, p.projectID)
	}
	if err != nil {
		log.Error().Err(err).Str("projectID", p.projectID).Str("topic", p.resultTopic).Msg("failed to create pubsub client for publisher")
		return nil, err
	}
	p.client = client
	p.topic = client.Topic(p.resultTopic)
	log.Info().Str("topic", p.resultTopic).Msg("pubsub publisher initialized")
	return p.topic, nil
}

func (p *Publisher) PublishResult(ctx context.Context, res *queues.BattleResult) error {
	topic, err := p.topicFor(ctx)
	if err != nil {
		return err
	}
	b, err := json.Marshal(res)
	if err != nil {
		log.Error().Err(err).Str("battleId", res.BattleID).Msg("failed to marshal battle result")
		return err
	}
	// Wait for server ack so a lost result surfaces as a handler error
	r := topic.Publish(ctx, &gpubsub.Message{
		Data:       b,
		Attributes: map[string]string{"type": res.Type, "status": string(res.Status)},
	})
	id, err := r.Get(ctx)
	if err != nil {
		log.Error().Err(err).Str("battleId", res.BattleID).Msg("failed to publish battle result")
		return err
	}
	log.Debug().Str("messageID", id).Str("battleId", res.BattleID).Str("status", string(res.Status)).Int("victories", res.Victories).Int("defeats", res.Defeats).Msg("published battle result")
	return nil
}

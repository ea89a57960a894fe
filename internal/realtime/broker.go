package realtime

import (
	"context"
	"encoding/json"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Broker fans events out over Redis pub/sub.
type Broker struct {
	client redislib.UniversalClient
	logger *zap.Logger
	buffer int
}

func NewBroker(client redislib.UniversalClient, logger *zap.Logger) *Broker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broker{client: client, logger: logger, buffer: defaultBuffer}
}

// Publish sends the event on the relation channel and on every predicate channel it satisfies.
func (b *Broker) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	pipe := b.client.Pipeline()
	for _, channel := range event.Channels() {
		pipe.Publish(ctx, channel, payload)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// Subscribe opens a Redis subscription. It stays open until Close is called or ctx is cancelled.
func (b *Broker) Subscribe(ctx context.Context, relation string, p Predicate) (*Subscription, error) {
	channel := Channel(relation, p)
	pubsub := b.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := newSubscription(relation, p, b.buffer, func() error {
		cancel()
		return pubsub.Close()
	})

	b.logger.Debug("realtime subscription opened", zap.String("channel", channel))
	go b.pump(subCtx, sub, pubsub)
	return sub, nil
}

func (b *Broker) pump(ctx context.Context, sub *Subscription, pubsub *redislib.PubSub) {
	defer sub.closeOut()

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			_ = sub.Close()
			return
		case <-sub.done:
			return
		case msg, ok := <-messages:
			if !ok {
				_ = sub.Close()
				return
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.logger.Warn("dropping malformed realtime event", zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}
			if !sub.deliver(ctx, event) {
				return
			}
		}
	}
}

var (
	_ Publisher  = (*Broker)(nil)
	_ Subscriber = (*Broker)(nil)
)

package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Project-mardianto/algoplus-app/internal/logger"
	"github.com/Project-mardianto/algoplus-app/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultChannel = "order-updates"

// RedisBroker publishes updates on a Redis channel. Every instance runs Relay
// to feed the channel into its local Hub, so an update published by one
// instance reaches the websocket clients of all of them.
type RedisBroker struct {
	client  *redis.Client
	channel string
	hub     *Hub
}

func NewRedisBroker(client *redis.Client, channel string, hub *Hub) *RedisBroker {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBroker{client: client, channel: channel, hub: hub}
}

func (b *RedisBroker) Publish(ctx context.Context, u models.OrderUpdate) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to encode order update: %w", err)
	}

	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish order update: %w", err)
	}
	return nil
}

// Relay blocks until ctx is done, republishing every received update into
// the local hub.
func (b *RedisBroker) Relay(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}

	logger.Log.Info("relaying order updates", zap.String("channel", b.channel))

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}

			var u models.OrderUpdate
			if err := json.Unmarshal([]byte(msg.Payload), &u); err != nil {
				logger.Log.Warn("skipping malformed order update", zap.Error(err))
				continue
			}
			_ = b.hub.Publish(ctx, u)
		}
	}
}

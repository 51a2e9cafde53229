package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	id "bagofholding/pkg/domain"
)

// RedisPublisher publishes events to a per-bag Redis pub/sub channel.
// Subscribed clients (the real-time frontends) receive the JSON payload.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// ChannelFor returns the pub/sub channel name for a bag.
func ChannelFor(bagID id.BagID) string {
	return fmt.Sprintf("bag.%s.events", bagID)
}

func (p *RedisPublisher) Publish(ctx context.Context, bagID id.BagID, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.client.Publish(ctx, ChannelFor(bagID), payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", ChannelFor(bagID), err)
	}
	return nil
}

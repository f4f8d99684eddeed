package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultChannelPrefix namespaces the per-asset pub/sub channels.
const DefaultChannelPrefix = "resuma:assets:"

// Publisher is the subset of the Redis client used for publishing.
// *redis.Client and *redis.ClusterClient satisfy it.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisSink publishes each event as JSON on <prefix><asset>.
type RedisSink struct {
	client Publisher
	prefix string
}

// NewRedisSink creates a sink publishing through client. An empty prefix
// selects DefaultChannelPrefix.
func NewRedisSink(client Publisher, prefix string) *RedisSink {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	return &RedisSink{client: client, prefix: prefix}
}

// Channel returns the channel events for asset are published on.
func (s *RedisSink) Channel(asset string) string {
	return s.prefix + asset
}

// Emit publishes e.
func (s *RedisSink) Emit(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", e.Name(), err)
	}
	channel := s.Channel(e.Asset)
	if err := s.client.Publish(ctx, channel, string(payload)).Err(); err != nil {
		return fmt.Errorf("failed to publish to channel %s: %w", channel, err)
	}
	return nil
}

package realtime

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Broadcaster publishes a serialized envelope onto a named channel.
// Publish-only: no acknowledgement, no persistence, no replay. If nobody is
// listening the message is simply lost.
type Broadcaster interface {
	Broadcast(ctx context.Context, channel string, payload []byte) error
}

// RedisBroadcaster fans out through Redis pub/sub.
type RedisBroadcaster struct {
	client *redis.Client
}

func NewRedisBroadcaster(client *redis.Client) *RedisBroadcaster {
	return &RedisBroadcaster{client: client}
}

func (b *RedisBroadcaster) Broadcast(ctx context.Context, channel string, payload []byte) error {
	return b.client.Publish(ctx, channel, payload).Err()
}

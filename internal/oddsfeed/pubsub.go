package oddsfeed

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisBroadcaster publica atualizações no canal Pub/Sub do hub WebSocket.
type RedisBroadcaster struct {
	r       *redis.Client
	channel string
}

func NewRedisBroadcaster(r *redis.Client, channel string) *RedisBroadcaster {
	return &RedisBroadcaster{r: r, channel: channel}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, payload []byte) error {
	return b.r.Publish(ctx, b.channel, payload).Err()
}

package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSink appends notifications to a Redis stream via XADD. Stream entries
// are ordered by Redis-assigned ids, which preserves publish order.
type RedisSink struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewRedisSink(client *redis.Client, stream string, logger *slog.Logger) *RedisSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisSink{client: client, stream: stream, logger: logger}
}

func (s *RedisSink) Publish(ctx context.Context, n Notification) {
	payload, err := json.Marshal(n.Payload)
	if err != nil {
		s.logger.ErrorContext(ctx, "marshal notification payload",
			"type", n.Type, "id", n.ID, "error", err)
		return
	}

	err = s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			"id":          n.ID.String(),
			"type":        string(n.Type),
			"occurred_at": n.OccurredAt.Format(time.RFC3339Nano),
			"payload":     payload,
		},
	}).Err()
	if err != nil {
		s.logger.ErrorContext(ctx, "publish notification",
			"type", n.Type, "id", n.ID, "error", err)
	}
}

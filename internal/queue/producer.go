package queue

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Producer appends entries to the task stream.
type Producer struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewProducer returns a producer for stream. The stream is trimmed to
// roughly maxLen entries when maxLen is positive.
func NewProducer(client *redis.Client, stream string, maxLen int64) *Producer {
	return &Producer{client: client, stream: stream, maxLen: maxLen}
}

func (p *Producer) Publish(ctx context.Context, values map[string]any) (string, error) {
	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: values,
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}
	return p.client.XAdd(ctx, args).Result()
}

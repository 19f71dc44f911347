package events

import (
	"context"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"
)

// amqpPublisher is the part of the RabbitMQ client events need
type amqpPublisher interface {
	PublishWithRetry(ctx context.Context, routingKey string, body []byte, contentType string) error
}

// RabbitMQ publishes events to a topic exchange keyed by RoutingKey
type RabbitMQ struct {
	client amqpPublisher
}

// NewRabbitMQ wraps a connected RabbitMQ client
func NewRabbitMQ(client amqpPublisher) *RabbitMQ {
	return &RabbitMQ{client: client}
}

// Publish sends e with the client's retry policy
func (r *RabbitMQ) Publish(ctx context.Context, e Event) error {
	body, err := e.Encode()
	if err != nil {
		return err
	}
	if err := r.client.PublishWithRetry(ctx, e.RoutingKey(), body, "application/json"); err != nil {
		return fmt.Errorf("failed to publish %s to rabbitmq: %w", e.RoutingKey(), err)
	}
	return nil
}

// redisPublisher is satisfied by *goredis.Client
type redisPublisher interface {
	Publish(ctx context.Context, channel string, message any) *goredis.IntCmd
}

// Redis publishes events on a pub/sub channel
type Redis struct {
	client  redisPublisher
	channel string
	logger  *slog.Logger
}

// NewRedis wraps a connected Redis client
func NewRedis(client redisPublisher, channel string, logger *slog.Logger) *Redis {
	return &Redis{client: client, channel: channel, logger: logger}
}

// Publish sends e to the channel
func (r *Redis) Publish(ctx context.Context, e Event) error {
	body, err := e.Encode()
	if err != nil {
		return err
	}

	receivers, err := r.client.Publish(ctx, r.channel, body).Result()
	if err != nil {
		return fmt.Errorf("failed to publish %s to redis: %w", e.RoutingKey(), err)
	}

	r.logger.Debug("Event published to Redis",
		slog.String("channel", r.channel),
		slog.String("event", e.RoutingKey()),
		slog.Int64("receivers", receivers),
	)
	return nil
}

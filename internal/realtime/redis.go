package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// channelPrefix namespaces draft channels within a shared Redis instance.
const channelPrefix = "draftroom:draft:"

// Redis implements Channel over Redis pub/sub, one channel per draft id.
// Redis pub/sub is at-most-once per connected subscriber; the envelope id
// dedupe in sessions additionally tolerates transports that redeliver.
type Redis struct {
	client *redis.Client
	log    *slog.Logger
}

// NewRedis returns a Channel backed by the given Redis client.
func NewRedis(client *redis.Client, log *slog.Logger) *Redis {
	return &Redis{client: client, log: log}
}

func channelKey(draftID string) string {
	return channelPrefix + draftID
}

// Publish marshals the envelope and publishes it on the draft's channel.
func (r *Redis) Publish(ctx context.Context, draftID string, env Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("realtime.Redis.Publish: marshal: %w", err)
	}
	if err := r.client.Publish(ctx, channelKey(draftID), payload).Err(); err != nil {
		return fmt.Errorf("realtime.Redis.Publish: %w", err)
	}
	return nil
}

// Subscribe opens a pub/sub subscription for the draft and forwards each
// payload to h on a dedicated goroutine. Malformed payloads are logged and
// skipped — one bad client must not wedge the feed for everyone else.
func (r *Redis) Subscribe(ctx context.Context, draftID string, h Handler) (func(), error) {
	pubsub := r.client.Subscribe(ctx, channelKey(draftID))

	// Receive the subscription confirmation so envelopes published after
	// Subscribe returns are guaranteed to be delivered.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("realtime.Redis.Subscribe: %w", err)
	}

	go func() {
		for msg := range pubsub.Channel() {
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				r.log.Warn("dropping malformed envelope",
					"draft_id", draftID,
					"error", err,
				)
				continue
			}
			h(env)
		}
	}()

	return func() {
		if err := pubsub.Close(); err != nil {
			r.log.Warn("closing subscription", "draft_id", draftID, "error", err)
		}
	}, nil
}

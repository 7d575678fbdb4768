package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisEmitter publishes events on a pub/sub channel so other services can
// react to application and token creation. Publish-and-forget: failures are
// logged, never surfaced.
type RedisEmitter struct {
	cli     *redis.Client
	channel string
	log     *zap.SugaredLogger
}

func NewRedisEmitter(cli *redis.Client, channel string, log *zap.SugaredLogger) *RedisEmitter {
	return &RedisEmitter{cli: cli, channel: channel, log: log}
}

type envelope struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	EmittedAt time.Time `json:"emitted_at"`
	Payload   Event     `json:"payload"`
}

func (e *RedisEmitter) Emit(_ context.Context, ev Event) {
	// Detached from the caller's lifetime: the emitting operation must not
	// block or fail because of the side channel.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		raw, err := json.Marshal(envelope{
			ID:        uuid.NewString(),
			Kind:      ev.Kind(),
			EmittedAt: time.Now().UTC(),
			Payload:   ev,
		})
		if err != nil {
			e.log.Errorw("event marshal", "kind", ev.Kind(), "err", err)
			return
		}
		if err := e.cli.Publish(ctx, e.channel, raw).Err(); err != nil {
			e.log.Warnw("event publish failed", "kind", ev.Kind(), "err", err)
		}
	}()
}

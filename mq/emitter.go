package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Channel is the Redis pub/sub channel recipe events are published on.
const Channel = "recipe-events"

const (
	EventRecipeCreated   = "recipe.created"
	EventFavoriteToggled = "favorite.toggled"
)

// Event is a change notification. EntityID is the recipe id.
type Event struct {
	Type     string    `json:"type"`
	EntityID string    `json:"entity_id"`
	UserID   string    `json:"user_id,omitempty"`
	At       time.Time `json:"at"`
}

type Emitter interface {
	Emit(ctx context.Context, ev Event) error
}

// Nop drops every event. Used when Redis is not configured.
type Nop struct{}

func (Nop) Emit(context.Context, Event) error { return nil }

type RedisEmitter struct {
	conn *redis.Client
}

func NewRedisEmitter(conn *redis.Client) *RedisEmitter {
	return &RedisEmitter{conn: conn}
}

// Emit publishes ev to Channel.
func (e *RedisEmitter) Emit(ctx context.Context, ev Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("mq: marshal event: %w", err)
	}
	if err := e.conn.Publish(ctx, Channel, data).Err(); err != nil {
		return fmt.Errorf("mq: publish %s: %w", ev.Type, err)
	}
	return nil
}

// Handler processes one event. Errors are logged and do not stop the worker.
type Handler func(ctx context.Context, ev Event) error

// Listen subscribes to Channel and feeds events to handle until ctx is done.
func Listen(ctx context.Context, conn *redis.Client, log *zap.Logger, handle Handler) error {
	sub := conn.Subscribe(ctx, Channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("mq: subscribe %s: %w", Channel, err)
	}
	log.Info("listening for recipe events", zap.String("channel", Channel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			Dispatch(ctx, log, []byte(msg.Payload), handle)
		}
	}
}

// Dispatch decodes one payload and runs handle on it.
func Dispatch(ctx context.Context, log *zap.Logger, payload []byte, handle Handler) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		log.Warn("unreadable event", zap.Error(err))
		return
	}
	if err := handle(ctx, ev); err != nil {
		log.Warn("event handler failed",
			zap.String("type", ev.Type),
			zap.String("entity_id", ev.EntityID),
			zap.Error(err),
		)
	}
}

package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
)

// OrderEvent is what the order panel receives over the websocket feed.
// It carries identifiers and the new status, not the full order; the panel
// refetches when it needs more.
type OrderEvent struct {
	Type    EventType `json:"type"`
	StoreID string    `json:"store_id"`
	OrderID string    `json:"order_id"`
	Status  string    `json:"status"`
	At      time.Time `json:"at"`
}

// Publisher is the write side of the feed. Publish failures are logged and
// swallowed by callers: a missed panel refresh never fails a state change
// that already committed.
type Publisher interface {
	PublishOrderEvent(ctx context.Context, event OrderEvent) error
}

const channelPrefix = "orders:events:"

// RedisFeed fans order events out through Redis Pub/Sub, one channel per
// store, so every API instance sees events regardless of which instance
// handled the write.
type RedisFeed struct {
	rdb *redis.Client
}

func NewRedisFeed(rdb *redis.Client) *RedisFeed {
	return &RedisFeed{rdb: rdb}
}

func (f *RedisFeed) PublishOrderEvent(ctx context.Context, event OrderEvent) error {
	if event.At.IsZero() {
		event.At = time.Now()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return f.rdb.Publish(ctx, channelPrefix+event.StoreID, payload).Err()
}

// Run bridges the Redis feed into the websocket hub until ctx is cancelled.
// Malformed payloads are dropped with a log line.
func (f *RedisFeed) Run(ctx context.Context, hub *Hub) {
	pubsub := f.rdb.PSubscribe(ctx, channelPrefix+"*")
	defer pubsub.Close()

	ch := pubsub.Channel()
	log.Info().Msg("realtime feed bridge started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("realtime feed bridge stopped")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event OrderEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Warn().Err(err).Str("channel", msg.Channel).Msg("dropping malformed order event")
				continue
			}
			hub.BroadcastToStore(event.StoreID, []byte(msg.Payload))
		}
	}
}
